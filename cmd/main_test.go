package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	app "github.com/okian/cutoffs/internal/app"
	"github.com/okian/cutoffs/internal/domain/prediction"
	"github.com/okian/cutoffs/internal/domain/reference"
	"github.com/okian/cutoffs/internal/domain/training"
)

func run(stdin string, args ...string) (string, string, error) {
	var out, errOut bytes.Buffer
	cmd := newRootCmd(strings.NewReader(stdin), &out, &errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func fives() string {
	return strings.TrimSuffix(strings.Repeat("5,", len(reference.Default().Tracks())), ",")
}

func TestMainCommands(t *testing.T) {
	convey.Convey("Given the cutoffs command", t, func() {
		convey.Convey("When printing the version", func() {
			out, _, err := run("", "version")

			convey.Convey("Then the version line is written", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out, convey.ShouldStartWith, "cutoffs v")
			})
		})

		convey.Convey("When predicting interactively", func() {
			stdin := "abc\n1200\n" + strings.Repeat("5\n", len(reference.Default().Tracks()))
			out, _, err := run(stdin, "predict")

			convey.Convey("Then it re-prompts and prints the table", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out, convey.ShouldContainSubstring, "Invalid input. Please enter a whole number.")
				convey.So(out, convey.ShouldContainSubstring, "--- Predicted GPA Cutoffs for 2026 ---")
				convey.So(out, convey.ShouldContainSubstring, "Software")
				convey.So(out, convey.ShouldNotContainSubstring, "N/A  ")
			})
		})

		convey.Convey("When predicting from flags as JSON", func() {
			out, _, err := run("", "predict", "--cohort-size", "900", "--popularity", "5,5,5,5,5,5,5,5,5,1", "--output", "json")

			convey.Convey("Then the least popular track is suppressed", func() {
				convey.So(err, convey.ShouldBeNil)
				var f app.Forecast
				convey.So(json.Unmarshal([]byte(out), &f), convey.ShouldBeNil)
				convey.So(f.CohortSize, convey.ShouldEqual, 900)
				convey.So(len(f.Results), convey.ShouldEqual, 10)
				convey.So(f.Results[9].Known, convey.ShouldBeFalse)
			})
		})

		convey.Convey("When only the cohort size is passed", func() {
			stdin := strings.Repeat("5\n", len(reference.Default().Tracks()))
			out, _, err := run(stdin, "predict", "--cohort-size", "1200", "--year", "2030", "--output", "yaml")

			convey.Convey("Then popularity is prompted and the year is overridden", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out, convey.ShouldContainSubstring, "for each specialisation in 2030")
				convey.So(out, convey.ShouldContainSubstring, "year: 2030")
			})
		})

		convey.Convey("When the popularity flag is invalid", func() {
			_, _, err := run("", "predict", "--cohort-size", "1200", "--popularity", "5,5")

			convey.Convey("Then the command fails with invalid input", func() {
				convey.So(errors.Is(err, prediction.ErrInvalidInput), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the cohort flag is below the minimum", func() {
			_, _, err := run("", "predict", "--cohort-size", "700", "--popularity", fives())

			convey.Convey("Then the command fails with invalid input", func() {
				convey.So(errors.Is(err, prediction.ErrInvalidInput), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When exporting the reference tables", func() {
			out, _, err := run("", "export")

			convey.Convey("Then the CSV loads back into equal tables", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out, convey.ShouldStartWith, "year,track,cohort_size,seats,popularity,cutoff")
				loaded, err := reference.LoadCSV(strings.NewReader(out))
				convey.So(err, convey.ShouldBeNil)
				convey.So(loaded.Tracks(), convey.ShouldResemble, reference.Default().Tracks())
				convey.So(loaded.Years(), convey.ShouldResemble, reference.Default().Years())
			})
		})

		convey.Convey("When a reference CSV without cutoffs is passed", func() {
			path := filepath.Join(t.TempDir(), "history.csv")
			csv := "year,track,cohort_size,seats,popularity,cutoff\n2024,A,900,10,5,\n2025,A,950,10,6,\n"
			convey.So(os.WriteFile(path, []byte(csv), 0o600), convey.ShouldBeNil)

			_, _, err := run("", "--reference", path, "predict", "--cohort-size", "1200", "--popularity", "5")

			convey.Convey("Then training reports an empty training set", func() {
				convey.So(errors.Is(err, training.ErrEmptyTrainingSet), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the reference file does not exist", func() {
			_, _, err := run("", "--reference", "/non/existent.csv", "export")

			convey.Convey("Then the command fails", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When the config file sets the output format", func() {
			path := filepath.Join(t.TempDir(), "config.yaml")
			convey.So(os.WriteFile(path, []byte("output: json\nlog_format: json\n"), 0o600), convey.ShouldBeNil)

			out, errOut, err := run("", "--config", path, "predict", "--cohort-size", "1200", "--popularity", fives())

			convey.Convey("Then results are rendered as JSON and logs as JSON on stderr", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(strings.TrimSpace(out), convey.ShouldStartWith, "{")
				convey.So(errOut, convey.ShouldContainSubstring, `"msg":"model trained"`)
			})
		})

		convey.Convey("When serving with a context that is already cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			var out, errOut bytes.Buffer
			cmd := newRootCmd(strings.NewReader(""), &out, &errOut)
			cmd.SetArgs([]string{"serve", "--addr", "127.0.0.1:0"})
			err := cmd.ExecuteContext(ctx)

			convey.Convey("Then the server shuts down cleanly", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(errOut.String(), convey.ShouldContainSubstring, "server stopped")
			})
		})
	})
}
