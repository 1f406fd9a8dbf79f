package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	service "github.com/okian/cutoffs/internal/app"
	"github.com/okian/cutoffs/internal/domain/model"
)

// Output formats accepted by Render.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

const (
	noteSuppressed = "Note: 'N/A' indicates the specialisation may not be filled due to very low popularity and low GPA demand."
	noteAccuracy   = "Also note that these are predictions from a decision tree regressor trained on past cutoffs. Take them with a grain of salt."
)

// Render writes f to w in the requested format.
func Render(w io.Writer, f service.Forecast, format string) error {
	switch strings.ToLower(format) {
	case FormatTable, "":
		return renderTable(w, f)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(f)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(f); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func renderTable(w io.Writer, f service.Forecast) error {
	fmt.Fprintf(w, "\n--- Predicted GPA Cutoffs for %d ---\n", f.Year)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Specialisation\tLower GPA\tUpper GPA")
	fmt.Fprintln(tw, "--------------\t---------\t---------")
	for _, r := range f.Results {
		fmt.Fprintln(tw, row(r))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%s\n\n%s\n", noteSuppressed, noteAccuracy)
	return err
}

func row(r model.Result) string {
	lower, upper := r.Bounds()
	return fmt.Sprintf("%s\t%s\t%s", r.Track, lower, upper)
}
