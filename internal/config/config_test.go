package config_test

import (
	"errors"
	"testing"

	"github.com/okian/cutoffs/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.LogFormat, convey.ShouldEqual, "text")
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.TargetYear, convey.ShouldEqual, 0)
			convey.So(cfg.MinCohortSize, convey.ShouldEqual, 800)
			convey.So(cfg.SuppressionThreshold, convey.ShouldEqual, 1040)
			convey.So(cfg.BandHalfWidth, convey.ShouldEqual, 0.10)
			convey.So(cfg.MaxDepth, convey.ShouldEqual, 4)
			convey.So(cfg.RandomSeed, convey.ShouldEqual, int64(42))
			convey.So(cfg.ReferenceCSV, convey.ShouldBeEmpty)
			convey.So(cfg.Output, convey.ShouldEqual, "table")
		})

		convey.Convey("Then it should validate", func() {
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs with a single bad field", t, func() {
		cases := []struct {
			name   string
			mutate func(*config.Config)
		}{
			{"empty addr", func(c *config.Config) { c.Addr = "" }},
			{"zero min cohort", func(c *config.Config) { c.MinCohortSize = 0 }},
			{"zero threshold", func(c *config.Config) { c.SuppressionThreshold = 0 }},
			{"negative half width", func(c *config.Config) { c.BandHalfWidth = -0.1 }},
			{"zero depth", func(c *config.Config) { c.MaxDepth = 0 }},
			{"negative year", func(c *config.Config) { c.TargetYear = -1 }},
			{"unknown output", func(c *config.Config) { c.Output = "xml" }},
		}

		for _, tc := range cases {
			convey.Convey("When the config has "+tc.name, func() {
				cfg := config.New()
				tc.mutate(cfg)

				convey.Convey("Then validation fails with ErrInvalidConfig", func() {
					convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
				})
			})
		}

		convey.Convey("When the output is upper case", func() {
			cfg := config.New()
			cfg.Output = "JSON"

			convey.Convey("Then it is accepted", func() {
				convey.So(cfg.Validate(), convey.ShouldBeNil)
			})
		})
	})
}
