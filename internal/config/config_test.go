package config_test

import (
	"errors"
	"runtime"
	"testing"

	"github.com/jayant1554/credit-score-defi/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should carry the reference pipeline parameters", func() {
			convey.So(cfg.Seed, convey.ShouldEqual, 42)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU())
			convey.So(cfg.Epsilon, convey.ShouldEqual, 1e-6)
			convey.So(cfg.TestFraction, convey.ShouldEqual, 0.2)
			convey.So(cfg.Weights, convey.ShouldResemble, config.Weights{RAS: 0.40, RBS: 0.30, CSS: 0.20, PES: 0.10})
			convey.So(cfg.Actions.Liquidation, convey.ShouldEqual, "liquidationcall")
			convey.So(cfg.Model.NEstimators, convey.ShouldEqual, 200)
			convey.So(cfg.Model.LearningRate, convey.ShouldEqual, 0.2)
			convey.So(cfg.Model.MaxDepth, convey.ShouldEqual, 3)
			convey.So(cfg.Model.ColsampleByTree, convey.ShouldEqual, 1.0)
			convey.So(cfg.Output.Path, convey.ShouldEqual, "wallet_credit_scores.json")
		})

		convey.Convey("And it should validate", func() {
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given a default config", t, func() {
		cases := []struct {
			name   string
			mutate func(c *config.Config)
		}{
			{"zero workers", func(c *config.Config) { c.WorkerCount = 0 }},
			{"zero epsilon", func(c *config.Config) { c.Epsilon = 0 }},
			{"test fraction of one", func(c *config.Config) { c.TestFraction = 1 }},
			{"negative weight", func(c *config.Config) { c.Weights.RBS = -0.1 }},
			{"all weights zero", func(c *config.Config) { c.Weights = config.Weights{} }},
			{"empty liquidation action", func(c *config.Config) { c.Actions.Liquidation = "" }},
			{"no trees", func(c *config.Config) { c.Model.NEstimators = 0 }},
			{"zero learning rate", func(c *config.Config) { c.Model.LearningRate = 0 }},
			{"zero depth", func(c *config.Config) { c.Model.MaxDepth = 0 }},
			{"colsample above one", func(c *config.Config) { c.Model.ColsampleByTree = 1.5 }},
			{"unknown output format", func(c *config.Config) { c.Output.Format = "parquet" }},
			{"negative top n", func(c *config.Config) { c.Report.TopN = -1 }},
		}

		for _, tc := range cases {
			convey.Convey("When "+tc.name, func() {
				cfg := config.New()
				tc.mutate(cfg)

				convey.Convey("Then validation should fail with ErrInvalidConfig", func() {
					err := cfg.Validate()
					convey.So(err, convey.ShouldNotBeNil)
					convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				})
			})
		}

		convey.Convey("When output format is upper case csv", func() {
			cfg := config.New()
			cfg.Output.Format = "CSV"

			convey.Convey("Then it should be accepted", func() {
				convey.So(cfg.Validate(), convey.ShouldBeNil)
			})
		})
	})
}
