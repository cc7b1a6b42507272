package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jayant1554/credit-score-defi/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldResemble, config.New())
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("CREDITSCORE_SEED", "7")
			_ = os.Setenv("CREDITSCORE_WORKER_COUNT", "3")
			_ = os.Setenv("CREDITSCORE_LOG_LEVEL", "debug")
			_ = os.Setenv("CREDITSCORE_MODEL__N_ESTIMATORS", "50")
			_ = os.Setenv("CREDITSCORE_MODEL__LEARNING_RATE", "0.1")
			_ = os.Setenv("CREDITSCORE_WEIGHTS__RAS", "0.5")
			_ = os.Setenv("CREDITSCORE_ACTIONS__LIQUIDATION", "liquidation_call")
			_ = os.Setenv("CREDITSCORE_OUTPUT__FORMAT", "csv")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Seed, convey.ShouldEqual, 7)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 3)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
				convey.So(cfg.Model.NEstimators, convey.ShouldEqual, 50)
				convey.So(cfg.Model.LearningRate, convey.ShouldEqual, 0.1)
				convey.So(cfg.Model.MaxDepth, convey.ShouldEqual, 3)
				convey.So(cfg.Weights.RAS, convey.ShouldEqual, 0.5)
				convey.So(cfg.Weights.RBS, convey.ShouldEqual, 0.30)
				convey.So(cfg.Actions.Liquidation, convey.ShouldEqual, "liquidation_call")
				convey.So(cfg.Output.Format, convey.ShouldEqual, "csv")
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
seed: 1234
test_fraction: 0.25
weights:
  ras: 0.4
  rbs: 0.3
  css: 0.2
  pes: 0.1
model:
  n_estimators: 80
  max_depth: 4
metrics:
  textfile: /tmp/creditscore.prom
report:
  top_n: 3
`
			tmpFile := createTempConfigFile(t, yamlContent)
			_ = os.Setenv("CREDITSCORE_CONFIG", tmpFile)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Seed, convey.ShouldEqual, 1234)
				convey.So(cfg.TestFraction, convey.ShouldEqual, 0.25)
				convey.So(cfg.Model.NEstimators, convey.ShouldEqual, 80)
				convey.So(cfg.Model.MaxDepth, convey.ShouldEqual, 4)
				convey.So(cfg.Model.LearningRate, convey.ShouldEqual, 0.2)
				convey.So(cfg.Metrics.Textfile, convey.ShouldEqual, "/tmp/creditscore.prom")
				convey.So(cfg.Report.TopN, convey.ShouldEqual, 3)
			})

			convey.Convey("And env should win over the file", func() {
				_ = os.Setenv("CREDITSCORE_SEED", "99")
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Seed, convey.ShouldEqual, 99)
				convey.So(cfg.Model.NEstimators, convey.ShouldEqual, 80)
			})
		})

		convey.Convey("When the YAML file does not exist", func() {
			_ = os.Setenv("CREDITSCORE_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

			_, err := config.Load(ctx)

			convey.Convey("Then it should return ErrLoadConfig", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When env sets an invalid value", func() {
			_ = os.Setenv("CREDITSCORE_TEST_FRACTION", "1.5")

			_, err := config.Load(ctx)

			convey.Convey("Then it should return ErrInvalidConfig", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "creditscore.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

func clearConfigEnvVars() {
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, config.EnvPrefix) {
			_ = os.Unsetenv(strings.SplitN(kv, "=", 2)[0])
		}
	}
}
