package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/scout/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

// clearConfigEnvVars unsets every environment variable the loader reads so
// tests never inherit state from the host shell.
func clearConfigEnvVars(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"SCOUT_CONFIG",
		"SCOUT_ADDR",
		"SCOUT_LOG_LEVEL",
		"SCOUT_QUEUE_SIZE",
		"SCOUT_WORKER_COUNT",
		"SCOUT_DEDUPE_SIZE",
		"SCOUT_MAX_TOP_LIMIT",
		"SCOUT_CLASSIFIER_LATENCY_MIN_MS",
		"SCOUT_CLASSIFIER_LATENCY_MAX_MS",
		"SCOUT_INTENT_HALF_LIFE_HOURS",
		"SCOUT_COMMITTEE_WINDOW_DAYS",
		"SCOUT_MIN_INTENT_SCORE",
		"SCOUT_MIN_ICP_SCORE",
		"SCOUT_MAX_DAILY_MESSAGES",
	} {
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("unset %s: %v", key, err)
		}
	}
}

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scout.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearConfigEnvVars(t)

	convey.Convey("Given no file and no environment overrides", t, func() {
		cfg, err := config.Load(context.Background())

		convey.Convey("Then defaults should load cleanly", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.RescoreQueueSize, convey.ShouldEqual, 100_000)
			convey.So(cfg.MinIntentScore, convey.ShouldEqual, 70.0)
		})
	})
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearConfigEnvVars(t)
	t.Setenv("SCOUT_ADDR", ":7070")
	t.Setenv("SCOUT_QUEUE_SIZE", "256")
	t.Setenv("SCOUT_WORKER_COUNT", "3")
	t.Setenv("SCOUT_CLASSIFIER_LATENCY_MIN_MS", "5")
	t.Setenv("SCOUT_CLASSIFIER_LATENCY_MAX_MS", "10")

	convey.Convey("Given environment overrides", t, func() {
		cfg, err := config.Load(context.Background())

		convey.Convey("Then the overrides should win over defaults", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
			convey.So(cfg.RescoreQueueSize, convey.ShouldEqual, 256)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, 3)
			convey.So(cfg.ClassifierLatencyMinMS, convey.ShouldEqual, 5)
			convey.So(cfg.ClassifierLatencyMaxMS, convey.ShouldEqual, 10)
		})

		convey.Convey("Then untouched fields keep their defaults", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.DedupeSize, convey.ShouldEqual, 500_000)
		})
	})
}

func TestLoad_ConfigFile(t *testing.T) {
	clearConfigEnvVars(t)
	path := createTempConfigFile(t, "addr: \":6060\"\nmax_top_limit: 25\n")
	t.Setenv("SCOUT_CONFIG", path)

	convey.Convey("Given a YAML config file", t, func() {
		cfg, err := config.Load(context.Background())

		convey.Convey("Then file values should merge over defaults", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Addr, convey.ShouldEqual, ":6060")
			convey.So(cfg.MaxTopLimit, convey.ShouldEqual, 25)
			convey.So(cfg.RescoreQueueSize, convey.ShouldEqual, 100_000)
		})
	})
}

func TestLoad_EnvOverFile(t *testing.T) {
	clearConfigEnvVars(t)
	path := createTempConfigFile(t, "addr: \":6060\"\n")
	t.Setenv("SCOUT_CONFIG", path)
	t.Setenv("SCOUT_ADDR", ":7070")

	convey.Convey("Given both a config file and an environment override", t, func() {
		cfg, err := config.Load(context.Background())

		convey.Convey("Then the environment should take precedence", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
		})
	})
}

func TestLoad_MissingConfigFile(t *testing.T) {
	clearConfigEnvVars(t)
	t.Setenv("SCOUT_CONFIG", filepath.Join(t.TempDir(), "does-not-exist.yaml"))

	convey.Convey("Given a config path that does not exist", t, func() {
		_, err := config.Load(context.Background())

		convey.Convey("Then loading should fail", func() {
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(err.Error(), convey.ShouldContainSubstring, config.ErrLoadConfig.Error())
		})
	})
}

func TestLoad_Validation(t *testing.T) {
	clearConfigEnvVars(t)
	t.Setenv("SCOUT_ADDR", "")

	convey.Convey("Given an empty listen address", t, func() {
		_, err := config.Load(context.Background())

		convey.Convey("Then validation should reject the config", func() {
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
		})
	})
}

func TestLoad_InvalidNumericEnv(t *testing.T) {
	clearConfigEnvVars(t)
	t.Setenv("SCOUT_WORKER_COUNT", "lots")

	convey.Convey("Given a non-numeric value for a numeric field", t, func() {
		_, err := config.Load(context.Background())

		convey.Convey("Then loading should fail", func() {
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}
