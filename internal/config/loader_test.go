package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/aeroscore/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

var configEnvVars = []string{
	"AEROSCORE_CONFIG",
	"AEROSCORE_ADDR",
	"AEROSCORE_LOG_LEVEL",
	"AEROSCORE_LOG_FORMAT",
	"AEROSCORE_DB_DRIVER",
	"AEROSCORE_DB_DSN",
	"AEROSCORE_SHOW_TTL_SECONDS",
	"AEROSCORE_LOG_BUFFER_SIZE",
	"AEROSCORE_REQUEST_TIMEOUT_MS",
	"AEROSCORE_METRICS_ENABLED",
	"AEROSCORE_METRICS_NAMESPACE",
}

func clearConfigEnvVars() {
	for _, k := range configEnvVars {
		_ = os.Unsetenv(k)
	}
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "aeroscore.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.DBDriver, convey.ShouldEqual, config.DriverSQLite)
			convey.So(cfg.ShowTTL(), convey.ShouldEqual, 20*time.Second)
			convey.So(cfg.LogBufferSize, convey.ShouldEqual, 100)
			convey.So(cfg.RequestTimeout(), convey.ShouldEqual, 5*time.Second)
			convey.So(cfg.MetricsEnabled, convey.ShouldBeTrue)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given invalid settings", t, func() {
		cases := map[string]func(*config.Config){
			"addr must not be empty":     func(c *config.Config) { c.Addr = " " },
			"db_driver must be":          func(c *config.Config) { c.DBDriver = "mysql" },
			"show_ttl_seconds":           func(c *config.Config) { c.ShowTTLSeconds = 0 },
			"log_buffer_size":            func(c *config.Config) { c.LogBufferSize = -1 },
			"request_timeout_ms":         func(c *config.Config) { c.RequestTimeoutMS = -5 },
			"log_format must be text or": func(c *config.Config) { c.LogFormat = "xml" },
		}

		for want, mutate := range cases {
			cfg := config.New()
			mutate(cfg)
			err := cfg.Validate()

			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			convey.So(err.Error(), convey.ShouldContainSubstring, want)
		}
	})
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then the defaults are returned", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldResemble, config.New())
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("AEROSCORE_ADDR", ":8080")
			_ = os.Setenv("AEROSCORE_DB_DRIVER", "postgres")
			_ = os.Setenv("AEROSCORE_DB_DSN", "postgres://judge@db/aeroscore")
			_ = os.Setenv("AEROSCORE_SHOW_TTL_SECONDS", "45")
			_ = os.Setenv("AEROSCORE_METRICS_ENABLED", "false")

			cfg, err := config.Load(ctx)

			convey.Convey("Then they override the defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.DBDriver, convey.ShouldEqual, config.DriverPostgres)
				convey.So(cfg.DBDSN, convey.ShouldEqual, "postgres://judge@db/aeroscore")
				convey.So(cfg.ShowTTL(), convey.ShouldEqual, 45*time.Second)
				convey.So(cfg.MetricsEnabled, convey.ShouldBeFalse)
				convey.So(cfg.LogBufferSize, convey.ShouldEqual, 100)
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			path := writeConfigFile(t, `
addr: ":9090"
log_format: json
log_buffer_size: 250
db_dsn: "file:event.db"
metrics_namespace: nationals
metrics_labels:
  event: nationals-2026
`)
			_ = os.Setenv("AEROSCORE_CONFIG", path)
			_ = os.Setenv("AEROSCORE_ADDR", ":8080")

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
				convey.So(cfg.LogBufferSize, convey.ShouldEqual, 250)
				convey.So(cfg.DBDSN, convey.ShouldEqual, "file:event.db")
				convey.So(cfg.ShowTTLSeconds, convey.ShouldEqual, 20)
				convey.So(cfg.MetricsNamespace, convey.ShouldEqual, "nationals")
				convey.So(cfg.MetricsLabels, convey.ShouldResemble, map[string]string{"event": "nationals-2026"})
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			_ = os.Setenv("AEROSCORE_CONFIG", writeConfigFile(t, `invalid: yaml: content: [`))

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("AEROSCORE_CONFIG", "/non/existent/file.yaml")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the file names an unknown driver", func() {
			_ = os.Setenv("AEROSCORE_CONFIG", writeConfigFile(t, "db_driver: oracle\n"))

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}
