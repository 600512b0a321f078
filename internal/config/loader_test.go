package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/gamerec/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		dir := t.TempDir()
		// Point the .env lookup at a file that does not exist unless a case writes it.
		envFile := filepath.Join(dir, ".env")
		clearConfigEnvVars()
		_ = os.Setenv("GAMEREC_ENV_FILE", envFile)
		defer clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.APITimeoutMS, convey.ShouldEqual, 5000)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("GAMEREC_ADDR", ":9090")
			_ = os.Setenv("GAMEREC_API_BASE_URL", "http://backend.test/api")
			_ = os.Setenv("GAMEREC_BREAKER_FAILURES", "2")
			_ = os.Setenv("GAMEREC_STORE_PATH", "/tmp/gamerec")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.APIBaseURL, convey.ShouldEqual, "http://backend.test/api")
				convey.So(cfg.BreakerFailures, convey.ShouldEqual, 2)
				convey.So(cfg.StorePath, convey.ShouldEqual, "/tmp/gamerec")
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			path := writeFile(dir, "gamerec.yaml", `
addr: ":7070"
api_timeout_ms: 1500
log_level: debug
`)
			_ = os.Setenv("GAMEREC_CONFIG", path)
			_ = os.Setenv("GAMEREC_ADDR", ":6060")

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":6060")
				convey.So(cfg.APITimeoutMS, convey.ShouldEqual, 1500)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
			})
		})

		convey.Convey("When a .env file is present", func() {
			writeFile(dir, ".env", "GAMEREC_MOCK_ADDR=:5555\n")

			cfg, err := config.Load(ctx)

			convey.Convey("Then its values are applied", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.MockAddr, convey.ShouldEqual, ":5555")
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			path := writeFile(dir, "broken.yaml", `invalid: yaml: content: [`)
			_ = os.Setenv("GAMEREC_CONFIG", path)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("GAMEREC_CONFIG", "/non/existent/file.yaml")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the backend URL is not a URL", func() {
			_ = os.Setenv("GAMEREC_API_BASE_URL", "not a url")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "APIBaseURL")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the breaker threshold is zero", func() {
			_ = os.Setenv("GAMEREC_BREAKER_FAILURES", "0")

			_, err := config.Load(ctx)

			convey.Convey("Then validation rejects it", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}

func writeFile(dir, name, content string) string {
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		panic(err)
	}
	return path
}

func clearConfigEnvVars() {
	for _, v := range []string{
		"GAMEREC_CONFIG",
		"GAMEREC_ENV_FILE",
		"GAMEREC_ADDR",
		"GAMEREC_API_BASE_URL",
		"GAMEREC_API_TIMEOUT_MS",
		"GAMEREC_BREAKER_FAILURES",
		"GAMEREC_STORE_PATH",
		"GAMEREC_MOCK_ADDR",
		"GAMEREC_LOG_LEVEL",
	} {
		_ = os.Unsetenv(v)
	}
}
