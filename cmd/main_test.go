package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"
	"golang.org/x/crypto/bcrypt"

	"github.com/okian/gamerec/internal/adapters/kvstore"
	"github.com/okian/gamerec/internal/config"
	"github.com/okian/gamerec/internal/mockapi"
	"github.com/okian/gamerec/pkg/logger"
)

func init() {
	if err := logger.InitWithWriter(io.Discard); err != nil {
		panic(err)
	}
}

func testConfig(t *testing.T, baseURL string) *config.Config {
	cfg := config.New(context.Background())
	cfg.APIBaseURL = baseURL
	cfg.StorePath = filepath.Join(t.TempDir(), "store")
	return cfg
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	convey.Convey("Given a store path", t, func() {
		convey.Convey("When it is empty", func() {
			store := openStore(ctx, "")
			defer store.Close()

			convey.Convey("Then the store lives in memory", func() {
				_, ok := store.(*kvstore.MemoryStore)
				convey.So(ok, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When it is a writable directory", func() {
			store := openStore(ctx, filepath.Join(t.TempDir(), "db"))
			defer store.Close()

			convey.Convey("Then the store is persistent", func() {
				_, ok := store.(*kvstore.BadgerStore)
				convey.So(ok, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the path is a regular file", func() {
			path := filepath.Join(t.TempDir(), "file")
			convey.So(os.WriteFile(path, []byte("x"), 0o600), convey.ShouldBeNil)
			store := openStore(ctx, path)
			defer store.Close()

			convey.Convey("Then it falls back to memory", func() {
				_, ok := store.(*kvstore.MemoryStore)
				convey.So(ok, convey.ShouldBeTrue)
			})
		})
	})
}

func TestBuild(t *testing.T) {
	ctx := context.Background()

	convey.Convey("Given a running mock API", t, func() {
		mock := httptest.NewServer(mockapi.New("test-secret", mockapi.WithBcryptCost(bcrypt.MinCost)).Handler())
		defer mock.Close()

		convey.Convey("When the instance is built", func() {
			in, err := build(ctx, testConfig(t, mock.URL+"/api"))
			convey.So(err, convey.ShouldBeNil)
			defer in.close(ctx)

			convey.Convey("Then the API is served and anonymous", func() {
				w := httptest.NewRecorder()
				in.handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)

				convey.So(in.session.Authenticated(), convey.ShouldBeFalse)
				convey.So(in.svc.GetStats()["started"], convey.ShouldEqual, true)
			})

			convey.Convey("Then the service metrics update without panicking", func() {
				convey.So(func() { updateServiceMetrics(in.svc) }, convey.ShouldNotPanic)

				ctx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
				defer cancel()
				convey.So(func() { startServiceMetricsUpdater(ctx, in.svc) }, convey.ShouldNotPanic)
			})
		})

		convey.Convey("When the backend URL is not absolute", func() {
			in, err := build(ctx, testConfig(t, "/api"))

			convey.Convey("Then build fails", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(in, convey.ShouldBeNil)
			})
		})
	})
}

func TestConfigFromEnv(t *testing.T) {
	convey.Convey("Given environment overrides", t, func() {
		t.Setenv("GAMEREC_ADDR", ":18080")
		t.Setenv("GAMEREC_API_BASE_URL", "http://backend.test/api")

		convey.Convey("Then Load picks them up", func() {
			cfg, err := config.Load(context.Background())
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Addr, convey.ShouldEqual, ":18080")
			convey.So(cfg.APIBaseURL, convey.ShouldEqual, "http://backend.test/api")
		})
	})

	convey.Convey("Given an empty listen address", t, func() {
		t.Setenv("GAMEREC_ADDR", "")

		convey.Convey("Then Load fails", func() {
			cfg, err := config.Load(context.Background())
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(cfg, convey.ShouldBeNil)
		})
	})
}
