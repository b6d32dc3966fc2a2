package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/repute/internal/adapters/repository"
	"github.com/okian/repute/internal/config"
	"github.com/okian/repute/internal/domain/model"
	"github.com/okian/repute/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func TestRootCommand(t *testing.T) {
	convey.Convey("Given the root command", t, func() {
		root := newRootCmd()

		convey.Convey("Then it exposes serve, catalog and loadgen", func() {
			names := []string{}
			for _, c := range root.Commands() {
				names = append(names, c.Name())
			}
			convey.So(names, convey.ShouldContain, "serve")
			convey.So(names, convey.ShouldContain, "catalog")
			convey.So(names, convey.ShouldContain, "loadgen")
			convey.So(root.PersistentFlags().Lookup("config"), convey.ShouldNotBeNil)
		})
	})
}

func TestCatalogCommand(t *testing.T) {
	convey.Convey("Given a sqlite config file with an extra achievement", t, func() {
		dir := t.TempDir()
		cfgPath := filepath.Join(dir, "repute.yaml")
		yaml := "storage_driver: sqlite\nsqlite_path: " + filepath.Join(dir, "repute.db") + "\n" +
			"achievements:\n" +
			"  - name: First Task\n    points: 10\n    min_tasks: 1\n" +
			"  - name: Peacemaker\n    points: 25\n"
		convey.So(os.WriteFile(cfgPath, []byte(yaml), 0o600), convey.ShouldBeNil)

		run := func() []model.Achievement {
			root := newRootCmd()
			var out bytes.Buffer
			root.SetOut(&out)
			root.SetArgs([]string{"catalog", "--config", cfgPath})
			convey.So(root.Execute(), convey.ShouldBeNil)
			var cat []model.Achievement
			convey.So(json.Unmarshal(out.Bytes(), &cat), convey.ShouldBeNil)
			return cat
		}

		convey.Convey("When the catalog command runs twice", func() {
			first := run()
			second := run()

			convey.Convey("Then ids are issued once and persisted", func() {
				convey.So(first, convey.ShouldHaveLength, 2)
				convey.So(first[1].Name, convey.ShouldEqual, "Peacemaker")
				convey.So(first[1].ID, convey.ShouldEqual, 2)
				convey.So(second, convey.ShouldResemble, first)
			})
		})
	})
}

func TestOpenStore(t *testing.T) {
	convey.Convey("Given storage configurations", t, func() {
		ctx := context.Background()

		convey.Convey("When the memory driver is selected", func() {
			cfg := config.New()
			store, err := openStore(ctx, cfg)

			convey.Convey("Then an in-memory store is returned", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(store.Set(ctx, repository.Key{Kind: repository.KindProfile, ID: "a"}, []byte("{}")), convey.ShouldBeNil)
				convey.So(store.Close(), convey.ShouldBeNil)
			})
		})

		convey.Convey("When the sqlite driver is selected", func() {
			cfg := config.New()
			cfg.StorageDriver = config.DriverSQLite
			cfg.SQLitePath = filepath.Join(t.TempDir(), "nested", "repute.db")
			store, err := openStore(ctx, cfg)

			convey.Convey("Then the database file is created", func() {
				convey.So(err, convey.ShouldBeNil)
				defer store.Close()
				_, statErr := os.Stat(cfg.SQLitePath)
				convey.So(statErr, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the driver is unknown", func() {
			cfg := config.New()
			cfg.StorageDriver = "etcd"
			_, err := openStore(ctx, cfg)

			convey.Convey("Then it is rejected", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestRouterWiring(t *testing.T) {
	convey.Convey("Given a service built from defaults", t, func() {
		ctx := context.Background()
		cfg := config.New()
		cfg.AutoInitialize = true
		store, err := openStore(ctx, cfg)
		convey.So(err, convey.ShouldBeNil)

		svc := buildService(cfg, store, logger.Nop())
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()
		r := newRouter(ctx, svc, logger.Nop())

		convey.Convey("When the API, docs and metrics are requested", func() {
			get := func(path string) int {
				w := httptest.NewRecorder()
				r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, http.NoBody))
				return w.Code
			}

			convey.Convey("Then every surface answers", func() {
				convey.So(get("/healthz"), convey.ShouldEqual, http.StatusOK)
				convey.So(get("/openapi.yaml"), convey.ShouldEqual, http.StatusOK)
				convey.So(get("/metrics"), convey.ShouldEqual, http.StatusOK)
				// auto-initialised on first read
				convey.So(get("/profiles/newcomer/tier"), convey.ShouldEqual, http.StatusOK)
			})
		})
	})
}

func TestLoadgenCommand(t *testing.T) {
	convey.Convey("Given a running server", t, func() {
		ctx := context.Background()
		cfg := config.New()
		store, err := openStore(ctx, cfg)
		convey.So(err, convey.ShouldBeNil)
		svc := buildService(cfg, store, logger.Nop())
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()
		srv := httptest.NewServer(newRouter(ctx, svc, logger.Nop()))
		defer srv.Close()

		convey.Convey("When loadgen runs a small verified stream", func() {
			root := newRootCmd()
			var out bytes.Buffer
			root.SetOut(&out)
			root.SetArgs([]string{"loadgen", "--url", srv.URL, "--contributors", "6", "--events", "8", "--workers", "3", "--top", "5"})
			err := root.Execute()

			convey.Convey("Then it succeeds and reports its counters", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out.String(), convey.ShouldContainSubstring, "generated=48")
				convey.So(out.String(), convey.ShouldContainSubstring, "verified=5")
			})
		})
	})
}

func TestSystemMetricsUpdater(t *testing.T) {
	convey.Convey("Given a short-lived context", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		convey.Convey("Then the updater returns when it is done", func() {
			convey.So(func() { startSystemMetricsUpdater(ctx) }, convey.ShouldNotPanic)
		})
	})
}
