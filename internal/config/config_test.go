package config_test

import (
	"errors"
	"testing"

	"github.com/okian/repute/internal/config"
	"github.com/okian/repute/internal/domain/achievement"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.StorageDriver, convey.ShouldEqual, config.DriverMemory)
			convey.So(cfg.DecayPeriodSeconds, convey.ShouldEqual, 30*24*60*60)
			convey.So(cfg.MaxDecayPercent, convey.ShouldEqual, 50)
			convey.So(cfg.MaxLeaderboardLimit, convey.ShouldEqual, 100)
			convey.So(cfg.NotifyWorkers, convey.ShouldEqual, 2)
			convey.So(cfg.AutoInitialize, convey.ShouldBeFalse)
			convey.So(cfg.Achievements, convey.ShouldBeEmpty)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given a default config", t, func() {
		cfg := config.New()

		cases := []struct {
			name   string
			mutate func(*config.Config)
		}{
			{"unknown log level", func(c *config.Config) { c.LogLevel = "verbose" }},
			{"empty addr", func(c *config.Config) { c.Addr = "" }},
			{"unknown driver", func(c *config.Config) { c.StorageDriver = "postgres" }},
			{"sqlite without path", func(c *config.Config) { c.StorageDriver = config.DriverSQLite; c.SQLitePath = "" }},
			{"zero decay period", func(c *config.Config) { c.DecayPeriodSeconds = 0 }},
			{"decay cap above 100", func(c *config.Config) { c.MaxDecayPercent = 101 }},
			{"zero leaderboard limit", func(c *config.Config) { c.MaxLeaderboardLimit = 0 }},
			{"negative workers", func(c *config.Config) { c.NotifyWorkers = -1 }},
			{"nameless achievement", func(c *config.Config) {
				c.Achievements = []achievement.Definition{{Points: 10}}
			}},
		}

		convey.Convey("Then every out-of-range value is rejected with ErrInvalidConfig", func() {
			for _, tc := range cases {
				c := *cfg
				tc.mutate(&c)
				err := c.Validate()
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			}
		})
	})
}
