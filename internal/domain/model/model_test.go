package model_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/okian/repute/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestTier(t *testing.T) {
	convey.Convey("Given the declared tiers", t, func() {
		convey.Convey("Then names should round-trip through ParseTier", func() {
			for _, tier := range []model.Tier{model.TierBronze, model.TierSilver, model.TierGold, model.TierPlatinum, model.TierDiamond} {
				parsed, err := model.ParseTier(tier.String())
				convey.So(err, convey.ShouldBeNil)
				convey.So(parsed, convey.ShouldEqual, tier)
			}
		})

		convey.Convey("Then parsing ignores case and whitespace", func() {
			parsed, err := model.ParseTier("  Platinum ")
			convey.So(err, convey.ShouldBeNil)
			convey.So(parsed, convey.ShouldEqual, model.TierPlatinum)
		})

		convey.Convey("Then unknown names are rejected", func() {
			_, err := model.ParseTier("mithril")
			convey.So(errors.Is(err, model.ErrUnknownTier), convey.ShouldBeTrue)
		})

		convey.Convey("Then out-of-range tiers refuse to marshal", func() {
			_, err := json.Marshal(model.Tier(9))
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(model.Tier(9).String(), convey.ShouldEqual, "tier(9)")
		})
	})
}

func TestEventKind(t *testing.T) {
	convey.Convey("Given the declared event kinds", t, func() {
		convey.Convey("Then both spellings parse", func() {
			k, err := model.ParseEventKind("TaskCompleted")
			convey.So(err, convey.ShouldBeNil)
			convey.So(k, convey.ShouldEqual, model.EventTaskCompleted)

			k, err = model.ParseEventKind("dispute_lost")
			convey.So(err, convey.ShouldBeNil)
			convey.So(k, convey.ShouldEqual, model.EventDisputeLost)
		})

		convey.Convey("Then only task events count toward the success rate", func() {
			convey.So(model.EventTaskCompleted.IsTask(), convey.ShouldBeTrue)
			convey.So(model.EventTaskFailed.IsTask(), convey.ShouldBeTrue)
			convey.So(model.EventMilestoneAchieved.IsTask(), convey.ShouldBeFalse)
			convey.So(model.EventDisputeWon.IsTask(), convey.ShouldBeFalse)
		})

		convey.Convey("Then every listed kind is valid and the zero kind is not", func() {
			convey.So(len(model.EventKinds()), convey.ShouldEqual, 5)
			for _, k := range model.EventKinds() {
				convey.So(k.Valid(), convey.ShouldBeTrue)
			}
			convey.So(model.EventKind(0).Valid(), convey.ShouldBeFalse)
		})

		convey.Convey("Then unknown kinds are rejected when decoding JSON", func() {
			var body struct {
				Kind model.EventKind `json:"kind"`
			}
			err := json.Unmarshal([]byte(`{"kind":"time_decay"}`), &body)
			convey.So(errors.Is(err, model.ErrUnknownEventKind), convey.ShouldBeTrue)
		})
	})
}

func TestProfile(t *testing.T) {
	convey.Convey("Given a new profile", t, func() {
		p := model.NewProfile("alice", 1_000)

		convey.Convey("Then it starts empty at Bronze with a perfect record", func() {
			convey.So(p.Score, convey.ShouldEqual, 0)
			convey.So(p.Tier, convey.ShouldEqual, model.TierBronze)
			convey.So(p.SuccessRate, convey.ShouldEqual, 100)
			convey.So(p.CreatedAt, convey.ShouldEqual, 1_000)
			convey.So(p.LastActivity, convey.ShouldEqual, 1_000)
			convey.So(p.Achievements, convey.ShouldBeEmpty)
		})

		convey.Convey("When cloning and mutating the clone", func() {
			p.Achievements = append(p.Achievements, 1)
			c := p.Clone()
			c.Achievements[0] = 42

			convey.Convey("Then the original is untouched", func() {
				convey.So(p.HasAchievement(1), convey.ShouldBeTrue)
				convey.So(p.HasAchievement(42), convey.ShouldBeFalse)
			})
		})

		convey.Convey("When encoding as JSON", func() {
			b, err := json.Marshal(p)
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then the tier is written by name", func() {
				convey.So(string(b), convey.ShouldContainSubstring, `"tier":"bronze"`)
			})
		})
	})
}

func TestNotification(t *testing.T) {
	convey.Convey("Given two notifications", t, func() {
		a := model.NewNotification(model.NotifyReputationUpdated, "alice", 10)
		b := model.NewNotification(model.NotifyReputationUpdated, "alice", 10)

		convey.Convey("Then each carries a distinct id", func() {
			convey.So(a.ID, convey.ShouldNotBeEmpty)
			convey.So(a.ID, convey.ShouldNotEqual, b.ID)
		})

		convey.Convey("Then tiers are omitted unless a transition is attached", func() {
			raw, err := json.Marshal(a)
			convey.So(err, convey.ShouldBeNil)
			convey.So(string(raw), convey.ShouldNotContainSubstring, "old_tier")

			withTiers := a.WithTiers(model.TierBronze, model.TierSilver)
			raw, err = json.Marshal(withTiers)
			convey.So(err, convey.ShouldBeNil)
			convey.So(string(raw), convey.ShouldContainSubstring, `"new_tier":"silver"`)
			convey.So(a.NewTier, convey.ShouldBeNil)
		})
	})
}
