// Package scoring turns reputation events into score, tier and counter
// changes. Every function here is pure: it receives a profile by value
// and returns the updated copy, leaving persistence to the caller.
package scoring

import (
	"fmt"
	"math"

	"github.com/okian/repute/internal/domain/model"
)

// Default scoring configuration constants.
const (
	// DefaultDecayPeriod is one "month" of inactivity in seconds (30 days).
	DefaultDecayPeriod int64 = 30 * 24 * 60 * 60
	// DefaultMaxDecayPercent caps the total decay of a single pass.
	DefaultMaxDecayPercent uint32 = 50

	taskPointsPerUnit      = 10
	milestonePointsPerUnit = 20
	disputeWonPoints       = 5
	disputeLostPenalty     = 20
	taskFailedPenalty      = 10

	minEventValue = 1
	maxEventValue = 5

	perfectSuccessRate = 100
)

// Tier score thresholds.
const (
	SilverThreshold   uint32 = 100
	GoldThreshold     uint32 = 500
	PlatinumThreshold uint32 = 1500
	DiamondThreshold  uint32 = 5000
)

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithDecayPeriod overrides the length of one decay period in seconds.
func WithDecayPeriod(seconds int64) Option {
	return func(e *Engine) {
		if seconds > 0 {
			e.decayPeriod = seconds
		}
	}
}

// WithMaxDecayPercent overrides the per-pass decay cap.
func WithMaxDecayPercent(pct uint32) Option {
	return func(e *Engine) {
		if pct > 0 && pct <= 100 {
			e.maxDecayPercent = pct
		}
	}
}

// Engine applies events and decay to profiles.
type Engine struct {
	decayPeriod     int64
	maxDecayPercent uint32
}

// NewEngine creates a scoring engine with configuration options.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		decayPeriod:     DefaultDecayPeriod,
		maxDecayPercent: DefaultMaxDecayPercent,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// DecayPeriod returns the configured period in seconds.
func (e *Engine) DecayPeriod() int64 { return e.decayPeriod }

// Transition captures a tier before and after a mutation.
type Transition struct {
	Old model.Tier
	New model.Tier
}

// Changed reports whether the tier moved.
func (t Transition) Changed() bool { return t.Old != t.New }

// Upgrade reports whether the tier moved up.
func (t Transition) Upgrade() bool { return t.New > t.Old }

// Result is the outcome of applying one event.
type Result struct {
	Profile  model.Profile
	OldScore uint32
	NewScore uint32
	Decayed  uint32 // points removed by the decay pass
	Tier     Transition
}

// Decay removes 1% of the score per whole elapsed period since the last
// activity, capped at maxDecayPercent, and moves LastActivity to now.
// It returns the updated profile and the number of points removed.
func (e *Engine) Decay(p model.Profile, now int64) (model.Profile, uint32) {
	var removed uint32
	if now > p.LastActivity {
		periods := (now - p.LastActivity) / e.decayPeriod
		if periods > int64(e.maxDecayPercent) {
			periods = int64(e.maxDecayPercent)
		}
		if periods > 0 {
			removed = uint32(uint64(p.Score) * uint64(periods) / 100)
			p.Score = SubPoints(p.Score, removed)
		}
		p.LastActivity = now
	}
	p.Tier = DeriveTier(p.Score)
	return p, removed
}

// Apply runs the decay pass and then folds the event into the profile.
func (e *Engine) Apply(p model.Profile, kind model.EventKind, value uint32, now int64) (Result, error) {
	if !kind.Valid() {
		return Result{}, fmt.Errorf("%w: %s", ErrInvalidEvent, kind)
	}
	res := Result{OldScore: p.Score, Tier: Transition{Old: p.Tier}}

	p, res.Decayed = e.Decay(p, now)

	switch kind {
	case model.EventTaskCompleted:
		p.TasksCompleted = incr(p.TasksCompleted)
		p.Score = AddPoints(p.Score, taskPointsPerUnit*clampValue(value))
	case model.EventTaskFailed:
		p.TasksFailed = incr(p.TasksFailed)
		p.Score = SubPoints(p.Score, taskFailedPenalty)
	case model.EventMilestoneAchieved:
		p.MilestonesCompleted = incr(p.MilestonesCompleted)
		p.Score = AddPoints(p.Score, milestonePointsPerUnit*clampValue(value))
	case model.EventDisputeWon:
		p.DisputesWon = incr(p.DisputesWon)
		p.Score = AddPoints(p.Score, disputeWonPoints)
	case model.EventDisputeLost:
		p.DisputesLost = incr(p.DisputesLost)
		p.Score = SubPoints(p.Score, disputeLostPenalty)
	}
	if kind.IsTask() {
		p.SuccessRate = SuccessRate(p.TasksCompleted, p.TasksFailed)
	}
	p.Tier = DeriveTier(p.Score)

	res.Profile = p
	res.NewScore = p.Score
	res.Tier.New = p.Tier
	return res, nil
}

// DeriveTier maps a score onto its tier.
func DeriveTier(score uint32) model.Tier {
	switch {
	case score >= DiamondThreshold:
		return model.TierDiamond
	case score >= PlatinumThreshold:
		return model.TierPlatinum
	case score >= GoldThreshold:
		return model.TierGold
	case score >= SilverThreshold:
		return model.TierSilver
	default:
		return model.TierBronze
	}
}

// Multiplier returns the incentive multiplier of a tier in basis points
// where 100 means 1.0x.
func Multiplier(t model.Tier) uint32 {
	switch t {
	case model.TierSilver:
		return 110
	case model.TierGold:
		return 125
	case model.TierPlatinum:
		return 150
	case model.TierDiamond:
		return 200
	default:
		return 100
	}
}

// GovernanceWeight scales an externally supplied base voting weight by a
// tier multiplier: base * multiplier / 100. Results beyond int64 saturate.
func GovernanceWeight(base int64, multiplier uint32) int64 {
	m := int64(multiplier)
	if base == 0 || m == 0 {
		return 0
	}
	// base = q*100 + r with q and r sharing base's sign, so
	// base*m/100 = q*m + r*m/100 and r*m cannot overflow.
	q, r := base/100, base%100
	if q > math.MaxInt64/m {
		return math.MaxInt64
	}
	if q < math.MinInt64/m {
		return math.MinInt64
	}
	hi, lo := q*m, r*m/100
	switch {
	case lo > 0 && hi > math.MaxInt64-lo:
		return math.MaxInt64
	case lo < 0 && hi < math.MinInt64-lo:
		return math.MinInt64
	}
	return hi + lo
}

// SuccessRate returns completed*100/(completed+failed), truncated, or 100
// when no task has been recorded.
func SuccessRate(completed, failed uint32) uint32 {
	total := uint64(completed) + uint64(failed)
	if total == 0 {
		return perfectSuccessRate
	}
	return uint32(uint64(completed) * 100 / total)
}

// AddPoints adds with saturation at math.MaxUint32.
func AddPoints(score, points uint32) uint32 {
	if points > math.MaxUint32-score {
		return math.MaxUint32
	}
	return score + points
}

// SubPoints subtracts with a floor at zero.
func SubPoints(score, points uint32) uint32 {
	if points >= score {
		return 0
	}
	return score - points
}

func clampValue(v uint32) uint32 {
	if v < minEventValue || v > maxEventValue {
		return minEventValue
	}
	return v
}

func incr(n uint32) uint32 {
	return AddPoints(n, 1)
}
