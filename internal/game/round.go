package game

import (
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lucidplay/crashgate/internal/model"
	"github.com/lucidplay/crashgate/internal/pkg/apperrors"
)

// TransitionKind identifies the edge a tick crossed, if any.
type TransitionKind int

const (
	TransitionAscentStarted TransitionKind = iota + 1
	TransitionCrashed
	TransitionRoundOpened
)

// Transition reports a single phase edge together with the round it
// happened on. Crashed transitions carry the revealed seed.
type Transition struct {
	Kind  TransitionKind
	State model.RoundState
}

// Params fixes the machine's timing and fairness knobs at construction.
type Params struct {
	BettingWindowMs int64
	SettleDelayMs   int64
	RTP             float64
	GrowthRate      float64
}

// OutcomeSource abstracts the crash-point generator so tests can pin the
// crash multiplier.
type OutcomeSource interface {
	Next(rtp float64) (Outcome, error)
}

// Machine owns one round's phase, multiplier, and timing. It is not
// goroutine safe: the engine serializes all mutation (single writer).
//
// The crash outcome is drawn at round creation so the hash commitment is
// publishable while bets are still open; the multiplier itself stays
// hidden until the round crashes.
type Machine struct {
	params Params
	gen    OutcomeSource

	round          model.Round
	elapsedPhaseMs float64
}

func NewMachine(params Params, gen OutcomeSource) (*Machine, error) {
	if gen == nil {
		gen = Generator{}
	}
	if params.GrowthRate <= 0 {
		params.GrowthRate = DefaultGrowthRate
	}
	m := &Machine{params: params, gen: gen}
	if err := m.openRound(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Machine) openRound() error {
	outcome, err := m.gen.Next(m.params.RTP)
	if err != nil {
		return err
	}
	m.round = model.Round{
		ID:              uuid.NewString(),
		Phase:           model.PhaseAwaitingBets,
		Multiplier:      minMultiplier,
		PhaseStartedAt:  time.Now(),
		CrashMultiplier: outcome.Multiplier,
		Seed:            outcome.Seed,
		PublicHash:      outcome.Hash,
	}
	m.elapsedPhaseMs = 0
	return nil
}

// Tick advances the round by deltaMs of game time. At most one phase
// transition happens per call: transitions are edge-triggered on crossing
// a threshold, never batched.
func (m *Machine) Tick(deltaMs float64) ([]Transition, error) {
	if deltaMs < 0 {
		deltaMs = 0
	}
	m.elapsedPhaseMs += deltaMs

	switch m.round.Phase {
	case model.PhaseAwaitingBets:
		if m.elapsedPhaseMs >= float64(m.params.BettingWindowMs) {
			m.round.Phase = model.PhaseAscending
			m.round.Multiplier = minMultiplier
			m.round.PhaseStartedAt = time.Now()
			m.elapsedPhaseMs = 0
			return []Transition{{Kind: TransitionAscentStarted, State: m.Snapshot()}}, nil
		}

	case model.PhaseAscending:
		next := MultiplierAt(m.elapsedPhaseMs, m.params.GrowthRate)
		if next.GreaterThanOrEqual(m.round.CrashMultiplier) {
			return []Transition{m.crash(m.round.CrashMultiplier)}, nil
		}
		m.round.Multiplier = next

	case model.PhaseCrashed:
		if m.elapsedPhaseMs >= float64(m.params.SettleDelayMs) {
			if err := m.openRound(); err != nil {
				return nil, err
			}
			return []Transition{{Kind: TransitionRoundOpened, State: m.Snapshot()}}, nil
		}
	}
	return nil, nil
}

func (m *Machine) crash(at decimal.Decimal) Transition {
	m.round.Multiplier = at
	m.round.CrashMultiplier = at
	m.round.Phase = model.PhaseCrashed
	m.round.PhaseStartedAt = time.Now()
	m.elapsedPhaseMs = 0
	return Transition{Kind: TransitionCrashed, State: m.Snapshot()}
}

// ForceCrash immediately crashes the round, bypassing normal timing. Valid
// only while Ascending; the caller may pin the settle multiplier, otherwise
// the round's committed crash point is used. Outside Ascending it reports an
// operational rejection, never a fatal error.
func (m *Machine) ForceCrash(at *decimal.Decimal) (Transition, error) {
	if m.round.Phase != model.PhaseAscending {
		return Transition{}, apperrors.NewOperationalReject(
			"forceCrash is only valid while the round is ascending")
	}
	target := m.round.CrashMultiplier
	if at != nil && at.GreaterThanOrEqual(minMultiplier) {
		target = at.Truncate(2)
	}
	return m.crash(target), nil
}

// Snapshot returns the externally visible round state. The seed and crash
// multiplier are revealed only once the round has crashed.
func (m *Machine) Snapshot() model.RoundState {
	s := model.RoundState{
		RoundID:    m.round.ID,
		Phase:      m.round.Phase,
		Multiplier: m.round.Multiplier,
		PublicHash: m.round.PublicHash,
		ElapsedMs:  int64(m.elapsedPhaseMs),
	}
	if m.round.Phase == model.PhaseCrashed {
		s.CrashMultiplier = m.round.CrashMultiplier
		s.Seed = hex.EncodeToString(m.round.Seed)
	}
	return s
}

// RoundID returns the live round's identifier.
func (m *Machine) RoundID() string {
	return m.round.ID
}

// Phase returns the live round's phase.
func (m *Machine) Phase() model.Phase {
	return m.round.Phase
}
