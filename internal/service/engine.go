package service

import (
	"context"
	"encoding/hex"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lucidplay/crashgate/internal/game"
	"github.com/lucidplay/crashgate/internal/model"
	"github.com/lucidplay/crashgate/internal/pkg/logger"
	"github.com/lucidplay/crashgate/internal/pkg/metrics"
)

// Broadcast topics pushed through the realtime hub.
const (
	TopicState   = "game.state"
	TopicHistory = "game.history"
	TopicBet     = "game.bet"
	TopicCashout = "game.cashout"
)

// Broadcaster fans an event out to every live viewer. The hub implements
// it; tests substitute a recorder.
type Broadcaster interface {
	Broadcast(topic string, payload interface{})
}

// RoundRepo is the durable round archive. Best-effort: failures are
// logged, never fatal to the live loop.
type RoundRepo interface {
	CreateRound(ctx context.Context, roundID, publicHash string) error
	FinishRound(ctx context.Context, roundID string, crashMultiplier decimal.Decimal, seed []byte) error
}

// HistorySink receives finished rounds for external display caches.
type HistorySink interface {
	PushHistory(ctx context.Context, entry model.HistoryEntry) error
}

// EngineConfig fixes the loop at startup.
type EngineConfig struct {
	BettingWindowMs int64
	SettleDelayMs   int64
	TickIntervalMs  int64
	HistorySize     int
	RTP             float64
	GrowthRate      float64

	// Outcomes overrides the crash-point generator; nil means the
	// production provably-fair generator.
	Outcomes game.OutcomeSource
}

// Engine owns the single round timeline. The state machine is a
// single-writer resource: ticks, force-crashes, and round snapshots all
// serialize on the engine mutex, while bet/cashout settlement goes through
// the ticket book's own compare-and-set.
type Engine struct {
	mu      sync.Mutex
	machine *game.Machine

	sched     *game.Scheduler
	book      *TicketBook
	ledger    Ledger
	rounds    RoundRepo
	hub       Broadcaster
	history   *game.History
	histSink  HistorySink
	evaluator *AutoCashout

	prevRoundID string
}

func NewEngine(cfg EngineConfig, book *TicketBook, ledger Ledger, hub Broadcaster, rounds RoundRepo, histSink HistorySink) (*Engine, error) {
	machine, err := game.NewMachine(game.Params{
		BettingWindowMs: cfg.BettingWindowMs,
		SettleDelayMs:   cfg.SettleDelayMs,
		RTP:             cfg.RTP,
		GrowthRate:      cfg.GrowthRate,
	}, cfg.Outcomes)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		machine:  machine,
		book:     book,
		ledger:   ledger,
		rounds:   rounds,
		hub:      hub,
		history:  game.NewHistory(cfg.HistorySize),
		histSink: histSink,
	}
	e.evaluator = NewAutoCashout(book, ledger, hub)
	e.sched = game.NewScheduler(time.Duration(cfg.TickIntervalMs)*time.Millisecond, e.HandleTick)

	e.persistCreate(machine.Snapshot())
	return e, nil
}

// Start begins the tick timer.
func (e *Engine) Start() {
	e.sched.Start()
}

// Stop halts the tick timer.
func (e *Engine) Stop() {
	e.sched.Stop()
}

// Pause halts the timer without resetting round state.
func (e *Engine) Pause() {
	e.sched.Pause()
}

// Resume restarts the timer; the paused duration is not replayed.
func (e *Engine) Resume() {
	e.sched.Resume()
}

// HandleTick advances the round by deltaMs. Exported so the scheduler and
// tests drive the same path. The engine mutex is held across the machine
// tick and every settlement side effect, so a concurrent ForceCrash can
// never interleave with a transition in flight.
func (e *Engine) HandleTick(deltaMs float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	transitions, err := e.machine.Tick(deltaMs)
	if err != nil {
		logger.Error("tick failed", "error", err)
		return
	}
	snap := e.machine.Snapshot()

	for _, tr := range transitions {
		e.applyTransition(tr)
	}

	if snap.Phase == model.PhaseAscending {
		e.evaluator.Run(context.Background(), snap.RoundID, snap.Multiplier)
	}

	if e.hub != nil {
		e.hub.Broadcast(TopicState, snap)
	}
}

// ForceCrash immediately crashes the live round with the same broadcast
// and settlement side effects as a natural crash, serialized against the
// tick path by the engine mutex. Outside ascent it returns an operational
// rejection.
func (e *Engine) ForceCrash(at *decimal.Decimal) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	tr, err := e.machine.ForceCrash(at)
	if err != nil {
		return err
	}
	e.applyTransition(tr)
	if e.hub != nil {
		e.hub.Broadcast(TopicState, tr.State)
	}
	return nil
}

func (e *Engine) applyTransition(tr game.Transition) {
	switch tr.Kind {
	case game.TransitionAscentStarted:
		logger.Info("ascent started", "round_id", tr.State.RoundID)

	case game.TransitionCrashed:
		e.settleCrash(tr.State)

	case game.TransitionRoundOpened:
		if e.prevRoundID != "" {
			e.book.DropRound(e.prevRoundID)
		}
		e.prevRoundID = ""
		logger.Info("round opened",
			"round_id", tr.State.RoundID, "public_hash", tr.State.PublicHash)
		e.persistCreate(tr.State)
	}
}

func (e *Engine) settleCrash(state model.RoundState) {
	ctx := context.Background()

	// Tickets whose autopayout target sits at or below the crash point
	// were reached by this tick, even when one late delta crossed the
	// target and the crash point together. They settle before the rest
	// of the round is marked lost.
	e.evaluator.Run(ctx, state.RoundID, state.CrashMultiplier)

	lost := e.book.MarkLost(state.RoundID)
	e.prevRoundID = state.RoundID

	entry := model.HistoryEntry{
		RoundID:    state.RoundID,
		Multiplier: state.CrashMultiplier,
		Bucket:     model.BucketFor(state.CrashMultiplier),
		FinishedAt: time.Now(),
	}
	e.history.Append(entry)

	crash, _ := state.CrashMultiplier.Float64()
	metrics.RoundsTotal.Inc()
	metrics.CrashMultiplier.Observe(crash)
	logger.Info("round crashed",
		"round_id", state.RoundID,
		"multiplier", state.CrashMultiplier.String(),
		"lost_tickets", len(lost))

	if e.rounds != nil {
		seed, err := decodeSeed(state.Seed)
		if err == nil {
			err = e.rounds.FinishRound(ctx, state.RoundID, state.CrashMultiplier, seed)
		}
		if err != nil {
			logger.LogError(ctx, err, "failed to archive round", "round_id", state.RoundID)
		}
	}
	if e.histSink != nil {
		if err := e.histSink.PushHistory(ctx, entry); err != nil {
			logger.LogError(ctx, err, "failed to push history entry", "round_id", state.RoundID)
		}
	}
	if e.hub != nil {
		e.hub.Broadcast(TopicHistory, e.history.Snapshot())
	}
}

func (e *Engine) persistCreate(state model.RoundState) {
	if e.rounds == nil {
		return
	}
	ctx := context.Background()
	if err := e.rounds.CreateRound(ctx, state.RoundID, state.PublicHash); err != nil {
		logger.LogError(ctx, err, "failed to persist round", "round_id", state.RoundID)
	}
}

func decodeSeed(hexSeed string) ([]byte, error) {
	return hex.DecodeString(hexSeed)
}

// CurrentRound returns a consistent snapshot of the live round.
func (e *Engine) CurrentRound() model.RoundState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.machine.Snapshot()
}

// History returns the retained finished rounds, newest first.
func (e *Engine) History() []model.HistoryEntry {
	return e.history.Snapshot()
}
