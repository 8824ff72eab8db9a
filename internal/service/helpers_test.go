package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/lucidplay/crashgate/internal/game"
	"github.com/lucidplay/crashgate/internal/model"
)

// pinnedOutcomes fixes the crash point so tests control the round timeline.
type pinnedOutcomes struct {
	multiplier string
}

func (p pinnedOutcomes) Next(rtp float64) (game.Outcome, error) {
	seed := make([]byte, 32)
	seed[0] = 0x7a
	sum := sha256.Sum256(seed)
	return game.Outcome{
		Multiplier: decimal.RequireFromString(p.multiplier),
		Seed:       seed,
		Hash:       hex.EncodeToString(sum[:]),
	}, nil
}

type hubEvent struct {
	topic   string
	payload interface{}
}

// recorderHub captures broadcasts instead of pushing them over websockets.
type recorderHub struct {
	mu     sync.Mutex
	events []hubEvent
}

func (r *recorderHub) Broadcast(topic string, payload interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, hubEvent{topic: topic, payload: payload})
}

func (r *recorderHub) byTopic(topic string) []interface{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []interface{}
	for _, e := range r.events {
		if e.topic == topic {
			out = append(out, e.payload)
		}
	}
	return out
}

// stubRoundRepo records archive calls in memory.
type stubRoundRepo struct {
	mu       sync.Mutex
	created  []string
	finished map[string]decimal.Decimal
	seeds    map[string][]byte
}

func newStubRoundRepo() *stubRoundRepo {
	return &stubRoundRepo{
		finished: make(map[string]decimal.Decimal),
		seeds:    make(map[string][]byte),
	}
}

func (r *stubRoundRepo) CreateRound(ctx context.Context, roundID, publicHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created = append(r.created, roundID)
	return nil
}

func (r *stubRoundRepo) FinishRound(ctx context.Context, roundID string, crashMultiplier decimal.Decimal, seed []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finished[roundID] = crashMultiplier
	r.seeds[roundID] = seed
	return nil
}

// faultyLedger fails credits for chosen users, to exercise reopen paths.
type faultyLedger struct {
	*MemoryLedger
	failCreditFor map[string]bool
}

func (l *faultyLedger) Credit(ctx context.Context, userID string, amount decimal.Decimal) (model.WalletSnapshot, error) {
	if l.failCreditFor[userID] {
		return model.WalletSnapshot{}, errors.New("ledger unavailable")
	}
	return l.MemoryLedger.Credit(ctx, userID, amount)
}

type testEnv struct {
	eng    *Engine
	cmds   *CommandProcessor
	book   *TicketBook
	ledger *MemoryLedger
	hub    *recorderHub
	rounds *stubRoundRepo
}

// newTestEnv wires an engine with a pinned crash point. The scheduler is
// never started; tests advance time through HandleTick.
func newTestEnv(t *testing.T, crash string) *testEnv {
	t.Helper()
	book := NewTicketBook()
	ledger := NewMemoryLedger(decimal.NewFromInt(1000))
	hub := &recorderHub{}
	rounds := newStubRoundRepo()

	eng, err := NewEngine(EngineConfig{
		BettingWindowMs: 4000,
		SettleDelayMs:   3000,
		TickIntervalMs:  100,
		HistorySize:     10,
		RTP:             97,
		GrowthRate:      0.001,
		Outcomes:        pinnedOutcomes{multiplier: crash},
	}, book, ledger, hub, rounds, nil)
	require.NoError(t, err)

	cmds := NewCommandProcessor(eng, book, ledger, hub,
		decimal.RequireFromString("0.5"), decimal.RequireFromString("500"))

	return &testEnv{eng: eng, cmds: cmds, book: book, ledger: ledger, hub: hub, rounds: rounds}
}
