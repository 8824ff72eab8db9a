package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Phase is the lifecycle stage of a round. Transitions always follow
// AwaitingBets -> Ascending -> Crashed -> AwaitingBets (next round).
type Phase string

const (
	PhaseAwaitingBets Phase = "awaiting_bets"
	PhaseAscending    Phase = "ascending"
	PhaseCrashed      Phase = "crashed"
)

// Round is the single live play. Exactly one round is non-Crashed at a time.
// CrashMultiplier and Seed stay hidden until the round crashes; PublicHash is
// the commitment published at round creation.
type Round struct {
	ID              string
	Phase           Phase
	Multiplier      decimal.Decimal
	PhaseStartedAt  time.Time
	CrashMultiplier decimal.Decimal
	Seed            []byte
	PublicHash      string
}

// RoundState is the broadcast/API view of the live round. Seed and crash
// multiplier are only populated once the round has crashed.
type RoundState struct {
	RoundID         string          `json:"roundId"`
	Phase           Phase           `json:"phase"`
	Multiplier      decimal.Decimal `json:"multiplier"`
	PublicHash      string          `json:"publicHash"`
	ElapsedMs       int64           `json:"elapsedMs"`
	CrashMultiplier decimal.Decimal `json:"crashMultiplier,omitempty"`
	Seed            string          `json:"seed,omitempty"`
}

// HistoryBucket coarsely classifies a finished round for display.
type HistoryBucket string

const (
	BucketLow  HistoryBucket = "low"  // < 2.00
	BucketMid  HistoryBucket = "mid"  // < 10.00
	BucketHigh HistoryBucket = "high" // >= 10.00
)

var (
	bucketMidFloor  = decimal.NewFromInt(2)
	bucketHighFloor = decimal.NewFromInt(10)
)

// BucketFor maps a crash multiplier onto its display bucket.
func BucketFor(multiplier decimal.Decimal) HistoryBucket {
	switch {
	case multiplier.GreaterThanOrEqual(bucketHighFloor):
		return BucketHigh
	case multiplier.GreaterThanOrEqual(bucketMidFloor):
		return BucketMid
	default:
		return BucketLow
	}
}

// HistoryEntry is an archived round. Entries are append-only and never
// mutated after the round finishes.
type HistoryEntry struct {
	RoundID    string          `json:"roundId"`
	Multiplier decimal.Decimal `json:"multiplier"`
	Bucket     HistoryBucket   `json:"bucket"`
	FinishedAt time.Time       `json:"finishedAt"`
}
