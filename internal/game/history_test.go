package game

import (
	"strconv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/lucidplay/crashgate/internal/model"
)

func entry(id string, multiplier string) model.HistoryEntry {
	m := decimal.RequireFromString(multiplier)
	return model.HistoryEntry{
		RoundID:    id,
		Multiplier: m,
		Bucket:     model.BucketFor(m),
		FinishedAt: time.Now(),
	}
}

func TestHistoryEvictsOldest(t *testing.T) {
	h := NewHistory(3)
	for i := 0; i < 5; i++ {
		h.Append(entry("round-"+strconv.Itoa(i), "1.50"))
	}

	snap := h.Snapshot()
	assert.Len(t, snap, 3)
	// Newest first; round-0 and round-1 were evicted.
	assert.Equal(t, "round-4", snap[0].RoundID)
	assert.Equal(t, "round-3", snap[1].RoundID)
	assert.Equal(t, "round-2", snap[2].RoundID)
}

func TestHistoryMinimumCapacity(t *testing.T) {
	h := NewHistory(0)
	h.Append(entry("a", "1.10"))
	h.Append(entry("b", "1.10"))
	assert.Equal(t, 1, h.Len())
	assert.Equal(t, "b", h.Snapshot()[0].RoundID)
}

func TestBucketThresholds(t *testing.T) {
	cases := []struct {
		multiplier string
		want       model.HistoryBucket
	}{
		{"1.00", model.BucketLow},
		{"1.99", model.BucketLow},
		{"2.00", model.BucketMid},
		{"9.99", model.BucketMid},
		{"10.00", model.BucketHigh},
		{"10000.00", model.BucketHigh},
	}
	for _, tc := range cases {
		got := model.BucketFor(decimal.RequireFromString(tc.multiplier))
		if got != tc.want {
			t.Fatalf("BucketFor(%s) = %s, want %s", tc.multiplier, got, tc.want)
		}
	}
}
