package game

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	// DefaultRTP is the house return-to-player percentage used when a
	// caller passes an out-of-range value.
	DefaultRTP = 97.0

	seedBytes = 32
	// mantissaBits is how many leading seed bits feed the uniform draw.
	mantissaBits = 52
)

var (
	minMultiplier = decimal.RequireFromString("1.00")
	maxMultiplier = decimal.RequireFromString("10000.00")
)

// Outcome is the committed result of one round: the crash multiplier, the
// secret seed it was derived from, and the hash published before ascent.
type Outcome struct {
	Multiplier decimal.Decimal
	Seed       []byte
	Hash       string
}

// Generator produces provably-fair crash points. The zero value is usable.
type Generator struct{}

// Next draws a fresh 256-bit seed, commits to it via SHA-256, and derives
// the round's crash multiplier from the seed's leading 52 bits.
func (Generator) Next(rtp float64) (Outcome, error) {
	seed := make([]byte, seedBytes)
	if _, err := rand.Read(seed); err != nil {
		return Outcome{}, fmt.Errorf("failed to draw seed: %w", err)
	}
	sum := sha256.Sum256(seed)
	return Outcome{
		Multiplier: MultiplierFromSeed(seed, rtp),
		Seed:       seed,
		Hash:       hex.EncodeToString(sum[:]),
	}, nil
}

// MultiplierFromSeed deterministically recomputes the crash multiplier for a
// seed, so any party holding the revealed seed can audit the round.
//
// The leading 52 bits of the seed form a uniform U in [0,1); the multiplier
// is (1-e)/(1-U) with house edge e, floor-truncated to 2 decimals and
// clamped to [1.00, 10000.00]. Truncation floors rather than rounds so the
// edge is never rounded away.
func MultiplierFromSeed(seed []byte, rtp float64) decimal.Decimal {
	if rtp <= 0 || rtp > 100 {
		rtp = DefaultRTP
	}
	if len(seed) < 8 {
		return minMultiplier
	}

	h := binary.BigEndian.Uint64(seed[:8]) >> (64 - mantissaBits)
	u := float64(h) / float64(uint64(1)<<mantissaBits)

	edge := (100 - rtp) / 100
	denom := 1 - u
	if denom <= 0 {
		// u < 1 strictly by construction; guard the float boundary anyway.
		return maxMultiplier
	}
	raw := (1 - edge) / denom

	m := decimal.NewFromFloat(raw).Truncate(2)
	if m.LessThan(minMultiplier) {
		return minMultiplier
	}
	if m.GreaterThan(maxMultiplier) {
		return maxMultiplier
	}
	return m
}

// Verify checks a revealed seed against the previously published hash and
// confirms the multiplier recomputes to the same value.
func Verify(seed []byte, publishedHash string, rtp float64, multiplier decimal.Decimal) bool {
	sum := sha256.Sum256(seed)
	want, err := hex.DecodeString(publishedHash)
	if err != nil || len(want) != sha256.Size {
		return false
	}
	if subtle.ConstantTimeCompare(sum[:], want) != 1 {
		return false
	}
	return MultiplierFromSeed(seed, rtp).Equal(multiplier)
}
