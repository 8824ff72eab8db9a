package game

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextMultiplierWithinRange(t *testing.T) {
	gen := Generator{}
	for _, rtp := range []float64{1, 50, 90, 97, 100} {
		for i := 0; i < 200; i++ {
			out, err := gen.Next(rtp)
			require.NoError(t, err)

			assert.True(t, out.Multiplier.GreaterThanOrEqual(decimal.RequireFromString("1.00")),
				"rtp=%v produced %s below 1.00", rtp, out.Multiplier)
			assert.True(t, out.Multiplier.LessThanOrEqual(decimal.RequireFromString("10000.00")),
				"rtp=%v produced %s above 10000.00", rtp, out.Multiplier)
			// Truncated to 2 decimals
			assert.True(t, out.Multiplier.Equal(out.Multiplier.Truncate(2)),
				"rtp=%v produced %s with more than 2 decimals", rtp, out.Multiplier)
		}
	}
}

func TestProvablyFairRoundTrip(t *testing.T) {
	gen := Generator{}
	out, err := gen.Next(97)
	require.NoError(t, err)
	require.Len(t, out.Seed, 32)

	assert.True(t, Verify(out.Seed, out.Hash, 97, out.Multiplier))

	// A tampered seed must not verify against the published hash.
	tampered := bytes.Clone(out.Seed)
	tampered[0] ^= 0xff
	assert.False(t, Verify(tampered, out.Hash, 97, out.Multiplier))

	// A misreported multiplier must not verify either.
	assert.False(t, Verify(out.Seed, out.Hash, 97, out.Multiplier.Add(decimal.RequireFromString("0.01"))))
}

func TestMultiplierFromSeedIsDeterministic(t *testing.T) {
	seed := make([]byte, 32)
	for i := range seed {
		seed[i] = byte(i * 7)
	}
	first := MultiplierFromSeed(seed, 97)
	second := MultiplierFromSeed(seed, 97)
	assert.True(t, first.Equal(second))
}

func TestMultiplierFromSeedBoundaries(t *testing.T) {
	// All-zero leading bits: U = 0, raw = 0.97, clamps up to 1.00.
	zero := make([]byte, 32)
	assert.True(t, MultiplierFromSeed(zero, 97).Equal(decimal.RequireFromString("1.00")))

	// All-one leading bits: U just below 1, raw explodes, clamps to the cap.
	ones := make([]byte, 32)
	for i := range ones {
		ones[i] = 0xff
	}
	assert.True(t, MultiplierFromSeed(ones, 97).Equal(decimal.RequireFromString("10000.00")))
}

func TestMultiplierFromSeedDefaultsBadRTP(t *testing.T) {
	seed := make([]byte, 32)
	seed[0] = 0x80
	want := MultiplierFromSeed(seed, DefaultRTP)
	assert.True(t, MultiplierFromSeed(seed, 0).Equal(want))
	assert.True(t, MultiplierFromSeed(seed, 150).Equal(want))
}

func TestVerifyRejectsMalformedHash(t *testing.T) {
	seed := make([]byte, 32)
	m := MultiplierFromSeed(seed, 97)

	if Verify(seed, "not-hex", 97, m) {
		t.Fatal("expected malformed hash to fail verification")
	}
	short := sha256.Sum256(seed)
	if Verify(seed, hex.EncodeToString(short[:16]), 97, m) {
		t.Fatal("expected truncated hash to fail verification")
	}
}
