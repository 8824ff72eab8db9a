// Command verifier recomputes a round's crash multiplier from a revealed
// seed and checks it against the hash that was published before the round,
// so any party can audit a finished round:
//
//	verifier -seed <hex seed> -hash <published hash> -multiplier 2.41 [-rtp 97]
package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"os"

	"github.com/shopspring/decimal"

	"github.com/lucidplay/crashgate/internal/game"
)

func main() {
	seedHex := flag.String("seed", "", "revealed round seed, hex encoded")
	hash := flag.String("hash", "", "hash published at round creation")
	multiplier := flag.String("multiplier", "", "crash multiplier reported for the round")
	rtp := flag.Float64("rtp", game.DefaultRTP, "return-to-player percentage the round was run with")
	flag.Parse()

	if *seedHex == "" || *hash == "" {
		fmt.Fprintln(os.Stderr, "usage: verifier -seed <hex> -hash <hex> [-multiplier <m>] [-rtp <pct>]")
		os.Exit(2)
	}

	seed, err := hex.DecodeString(*seedHex)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid seed: %v\n", err)
		os.Exit(2)
	}

	recomputed := game.MultiplierFromSeed(seed, *rtp)
	fmt.Printf("recomputed multiplier: %s\n", recomputed.String())

	reported := recomputed
	if *multiplier != "" {
		reported, err = decimal.NewFromString(*multiplier)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid multiplier: %v\n", err)
			os.Exit(2)
		}
	}

	if game.Verify(seed, *hash, *rtp, reported) {
		fmt.Println("verification: OK")
		return
	}
	fmt.Println("verification: FAILED")
	os.Exit(1)
}
