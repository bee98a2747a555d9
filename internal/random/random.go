package random

import (
	"crypto/rand"
	"encoding/binary"
	"math/big"
	mathrand "math/rand/v2"

	"github.com/myrjola/gumshoe/internal/errors"
)

var allowedLetters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")

// Letters returns n cryptographically random ASCII letters.
func Letters(n uint) (string, error) {
	letters := make([]rune, n)
	for i := range letters {
		letterIndex, err := rand.Int(rand.Reader, big.NewInt(int64(len(allowedLetters))))
		if err != nil {
			return "", errors.Wrap(err, "read random letter index")
		}
		letters[i] = allowedLetters[letterIndex.Int64()]
	}
	return string(letters), nil
}

// NewRand returns a pseudo-random generator seeded from the operating system's entropy source.
//
// Game decisions such as route and suspect selection take a *mathrand.Rand so that tests can seed them.
func NewRand() (*mathrand.Rand, error) {
	var seed [16]byte
	if _, err := rand.Read(seed[:]); err != nil {
		return nil, errors.Wrap(err, "read seed")
	}
	return mathrand.New(mathrand.NewPCG(binary.LittleEndian.Uint64(seed[:8]), binary.LittleEndian.Uint64(seed[8:]))), nil
}

// Seeded returns a deterministic generator.
func Seeded(seed uint64) *mathrand.Rand {
	return mathrand.New(mathrand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) //nolint:mnd // golden ratio increment.
}

// Pick returns a uniformly chosen element of items. It panics on an empty slice.
func Pick[T any](rng *mathrand.Rand, items []T) T {
	return items[rng.IntN(len(items))]
}

// Sample returns n distinct elements of items in random order without modifying items.
// If n exceeds len(items), all items are returned.
func Sample[T any](rng *mathrand.Rand, items []T, n int) []T {
	shuffled := make([]T, len(items))
	copy(shuffled, items)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	if n > len(shuffled) {
		n = len(shuffled)
	}
	return shuffled[:n]
}
