// Package suspects generates the suspect pool of a case.
package suspects

import (
	"context"
	"log/slog"
	"math/rand/v2"

	"github.com/google/uuid"
	"github.com/myrjola/gumshoe/internal/errors"
	"github.com/myrjola/gumshoe/internal/models"
	"github.com/myrjola/gumshoe/internal/random"
)

// values lists the possible values of every attribute kind.
var values = map[models.AttributeKind][]string{
	models.AttributeSex:     {"female", "male"},
	models.AttributeHair:    {"black", "blond", "red", "brown", "grey"},
	models.AttributeHobby:   {"tennis", "mountain climbing", "chess", "opera", "croquet", "gardening"},
	models.AttributeFeature: {"tattoo", "scar", "limp", "signet ring", "monocle", "eye patch"},
	models.AttributeVehicle: {"convertible", "limousine", "motorcycle", "sedan", "seaplane"},
}

var names = []string{
	"Ivy Marlowe", "Otto Brandt", "Lena Voss", "Felix Ardent", "Mara Quill", "Basil Thorne", "Nadia Kell",
	"Rufus Hale", "Celeste Dumont", "Viktor Sable", "Greta Lind", "Hugo Fenn", "Yara Stone", "Silas Crane",
}

const maxAttempts = 100

var ErrPoolTooLarge = errors.New("suspect pool larger than distinct identities").Wrap(models.ErrValidation)

// Store persists suspects.
type Store interface {
	InsertSuspect(ctx context.Context, suspect models.Suspect) error
}

// Generate creates a pool of size suspects for the case. Exactly one is the culprit. Every decoy shares all but one
// or two attributes with the culprit, and no two suspects share every attribute.
func Generate(rng *rand.Rand, caseID string, size int) ([]models.Suspect, error) {
	if size < 1 || size > len(names) {
		return nil, errors.Wrap(ErrPoolTooLarge, "generate suspects", slog.Int("size", size))
	}
	culprit := models.Attributes{}
	for _, kind := range models.AttributeKinds {
		culprit = culprit.With(kind, random.Pick(rng, values[kind]))
	}

	pool := []models.Attributes{culprit}
	seen := map[models.Attributes]bool{culprit: true}
	for attempts := 0; len(pool) < size; attempts++ {
		if attempts >= maxAttempts {
			return nil, errors.Wrap(ErrPoolTooLarge, "could not find distinct decoys", slog.Int("size", size))
		}
		decoy := culprit
		changes := 1 + rng.IntN(2) //nolint:mnd // one or two differing attributes.
		for _, kind := range random.Sample(rng, models.AttributeKinds, changes) {
			decoy = decoy.With(kind, otherValue(rng, kind, culprit.Value(kind)))
		}
		if seen[decoy] {
			continue
		}
		seen[decoy] = true
		pool = append(pool, decoy)
	}

	suspectNames := random.Sample(rng, names, size)
	suspects := make([]models.Suspect, size)
	for i, attrs := range pool {
		suspects[i] = models.Suspect{
			ID:         uuid.NewString(),
			CaseID:     caseID,
			Name:       suspectNames[i],
			Culprit:    i == 0,
			Attributes: attrs,
		}
	}
	rng.Shuffle(len(suspects), func(a, b int) {
		suspects[a], suspects[b] = suspects[b], suspects[a]
	})
	return suspects, nil
}

// Seed generates the pool and persists it.
func Seed(ctx context.Context, store Store, rng *rand.Rand, caseID string, size int) ([]models.Suspect, error) {
	pool, err := Generate(rng, caseID, size)
	if err != nil {
		return nil, err
	}
	for _, s := range pool {
		if err = store.InsertSuspect(ctx, s); err != nil {
			return nil, errors.Wrap(err, "insert suspect")
		}
	}
	return pool, nil
}

// Culprit returns the culprit of the pool.
func Culprit(pool []models.Suspect) (models.Suspect, bool) {
	for _, s := range pool {
		if s.Culprit {
			return s, true
		}
	}
	return models.Suspect{}, false
}

func otherValue(rng *rand.Rand, kind models.AttributeKind, current string) string {
	var candidates []string
	for _, v := range values[kind] {
		if v != current {
			candidates = append(candidates, v)
		}
	}
	return random.Pick(rng, candidates)
}
