package ai

import (
	"context"
	"fmt"

	"github.com/myrjola/gumshoe/internal/models"
)

// Fallback phrases a clue without the model. It still carries the hint so that play continues when the model is slow
// or unavailable.
func Fallback(p Prompt) string {
	switch p.Role {
	case models.ClueRoleNextLocation:
		return fmt.Sprintf("Someone matching the description asked about flights to %s.", p.NextCity.Country)
	case models.ClueRoleVillain:
		return fmt.Sprintf("A witness remembers the suspect's %s: %s.", p.Attribute, p.Value)
	case models.ClueRoleWarning:
		if p.Nearby {
			return "Watch your step, detective. The one you are looking for is close."
		}
		return "Nobody here has seen anyone like that. The trail seems to have gone cold."
	default:
		return "Nothing of interest here."
	}
}

// Offline writes every clue with [Fallback]. It stands in for [Client] when no API key is configured.
type Offline struct{}

func (Offline) WriteClue(_ context.Context, prompt Prompt) (string, error) {
	return Fallback(prompt), nil
}
