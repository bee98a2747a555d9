package rules_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/myrjola/gumshoe/internal/models"
	"github.com/myrjola/gumshoe/internal/rules"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, rules.Default().Validate())
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	content := `
clock:
  sleep_start: "22:30"
investigation:
  cost_minutes: 45
difficulties:
  strict:
    steps: 7
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	r, err := rules.Load(path)
	require.NoError(t, err)
	require.Equal(t, "22:30", r.Clock.SleepStart)
	require.Equal(t, "08:00", r.Clock.SleepEnd)
	require.Equal(t, 45, r.Investigation.CostMinutes)
	require.Equal(t, 4*time.Second, r.Investigation.ClueTimeout)

	strict, err := r.Difficulty(models.DifficultyStrict)
	require.NoError(t, err)
	require.Equal(t, 7, strict.Steps)
	require.Equal(t, 3, strict.OptionsPerStep)

	lenient, err := r.Difficulty(models.DifficultyLenient)
	require.NoError(t, err)
	require.Equal(t, rules.Default().Difficulties["lenient"], lenient)
}

func TestLoadWithoutFile(t *testing.T) {
	r, err := rules.Load("")
	require.NoError(t, err)
	require.Equal(t, rules.Default().Investigation, r.Investigation)
}

func TestLoadRejectsInvalidRules(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "empty blackout window",
			content: "clock:\n  sleep_start: \"08:00\"\n",
		},
		{
			name: "strict gets more time than lenient",
			content: `
difficulties:
  lenient:
    allowed_mistakes: 0
    extra_visits: 0
  strict:
    extra_visits: 10
`,
		},
		{
			name: "negative penalty",
			content: `
difficulties:
  lenient:
    mistake_penalty_minutes: -90
`,
		},
		{
			name: "negative skippable visits",
			content: `
difficulties:
  expert:
    skippable_visits: -3
`,
		},
		{
			name:    "clue timeout in nanoseconds",
			content: "investigation:\n  clue_timeout: 4\n",
		},
		{
			name:    "zero clue timeout",
			content: "investigation:\n  clue_timeout: 0s\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "rules.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))

			_, err := rules.Load(path)
			require.ErrorIs(t, err, rules.ErrInvalidRules)
		})
	}
}

func TestSlack(t *testing.T) {
	r := rules.Default()
	tests := []struct {
		difficulty models.Difficulty
		want       int
	}{
		{difficulty: models.DifficultyLenient, want: 3*90 + 5*30},
		{difficulty: models.DifficultyStrict, want: 2 * 30},
		{difficulty: models.DifficultyExpert, want: -3 * 30},
	}
	for _, tt := range tests {
		t.Run(string(tt.difficulty), func(t *testing.T) {
			got, err := r.Slack(tt.difficulty)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}

	_, err := r.Slack("casual")
	require.ErrorIs(t, err, models.ErrUnknownDifficulty)
}

func TestExtraDecoys(t *testing.T) {
	r := rules.Default()
	tests := []struct {
		rank int
		want int
	}{
		{rank: 0, want: 0},
		{rank: 1, want: 0},
		{rank: 2, want: 0},
		{rank: 3, want: 1},
		{rank: 5, want: 2},
		{rank: 50, want: 2},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, r.ExtraDecoys(tt.rank), "rank %d", tt.rank)
	}
}

func TestAnchorWeekday(t *testing.T) {
	r := rules.Default()
	d, err := r.AnchorWeekday()
	require.NoError(t, err)
	require.Equal(t, time.Monday, d)

	r.Clock.AnchorWeekday = "someday"
	_, err = r.AnchorWeekday()
	require.ErrorIs(t, err, rules.ErrInvalidRules)
}
