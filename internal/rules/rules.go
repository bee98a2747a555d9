// Package rules loads the tunable game rules from an optional YAML file.
package rules

import (
	"log/slog"
	"strings"
	"time"

	"github.com/myrjola/gumshoe/internal/clock"
	"github.com/myrjola/gumshoe/internal/errors"
	"github.com/myrjola/gumshoe/internal/models"
	"github.com/myrjola/gumshoe/internal/travel"
	"github.com/spf13/viper"
)

var ErrInvalidRules = errors.NewSentinel("invalid rules")

// MinClueTimeout keeps a misconfigured timeout, such as a bare YAML integer read as nanoseconds, from silently
// replacing every clue with its template.
const MinClueTimeout = 100 * time.Millisecond

type Clock struct {
	Timezone      string `mapstructure:"timezone"`
	SleepStart    string `mapstructure:"sleep_start"`
	SleepEnd      string `mapstructure:"sleep_end"`
	AnchorWeekday string `mapstructure:"anchor_weekday"`
}

type Transport struct {
	SpeedKMH        float64 `mapstructure:"speed_kmh"`
	OverheadMinutes int     `mapstructure:"overhead_minutes"`
}

type Travel struct {
	Ground Transport `mapstructure:"ground"`
	Air    Transport `mapstructure:"air"`
}

type Investigation struct {
	// CostMinutes is charged on every investigate call.
	CostMinutes int `mapstructure:"cost_minutes"`
	// ExpectedVisitsPerStep is how many places an optimal player investigates per step.
	ExpectedVisitsPerStep int `mapstructure:"expected_visits_per_step"`
	// ClueTimeout bounds the text generation call.
	ClueTimeout time.Duration `mapstructure:"clue_timeout"`
}

// Difficulty sizes the route and the deadline slack of one tier.
type Difficulty struct {
	Steps          int `mapstructure:"steps"`
	OptionsPerStep int `mapstructure:"options_per_step"`
	// AllowedMistakes and MistakePenaltyMinutes add slack for wrong travels.
	AllowedMistakes       int `mapstructure:"allowed_mistakes"`
	MistakePenaltyMinutes int `mapstructure:"mistake_penalty_minutes"`
	// ExtraVisits adds slack for investigating more places than needed.
	ExtraVisits int `mapstructure:"extra_visits"`
	// SkippableVisits removes the time of visits an experienced player does not need.
	SkippableVisits int `mapstructure:"skippable_visits"`
}

type Rank struct {
	RanksPerExtraDecoy int `mapstructure:"ranks_per_extra_decoy"`
	MaxExtraDecoys     int `mapstructure:"max_extra_decoys"`
	SolvesPerRank      int `mapstructure:"solves_per_rank"`
}

type Suspects struct {
	PoolSize int `mapstructure:"pool_size"`
}

// Rules are the tunable parameters of the game.
type Rules struct {
	Clock         Clock                 `mapstructure:"clock"`
	Travel        Travel                `mapstructure:"travel"`
	Investigation Investigation         `mapstructure:"investigation"`
	Difficulties  map[string]Difficulty `mapstructure:"difficulties"`
	Rank          Rank                  `mapstructure:"rank"`
	Suspects      Suspects              `mapstructure:"suspects"`
}

// Default returns the built-in rules.
func Default() Rules {
	return Rules{
		Clock: Clock{
			Timezone:      "UTC",
			SleepStart:    "23:00",
			SleepEnd:      "08:00",
			AnchorWeekday: "monday",
		},
		Travel: Travel{
			Ground: Transport{SpeedKMH: 80, OverheadMinutes: 30},   //nolint:mnd // defaults.
			Air:    Transport{SpeedKMH: 800, OverheadMinutes: 120}, //nolint:mnd // defaults.
		},
		Investigation: Investigation{
			CostMinutes:           30, //nolint:mnd // defaults.
			ExpectedVisitsPerStep: 3,  //nolint:mnd // defaults.
			ClueTimeout:           4 * time.Second,
		},
		Difficulties: map[string]Difficulty{
			string(models.DifficultyLenient): {
				Steps: 4, OptionsPerStep: 3, AllowedMistakes: 3, MistakePenaltyMinutes: 90, ExtraVisits: 5,
			},
			string(models.DifficultyStrict): {
				Steps: 5, OptionsPerStep: 3, ExtraVisits: 2,
			},
			string(models.DifficultyExpert): {
				Steps: 6, OptionsPerStep: 4, SkippableVisits: 3,
			},
		},
		Rank:     Rank{RanksPerExtraDecoy: 2, MaxExtraDecoys: 2, SolvesPerRank: 3},
		Suspects: Suspects{PoolSize: 5},
	}
}

// Load reads the rules from path on top of the defaults. An empty path uses the defaults only. Every key can be
// overridden with an environment variable such as GUMSHOE_INVESTIGATION_COST_MINUTES.
func Load(path string) (Rules, error) {
	v := viper.New()
	setDefaults(v, Default())
	v.SetEnvPrefix("GUMSHOE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Rules{}, errors.Wrap(err, "read rules file", slog.String("path", path))
		}
	}

	var r Rules
	if err := v.Unmarshal(&r); err != nil {
		return Rules{}, errors.Wrap(err, "unmarshal rules")
	}
	if err := r.Validate(); err != nil {
		return Rules{}, err
	}
	return r, nil
}

func setDefaults(v *viper.Viper, d Rules) {
	v.SetDefault("clock.timezone", d.Clock.Timezone)
	v.SetDefault("clock.sleep_start", d.Clock.SleepStart)
	v.SetDefault("clock.sleep_end", d.Clock.SleepEnd)
	v.SetDefault("clock.anchor_weekday", d.Clock.AnchorWeekday)
	v.SetDefault("travel.ground.speed_kmh", d.Travel.Ground.SpeedKMH)
	v.SetDefault("travel.ground.overhead_minutes", d.Travel.Ground.OverheadMinutes)
	v.SetDefault("travel.air.speed_kmh", d.Travel.Air.SpeedKMH)
	v.SetDefault("travel.air.overhead_minutes", d.Travel.Air.OverheadMinutes)
	v.SetDefault("investigation.cost_minutes", d.Investigation.CostMinutes)
	v.SetDefault("investigation.expected_visits_per_step", d.Investigation.ExpectedVisitsPerStep)
	v.SetDefault("investigation.clue_timeout", d.Investigation.ClueTimeout)
	for name, tier := range d.Difficulties {
		prefix := "difficulties." + name + "."
		v.SetDefault(prefix+"steps", tier.Steps)
		v.SetDefault(prefix+"options_per_step", tier.OptionsPerStep)
		v.SetDefault(prefix+"allowed_mistakes", tier.AllowedMistakes)
		v.SetDefault(prefix+"mistake_penalty_minutes", tier.MistakePenaltyMinutes)
		v.SetDefault(prefix+"extra_visits", tier.ExtraVisits)
		v.SetDefault(prefix+"skippable_visits", tier.SkippableVisits)
	}
	v.SetDefault("rank.ranks_per_extra_decoy", d.Rank.RanksPerExtraDecoy)
	v.SetDefault("rank.max_extra_decoys", d.Rank.MaxExtraDecoys)
	v.SetDefault("rank.solves_per_rank", d.Rank.SolvesPerRank)
	v.SetDefault("suspects.pool_size", d.Suspects.PoolSize)
}

// Validate checks that the rules describe a playable game.
func (r Rules) Validate() error {
	var errs []error
	if _, err := r.Window(); err != nil {
		errs = append(errs, err)
	}
	if _, err := r.Location(); err != nil {
		errs = append(errs, err)
	}
	if _, err := r.AnchorWeekday(); err != nil {
		errs = append(errs, err)
	}
	if r.Travel.Ground.SpeedKMH <= 0 || r.Travel.Air.SpeedKMH <= 0 {
		errs = append(errs, errors.Wrap(ErrInvalidRules, "travel speeds must be positive"))
	}
	if r.Investigation.CostMinutes < 0 || r.Investigation.ExpectedVisitsPerStep < 1 {
		errs = append(errs, errors.Wrap(ErrInvalidRules, "invalid investigation cost"))
	}
	if r.Investigation.ClueTimeout < MinClueTimeout {
		errs = append(errs, errors.Wrap(ErrInvalidRules, "clue timeout too short",
			slog.Duration("clue_timeout", r.Investigation.ClueTimeout), slog.Duration("min", MinClueTimeout)))
	}
	var (
		previous      models.Difficulty
		previousSlack int
	)
	for _, d := range models.Difficulties {
		tier, ok := r.Difficulties[string(d)]
		if !ok {
			errs = append(errs, errors.Wrap(ErrInvalidRules, "missing difficulty", slog.String("difficulty", string(d))))
			previous = ""
			continue
		}
		if tier.Steps < 2 || tier.OptionsPerStep < 1 {
			errs = append(errs, errors.Wrap(ErrInvalidRules, "route too small", slog.String("difficulty", string(d))))
		}
		if tier.AllowedMistakes < 0 || tier.MistakePenaltyMinutes < 0 || tier.ExtraVisits < 0 ||
			tier.SkippableVisits < 0 {
			errs = append(errs, errors.Wrap(ErrInvalidRules, "negative slack", slog.String("difficulty", string(d))))
		}
		// Difficulties are ordered from lenient to expert and a harder tier never gets more time.
		slack, _ := r.Slack(d)
		if previous != "" && slack > previousSlack {
			errs = append(errs, errors.Wrap(ErrInvalidRules, "slack grows with difficulty",
				slog.String("easier", string(previous)), slog.Int("easier_slack", previousSlack),
				slog.String("harder", string(d)), slog.Int("harder_slack", slack)))
		}
		previous, previousSlack = d, slack
	}
	if r.Rank.RanksPerExtraDecoy < 1 || r.Rank.SolvesPerRank < 1 {
		errs = append(errs, errors.Wrap(ErrInvalidRules, "rank steps must be positive"))
	}
	if r.Suspects.PoolSize < 2 {
		errs = append(errs, errors.Wrap(ErrInvalidRules, "suspect pool needs at least one decoy"))
	}
	return errors.Join(errs...)
}

// Window returns the blackout window.
func (r Rules) Window() (clock.Window, error) {
	w, err := clock.ParseWindow(r.Clock.SleepStart, r.Clock.SleepEnd)
	if err != nil {
		return clock.Window{}, errors.Wrap(ErrInvalidRules, "blackout window", slog.String("cause", err.Error()))
	}
	return w, nil
}

// Location returns the timezone cases are played in.
func (r Rules) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(r.Clock.Timezone)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidRules, "timezone", slog.String("timezone", r.Clock.Timezone))
	}
	return loc, nil
}

// AnchorWeekday returns the weekday every case starts on.
func (r Rules) AnchorWeekday() (time.Weekday, error) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(d.String(), r.Clock.AnchorWeekday) {
			return d, nil
		}
	}
	return 0, errors.Wrap(ErrInvalidRules, "anchor weekday", slog.String("weekday", r.Clock.AnchorWeekday))
}

// Difficulty returns the tier rules of d.
func (r Rules) Difficulty(d models.Difficulty) (Difficulty, error) {
	tier, ok := r.Difficulties[string(d)]
	if !ok {
		return Difficulty{}, errors.Wrap(models.ErrUnknownDifficulty, "difficulty rules", slog.String("difficulty", string(d)))
	}
	return tier, nil
}

// Slack returns the minutes added to optimal play at difficulty d. Expert play gets a negative slack because the
// expert is expected to skip visits.
func (r Rules) Slack(d models.Difficulty) (int, error) {
	tier, err := r.Difficulty(d)
	if err != nil {
		return 0, err
	}
	cost := r.Investigation.CostMinutes
	switch d {
	case models.DifficultyLenient:
		return tier.AllowedMistakes*tier.MistakePenaltyMinutes + tier.ExtraVisits*cost, nil
	case models.DifficultyStrict:
		return tier.ExtraVisits * cost, nil
	case models.DifficultyExpert:
		return -tier.SkippableVisits * cost, nil
	default:
		return 0, errors.Wrap(models.ErrUnknownDifficulty, "slack", slog.String("difficulty", string(d)))
	}
}

// TravelConfig returns the estimator configuration.
func (r Rules) TravelConfig() travel.Config {
	return travel.Config{
		Ground: travel.Mode{SpeedKMH: r.Travel.Ground.SpeedKMH, OverheadMinutes: r.Travel.Ground.OverheadMinutes},
		Air:    travel.Mode{SpeedKMH: r.Travel.Air.SpeedKMH, OverheadMinutes: r.Travel.Air.OverheadMinutes},
	}
}

// ExtraDecoys returns how many decoys a player of the given rank gets on top of the tier's options.
func (r Rules) ExtraDecoys(rank int) int {
	if rank < 1 {
		rank = 1
	}
	return min((rank-1)/r.Rank.RanksPerExtraDecoy, r.Rank.MaxExtraDecoys)
}
