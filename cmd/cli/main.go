package main

import (
	"fmt"
	"io/fs"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/myrjola/gumshoe/cmd/cli/app"
	"github.com/myrjola/gumshoe/cmd/cli/casecmd"
	"github.com/myrjola/gumshoe/cmd/cli/play"
	"github.com/myrjola/gumshoe/internal/errors"
	"github.com/myrjola/gumshoe/internal/rules"
	"github.com/spf13/cobra"
)

func init() {
	// The .env file is optional, the environment alone is enough.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	rootCmd.PersistentFlags().String("player", "", "player id, defaults to $PLAYER")
	rootCmd.AddGroup(casecmd.Group)
	rootCmd.AddCommand(casecmd.Case)
	rootCmd.AddGroup(play.Group)
	rootCmd.AddCommand(play.Travel, play.Investigate, play.Warrant)
	rootCmd.AddCommand(rulesCmd)
}

var rootCmd = &cobra.Command{
	Use:  "gumshoe",
	Long: `Chase a thief around the world before the deadline runs out.`,
	// Domain errors are already phrased for the player.
	SilenceUsage: true,
}

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Print the effective game rules",
	Long:  `Prints the rules after applying $RULES_FILE and GUMSHOE_* overrides on top of the defaults.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := app.LoadConfig()
		if err != nil {
			return err
		}
		r, err := rules.Load(cfg.RulesFile)
		if err != nil {
			return err
		}
		if err = r.Validate(); err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0) //nolint:mnd // column padding.
		_, _ = fmt.Fprintf(tw, "sleep\t%s-%s %s\n", r.Clock.SleepStart, r.Clock.SleepEnd, r.Clock.Timezone)
		_, _ = fmt.Fprintf(tw, "cases start\t%s\n", r.Clock.AnchorWeekday)
		_, _ = fmt.Fprintf(tw, "investigation\t%d min\n", r.Investigation.CostMinutes)
		_, _ = fmt.Fprintf(tw, "ground travel\t%.0f km/h + %d min\n",
			r.Travel.Ground.SpeedKMH, r.Travel.Ground.OverheadMinutes)
		_, _ = fmt.Fprintf(tw, "air travel\t%.0f km/h + %d min\n", r.Travel.Air.SpeedKMH, r.Travel.Air.OverheadMinutes)
		_, _ = fmt.Fprintf(tw, "suspects\t%d\n", r.Suspects.PoolSize)
		_, _ = fmt.Fprintf(tw, "promotion\tevery %d solves\n", r.Rank.SolvesPerRank)
		names := make([]string, 0, len(r.Difficulties))
		for name := range r.Difficulties {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			tier := r.Difficulties[name]
			_, _ = fmt.Fprintf(tw, "%s\t%d steps, %d options, %d mistakes allowed\n",
				name, tier.Steps, tier.OptionsPerStep, tier.AllowedMistakes)
		}
		return tw.Flush() //nolint:wrapcheck // writes to the terminal.
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	Execute()
}
