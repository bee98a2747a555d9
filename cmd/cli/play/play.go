// Package play holds the actions that move the active case forward.
package play

import (
	"context"
	"fmt"

	"github.com/myrjola/gumshoe/cmd/cli/app"
	"github.com/spf13/cobra"
)

var Group = &cobra.Group{
	ID:    "play",
	Title: "Investigation",
}

func init() {
	for _, cmd := range []*cobra.Command{Travel, Investigate, Warrant} {
		cmd.Flags().String("case", "", "case to act on instead of the active one")
	}
}

func caseID(ctx context.Context, cmd *cobra.Command, s *app.Session) (string, error) {
	explicit, err := cmd.Flags().GetString("case")
	if err != nil {
		return "", err //nolint:wrapcheck // flag is registered in init.
	}
	return s.CaseID(ctx, []string{explicit})
}

var Travel = &cobra.Command{
	Use:     "travel <city-id>",
	GroupID: "play",
	Short:   "Travel to one of the offered destinations",
	Long: `Travels to a destination offered from the current city. At least one lead must have been
investigated in the city first. Picking a city that is not on offer costs no time.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.Run(cmd, func(ctx context.Context, s *app.Session) error {
			id, err := caseID(ctx, cmd, s)
			if err != nil {
				return err
			}
			outcome, err := s.Game.Machine.Travel(ctx, id, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "You travel from %s to %s.\n", outcome.From.Name, outcome.To.Name)
			app.PrintTime(out, outcome.Time)
			if outcome.GameOver != nil {
				app.PrintGameOver(out, outcome.GameOver)
				return nil
			}
			if !outcome.Advanced {
				_, _ = fmt.Fprintln(out, "Nobody here seems to know anything. Perhaps this was the wrong lead.")
			}
			return nil
		})
	},
}

var Investigate = &cobra.Command{
	Use:     "investigate <place-id>",
	GroupID: "play",
	Short:   "Investigate a place in the current city",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.Run(cmd, func(ctx context.Context, s *app.Session) error {
			id, err := caseID(ctx, cmd, s)
			if err != nil {
				return err
			}
			outcome, err := s.Game.Machine.Investigate(ctx, id, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "You investigate the %s.\n", outcome.Place.Name)
			app.PrintTime(out, outcome.Time)
			if outcome.GameOver != nil {
				app.PrintGameOver(out, outcome.GameOver)
				return nil
			}
			_, _ = fmt.Fprintf(out, "\n%q\n", outcome.Clue.Text)
			return nil
		})
	},
}

var Warrant = &cobra.Command{
	Use:     "warrant <suspect-id>",
	GroupID: "play",
	Short:   "Issue the arrest warrant",
	Long:    `Issues the arrest warrant for a suspect. Only one warrant can be issued per case.`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.Run(cmd, func(ctx context.Context, s *app.Session) error {
			id, err := caseID(ctx, cmd, s)
			if err != nil {
				return err
			}
			if _, err = s.Game.Machine.IssueWarrant(ctx, id, args[0]); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "The warrant has been issued.")
			return nil
		})
	},
}
