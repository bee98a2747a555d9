// Package casecmd opens, inspects and gives up cases.
package casecmd

import (
	"context"
	"fmt"

	"github.com/myrjola/gumshoe/cmd/cli/app"
	"github.com/myrjola/gumshoe/internal/models"
	"github.com/spf13/cobra"
)

var Group = &cobra.Group{
	ID:    "case",
	Title: "Case operations",
}

func init() {
	Case.AddCommand(New, Show, List, Abandon)
}

var Case = &cobra.Command{
	Use:     "case",
	GroupID: "case",
	Short:   "Manage cases",
}

var New = &cobra.Command{
	Use:       "new [lenient|strict|expert]",
	Short:     "Open a new case",
	Long:      `Opens a new case for the player. The player can only work on one case at a time.`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{string(models.DifficultyLenient), string(models.DifficultyStrict), string(models.DifficultyExpert)},
	RunE: func(cmd *cobra.Command, args []string) error {
		difficulty := models.DifficultyLenient
		if len(args) == 1 {
			var err error
			if difficulty, err = models.ParseDifficulty(args[0]); err != nil {
				return err
			}
		}
		return app.Run(cmd, func(ctx context.Context, s *app.Session) error {
			created, err := s.Game.Cases.Create(ctx, s.Player, difficulty)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s has been stolen. Catch the thief before %s.\n\n",
				created.Case.StolenItem, created.Time.Deadline.Format("Mon 15:04"))
			overview, err := s.Game.Machine.Overview(ctx, created.Case.ID)
			if err != nil {
				return err
			}
			app.PrintOverview(cmd.OutOrStdout(), overview)
			return nil
		})
	},
}

var Show = &cobra.Command{
	Use:   "show [case-id]",
	Short: "Show a case",
	Long:  `Shows the active case, or the given one. Looking costs no time.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.Run(cmd, func(ctx context.Context, s *app.Session) error {
			caseID, err := s.CaseID(ctx, args)
			if err != nil {
				return err
			}
			overview, err := s.Game.Machine.Overview(ctx, caseID)
			if err != nil {
				return err
			}
			app.PrintOverview(cmd.OutOrStdout(), overview)
			return nil
		})
	},
}

var List = &cobra.Command{
	Use:   "list",
	Short: "List the player's cases and statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return app.Run(cmd, func(ctx context.Context, s *app.Session) error {
			list, err := s.Game.Cases.Cases(ctx, s.Player)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No cases yet.")
				return nil
			}
			player, err := s.Game.Cases.Player(ctx, s.Player)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: rank %d, %d solved, %d failed.\n\n",
				player.ID, player.Rank, player.Solved, player.Failed)
			app.PrintCases(cmd.OutOrStdout(), list)
			return nil
		})
	},
}

var Abandon = &cobra.Command{
	Use:   "abandon [case-id]",
	Short: "Give up the active case",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.Run(cmd, func(ctx context.Context, s *app.Session) error {
			caseID, err := s.CaseID(ctx, args)
			if err != nil {
				return err
			}
			over, err := s.Game.Machine.Abandon(ctx, caseID)
			if err != nil {
				return err
			}
			app.PrintGameOver(cmd.OutOrStdout(), &over)
			return nil
		})
	},
}
