package app

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/myrjola/gumshoe/internal/clock"
	"github.com/myrjola/gumshoe/internal/models"
	"github.com/myrjola/gumshoe/internal/progression"
)

const timeLayout = "Mon 15:04"

// remaining formats the awake minutes left until the deadline.
func remaining(minutes int) string {
	if minutes <= 0 {
		return "none"
	}
	return (time.Duration(minutes) * time.Minute).String()
}

// PrintOverview writes what the detective knows about the case.
func PrintOverview(w io.Writer, o progression.Overview) {
	_, _ = fmt.Fprintf(w, "Case %s (%s): %s is missing.\n", o.Case.ID, o.Case.Difficulty, o.Case.StolenItem)
	_, _ = fmt.Fprintf(w, "Now %s, deadline %s, awake time left %s.\n",
		o.Time.Current.Format(timeLayout), o.Time.Deadline.Format(timeLayout),
		remaining(o.Remaining))

	if o.Case.Status.Terminal() {
		_, _ = fmt.Fprintf(w, "The case is %s (%s).\n", o.Case.Status, o.Case.Reason)
		if o.Capture != nil {
			_, _ = fmt.Fprintln(w, o.Capture.Narrative)
		}
		return
	}

	_, _ = fmt.Fprintf(w, "\nYou are in %s, %s (step %d).\n", o.City.Name, o.City.Country, o.Position.Step.Order)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0) //nolint:mnd // column padding.
	_, _ = fmt.Fprintln(tw, "\nPLACE\tID\tCLUE")
	for _, p := range o.Places {
		clue := "-"
		if p.Clue != nil {
			clue = p.Clue.Text
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", p.Name, p.ID, clue)
	}
	_ = tw.Flush()

	if len(o.Options) > 0 {
		_, _ = fmt.Fprintln(tw, "\nDESTINATION\tCITY ID\tTRAVEL")
		for _, opt := range o.Options {
			_, _ = fmt.Fprintf(tw, "%s, %s\t%s\t%s\n", opt.City.Name, opt.City.Country, opt.City.ID,
				(time.Duration(opt.Minutes) * time.Minute).String())
		}
		_ = tw.Flush()
	}

	_, _ = fmt.Fprintln(tw, "\nSUSPECT\tID\tSEX\tHAIR\tHOBBY\tFEATURE\tVEHICLE")
	for _, s := range o.Suspects {
		marker := ""
		if s.ID == o.Case.WarrantSuspectID {
			marker = " (warrant)"
		}
		a := s.Attributes
		_, _ = fmt.Fprintf(tw, "%s%s\t%s\t%s\t%s\t%s\t%s\t%s\n", s.Name, marker, s.ID,
			a.Sex, a.Hair, a.Hobby, a.Feature, a.Vehicle)
	}
	_ = tw.Flush()
}

// PrintGameOver announces the end of the case.
func PrintGameOver(w io.Writer, over *progression.GameOver) {
	if over == nil {
		return
	}
	_, _ = fmt.Fprintf(w, "\n%s\nThe case is %s.\n", over.Narrative, over.Status)
}

func PrintTime(w io.Writer, result clock.Result) {
	_, _ = fmt.Fprintf(w, "It is now %s. Time left: %s.\n",
		result.Current.Format(timeLayout), remaining(result.Remaining))
}

// PrintCases lists cases one per line.
func PrintCases(w io.Writer, list []models.Case) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0) //nolint:mnd // column padding.
	_, _ = fmt.Fprintln(tw, "CASE\tDIFFICULTY\tSTATUS\tREASON\tOPENED")
	for _, c := range list {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", c.ID, c.Difficulty, c.Status, c.Reason,
			c.CreatedAt.Local().Format(time.DateTime))
	}
	_ = tw.Flush()
}
