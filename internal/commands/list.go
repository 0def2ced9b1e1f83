package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/abelbrown/meetapp/internal/config"
	"github.com/abelbrown/meetapp/internal/coord"
	"github.com/abelbrown/meetapp/internal/listsync"
	"github.com/abelbrown/meetapp/internal/meetup"
)

const dateLayout = "2006-01-02"

type listOptions struct {
	Date string
	All  bool
}

func addList(topLevel *cobra.Command, v *viper.Viper) {
	lo := &listOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the meetups of a day.",
		Example: `
meetapp list
meetapp list --date 2026-10-17 --all
meetapp list --offline
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := parseDay(lo.Date, time.Now())
			if err != nil {
				return err
			}
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			rt, err := openSession(cfg)
			if err != nil {
				return err
			}
			defer rt.Close()

			opts := rt.listOptions()
			records, err := collect(cmd.Context(), rt.coord, opts, day, rt.user(), lo.All)
			printTable(cmd.OutOrStdout(), day, records, lo.All)
			return err
		},
	}

	cmd.Flags().StringVar(&lo.Date, "date", "", "Day to list as YYYY-MM-DD. Defaults to today.")
	cmd.Flags().BoolVar(&lo.All, "all", false, "Keep loading pages until the day is exhausted.")
	topLevel.AddCommand(cmd)
}

// parseDay reads a YYYY-MM-DD day in local time; empty means now.
func parseDay(s string, now time.Time) (time.Time, error) {
	if s == "" {
		return now, nil
	}
	day, err := time.ParseInLocation(dateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date %q, expected YYYY-MM-DD", s)
	}
	return day, nil
}

// collect drives a controller the way the list screen does: mount, then
// LoadMore after every merged page when all is set. Pages are fetched in
// order, one at a time.
func collect(ctx context.Context, co *coord.Coordinator, opts listsync.Options, day time.Time, user meetup.UserID, all bool) ([]meetup.Meetup, error) {
	if all {
		// A short first page would otherwise stop the walk.
		opts.MinRecords = 0
	}
	ctrl := listsync.New(opts, day, user)

	req, ok := ctrl.Start()
	for ok {
		res := co.Fetch(ctx, req)
		co.Applied(res, ctrl.Complete(res))
		if res.Err != nil {
			return ctrl.Records(), res.Err
		}
		if !all {
			break
		}
		req, ok = ctrl.LoadMore()
	}
	return ctrl.Records(), nil
}

func printTable(w io.Writer, day time.Time, records []meetup.Meetup, all bool) {
	bold := color.New(color.Bold)
	faint := color.New(color.Faint)

	_, _ = bold.Fprintf(w, "%s\n", day.Format("Monday, 02 January 2006"))
	if len(records) == 0 {
		_, _ = faint.Fprintln(w, "No meetups on this day.")
		return
	}

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 48
	tbl.AddRow(bold.Sprint("ID"), bold.Sprint("When"), bold.Sprint("Title"), bold.Sprint("Where"), bold.Sprint("Organizer"), bold.Sprint("Status"))
	for _, m := range records {
		tbl.AddRow(m.ID, m.FormattedDate, m.Title, m.Location, m.Organizer.Name, actionLabel(m.Action()))
	}
	tbl.RightAlign(0)
	_, _ = fmt.Fprintln(w, tbl)

	if !all {
		_, _ = faint.Fprintf(w, "%d meetups. Use --all to load every page.\n", len(records))
	}
}

func actionLabel(a meetup.Action) string {
	switch a {
	case meetup.ActionSubscribed:
		return color.GreenString(a.String())
	case meetup.ActionUnavailable:
		return color.New(color.Faint).Sprint(a.String())
	default:
		return color.CyanString(a.String())
	}
}
