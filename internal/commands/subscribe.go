package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/abelbrown/meetapp/internal/config"
	"github.com/abelbrown/meetapp/internal/listsync"
	"github.com/abelbrown/meetapp/internal/meetup"
)

func addSubscribe(topLevel *cobra.Command, v *viper.Viper) {
	cmd := &cobra.Command{
		Use:   "subscribe <meetup-id>",
		Short: "Subscribe the configured user to a meetup.",
		Example: `
meetapp subscribe 42
meetapp subscribe 42 --user 2
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil || n <= 0 {
				return fmt.Errorf("invalid meetup id %q", args[0])
			}
			id := meetup.ID(n)

			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			rt, err := openSession(cfg)
			if err != nil {
				return err
			}
			defer rt.Close()

			ctrl := listsync.New(rt.listOptions(), time.Now(), rt.user())
			notice := ctrl.ApplySubscribe(id, rt.coord.Subscribe(cmd.Context(), id, rt.user()))
			printNotice(cmd, notice)
			if notice.Kind == listsync.NoticeDanger {
				return ErrReported
			}
			return nil
		},
	}
	topLevel.AddCommand(cmd)
}

func printNotice(cmd *cobra.Command, n listsync.Notice) {
	c := color.New(color.FgGreen, color.Bold)
	w := cmd.OutOrStdout()
	if n.Kind == listsync.NoticeDanger {
		c = color.New(color.FgRed, color.Bold)
		w = cmd.ErrOrStderr()
	}
	_, _ = c.Fprintln(w, n.Message)
}
