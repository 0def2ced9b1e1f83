package commands

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/abelbrown/meetapp/internal/devserver"
	"github.com/abelbrown/meetapp/internal/logging"
	"github.com/abelbrown/meetapp/internal/meetup"
)

type devserverOptions struct {
	Addr   string
	Tokens map[string]int
}

func addDevserver(topLevel *cobra.Command, v *viper.Viper) {
	do := &devserverOptions{}

	cmd := &cobra.Command{
		Use:   "devserver",
		Short: "Serve an in-memory meetup API seeded around today.",
		Example: `
meetapp devserver
meetapp devserver --addr :4000 --tokens rui=2,diego=3
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logging.SetOutput(os.Stderr, v.GetBool("debug"))

			tokens := make(map[string]meetup.UserID, len(do.Tokens))
			for tok, id := range do.Tokens {
				tokens[tok] = meetup.UserID(id)
			}
			s := devserver.New(devserver.Seed(time.Now()), devserver.Options{Tokens: tokens})

			_, _ = color.New(color.Bold).Fprintf(cmd.OutOrStdout(), "meetup API listening on http://%s\n", displayAddr(do.Addr))
			return serve(cmd.Context(), do.Addr, s.Handler())
		},
	}

	cmd.Flags().StringVar(&do.Addr, "addr", "127.0.0.1:3333", "Listen address.")
	cmd.Flags().StringToIntVar(&do.Tokens, "tokens", nil, "Bearer tokens and the user id each one signs in as.")
	topLevel.AddCommand(cmd)
}

// serve runs h on addr until ctx is done.
func serve(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: 10 * time.Second}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "127.0.0.1" + addr
	}
	return addr
}
