package commands

import (
	"context"
	"errors"
	"net/http"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/abelbrown/meetapp/internal/config"
	"github.com/abelbrown/meetapp/internal/listsync"
	"github.com/abelbrown/meetapp/internal/logging"
	"github.com/abelbrown/meetapp/internal/metrics"
	"github.com/abelbrown/meetapp/internal/ui"
)

const shutdownTimeout = 5 * time.Second

// runTUI runs the list screen until the user quits, with the metrics
// endpoint alongside when metrics_addr is set.
func runTUI(ctx context.Context, cfg *config.Config) error {
	rt, err := openSession(cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctrl := listsync.New(rt.listOptions(), time.Now(), rt.user())
	app := ui.NewApp(ctrl, ui.Config{
		LoadPage:  rt.coord.LoadPageCmd,
		Subscribe: rt.coord.SubscribeCmd,
		Applied:   rt.coord.Applied,
		Events:    rt.events,
		Ring:      rt.ring,
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	program := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	g.Go(func() error {
		defer cancel()
		_, err := program.Run()
		if errors.Is(err, tea.ErrProgramKilled) {
			return nil
		}
		return err
	})

	if cfg.MetricsAddr != "" {
		srv := &http.Server{Addr: cfg.MetricsAddr, Handler: metrics.Handler(rt.registry)}
		g.Go(func() error {
			logging.Info("metrics listening", "addr", cfg.MetricsAddr)
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
	}

	return g.Wait()
}
