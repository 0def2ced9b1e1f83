package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"

	"github.com/abelbrown/meetapp/internal/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := commands.New().ExecuteContext(ctx)
	if err == nil {
		return
	}
	if !errors.Is(err, commands.ErrReported) {
		_, _ = fmt.Fprintln(color.Error, color.RedString("Error: %v", err))
	}
	stop()
	os.Exit(1)
}
