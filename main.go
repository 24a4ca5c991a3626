package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/charmbracelet/log"
	"github.com/samber/oops"
)

var logger = log.NewWithOptions(os.Stdout, log.Options{
	Prefix:          "",
	ReportCaller:    false,
	ReportTimestamp: true,
})
var slogger = slog.New(logger)

func main() {
	// configure oops
	oops.SourceFragmentsHidden = false

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		logger.Error(err.Error(), "error", err)
		os.Exit(exitCodeOf(err))
	}
}
