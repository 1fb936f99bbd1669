/*
Package app signal handling. A first interrupt cancels the context so
the walk unwinds and Run reports a fatal status; a second interrupt
exits immediately.
*/
package app

import (
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/nachoparker/dutree/pkg/logger"
)

// setupSignalHandling initializes signal handling for graceful shutdown
func (a *App) setupSignalHandling() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan,
		syscall.SIGINT,
		syscall.SIGTERM,
	)

	go a.handleSignals(sigChan)
}

// handleSignals processes incoming system signals
func (a *App) handleSignals(sigChan chan os.Signal) {
	var interrupted atomic.Bool

	for sig := range sigChan {
		a.log.WithFields(logger.Fields{
			"signal": sig.String(),
		}).Debug("Received system signal")

		if interrupted.CompareAndSwap(false, true) {
			a.log.Info("Interrupt received, cancelling analysis")
			a.cancel()
			continue
		}

		a.log.Warn("Second interrupt, forcing shutdown")
		os.Exit(StatusFatal)
	}
}
