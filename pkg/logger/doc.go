/*
Package logger provides structured logging for dutree. It wraps uber-go/zap
behind a small interface with verbosity-based levels and contextual fields.

Verbosity levels:

	0: Info, Warn, Error (default)
	1: Debug + level 0
	2: Trace + level 1

Basic usage:

	log := logger.New(logger.Config{Verbosity: 1})

	log.WithFields(logger.Fields{
	    "root":  "/var/log",
	    "depth": 3,
	}).Debug("walk started")

All output goes to stderr by default so the rendered tree on stdout stays
pipeable. The logger is safe for concurrent use.
*/
package logger
