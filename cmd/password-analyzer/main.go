// Command password-analyzer is the terminal front end: accounts, profile
// and settings, the simulated secure chat, and the password strength and
// crack simulator.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sakif/password-analyzer/internal/apperror"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", apperror.Message(err))
	}
	stop()
	os.Exit(exitCode(err))
}

// Exit codes, one per apperror sentinel.
const (
	exitOK           = 0
	exitFailure      = 1
	exitValidation   = 2
	exitUnauthorized = 3
	exitNotFound     = 4
	exitConflict     = 5
	exitForbidden    = 6
	exitRateLimited  = 7
	exitUnavailable  = 8
	exitInterrupted  = 130
)

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, context.Canceled):
		return exitInterrupted
	case errors.Is(err, apperror.ErrValidation):
		return exitValidation
	case errors.Is(err, apperror.ErrUnauthorized):
		return exitUnauthorized
	case errors.Is(err, apperror.ErrNotFound):
		return exitNotFound
	case errors.Is(err, apperror.ErrConflict):
		return exitConflict
	case errors.Is(err, apperror.ErrForbidden):
		return exitForbidden
	case errors.Is(err, apperror.ErrRateLimited):
		return exitRateLimited
	case errors.Is(err, apperror.ErrUnavailable):
		return exitUnavailable
	default:
		return exitFailure
	}
}
