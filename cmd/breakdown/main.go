// cmd/breakdown/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	apperrors "github.com/Corphon/ScriptBreakdown/internal/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCommand(defaultGenerator).ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", apperrors.UserMessage(err))
		os.Exit(1)
	}
}
