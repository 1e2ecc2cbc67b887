package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"lexify/internal/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	app := &commands.App{}
	err := commands.NewRootCommand(app).ExecuteContext(ctx)
	if closeErr := app.Close(); closeErr != nil {
		fmt.Fprintln(os.Stderr, "close:", closeErr)
	}
	stop()
	if err != nil {
		os.Exit(1)
	}
}
