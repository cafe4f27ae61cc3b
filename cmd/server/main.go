package main

import (
	"context"
	"fmt"
	"os"

	"github.com/yungbote/carebloom-backend/internal/app"
	"github.com/yungbote/carebloom-backend/internal/platform/shutdown"
)

func main() {
	ctx, stop := shutdown.NotifyContext(context.Background())
	defer stop()

	a, err := app.New(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize app: %v\n", err)
		os.Exit(1)
	}

	runErr := a.Run(ctx)
	a.Close()
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "server exited: %v\n", runErr)
		os.Exit(1)
	}
}
