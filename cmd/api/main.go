package main

import (
	"context"
	"log"

	"user-account-service/cmd/api/app"
	"user-account-service/cmd/api/server"

	"go.uber.org/zap"
)

func main() {
	ctx, stop := server.WithSignal(context.Background())
	defer stop()

	a, err := app.New(ctx)
	if err != nil {
		log.Fatalf("failed to start application: %v", err)
	}

	if err := a.Run(ctx); err != nil {
		a.Logger.Fatal("application exited with error", zap.Error(err))
	}
}
