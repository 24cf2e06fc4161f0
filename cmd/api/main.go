package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"taskManager/internal/app"
	"taskManager/internal/config"
)

func main() {
	cfg, err := config.Load("config.yml")
	if err != nil {
		log.Fatalf("конфигурация: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application := app.New(cfg)
	if err := application.Init(ctx); err != nil {
		log.Fatalf("инициализация: %v", err)
	}
	defer application.Shutdown()

	if err := application.Run(ctx); err != nil {
		log.Fatalf("запуск: %v", err)
	}
}
