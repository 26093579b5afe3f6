package main

import (
	"context"
	"os"

	_ "tasktracker/docs"
	"tasktracker/internal/config"
	"tasktracker/internal/logger"
	"tasktracker/internal/server"
)

//go:generate swag init -g main.go -d ./,../../internal/handler -o ../../docs

// @title           Task Tracker API
// @version         1.0
// @description     Personal task management with owner-scoped CRUD, pagination and search.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @schemes http
func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, os.Stdout)

	s, err := server.Init(context.Background(), cfg, log)
	if err != nil {
		log.Error("❌ Server initialization failed", "error", err)
		os.Exit(1)
	}

	s.Run()
}
