package main

import (
	"log"

	"github.com/sirupsen/logrus"

	"expenseportal/internal/config"
	"expenseportal/internal/devserver"
)

func main() {
	cfg := config.Load()

	logger := logrus.New()
	logger.SetLevel(cfg.LogLevel)

	store := devserver.NewStore()
	if err := devserver.Seed(store); err != nil {
		log.Fatalf("Seed failed: %v", err)
	}

	router := devserver.NewRouter(store, logger)
	logger.WithField("addr", cfg.DevserverAddr).Info("devserver listening")
	if err := router.Run(cfg.DevserverAddr); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
