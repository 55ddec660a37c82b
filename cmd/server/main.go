package main

import (
	"context"
	"fmt"

	"github.com/mlevkov/go-fin-keeper/internal/config"
	handlerhttp "github.com/mlevkov/go-fin-keeper/internal/handler/http"
	"github.com/mlevkov/go-fin-keeper/internal/logger"
	"github.com/mlevkov/go-fin-keeper/internal/mail"
	"github.com/mlevkov/go-fin-keeper/internal/server"
	"github.com/mlevkov/go-fin-keeper/internal/service"
	"github.com/mlevkov/go-fin-keeper/internal/store"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.NewLogger("fin-keeper-server")
	cfg, err := config.GetStructuredConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	log.Debug().Any("config", cfg).Msg("received configs")

	repositories, err := store.NewRepositories(context.Background(), cfg.Storage, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating repositories")
	}

	mailer, err := mail.NewSMTPSender(cfg.Mail, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating mail sender")
	}

	services := service.NewServices(repositories, mailer, *cfg, log)
	router := handlerhttp.NewHandler(services, cfg.Server, log).Init()

	srv, err := server.NewServer(router, cfg.Server, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating server")
	}

	srv.RunServer()
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}

	if buildDate == "" {
		buildDate = "N/A"
	}

	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
