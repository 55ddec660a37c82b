package http

import (
	"github.com/mlevkov/go-fin-keeper/internal/config"
	"github.com/mlevkov/go-fin-keeper/internal/logger"
	"github.com/mlevkov/go-fin-keeper/internal/service"
)

type Handler struct {
	services *service.Services

	serverConfig config.Server

	logger *logger.Logger
}

func NewHandler(services *service.Services, cfg config.Server, logger *logger.Logger) *Handler {
	logger.Info().Msg("http handler created")
	return &Handler{
		services:     services,
		serverConfig: cfg,
		logger:       logger,
	}
}
