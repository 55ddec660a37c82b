package service

import (
	"github.com/mlevkov/go-fin-keeper/internal/config"
	"github.com/mlevkov/go-fin-keeper/internal/logger"
	"github.com/mlevkov/go-fin-keeper/internal/mail"
	"github.com/mlevkov/go-fin-keeper/internal/store"
)

type Services struct {
	AuthService  AuthService
	EntryService EntryService
}

func NewServices(repositories *store.Repositories, mailer mail.Sender, cfg config.StructuredConfig, logger *logger.Logger) *Services {
	return &Services{
		AuthService:  NewAuthService(repositories.UserRepository, mailer, cfg.App, logger),
		EntryService: NewEntryService(repositories.EntryRepository, logger),
	}
}
