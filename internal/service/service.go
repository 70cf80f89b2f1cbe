package service

import (
	"github.com/hance08/tally/internal/config"
	"github.com/hance08/tally/internal/store"
	"go.uber.org/zap"
)

type Service struct {
	Ledger  *LedgerService
	Account *AccountService
	Config  *config.Config
}

func NewService(repo store.Repository, cfg *config.Config, logger *zap.Logger) *Service {
	return &Service{
		Ledger:  NewLedgerService(repo, cfg, logger),
		Account: NewAccountService(repo, cfg),
		Config:  cfg,
	}
}
