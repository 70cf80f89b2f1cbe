package service

import (
	"fmt"
	"sort"

	"github.com/hance08/tally/internal/config"
	"github.com/hance08/tally/internal/model"
	"github.com/hance08/tally/internal/store"
)

type AccountService struct {
	repo   store.Repository
	config *config.Config
}

func NewAccountService(repo store.Repository, cfg *config.Config) *AccountService {
	return &AccountService{repo: repo, config: cfg}
}

// Snapshot returns every account ordered by client id.
func (as *AccountService) Snapshot() ([]*model.Account, error) {
	accounts, err := as.repo.ListAccounts()
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].Client < accounts[j].Client
	})

	return accounts, nil
}

func (as *AccountService) GetAccount(id model.ClientID) (*model.Account, error) {
	return as.repo.GetAccount(id)
}
