package memory

import (
	"context"
	"sync"

	"cafeblog/internal/domain/account"
)

// AccountsRepo is a map-backed stand-in for the postgres repo, used by unit
// tests. Semantics mirror the SQL implementation.
type AccountsRepo struct {
	mu       sync.RWMutex
	accounts map[string]account.Account
}

func NewAccountsRepo() *AccountsRepo {
	return &AccountsRepo{
		accounts: make(map[string]account.Account),
	}
}

func (r *AccountsRepo) GetByID(_ context.Context, userID string) (account.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.accounts[userID]

	if !ok {
		return account.Account{}, account.ErrNotFound
	}

	return a, nil
}

func (r *AccountsRepo) Create(_ context.Context, a account.Account) (account.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.accounts[a.UserID]; ok {
		return account.Account{}, account.ErrDuplicateID
	}

	r.accounts[a.UserID] = a

	return a, nil
}

func (r *AccountsRepo) Update(_ context.Context, a account.Account) (account.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.accounts[a.UserID]

	if !ok {
		return account.Account{}, account.ErrNotFound
	}

	a.CreatedAt = existing.CreatedAt
	a.CreatedBy = existing.CreatedBy
	r.accounts[a.UserID] = a

	return a, nil
}

func (r *AccountsRepo) Delete(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.accounts[userID]; !ok {
		return account.ErrNotFound
	}

	delete(r.accounts, userID)

	return nil
}
