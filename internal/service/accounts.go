package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"cafeblog/internal/authz"
	"cafeblog/internal/domain/account"
	"cafeblog/internal/security"
)

type AccountStore interface {
	GetByID(ctx context.Context, userID string) (account.Account, error)
	Create(ctx context.Context, a account.Account) (account.Account, error)
	Update(ctx context.Context, a account.Account) (account.Account, error)
	Delete(ctx context.Context, userID string) error
}

// AccountService is the identity side of the system: registration, principal
// resolution, and self-or-admin profile maintenance. Audit stamps are applied
// here, explicitly, at the moment of write.
type AccountService struct {
	repo  AccountStore
	roles account.RoleResolver
	log   *slog.Logger
	now   func() time.Time
}

func NewAccountService(repo AccountStore, roles account.RoleResolver, log *slog.Logger) *AccountService {
	return &AccountService{
		repo:  repo,
		roles: roles,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *AccountService) Register(ctx context.Context, req account.RegisterRequest) (account.Account, error) {
	hash, err := security.HashPassword(req.Password)

	if err != nil {
		return account.Account{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()

	a := account.Account{
		UserID:       req.UserID,
		PasswordHash: hash,
		Email:        req.Email,
		Nickname:     req.Nickname,
		Memo:         req.Memo,
		CreatedAt:    now,
		CreatedBy:    req.UserID, // a fresh registration is created by itself
		ModifiedAt:   now,
		ModifiedBy:   req.UserID,
	}

	created, err := s.repo.Create(ctx, a)

	if err != nil {
		// account.ErrDuplicateID passes through untouched
		return account.Account{}, err
	}

	s.log.Info("account registered", "user_id", created.UserID)

	return created, nil
}

// LoadPrincipal turns a stored account into the request-scoped authenticated
// subject. Roles come from the resolver, never from the account row.
func (s *AccountService) LoadPrincipal(ctx context.Context, userID string) (account.Principal, error) {
	a, err := s.repo.GetByID(ctx, userID)

	if err != nil {
		return account.Principal{}, err
	}

	return account.NewPrincipal(a, s.roles.Resolve(a.UserID)), nil
}

// Authenticate runs the credential pipeline: load the account, verify the
// password against its hash, and derive the Principal.
func (s *AccountService) Authenticate(ctx context.Context, userID, password string) (account.Principal, error) {
	p, err := s.LoadPrincipal(ctx, userID)

	if err != nil {
		return account.Principal{}, err
	}

	err = security.CheckPassword(p.PasswordHash, password)

	if err != nil {
		return account.Principal{}, err
	}

	return p, nil
}

func (s *AccountService) UpdateProfile(ctx context.Context, principal account.Principal, userID string, req account.UpdateRequest) (account.Account, error) {
	if err := authz.Authorize(principal, authz.OpUpdateAccount, userID); err != nil {
		return account.Account{}, err
	}

	existing, err := s.repo.GetByID(ctx, userID)

	if err != nil {
		return account.Account{}, err
	}

	// the password field is re-hashed on every update, changed or not
	hash, err := security.HashPassword(req.Password)

	if err != nil {
		return account.Account{}, fmt.Errorf("hash password: %w", err)
	}

	existing.PasswordHash = hash
	existing.Email = req.Email
	existing.Nickname = req.Nickname
	existing.Memo = req.Memo
	existing.ModifiedAt = s.now()
	existing.ModifiedBy = principal.UserID

	updated, err := s.repo.Update(ctx, existing)

	if err != nil {
		return account.Account{}, err
	}

	s.log.Info("account updated", "user_id", userID, "modified_by", principal.UserID)

	return updated, nil
}

func (s *AccountService) Remove(ctx context.Context, principal account.Principal, userID string) error {
	if err := authz.Authorize(principal, authz.OpDeleteAccount, userID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, userID); err != nil {
		return err
	}

	s.log.Info("account removed", "user_id", userID, "removed_by", principal.UserID)

	return nil
}
