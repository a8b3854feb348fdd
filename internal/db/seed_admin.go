package db

import (
	"context"
	"errors"
	"time"

	"cafeblog/internal/config"
	"cafeblog/internal/domain/account"
	"cafeblog/internal/security"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureAdminAccount seeds the configured administrator's account row at
// boot when it does not exist yet. The administrator role itself is not
// stored here, it comes from the static role resolver; this only guarantees
// the identity behind it can log in.
func EnsureAdminAccount(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if cfg.AdminID == "" || cfg.AdminPassword == "" {
		return nil
	}

	// check if the account exists

	var dummy string

	err := pool.QueryRow(ctx, `SELECT user_id FROM accounts WHERE user_id = $1`, cfg.AdminID).Scan(&dummy)

	if err == nil {
		return nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := security.HashPassword(cfg.AdminPassword)

	if err != nil {
		return err
	}

	now := time.Now().UTC()

	a := account.Account{
		UserID:       cfg.AdminID,
		PasswordHash: hash,
		Email:        cfg.AdminEmail,
		Nickname:     cfg.AdminNickname,
		CreatedAt:    now,
		CreatedBy:    cfg.AdminID,
		ModifiedAt:   now,
		ModifiedBy:   cfg.AdminID,
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO accounts (user_id, password_hash, email, nickname, memo, created_at, created_by, modified_at, modified_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		`,
		a.UserID, a.PasswordHash, a.Email, a.Nickname, a.Memo, a.CreatedAt, a.CreatedBy, a.ModifiedAt, a.ModifiedBy,
	)

	return err
}
