package postgres

import (
	"context"
	"errors"

	"cafeblog/internal/domain/account"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AccountsRepo struct {
	pool *pgxpool.Pool
}

func NewAccountsRepo(pool *pgxpool.Pool) *AccountsRepo {
	return &AccountsRepo{pool: pool}
}

func (r *AccountsRepo) GetByID(ctx context.Context, userID string) (account.Account, error) {
	var a account.Account

	err := r.pool.QueryRow(
		ctx,
		`SELECT user_id, password_hash, email, nickname, memo, created_at, created_by, modified_at, modified_by
         FROM accounts
         WHERE user_id = $1`,
		userID,
	).Scan(
		&a.UserID,
		&a.PasswordHash,
		&a.Email,
		&a.Nickname,
		&a.Memo,
		&a.CreatedAt,
		&a.CreatedBy,
		&a.ModifiedAt,
		&a.ModifiedBy,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return account.Account{}, account.ErrNotFound
		}

		return account.Account{}, err
	}
	return a, nil
}

func (r *AccountsRepo) Create(ctx context.Context, a account.Account) (account.Account, error) {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO accounts (user_id, password_hash, email, nickname, memo, created_at, created_by, modified_at, modified_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		a.UserID, a.PasswordHash, a.Email, a.Nickname, a.Memo, a.CreatedAt, a.CreatedBy, a.ModifiedAt, a.ModifiedBy,
	)

	if err != nil {
		var pgErr *pgconn.PgError

		// unique violation on the primary key means the identifier is taken
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return account.Account{}, account.ErrDuplicateID
		}

		return account.Account{}, err
	}

	return a, nil
}

func (r *AccountsRepo) Update(ctx context.Context, a account.Account) (account.Account, error) {
	var out account.Account

	err := r.pool.QueryRow(
		ctx,
		`UPDATE accounts
			SET password_hash = $2,
					email = $3,
					nickname = $4,
					memo = $5,
					modified_at = $6,
					modified_by = $7
		WHERE user_id = $1
		RETURNING user_id, password_hash, email, nickname, memo, created_at, created_by, modified_at, modified_by`,
		a.UserID,
		a.PasswordHash,
		a.Email,
		a.Nickname,
		a.Memo,
		a.ModifiedAt,
		a.ModifiedBy,
	).Scan(
		&out.UserID,
		&out.PasswordHash,
		&out.Email,
		&out.Nickname,
		&out.Memo,
		&out.CreatedAt,
		&out.CreatedBy,
		&out.ModifiedAt,
		&out.ModifiedBy,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return account.Account{}, account.ErrNotFound
		}

		return account.Account{}, err
	}

	return out, nil
}

func (r *AccountsRepo) Delete(ctx context.Context, userID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM accounts WHERE user_id = $1`, userID)

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return account.ErrNotFound
	}

	return nil
}
