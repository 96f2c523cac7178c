package userrepo

import (
	"context"
	"database/sql"

	"github.com/opaygodly-bot/uwezo-funds/model"
)

type Repo interface {
	Create(ctx context.Context, u *model.User) error
	ByPhone(ctx context.Context, phone string) (*model.User, error)
	ByID(ctx context.Context, id int64) (*model.User, error)
	UpdatePassword(ctx context.Context, phone, passwordHash string) (bool, error)
	SetLoanLimit(ctx context.Context, userID, limit int64) error
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

func (r *repo) Create(ctx context.Context, u *model.User) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO users(name, phone, role, password_hash)
		VALUES ($1,$2,$3,$4)
		RETURNING id, created_at`,
		u.Name, u.Phone, u.Role, u.PasswordHash,
	).Scan(&u.ID, &u.CreatedAt)
}

func (r *repo) ByPhone(ctx context.Context, phone string) (*model.User, error) {
	return r.one(ctx, `WHERE phone = $1`, phone)
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.User, error) {
	return r.one(ctx, `WHERE id = $1`, id)
}

func (r *repo) one(ctx context.Context, where string, arg any) (*model.User, error) {
	u := &model.User{}
	var limit sql.NullInt64
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, phone, role, password_hash, loan_limit, has_checked_limit, created_at
		FROM users `+where,
		arg,
	).Scan(&u.ID, &u.Name, &u.Phone, &u.Role, &u.PasswordHash, &limit, &u.HasCheckedLimit, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	if limit.Valid {
		u.LoanLimit = &limit.Int64
	}
	return u, nil
}

func (r *repo) UpdatePassword(ctx context.Context, phone, passwordHash string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET password_hash = $2 WHERE phone = $1`,
		phone, passwordHash,
	)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *repo) SetLoanLimit(ctx context.Context, userID, limit int64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE users SET loan_limit = $2, has_checked_limit = TRUE WHERE id = $1`,
		userID, limit,
	)
	return err
}
