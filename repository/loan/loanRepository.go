// repository/loan/repo.go
package loanrepo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/opaygodly-bot/uwezo-funds/model"
)

const loanColumns = `id, user_id, amount, interest_rate, period_days, total_repayable,
processing_fee, balance, status, purpose, applied_at, due_date, fee_paid_at, created_at`

type Repo interface {
	Insert(ctx context.Context, l *model.Loan) error
	ByID(ctx context.Context, id int64) (*model.Loan, error)
	// ListByUser returns the user's loans newest first.
	ListByUser(ctx context.Context, userID int64) ([]model.Loan, error)
	// LatestByUser returns the user's most recent loan, or nil when the user
	// has none. A new application is only ever blocked by the newest loan,
	// so callers check its status with model.LoanStatus.Outstanding.
	LatestByUser(ctx context.Context, userID int64) (*model.Loan, error)
	// MarkFeePaid transitions pending -> in_processing. The status guard makes
	// the call idempotent: a duplicate confirmation affects zero rows.
	MarkFeePaid(ctx context.Context, loanID int64, paidAt time.Time) (bool, error)
	// PromoteProcessed moves loans whose fee was confirmed before cutoff from
	// in_processing to awaiting_disbursement.
	PromoteProcessed(ctx context.Context, cutoff time.Time) (int64, error)

	DisbursedForUpdate(ctx context.Context, tx *sql.Tx, userID int64) (*model.Loan, error)
	ApplyRepayment(ctx context.Context, tx *sql.Tx, loanID, newBalance int64, status model.LoanStatus) error
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

func (r *repo) Insert(ctx context.Context, l *model.Loan) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO loans (user_id, amount, interest_rate, period_days, total_repayable,
		                   processing_fee, balance, status, purpose, applied_at, due_date)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING id, created_at`,
		l.UserID, l.Amount, l.InterestRate, l.PeriodDays, l.TotalRepayable,
		l.ProcessingFee, l.Balance, l.Status, l.Purpose, l.AppliedAt, l.DueDate,
	).Scan(&l.ID, &l.CreatedAt)
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.Loan, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+loanColumns+`
		FROM loans
		WHERE id = $1`, id)
	return scanLoan(row)
}

func (r *repo) ListByUser(ctx context.Context, userID int64) ([]model.Loan, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+loanColumns+`
		FROM loans
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Loan
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *l)
	}
	return out, rows.Err()
}

func (r *repo) LatestByUser(ctx context.Context, userID int64) (*model.Loan, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+loanColumns+`
		FROM loans
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1`, userID)
	l, err := scanLoan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return l, err
}

func (r *repo) MarkFeePaid(ctx context.Context, loanID int64, paidAt time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE loans
		SET status = 'in_processing', fee_paid_at = $2
		WHERE id = $1
		AND status = 'pending'`,
		loanID, paidAt,
	)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *repo) PromoteProcessed(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE loans
		SET status = 'awaiting_disbursement'
		WHERE status = 'in_processing'
		AND fee_paid_at <= $1`,
		cutoff,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *repo) DisbursedForUpdate(ctx context.Context, tx *sql.Tx, userID int64) (*model.Loan, error) {
	row := tx.QueryRowContext(ctx, `
		SELECT `+loanColumns+`
		FROM loans
		WHERE user_id = $1
		AND status = 'disbursed'
		ORDER BY created_at DESC
		LIMIT 1
		FOR UPDATE`, userID)
	l, err := scanLoan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return l, err
}

func (r *repo) ApplyRepayment(ctx context.Context, tx *sql.Tx, loanID, newBalance int64, status model.LoanStatus) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE loans
		SET balance = $2, status = $3
		WHERE id = $1`,
		loanID, newBalance, status,
	)
	return err
}

type rowScanner interface{ Scan(dest ...any) error }

func scanLoan(row rowScanner) (*model.Loan, error) {
	l := &model.Loan{}
	var feePaidAt sql.NullTime
	err := row.Scan(&l.ID, &l.UserID, &l.Amount, &l.InterestRate, &l.PeriodDays,
		&l.TotalRepayable, &l.ProcessingFee, &l.Balance, &l.Status, &l.Purpose,
		&l.AppliedAt, &l.DueDate, &feePaidAt, &l.CreatedAt)
	if err != nil {
		return nil, err
	}
	if feePaidAt.Valid {
		l.FeePaidAt = &feePaidAt.Time
	}
	return l, nil
}
