package manualrepo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/opaygodly-bot/uwezo-funds/model"
)

const paymentColumns = `id, loan_id, user_id, amount, till, business, txn_code, phone,
note, pasted_message, status, admin_note, created_at, verified_at`

type Repo interface {
	Insert(ctx context.Context, p *model.ManualPayment) error
	ByID(ctx context.Context, id string) (*model.ManualPayment, error)
	ByTxnCode(ctx context.Context, code string) (*model.ManualPayment, error)
	Recent(ctx context.Context, limit int) ([]model.ManualPayment, error)
	SetVerification(ctx context.Context, id string, status model.ManualPaymentStatus, verifiedAt time.Time, adminNote *string) (bool, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

func (r *repo) Insert(ctx context.Context, p *model.ManualPayment) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO manual_payments (id, loan_id, user_id, amount, till, business, txn_code,
		                             phone, note, pasted_message, status, verified_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		RETURNING created_at`,
		p.ID, p.LoanID, p.UserID, p.Amount, p.Till, p.Business, p.TxnCode,
		p.Phone, p.Note, p.PastedMessage, p.Status, p.VerifiedAt,
	).Scan(&p.CreatedAt)
}

func (r *repo) ByID(ctx context.Context, id string) (*model.ManualPayment, error) {
	return r.one(ctx, `WHERE id = $1`, id)
}

func (r *repo) ByTxnCode(ctx context.Context, code string) (*model.ManualPayment, error) {
	return r.one(ctx, `WHERE txn_code = $1 ORDER BY created_at DESC LIMIT 1`, code)
}

func (r *repo) one(ctx context.Context, where string, arg any) (*model.ManualPayment, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+paymentColumns+`
		FROM manual_payments `+where, arg)
	p, err := scanPayment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

func (r *repo) Recent(ctx context.Context, limit int) ([]model.ManualPayment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+paymentColumns+`
		FROM manual_payments
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ManualPayment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *repo) SetVerification(ctx context.Context, id string, status model.ManualPaymentStatus, verifiedAt time.Time, adminNote *string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE manual_payments
		SET status = $2, verified_at = $3, admin_note = $4
		WHERE id = $1`,
		id, status, verifiedAt, adminNote,
	)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

type rowScanner interface{ Scan(dest ...any) error }

func scanPayment(row rowScanner) (*model.ManualPayment, error) {
	p := &model.ManualPayment{}
	var loanID sql.NullInt64
	var verifiedAt sql.NullTime
	var adminNote sql.NullString
	err := row.Scan(&p.ID, &loanID, &p.UserID, &p.Amount, &p.Till, &p.Business,
		&p.TxnCode, &p.Phone, &p.Note, &p.PastedMessage, &p.Status, &adminNote,
		&p.CreatedAt, &verifiedAt)
	if err != nil {
		return nil, err
	}
	if loanID.Valid {
		p.LoanID = &loanID.Int64
	}
	if verifiedAt.Valid {
		p.VerifiedAt = &verifiedAt.Time
	}
	if adminNote.Valid {
		p.AdminNote = &adminNote.String
	}
	return p, nil
}
