package loansvc

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"math/rand"
	"time"

	"github.com/opaygodly-bot/uwezo-funds/model"
	loanrepo "github.com/opaygodly-bot/uwezo-funds/repository/loan"
	userrepo "github.com/opaygodly-bot/uwezo-funds/repository/user"
)

const (
	interestRatePct = 10.0
	feeRatePct      = 1.0
	minLoanAmount   = 1000
)

// Eligibility limits a limit check can assign.
var loanLimits = []int64{8000, 10000, 12000, 15000, 18000, 20000, 22000, 25000}

var (
	ErrLoanOutstanding  = errors.New("existing loan in progress")
	ErrAmountOutOfRange = errors.New("amount outside allowed range")
	ErrNoDisbursedLoan  = errors.New("no disbursed loan")
	ErrBadRepayment     = errors.New("invalid repayment amount")
)

type Service interface {
	Apply(ctx context.Context, userID, amount int64, periodDays int, purpose string) (*model.Loan, error)
	List(ctx context.Context, userID int64) ([]model.Loan, error)
	CheckLimit(ctx context.Context, userID int64) (int64, error)
	// ConfirmFeePaid reacts to a confirmed processing-fee payment, moving the
	// loan from pending to in_processing. Safe to call more than once.
	ConfirmFeePaid(ctx context.Context, loanID int64) error
	Repay(ctx context.Context, userID, amount int64) (*model.Loan, error)
}

type service struct {
	db *sql.DB
	lr loanrepo.Repo
	ur userrepo.Repo
}

func New(db *sql.DB, lr loanrepo.Repo, ur userrepo.Repo) Service {
	return &service{db: db, lr: lr, ur: ur}
}

func (s *service) Apply(ctx context.Context, userID, amount int64, periodDays int, purpose string) (*model.Loan, error) {
	if amount < minLoanAmount || periodDays <= 0 {
		return nil, ErrAmountOutOfRange
	}
	u, err := s.ur.ByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.LoanLimit != nil && amount > *u.LoanLimit {
		return nil, ErrAmountOutOfRange
	}

	// One application at a time: reject while a loan is pending, in
	// processing or awaiting disbursement.
	latest, err := s.lr.LatestByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if latest != nil && latest.Status.Outstanding() {
		return nil, ErrLoanOutstanding
	}

	now := time.Now().UTC()
	total := roundPct(amount, 100+interestRatePct)
	fee := roundPct(amount, feeRatePct)

	l := &model.Loan{
		UserID:         userID,
		Amount:         amount,
		InterestRate:   interestRatePct,
		PeriodDays:     periodDays,
		TotalRepayable: total,
		ProcessingFee:  fee,
		Balance:        total,
		Status:         model.LoanPending,
		Purpose:        purpose,
		AppliedAt:      now,
		DueDate:        now.AddDate(0, 0, periodDays),
	}
	if err := s.lr.Insert(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

// roundPct computes round(amount * pct/100) in whole shillings.
func roundPct(amount int64, pct float64) int64 {
	return int64(math.Round(float64(amount) * pct / 100))
}

func (s *service) List(ctx context.Context, userID int64) ([]model.Loan, error) {
	return s.lr.ListByUser(ctx, userID)
}

func (s *service) CheckLimit(ctx context.Context, userID int64) (int64, error) {
	limit := loanLimits[rand.Intn(len(loanLimits))]
	if err := s.ur.SetLoanLimit(ctx, userID, limit); err != nil {
		return 0, err
	}
	return limit, nil
}

func (s *service) ConfirmFeePaid(ctx context.Context, loanID int64) error {
	// The repository guards on status=pending, so a duplicate success
	// callback is a no-op rather than a double transition.
	_, err := s.lr.MarkFeePaid(ctx, loanID, time.Now().UTC())
	return err
}

func (s *service) Repay(ctx context.Context, userID, amount int64) (*model.Loan, error) {
	if amount <= 0 {
		return nil, ErrBadRepayment
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	l, err := s.lr.DisbursedForUpdate(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	newBalance, status, err := settleRepayment(l, amount)
	if err != nil {
		return nil, err
	}
	if err = s.lr.ApplyRepayment(ctx, tx, l.ID, newBalance, status); err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}

	l.Balance = newBalance
	l.Status = status
	return l, nil
}

// settleRepayment computes the balance and status after a repayment. Only a
// loan that may legally move to repaid (i.e. a disbursed one) is accepted;
// the status changes only when the balance reaches zero.
func settleRepayment(l *model.Loan, amount int64) (int64, model.LoanStatus, error) {
	if l == nil || !model.ValidLoanTransition(l.Status, model.LoanRepaid) {
		return 0, "", ErrNoDisbursedLoan
	}
	if amount <= 0 || amount > l.Balance {
		return 0, "", ErrBadRepayment
	}
	newBalance := l.Balance - amount
	status := l.Status
	if newBalance == 0 {
		status = model.LoanRepaid
	}
	return newBalance, status, nil
}
