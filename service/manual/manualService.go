package manualsvc

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/opaygodly-bot/uwezo-funds/model"
	manualrepo "github.com/opaygodly-bot/uwezo-funds/repository/manual"
)

const recentLimit = 50

var (
	ErrMissingTill = errors.New("missing till number")
	ErrNotFound    = errors.New("payment not found")
)

// FeeConfirmer lets a verified till payment drive the loan transition the
// same way a confirmed STK push does.
type FeeConfirmer interface {
	ConfirmFeePaid(ctx context.Context, loanID int64) error
}

type RecordReq struct {
	LoanID        *int64
	Amount        int64
	Till          string
	Business      string
	TxnCode       string
	Phone         string
	Note          string
	PastedMessage string
}

type Service interface {
	Record(ctx context.Context, userID int64, req RecordReq) (*model.ManualPayment, error)
	Get(ctx context.Context, id string) (*model.ManualPayment, error)
	ByTxnCode(ctx context.Context, code string) (*model.ManualPayment, error)
	Recent(ctx context.Context) ([]model.ManualPayment, error)
	Verify(ctx context.Context, id string, verified bool, adminNote string) (*model.ManualPayment, error)
}

type service struct {
	r     manualrepo.Repo
	loans FeeConfirmer
	log   *slog.Logger
	now   func() time.Time
}

func New(r manualrepo.Repo, loans FeeConfirmer, log *slog.Logger) Service {
	if log == nil {
		log = slog.Default()
	}
	return &service{r: r, loans: loans, log: log, now: time.Now}
}

func (s *service) Record(ctx context.Context, userID int64, req RecordReq) (*model.ManualPayment, error) {
	if req.Till == "" {
		return nil, ErrMissingTill
	}

	p := &model.ManualPayment{
		ID:            uuid.NewString(),
		LoanID:        req.LoanID,
		UserID:        userID,
		Amount:        req.Amount,
		Till:          req.Till,
		Business:      req.Business,
		TxnCode:       req.TxnCode,
		Phone:         req.Phone,
		Note:          req.Note,
		PastedMessage: req.PastedMessage,
		Status:        model.ManualPending,
	}

	if autoVerify(req.Business, req.PastedMessage, req.Amount, s.now()) {
		now := s.now().UTC()
		p.Status = model.ManualVerified
		p.VerifiedAt = &now
	}

	if err := s.r.Insert(ctx, p); err != nil {
		return nil, err
	}

	if p.Status == model.ManualVerified {
		s.confirmLoan(ctx, p)
	}
	return p, nil
}

func (s *service) confirmLoan(ctx context.Context, p *model.ManualPayment) {
	if p.LoanID == nil {
		return
	}
	if err := s.loans.ConfirmFeePaid(ctx, *p.LoanID); err != nil {
		s.log.Error("confirm fee from manual payment failed", "payment_id", p.ID, "loan_id", *p.LoanID, "err", err)
	}
}

func (s *service) Get(ctx context.Context, id string) (*model.ManualPayment, error) {
	p, err := s.r.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNotFound
	}
	return p, nil
}

func (s *service) ByTxnCode(ctx context.Context, code string) (*model.ManualPayment, error) {
	p, err := s.r.ByTxnCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNotFound
	}
	return p, nil
}

func (s *service) Recent(ctx context.Context) ([]model.ManualPayment, error) {
	return s.r.Recent(ctx, recentLimit)
}

func (s *service) Verify(ctx context.Context, id string, verified bool, adminNote string) (*model.ManualPayment, error) {
	status := model.ManualRejected
	if verified {
		status = model.ManualVerified
	}
	var note *string
	if adminNote != "" {
		note = &adminNote
	}
	ok, err := s.r.SetVerification(ctx, id, status, s.now().UTC(), note)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}

	p, err := s.r.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNotFound
	}
	if verified {
		s.confirmLoan(ctx, p)
	}
	return p, nil
}
