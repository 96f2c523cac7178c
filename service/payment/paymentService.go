package paymentsvc

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/opaygodly-bot/uwezo-funds/model"
	payherorepo "github.com/opaygodly-bot/uwezo-funds/repository/payhero"
	refrepo "github.com/opaygodly-bot/uwezo-funds/repository/reference"
	"github.com/opaygodly-bot/uwezo-funds/util/phone"
	"github.com/opaygodly-bot/uwezo-funds/util/reference"
)

var (
	ErrInvalidPhone = errors.New("invalid phone")
	ErrBadAmount    = errors.New("invalid amount")
)

// FeeConfirmer is the loan-side reaction to a confirmed fee payment.
type FeeConfirmer interface {
	ConfirmFeePaid(ctx context.Context, loanID int64) error
}

type InitiateFeeIn struct {
	UserID       int64
	LoanID       int64
	Phone        string
	CustomerName string
	Amount       int64
}

type Service interface {
	// InitiateFee sends the STK push for a loan's processing fee and starts
	// a server-side polling session that confirms the fee on success.
	InitiateFee(ctx context.Context, in InitiateFeeIn) (*model.PaymentAttempt, error)
	// CheckStatus resolves the reference through the reconciler and returns
	// the normalized gateway status.
	CheckStatus(ctx context.Context, ref string) (*model.StatusResult, error)
	// HandleCallback acknowledges the gateway webhook. Polling, not the
	// webhook, is the authoritative confirmation path.
	HandleCallback(ctx context.Context, raw []byte) error
}

type service struct {
	gw    payherorepo.Repo
	refs  refrepo.Repo
	loans FeeConfirmer
	cfg   PollConfig
	log   *slog.Logger

	mu      sync.Mutex
	pollers map[string]*Poller // keyed by client reference
}

func New(gw payherorepo.Repo, refs refrepo.Repo, loans FeeConfirmer, cfg PollConfig, log *slog.Logger) Service {
	if log == nil {
		log = slog.Default()
	}
	return &service{
		gw:      gw,
		refs:    refs,
		loans:   loans,
		cfg:     cfg,
		log:     log,
		pollers: make(map[string]*Poller),
	}
}

func (s *service) InitiateFee(ctx context.Context, in InitiateFeeIn) (*model.PaymentAttempt, error) {
	if in.Amount <= 0 {
		return nil, ErrBadAmount
	}
	canonical, err := phone.Normalize(in.Phone)
	if err != nil {
		return nil, ErrInvalidPhone
	}

	clientRef := reference.New()
	resp, err := s.gw.Initiate(ctx, payherorepo.InitiateReq{
		Phone:           canonical,
		Amount:          in.Amount,
		CustomerName:    in.CustomerName,
		ClientReference: clientRef,
	})
	if err != nil {
		// Initiation errors are terminal; the caller retries with a fresh
		// attempt, never an automatic re-send.
		return nil, err
	}

	attempt := &model.PaymentAttempt{
		ClientReference:   clientRef,
		GatewayReference:  resp.GatewayReference,
		CheckoutRequestID: resp.CheckoutRequestID,
		Phone:             canonical,
		Amount:            in.Amount,
		StartedAt:         time.Now().UTC(),
	}

	if resp.GatewayReference != "" {
		if err := s.refs.Put(ctx, clientRef, resp.GatewayReference); err != nil {
			// Non-fatal: polling falls back to the client reference.
			s.log.Warn("storing reference mapping failed", "client_ref", clientRef, "err", err)
		}
	} else {
		s.log.Warn("gateway returned no reference, polling under client reference", "client_ref", clientRef)
	}

	s.startPolling(attempt, in.LoanID)
	return attempt, nil
}

func (s *service) startPolling(attempt *model.PaymentAttempt, loanID int64) {
	p := NewPoller(s, s.cfg, s.log)
	clientRef := attempt.ClientReference

	s.mu.Lock()
	s.pollers[clientRef] = p
	s.mu.Unlock()

	done := func() {
		s.mu.Lock()
		delete(s.pollers, clientRef)
		s.mu.Unlock()
	}

	p.Start(attempt.Reference(), attempt.Amount, Callbacks{
		OnSuccess: func(res model.StatusResult) {
			defer done()
			// request context is long gone by the time payment confirms
			if err := s.loans.ConfirmFeePaid(context.Background(), loanID); err != nil {
				s.log.Error("confirm fee paid failed", "loan_id", loanID, "client_ref", clientRef, "err", err)
				return
			}
			s.log.Info("processing fee confirmed", "loan_id", loanID, "client_ref", clientRef, "amount", res.Amount)
		},
		OnFailure: func(reason string) {
			defer done()
			s.log.Warn("fee payment failed", "loan_id", loanID, "client_ref", clientRef, "reason", reason)
		},
		OnTimeout: func() {
			defer done()
			// Outcome unknown: the gateway may still complete asynchronously.
			s.log.Warn("fee payment polling timed out", "loan_id", loanID, "client_ref", clientRef)
		},
	})
}

// CheckStatus also serves as the Poller's StatusChecker.
func (s *service) CheckStatus(ctx context.Context, ref string) (*model.StatusResult, error) {
	lookup, err := s.refs.Resolve(ctx, ref)
	if err != nil {
		return nil, err
	}
	return s.gw.Status(ctx, lookup)
}

var _ StatusChecker = (*service)(nil)

func (s *service) HandleCallback(ctx context.Context, raw []byte) error {
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		return errors.New("bad callback json")
	}
	s.log.Info("payment callback received", "body", body)
	return nil
}
