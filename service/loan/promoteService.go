package loansvc

import (
	"context"
	"time"

	loanrepo "github.com/opaygodly-bot/uwezo-funds/repository/loan"
)

// Promoter sweeps loans through the back-office stage: once a processing fee
// has been confirmed for longer than the configured delay, the loan moves
// from in_processing to awaiting_disbursement. Running this server-side
// means the transition survives client reloads; the delay itself stands in
// for a real disbursement-desk confirmation.
type Promoter interface {
	PromoteDue(ctx context.Context) (int64, error)
}

type promoter struct {
	r     loanrepo.Repo
	delay time.Duration
}

func NewPromoter(r loanrepo.Repo, delay time.Duration) Promoter {
	return &promoter{r: r, delay: delay}
}

func (p *promoter) PromoteDue(ctx context.Context) (int64, error) {
	return p.r.PromoteProcessed(ctx, time.Now().UTC().Add(-p.delay))
}
