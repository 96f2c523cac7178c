package paymentsvc

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/opaygodly-bot/uwezo-funds/model"
)

type PollState string

const (
	PollIdle    PollState = "idle"
	PollPending PollState = "pending"
	PollSuccess PollState = "success"
	PollFailure PollState = "failure"
	PollTimeout PollState = "timeout"
)

// StatusChecker is one status probe against the gateway.
type StatusChecker interface {
	CheckStatus(ctx context.Context, reference string) (*model.StatusResult, error)
}

type PollConfig struct {
	Interval time.Duration // cadence between status checks
	Timeout  time.Duration // overall deadline for the attempt
}

// Callbacks receive the attempt's terminal outcome. Exactly one of the three
// fires per Start..terminal cycle, and at most once.
type Callbacks struct {
	OnSuccess func(res model.StatusResult)
	OnFailure func(reason string)
	OnTimeout func()
}

// Poller drives the bounded status-polling loop for one payment attempt:
// idle -> pending -> {success | failure | timeout}, with only idle
// re-enterable via Reset. Each Start gets a session number; in-flight checks
// that resolve after Reset or after a terminal transition find their session
// stale and are discarded, so a slow tick can never fire a late callback.
type Poller struct {
	checker StatusChecker
	cfg     PollConfig
	log     *slog.Logger

	mu        sync.Mutex
	state     PollState
	session   uint64
	cancel    context.CancelFunc
	startedAt time.Time
	lastErr   string
}

func NewPoller(checker StatusChecker, cfg PollConfig, log *slog.Logger) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = 2 * time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 180 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	return &Poller{checker: checker, cfg: cfg, log: log, state: PollIdle}
}

func (p *Poller) State() PollState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Poller) Err() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

// Elapsed reports time since the current attempt started; zero when idle.
func (p *Poller) Elapsed() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == PollIdle || p.startedAt.IsZero() {
		return 0
	}
	return time.Since(p.startedAt)
}

// Start begins polling the given reference. It returns false without side
// effects when a poll is already pending (at most one concurrent attempt per
// poller). expectedAmount back-fills the amount on a success response that
// omits it; it does not affect classification.
func (p *Poller) Start(reference string, expectedAmount int64, cb Callbacks) bool {
	p.mu.Lock()
	if p.state == PollPending {
		p.mu.Unlock()
		return false
	}
	p.session++
	sess := p.session
	p.state = PollPending
	p.startedAt = time.Now()
	p.lastErr = ""
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.mu.Unlock()

	go p.run(ctx, sess, reference, expectedAmount, cb)
	return true
}

// Cancel stops the current attempt and returns to idle. No callback fires.
func (p *Poller) Cancel() { p.Reset() }

// Reset unconditionally tears down timers and in-flight work, clears any
// accumulated error and returns to idle. Safe from any state.
func (p *Poller) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.session++ // invalidate in-flight ticks
	p.state = PollIdle
	p.lastErr = ""
	p.startedAt = time.Time{}
}

func (p *Poller) run(ctx context.Context, sess uint64, reference string, expectedAmount int64, cb Callbacks) {
	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()
	deadline := time.NewTimer(p.cfg.Timeout)
	defer deadline.Stop()

	// First check fires immediately, before the first tick.
	if p.tick(ctx, sess, reference, expectedAmount, cb) {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-deadline.C:
			if p.finish(sess, PollTimeout, "") && cb.OnTimeout != nil {
				cb.OnTimeout()
			}
			return
		case <-ticker.C:
			if p.tick(ctx, sess, reference, expectedAmount, cb) {
				return
			}
		}
	}
}

// tick performs one status check and reports whether the loop should stop.
func (p *Poller) tick(ctx context.Context, sess uint64, reference string, expectedAmount int64, cb Callbacks) bool {
	res, err := p.checker.CheckStatus(ctx, reference)
	if ctx.Err() != nil {
		// cancelled mid-flight; the session guard already moved on
		return true
	}
	if err != nil {
		// A failed check ends the attempt; retry is a pending-only policy.
		if p.finish(sess, PollFailure, err.Error()) && cb.OnFailure != nil {
			cb.OnFailure(err.Error())
		}
		return true
	}

	switch res.State {
	case model.PaymentSuccess:
		if res.Amount == 0 && expectedAmount > 0 {
			res.Amount = expectedAmount
		}
		if p.finish(sess, PollSuccess, "") && cb.OnSuccess != nil {
			cb.OnSuccess(*res)
		}
		return true
	case model.PaymentFailure:
		reason := res.Err
		if reason == "" {
			reason = "Payment failed"
		}
		if p.finish(sess, PollFailure, reason) && cb.OnFailure != nil {
			cb.OnFailure(reason)
		}
		return true
	default:
		p.log.Debug("payment pending, will retry", "reference", reference, "gateway_status", res.GatewayStatus)
		return false
	}
}

// finish attempts the pending -> terminal transition for the given session.
// It returns true only for the first terminal classification of a live
// session; stale or repeated attempts lose.
func (p *Poller) finish(sess uint64, state PollState, errMsg string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.session != sess || p.state != PollPending {
		return false
	}
	p.state = state
	p.lastErr = errMsg
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	return true
}
