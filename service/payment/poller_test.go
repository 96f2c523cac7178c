package paymentsvc

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/opaygodly-bot/uwezo-funds/model"

	"github.com/stretchr/testify/require"
)

// scriptChecker replays a fixed sequence of status responses; the last entry
// repeats forever.
type scriptChecker struct {
	mu    sync.Mutex
	steps []scriptStep
	i     int
	block time.Duration
}

type scriptStep struct {
	res *model.StatusResult
	err error
}

func (c *scriptChecker) CheckStatus(ctx context.Context, ref string) (*model.StatusResult, error) {
	if c.block > 0 {
		select {
		case <-time.After(c.block):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	step := c.steps[c.i]
	if c.i < len(c.steps)-1 {
		c.i++
	}
	return step.res, step.err
}

func pending() scriptStep {
	return scriptStep{res: &model.StatusResult{State: model.PaymentPending, GatewayStatus: "QUEUED"}}
}

type counters struct {
	success, failure, timeout atomic.Int32
	lastRes                   atomic.Value
	lastReason                atomic.Value
	done                      chan struct{}
	once                      sync.Once
}

func newCounters() *counters { return &counters{done: make(chan struct{})} }

func (c *counters) callbacks() Callbacks {
	return Callbacks{
		OnSuccess: func(res model.StatusResult) {
			c.success.Add(1)
			c.lastRes.Store(res)
			c.once.Do(func() { close(c.done) })
		},
		OnFailure: func(reason string) {
			c.failure.Add(1)
			c.lastReason.Store(reason)
			c.once.Do(func() { close(c.done) })
		},
		OnTimeout: func() {
			c.timeout.Add(1)
			c.once.Do(func() { close(c.done) })
		},
	}
}

func (c *counters) wait(t *testing.T) {
	t.Helper()
	select {
	case <-c.done:
	case <-time.After(2 * time.Second):
		t.Fatal("no terminal callback fired")
	}
}

func (c *counters) total() int32 {
	return c.success.Load() + c.failure.Load() + c.timeout.Load()
}

func fastCfg() PollConfig {
	return PollConfig{Interval: 5 * time.Millisecond, Timeout: time.Second}
}

func TestPoller_SuccessAfterPending(t *testing.T) {
	checker := &scriptChecker{steps: []scriptStep{
		pending(),
		pending(),
		{res: &model.StatusResult{State: model.PaymentSuccess, Amount: 50}},
	}}
	cb := newCounters()
	p := NewPoller(checker, fastCfg(), nil)

	require.True(t, p.Start("TX1", 50, cb.callbacks()))
	cb.wait(t)

	// give any stray ticks time to land
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, int32(1), cb.success.Load())
	require.Equal(t, int32(1), cb.total())
	require.Equal(t, PollSuccess, p.State())

	res := cb.lastRes.Load().(model.StatusResult)
	require.Equal(t, int64(50), res.Amount)
}

func TestPoller_AmountBackfill(t *testing.T) {
	checker := &scriptChecker{steps: []scriptStep{
		{res: &model.StatusResult{State: model.PaymentSuccess}}, // gateway omitted amount
	}}
	cb := newCounters()
	p := NewPoller(checker, fastCfg(), nil)

	p.Start("TX1", 100, cb.callbacks())
	cb.wait(t)

	res := cb.lastRes.Load().(model.StatusResult)
	require.Equal(t, int64(100), res.Amount)
}

func TestPoller_ExplicitFailure(t *testing.T) {
	checker := &scriptChecker{steps: []scriptStep{
		pending(),
		{res: &model.StatusResult{State: model.PaymentFailure, Err: "insufficient funds"}},
	}}
	cb := newCounters()
	p := NewPoller(checker, fastCfg(), nil)

	p.Start("TX1", 0, cb.callbacks())
	cb.wait(t)

	require.Equal(t, int32(1), cb.failure.Load())
	require.Equal(t, int32(1), cb.total())
	require.Equal(t, "insufficient funds", cb.lastReason.Load().(string))
	require.Equal(t, PollFailure, p.State())
	require.Equal(t, "insufficient funds", p.Err())
}

func TestPoller_TickErrorIsTerminal(t *testing.T) {
	checker := &scriptChecker{steps: []scriptStep{
		{err: errors.New("connection refused")},
	}}
	cb := newCounters()
	p := NewPoller(checker, fastCfg(), nil)

	p.Start("TX1", 0, cb.callbacks())
	cb.wait(t)

	require.Equal(t, int32(1), cb.failure.Load())
	require.Equal(t, int32(1), cb.total())
	require.Equal(t, PollFailure, p.State())
}

func TestPoller_Timeout(t *testing.T) {
	checker := &scriptChecker{steps: []scriptStep{pending()}}
	cb := newCounters()
	cfg := PollConfig{Interval: 5 * time.Millisecond, Timeout: 40 * time.Millisecond}
	p := NewPoller(checker, cfg, nil)

	p.Start("TX1", 0, cb.callbacks())
	cb.wait(t)

	time.Sleep(50 * time.Millisecond)
	require.Equal(t, int32(1), cb.timeout.Load())
	require.Equal(t, int32(1), cb.total())
	require.Equal(t, PollTimeout, p.State())
}

func TestPoller_StartWhilePendingRejected(t *testing.T) {
	checker := &scriptChecker{steps: []scriptStep{pending()}}
	cb := newCounters()
	p := NewPoller(checker, fastCfg(), nil)

	require.True(t, p.Start("TX1", 0, cb.callbacks()))
	require.False(t, p.Start("TX2", 0, cb.callbacks()))
	p.Reset()
}

func TestPoller_ResetSuppressesInflightTick(t *testing.T) {
	checker := &scriptChecker{
		steps: []scriptStep{{res: &model.StatusResult{State: model.PaymentSuccess}}},
		block: 30 * time.Millisecond,
	}
	cb := newCounters()
	p := NewPoller(checker, fastCfg(), nil)

	p.Start("TX1", 0, cb.callbacks())
	time.Sleep(5 * time.Millisecond) // first check now in flight
	p.Reset()

	time.Sleep(80 * time.Millisecond)
	require.Equal(t, int32(0), cb.total(), "stale tick fired a callback after Reset")
	require.Equal(t, PollIdle, p.State())
	require.Equal(t, time.Duration(0), p.Elapsed())
}

func TestPoller_ReusableAfterTerminal(t *testing.T) {
	checker := &scriptChecker{steps: []scriptStep{
		{res: &model.StatusResult{State: model.PaymentFailure, Err: "failed"}},
	}}
	cb1 := newCounters()
	p := NewPoller(checker, fastCfg(), nil)

	p.Start("TX1", 0, cb1.callbacks())
	cb1.wait(t)
	require.Equal(t, PollFailure, p.State())

	// terminal is not re-enterable without Reset
	p.Reset()
	require.Equal(t, PollIdle, p.State())
	require.Empty(t, p.Err())

	// and the same poller can run a fresh attempt
	cb2 := newCounters()
	require.True(t, p.Start("TX2", 0, cb2.callbacks()))
	cb2.wait(t)
	require.Equal(t, int32(1), cb2.failure.Load())
}

func TestPoller_CancelFromTerminalIsSafe(t *testing.T) {
	checker := &scriptChecker{steps: []scriptStep{
		{res: &model.StatusResult{State: model.PaymentSuccess}},
	}}
	cb := newCounters()
	p := NewPoller(checker, fastCfg(), nil)

	p.Start("TX1", 0, cb.callbacks())
	cb.wait(t)
	p.Cancel()
	p.Cancel() // idempotent
	require.Equal(t, PollIdle, p.State())
}
