package paymentsvc

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/opaygodly-bot/uwezo-funds/model"
	payherorepo "github.com/opaygodly-bot/uwezo-funds/repository/payhero"
	refrepo "github.com/opaygodly-bot/uwezo-funds/repository/reference"

	"github.com/stretchr/testify/require"
)

type mockGateway struct {
	initiateFn func(ctx context.Context, req payherorepo.InitiateReq) (*payherorepo.InitiateResp, error)
	statusFn   func(ctx context.Context, ref string) (*model.StatusResult, error)

	mu       sync.Mutex
	statuses []string // references the status endpoint was asked about
}

var _ payherorepo.Repo = (*mockGateway)(nil)

func (m *mockGateway) Initiate(ctx context.Context, req payherorepo.InitiateReq) (*payherorepo.InitiateResp, error) {
	return m.initiateFn(ctx, req)
}

func (m *mockGateway) Status(ctx context.Context, ref string) (*model.StatusResult, error) {
	m.mu.Lock()
	m.statuses = append(m.statuses, ref)
	m.mu.Unlock()
	return m.statusFn(ctx, ref)
}

func (m *mockGateway) polledRefs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.statuses...)
}

type mockConfirmer struct {
	confirmed chan int64
}

func newMockConfirmer() *mockConfirmer { return &mockConfirmer{confirmed: make(chan int64, 1)} }

func (m *mockConfirmer) ConfirmFeePaid(ctx context.Context, loanID int64) error {
	m.confirmed <- loanID
	return nil
}

func TestInitiateFee_SuccessConfirmsLoan(t *testing.T) {
	gw := &mockGateway{
		initiateFn: func(ctx context.Context, req payherorepo.InitiateReq) (*payherorepo.InitiateResp, error) {
			require.Equal(t, "254712345678", req.Phone)
			require.Equal(t, int64(50), req.Amount)
			require.NotEmpty(t, req.ClientReference)
			return &payherorepo.InitiateResp{GatewayReference: "PH-1", CheckoutRequestID: "req-1"}, nil
		},
		statusFn: func(ctx context.Context, ref string) (*model.StatusResult, error) {
			return &model.StatusResult{State: model.PaymentSuccess, Amount: 50}, nil
		},
	}
	refs := refrepo.NewMemory()
	confirmer := newMockConfirmer()
	svc := New(gw, refs, confirmer, fastCfg(), nil)

	attempt, err := svc.InitiateFee(context.Background(), InitiateFeeIn{
		UserID: 7, LoanID: 42, Phone: "0712345678", CustomerName: "Wanjiku", Amount: 50,
	})
	require.NoError(t, err)
	require.Equal(t, "PH-1", attempt.GatewayReference)
	require.Equal(t, "req-1", attempt.CheckoutRequestID)

	select {
	case loanID := <-confirmer.confirmed:
		require.Equal(t, int64(42), loanID)
	case <-time.After(2 * time.Second):
		t.Fatal("fee was never confirmed")
	}

	// the gateway reference is authoritative for status checks
	require.Contains(t, gw.polledRefs(), "PH-1")

	// the reconciler maps the client reference to the gateway's
	resolved, err := refs.Resolve(context.Background(), attempt.ClientReference)
	require.NoError(t, err)
	require.Equal(t, "PH-1", resolved)
}

func TestInitiateFee_NoGatewayReferenceFallsBack(t *testing.T) {
	gw := &mockGateway{
		initiateFn: func(ctx context.Context, req payherorepo.InitiateReq) (*payherorepo.InitiateResp, error) {
			return &payherorepo.InitiateResp{CheckoutRequestID: "req-2"}, nil
		},
		statusFn: func(ctx context.Context, ref string) (*model.StatusResult, error) {
			return &model.StatusResult{State: model.PaymentSuccess}, nil
		},
	}
	confirmer := newMockConfirmer()
	svc := New(gw, refrepo.NewMemory(), confirmer, fastCfg(), nil)

	attempt, err := svc.InitiateFee(context.Background(), InitiateFeeIn{
		LoanID: 1, Phone: "0712345678", Amount: 100,
	})
	require.NoError(t, err)
	require.Empty(t, attempt.GatewayReference)

	select {
	case <-confirmer.confirmed:
	case <-time.After(2 * time.Second):
		t.Fatal("fee was never confirmed")
	}
	// degraded mode: polling continued under the client reference
	require.Contains(t, gw.polledRefs(), attempt.ClientReference)
}

func TestInitiateFee_Validation(t *testing.T) {
	svc := New(&mockGateway{}, refrepo.NewMemory(), newMockConfirmer(), fastCfg(), nil)

	_, err := svc.InitiateFee(context.Background(), InitiateFeeIn{Phone: "12345", Amount: 50})
	require.ErrorIs(t, err, ErrInvalidPhone)

	_, err = svc.InitiateFee(context.Background(), InitiateFeeIn{Phone: "0712345678", Amount: 0})
	require.ErrorIs(t, err, ErrBadAmount)
}

func TestInitiateFee_GatewayErrorPropagates(t *testing.T) {
	gwErr := &payherorepo.GatewayError{StatusCode: 401, Message: "invalid credentials"}
	gw := &mockGateway{
		initiateFn: func(ctx context.Context, req payherorepo.InitiateReq) (*payherorepo.InitiateResp, error) {
			return nil, gwErr
		},
	}
	svc := New(gw, refrepo.NewMemory(), newMockConfirmer(), fastCfg(), nil)

	_, err := svc.InitiateFee(context.Background(), InitiateFeeIn{Phone: "0712345678", Amount: 50})
	require.ErrorIs(t, err, gwErr)
	require.Empty(t, gw.polledRefs(), "no polling after a failed initiation")
}

func TestCheckStatus_TranslatesReference(t *testing.T) {
	gw := &mockGateway{
		statusFn: func(ctx context.Context, ref string) (*model.StatusResult, error) {
			return &model.StatusResult{State: model.PaymentPending, GatewayStatus: "QUEUED"}, nil
		},
	}
	refs := refrepo.NewMemory()
	require.NoError(t, refs.Put(context.Background(), "TX-client", "PH-9"))
	svc := New(gw, refs, newMockConfirmer(), fastCfg(), nil)

	res, err := svc.CheckStatus(context.Background(), "TX-client")
	require.NoError(t, err)
	require.Equal(t, model.PaymentPending, res.State)
	require.Equal(t, []string{"PH-9"}, gw.polledRefs())
}

func TestHandleCallback(t *testing.T) {
	svc := New(&mockGateway{}, refrepo.NewMemory(), newMockConfirmer(), fastCfg(), nil)

	require.NoError(t, svc.HandleCallback(context.Background(), []byte(`{"status":"SUCCESS"}`)))
	require.Error(t, svc.HandleCallback(context.Background(), []byte(`not-json`)))
}
