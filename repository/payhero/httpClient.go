package payherorepo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"

	"github.com/opaygodly-bot/uwezo-funds/model"
	"github.com/opaygodly-bot/uwezo-funds/util/phone"
)

type Config struct {
	BaseURL     string
	AuthToken   string
	ChannelID   int
	CallbackURL string
}

type httpRepo struct {
	cfg    Config
	client *http.Client
}

func NewHTTP(cfg Config, client *http.Client) Repo {
	if client == nil {
		client = &http.Client{}
	}
	return &httpRepo{cfg: cfg, client: client}
}

func (r *httpRepo) authHeader() string {
	if strings.HasPrefix(r.cfg.AuthToken, "Basic ") {
		return r.cfg.AuthToken
	}
	return "Basic " + r.cfg.AuthToken
}

func (r *httpRepo) Initiate(ctx context.Context, req InitiateReq) (*InitiateResp, error) {
	body := map[string]any{
		"amount":             req.Amount,
		"phone_number":       phone.ToLocal(req.Phone),
		"channel_id":         r.cfg.ChannelID,
		"provider":           "m-pesa",
		"external_reference": req.ClientReference,
		"customer_name":      req.CustomerName,
		"callback_url":       r.cfg.CallbackURL,
	}
	b, _ := json.Marshal(body)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.cfg.BaseURL+"/api/v2/payments", bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", r.authHeader())

	resp, err := r.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)

	var data struct {
		Reference         string `json:"reference"`
		RequestID         string `json:"request_id"`
		CheckoutRequestID string `json:"checkout_request_id"`
		Error             string `json:"error"`
		Message           string `json:"message"`
		ErrorMessage      string `json:"error_message"`
	}
	decodeErr := json.Unmarshal(raw, &data)

	if resp.StatusCode >= 300 {
		msg := firstNonEmpty(data.Error, data.Message, data.ErrorMessage)
		if decodeErr != nil {
			msg = strings.TrimSpace(string(raw))
		}
		return nil, &GatewayError{StatusCode: resp.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("payhero: invalid initiate response: %w", decodeErr)
	}

	checkout := data.CheckoutRequestID
	if checkout == "" {
		checkout = data.RequestID
	}
	return &InitiateResp{
		GatewayReference:  data.Reference,
		CheckoutRequestID: checkout,
		RequestID:         data.RequestID,
	}, nil
}

func (r *httpRepo) Status(ctx context.Context, reference string) (*model.StatusResult, error) {
	u := r.cfg.BaseURL + "/api/v2/transaction-status?reference=" + url.QueryEscape(reference)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", r.authHeader())

	resp, err := r.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)

	// Status availability lags initiation; a not-found here is transient.
	if resp.StatusCode == http.StatusNotFound {
		return &model.StatusResult{State: model.PaymentPending, Err: "transaction not yet available"}, nil
	}

	var data statusBody
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("payhero: invalid status response: %w", err)
	}
	return classify(data), nil
}

type statusBody struct {
	Status        string   `json:"status"`
	Paid          *bool    `json:"paid"`
	Success       *bool    `json:"success"`
	Amount        *float64 `json:"amount"`
	TransactionID string   `json:"transaction_id"`
	Error         string   `json:"error"`
	ErrorMessage  string   `json:"error_message"`
	Message       string   `json:"message"`
}

// classify folds PayHero's status vocabulary (QUEUED/SUCCESS/FAILED plus
// boolean paid/success flags) into the three-way PaymentState. Only an
// explicit success marker counts as success: QUEUED means the user has not
// entered their PIN yet, and the flags alone confirm nothing while the
// status string is absent, QUEUED or FAILED.
func classify(data statusBody) *model.StatusResult {
	out := &model.StatusResult{
		GatewayStatus: strings.ToUpper(strings.TrimSpace(data.Status)),
		TransactionID: data.TransactionID,
	}
	if data.Amount != nil {
		out.Amount = int64(math.Round(*data.Amount))
	}

	errMsg := firstNonEmpty(data.Error, data.ErrorMessage, data.Message)
	if strings.Contains(strings.ToLower(errMsg), "not found") {
		out.State = model.PaymentPending
		out.Err = errMsg
		return out
	}

	switch {
	case out.GatewayStatus == "SUCCESS":
		out.State = model.PaymentSuccess
	case out.GatewayStatus == "FAILED":
		out.State = model.PaymentFailure
		if errMsg == "" {
			errMsg = "Payment failed"
		}
		out.Err = errMsg
	case flagged(data.Paid) || flagged(data.Success):
		if out.GatewayStatus != "" && out.GatewayStatus != "QUEUED" {
			out.State = model.PaymentSuccess
		} else {
			out.State = model.PaymentPending
		}
	default:
		out.State = model.PaymentPending
		out.Err = errMsg
	}
	return out
}

func flagged(b *bool) bool { return b != nil && *b }

func firstNonEmpty(ss ...string) string {
	for _, s := range ss {
		if s != "" {
			return s
		}
	}
	return ""
}
