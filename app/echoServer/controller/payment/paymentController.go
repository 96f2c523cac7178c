// app/echoServer/controller/payment/paymentController.go
package payment

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/opaygodly-bot/uwezo-funds/app/echoServer/jwtx"
	payherorepo "github.com/opaygodly-bot/uwezo-funds/repository/payhero"
	paymentsvc "github.com/opaygodly-bot/uwezo-funds/service/payment"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc paymentsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// InitiateStk
// @Summary      Initiate STK push for a loan processing fee
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        payload  body  StkPushReq  true  "STK push request"
// @Success      202  {object}  map[string]any
// @Failure      400,401,502  {object}  map[string]any
// @Router       /api/payhero/stk [post]
func (ct *Controller) InitiateStk(c echo.Context) error {
	var req StkPushReq
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := ct.V.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "validation error")
	}
	userID, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	attempt, err := ct.Svc.InitiateFee(c.Request().Context(), paymentsvc.InitiateFeeIn{
		UserID:       userID,
		LoanID:       req.LoanID,
		Phone:        req.Phone,
		CustomerName: req.CustomerName,
		Amount:       req.Amount,
	})
	if err != nil {
		var gwErr *payherorepo.GatewayError
		switch {
		case errors.Is(err, paymentsvc.ErrInvalidPhone):
			return echo.NewHTTPError(http.StatusBadRequest, "invalid phone number")
		case errors.Is(err, paymentsvc.ErrBadAmount):
			return echo.NewHTTPError(http.StatusBadRequest, "invalid amount")
		case errors.As(err, &gwErr):
			ct.Log.Warn("stk initiation rejected", "user_id", userID, "loan_id", req.LoanID, "err", err)
			return echo.NewHTTPError(http.StatusBadGateway, gwErr.Error())
		default:
			ct.Log.Error("stk initiation failed", "user_id", userID, "loan_id", req.LoanID, "err", err)
			return echo.NewHTTPError(http.StatusBadGateway, "payment initiation failed")
		}
	}

	return c.JSON(http.StatusAccepted, echo.Map{
		"message":             "stk push sent",
		"reference":           attempt.ClientReference,
		"gateway_reference":   attempt.GatewayReference,
		"checkout_request_id": attempt.CheckoutRequestID,
	})
}

// Status
// @Summary      Check a payment attempt status
// @Tags         payments
// @Produce      json
// @Param        reference  query  string  true  "Client or gateway reference"
// @Success      200  {object}  map[string]any
// @Failure      400,502  {object}  map[string]any
// @Router       /api/payhero/status [get]
func (ct *Controller) Status(c echo.Context) error {
	ref := c.QueryParam("reference")
	if ref == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "reference required")
	}

	res, err := ct.Svc.CheckStatus(c.Request().Context(), ref)
	if err != nil {
		ct.Log.Error("status check failed", "reference", ref, "err", err)
		return echo.NewHTTPError(http.StatusBadGateway, "status check failed")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"state":          res.State,
		"gateway_status": res.GatewayStatus,
		"amount":         res.Amount,
		"transaction_id": res.TransactionID,
		"error":          res.Err,
	})
}

// Callback receives the gateway webhook. Always acknowledged with 200 so the
// gateway does not retry; polling is the confirmation path.
// @Router       /api/payhero/callback [post]
func (ct *Controller) Callback(c echo.Context) error {
	raw, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unreadable body")
	}
	if err := ct.Svc.HandleCallback(c.Request().Context(), raw); err != nil {
		ct.Log.Warn("malformed payment callback", "err", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "received"})
}
