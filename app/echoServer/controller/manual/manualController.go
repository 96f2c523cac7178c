// app/echoServer/controller/manual/manualController.go
package manual

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/opaygodly-bot/uwezo-funds/app/echoServer/jwtx"
	manualsvc "github.com/opaygodly-bot/uwezo-funds/service/manual"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc manualsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// Create
// @Summary      Record a manual till payment
// @Tags         manual-payments
// @Accept       json
// @Produce      json
// @Param        payload  body  CreateReq  true  "Till payment"
// @Success      201  {object}  map[string]any
// @Failure      400,401,500  {object}  map[string]any
// @Router       /api/payments/manual [post]
func (ct *Controller) Create(c echo.Context) error {
	var req CreateReq
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

	p, err := ct.Svc.Record(c.Request().Context(), userID, manualsvc.RecordReq{
		LoanID:        req.LoanID,
		Amount:        req.Amount,
		Till:          req.Till,
		Business:      req.Business,
		TxnCode:       req.TxnCode,
		Phone:         req.Phone,
		Note:          req.Note,
		PastedMessage: req.PastedMessage,
	})
	if err != nil {
		if errors.Is(err, manualsvc.ErrMissingTill) {
			return echo.NewHTTPError(http.StatusBadRequest, "till number required")
		}
		ct.Log.Error("record manual payment failed", "user_id", userID, "err", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "record failed")
	}
	return c.JSON(http.StatusCreated, echo.Map{"payment": p})
}

// Lookup serves GET /api/payments/manual: ?id= fetches one record, ?txnCode=
// fetches by M-Pesa transaction code, no params lists the most recent 50.
// @Summary      Fetch manual payments
// @Tags         manual-payments
// @Produce      json
// @Param        id       query  string  false  "Payment id"
// @Param        txnCode  query  string  false  "Transaction code"
// @Success      200  {object}  map[string]any
// @Failure      404,500  {object}  map[string]any
// @Router       /api/payments/manual [get]
func (ct *Controller) Lookup(c echo.Context) error {
	ctx := c.Request().Context()

	if id := c.QueryParam("id"); id != "" {
		p, err := ct.Svc.Get(ctx, id)
		if err != nil {
			if errors.Is(err, manualsvc.ErrNotFound) {
				return echo.NewHTTPError(http.StatusNotFound, "payment not found")
			}
			ct.Log.Error("get manual payment failed", "id", id, "err", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "lookup failed")
		}
		return c.JSON(http.StatusOK, echo.Map{"payment": p})
	}

	if code := c.QueryParam("txnCode"); code != "" {
		p, err := ct.Svc.ByTxnCode(ctx, code)
		if err != nil {
			if errors.Is(err, manualsvc.ErrNotFound) {
				return echo.NewHTTPError(http.StatusNotFound, "payment not found")
			}
			ct.Log.Error("txn code lookup failed", "code", code, "err", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "lookup failed")
		}
		return c.JSON(http.StatusOK, echo.Map{"payment": p})
	}

	rows, err := ct.Svc.Recent(ctx)
	if err != nil {
		ct.Log.Error("recent manual payments failed", "err", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "list failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"payments": rows})
}

// Verify
// @Summary      Admin override of a payment's verification
// @Tags         manual-payments
// @Accept       json
// @Produce      json
// @Param        id       path  string     true  "Payment id"
// @Param        payload  body  VerifyReq  true  "Decision"
// @Success      200  {object}  map[string]any
// @Failure      400,403,404  {object}  map[string]any
// @Router       /api/payments/manual/{id}/verify [post]
func (ct *Controller) Verify(c echo.Context) error {
	if jwtx.RoleFromContext(c) != "admin" {
		return echo.NewHTTPError(http.StatusForbidden, "admin only")
	}
	var req VerifyReq
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	p, err := ct.Svc.Verify(c.Request().Context(), c.Param("id"), req.Verified, req.AdminNote)
	if err != nil {
		if errors.Is(err, manualsvc.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "payment not found")
		}
		ct.Log.Error("verify manual payment failed", "id", c.Param("id"), "err", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "verify failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"payment": p})
}
