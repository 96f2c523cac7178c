// app/echoServer/controller/loan/loanController.go
package loan

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/opaygodly-bot/uwezo-funds/app/echoServer/jwtx"
	loansvc "github.com/opaygodly-bot/uwezo-funds/service/loan"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc loansvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// Apply
// @Summary      Apply for a loan
// @Tags         loans
// @Accept       json
// @Produce      json
// @Param        payload  body  ApplyReq  true  "Application"
// @Success      201  {object}  map[string]any
// @Failure      400,401,409,500  {object}  map[string]any
// @Router       /api/loans [post]
func (ct *Controller) Apply(c echo.Context) error {
	var req ApplyReq
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

	l, err := ct.Svc.Apply(c.Request().Context(), userID, req.Amount, req.PeriodDays, req.Purpose)
	if err != nil {
		switch {
		case errors.Is(err, loansvc.ErrLoanOutstanding):
			return echo.NewHTTPError(http.StatusConflict, "existing loan in progress")
		case errors.Is(err, loansvc.ErrAmountOutOfRange):
			return echo.NewHTTPError(http.StatusBadRequest, "amount outside allowed range")
		default:
			ct.Log.Error("loan apply failed", "user_id", userID, "err", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "apply failed")
		}
	}
	return c.JSON(http.StatusCreated, echo.Map{"loan": l})
}

// List
// @Summary      List my loans
// @Tags         loans
// @Produce      json
// @Success      200  {object}  map[string]any
// @Router       /api/loans [get]
func (ct *Controller) List(c echo.Context) error {
	userID, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	loans, err := ct.Svc.List(c.Request().Context(), userID)
	if err != nil {
		ct.Log.Error("loan list failed", "user_id", userID, "err", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "list failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"loans": loans})
}

// CheckLimit
// @Summary      Check my loan limit
// @Tags         loans
// @Produce      json
// @Success      200  {object}  map[string]any
// @Router       /api/loans/limit-check [post]
func (ct *Controller) CheckLimit(c echo.Context) error {
	userID, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	limit, err := ct.Svc.CheckLimit(c.Request().Context(), userID)
	if err != nil {
		ct.Log.Error("limit check failed", "user_id", userID, "err", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "limit check failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"loan_limit": limit})
}

// Repay
// @Summary      Repay a disbursed loan
// @Tags         loans
// @Accept       json
// @Produce      json
// @Param        payload  body  RepayReq  true  "Repayment"
// @Success      200  {object}  map[string]any
// @Failure      400,401,404,500  {object}  map[string]any
// @Router       /api/loans/repay [post]
func (ct *Controller) Repay(c echo.Context) error {
	var req RepayReq
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

	l, err := ct.Svc.Repay(c.Request().Context(), userID, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, loansvc.ErrNoDisbursedLoan):
			return echo.NewHTTPError(http.StatusNotFound, "no disbursed loan")
		case errors.Is(err, loansvc.ErrBadRepayment):
			return echo.NewHTTPError(http.StatusBadRequest, "invalid repayment amount")
		default:
			ct.Log.Error("repay failed", "user_id", userID, "err", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "repay failed")
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"loan": l})
}
