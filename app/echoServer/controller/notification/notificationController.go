// app/echoServer/controller/notification/notificationController.go
package notification

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	notificationsvc "github.com/opaygodly-bot/uwezo-funds/service/notification"

	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc notificationsvc.Service
	Log *slog.Logger
}

type sendReq struct {
	Subscription json.RawMessage `json:"subscription"`
	Payload      json.RawMessage `json:"payload"`
}

// Send
// @Summary      Send a web push notification to a subscription
// @Tags         notifications
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]any
// @Failure      400,503  {object}  map[string]any
// @Router       /api/notifications/send [post]
func (ct *Controller) Send(c echo.Context) error {
	var req sendReq
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	err := ct.Svc.Send(c.Request().Context(), req.Subscription, req.Payload)
	if err != nil {
		switch {
		case errors.Is(err, notificationsvc.ErrNotConfigured):
			return echo.NewHTTPError(http.StatusServiceUnavailable, "push not configured")
		case errors.Is(err, notificationsvc.ErrMissingSubscription):
			return echo.NewHTTPError(http.StatusBadRequest, "subscription required")
		default:
			ct.Log.Error("push send failed", "err", err)
			return echo.NewHTTPError(http.StatusBadGateway, "push send failed")
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "sent"})
}
