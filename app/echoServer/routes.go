package echoServer

import (
	"net/http"

	"github.com/opaygodly-bot/uwezo-funds/app/echoServer/controller/auth"
	"github.com/opaygodly-bot/uwezo-funds/app/echoServer/controller/loan"
	"github.com/opaygodly-bot/uwezo-funds/app/echoServer/controller/manual"
	"github.com/opaygodly-bot/uwezo-funds/app/echoServer/controller/notification"
	"github.com/opaygodly-bot/uwezo-funds/app/echoServer/controller/payment"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

type C struct {
	Auth         *auth.Controller
	Loan         *loan.Controller
	Payment      *payment.Controller
	Manual       *manual.Controller
	Notification *notification.Controller
	JWTSecret    string
}

func Register(e *echo.Echo, c C) {
	// Public
	pub := e.Group("/api")
	pub.POST("/auth/register", c.Auth.Register)
	pub.POST("/auth/login", c.Auth.Login)
	pub.POST("/auth/reset-password", c.Auth.ResetPassword)

	// gateway webhook, unauthenticated by contract
	pub.POST("/payhero/callback", c.Payment.Callback)

	// Auth
	authed := e.Group("/api")
	authed.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(c.JWTSecret),

		NewClaimsFunc: func(c echo.Context) jwt.Claims { return jwt.MapClaims{} },
		TokenLookup:   "header:Authorization",
	}))
	// user_id + role extraction
	authed.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			tok, ok := ctx.Get("user").(*jwt.Token)
			if !ok || tok == nil {
				return ctx.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
			}
			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return ctx.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
			}
			sub, ok := claims["sub"].(float64)
			if !ok {
				return ctx.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
			}
			ctx.Set("user_id", int64(sub))
			if role, ok := claims["role"].(string); ok {
				ctx.Set("role", role)
			}
			return next(ctx)
		}
	})

	// Loans
	authed.GET("/loans", c.Loan.List)
	authed.POST("/loans", c.Loan.Apply)
	authed.POST("/loans/limit-check", c.Loan.CheckLimit)
	authed.POST("/loans/repay", c.Loan.Repay)

	// STK push + polling status
	authed.POST("/payhero/stk", c.Payment.InitiateStk)
	authed.GET("/payhero/status", c.Payment.Status)

	// Manual till payments
	authed.POST("/payments/manual", c.Manual.Create)
	authed.GET("/payments/manual", c.Manual.Lookup)
	authed.POST("/payments/manual/:id/verify", c.Manual.Verify)

	// Push notifications
	authed.POST("/notifications/send", c.Notification.Send)
}
