// Package main Uwezo Funds API.
//
// @title           Uwezo Funds API
// @version         1.0
// @description     Microlending service (loans, M-Pesa processing fees, manual till payments).
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description  Use:  Bearer <JWT>
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/opaygodly-bot/uwezo-funds/app/echoServer"
	authctrl "github.com/opaygodly-bot/uwezo-funds/app/echoServer/controller/auth"
	loanctrl "github.com/opaygodly-bot/uwezo-funds/app/echoServer/controller/loan"
	manualctrl "github.com/opaygodly-bot/uwezo-funds/app/echoServer/controller/manual"
	notifctrl "github.com/opaygodly-bot/uwezo-funds/app/echoServer/controller/notification"
	paymentctrl "github.com/opaygodly-bot/uwezo-funds/app/echoServer/controller/payment"
	"github.com/opaygodly-bot/uwezo-funds/app/echoServer/validation"
	"github.com/opaygodly-bot/uwezo-funds/config"
	loanrepo "github.com/opaygodly-bot/uwezo-funds/repository/loan"
	manualrepo "github.com/opaygodly-bot/uwezo-funds/repository/manual"
	payherorepo "github.com/opaygodly-bot/uwezo-funds/repository/payhero"
	refrepo "github.com/opaygodly-bot/uwezo-funds/repository/reference"
	userrepo "github.com/opaygodly-bot/uwezo-funds/repository/user"
	authsvc "github.com/opaygodly-bot/uwezo-funds/service/auth"
	loansvc "github.com/opaygodly-bot/uwezo-funds/service/loan"
	manualsvc "github.com/opaygodly-bot/uwezo-funds/service/manual"
	notificationsvc "github.com/opaygodly-bot/uwezo-funds/service/notification"
	paymentsvc "github.com/opaygodly-bot/uwezo-funds/service/payment"
	"github.com/opaygodly-bot/uwezo-funds/util/database"
	"github.com/opaygodly-bot/uwezo-funds/util/httpx"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
)

func main() {

	cfg := config.Load()
	ctx := context.Background()

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	// DB: *sql.DB
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	// repos
	ur := userrepo.New(db)
	lr := loanrepo.New(db)
	mr := manualrepo.New(db)
	gw := payherorepo.NewHTTP(payherorepo.Config{
		BaseURL:     cfg.PayHeroBaseURL,
		AuthToken:   cfg.PayHeroAuthToken,
		ChannelID:   cfg.PayHeroChannelID,
		CallbackURL: cfg.PayHeroCallbackURL,
	}, httpx.Client())

	refs := refrepo.NewMemory()
	if cfg.RedisURL != "" {
		r, err := refrepo.NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			log.Warn("redis unavailable, using in-memory reference store", "err", err)
		} else {
			refs = r
		}
	}

	// services
	as := authsvc.New(ur, cfg.JWTSecret)
	ls := loansvc.New(db, lr, ur)
	ps := paymentsvc.New(gw, refs, ls, paymentsvc.PollConfig{
		Interval: cfg.PollInterval,
		Timeout:  cfg.PollTimeout,
	}, log)
	ms := manualsvc.New(mr, ls, log)
	ns := notificationsvc.New(notificationsvc.Config{
		VAPIDPublicKey:  cfg.VAPIDPublicKey,
		VAPIDPrivateKey: cfg.VAPIDPrivateKey,
		Subject:         cfg.VAPIDSubject,
	})

	// back-office sweeper: fee-paid loans move to awaiting_disbursement
	promoter := loansvc.NewPromoter(lr, cfg.ProcessingDelay)
	go func() {
		t := time.NewTicker(cfg.ProcessingDelay)
		defer t.Stop()
		for range t.C {
			n, err := promoter.PromoteDue(ctx)
			if err != nil {
				log.Error("loan promotion sweep failed", "err", err)
				continue
			}
			if n > 0 {
				log.Info("loans promoted", "count", n)
			}
		}
	}()

	// controllers
	v := validator.New()
	authC := &authctrl.Controller{Svc: as, V: v, Log: log}
	loanC := &loanctrl.Controller{Svc: ls, V: v, Log: log}
	paymentC := &paymentctrl.Controller{Svc: ps, V: v, Log: log}
	manualC := &manualctrl.Controller{Svc: ms, V: v, Log: log}
	notifC := &notifctrl.Controller{Svc: ns, Log: log}

	// echo
	e := echo.New()
	echoServer.RegisterMiddlewares(e)
	e.Validator = validation.New()

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]any{
			"status":  "ok",
			"message": "Service is healthy and connected",
		})
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	echoServer.Register(e, echoServer.C{
		Auth:         authC,
		Loan:         loanC,
		Payment:      paymentC,
		Manual:       manualC,
		Notification: notifC,

		JWTSecret: cfg.JWTSecret,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	log.Info("starting server", "port", port, "env", cfg.Env)

	e.Logger.Fatal(e.Start(":" + port))
}
