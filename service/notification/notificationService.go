package notificationsvc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"

	"github.com/opaygodly-bot/uwezo-funds/util/httpx"
)

var (
	ErrNotConfigured       = errors.New("VAPID keys not configured")
	ErrMissingSubscription = errors.New("missing subscription")
)

type Config struct {
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	Subject         string
}

type Service interface {
	// Send pushes a payload to a browser push subscription. payload defaults
	// to a payment reminder when empty.
	Send(ctx context.Context, subscription json.RawMessage, payload json.RawMessage) error
}

type service struct {
	cfg    Config
	client *http.Client
}

func New(cfg Config) Service {
	return &service{cfg: cfg, client: httpx.Client()}
}

func (s *service) Send(ctx context.Context, subscription json.RawMessage, payload json.RawMessage) error {
	if s.cfg.VAPIDPublicKey == "" || s.cfg.VAPIDPrivateKey == "" {
		return ErrNotConfigured
	}
	if len(subscription) == 0 {
		return ErrMissingSubscription
	}

	sub := &webpush.Subscription{}
	if err := json.Unmarshal(subscription, sub); err != nil || sub.Endpoint == "" {
		return ErrMissingSubscription
	}

	if len(payload) == 0 {
		payload, _ = json.Marshal(map[string]string{
			"title": "Reminder",
			"body":  "Complete your processing fee payment",
		})
	}

	resp, err := webpush.SendNotificationWithContext(ctx, payload, sub, &webpush.Options{
		HTTPClient:      s.client,
		Subscriber:      s.cfg.Subject,
		VAPIDPublicKey:  s.cfg.VAPIDPublicKey,
		VAPIDPrivateKey: s.cfg.VAPIDPrivateKey,
		TTL:             60,
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("push service rejected notification: %s", resp.Status)
	}
	return nil
}
