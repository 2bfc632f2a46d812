// Package payment wraps payment providers behind one Gateway interface.
package payment

import (
	"context"
	"errors"
	"time"
)

type Plan string

const (
	PlanStrategyPack Plan = "strategy_pack"
	PlanSubscription Plan = "subscription"
)

var (
	ErrUnsupportedPlan  = errors.New("plan not supported by this provider")
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrNotConfigured    = errors.New("payment provider not configured")
)

type IntentRequest struct {
	PaymentID      string
	Plan           Plan
	AmountCents    int64
	Currency       string
	CustomerRef    string // provider customer id, empty when unknown
	UserID         string
	Email          string
	Name           string
	IdempotencyKey string
}

type Intent struct {
	ClientSecret string
	ProviderRef  string
	CustomerRef  string
	RedirectURL  string
}

type EventKind string

const (
	EventPaymentSucceeded     EventKind = "payment_succeeded"
	EventPaymentFailed        EventKind = "payment_failed"
	EventSubscriptionActive   EventKind = "subscription_active"
	EventSubscriptionCanceled EventKind = "subscription_canceled"
	EventIgnored              EventKind = "ignored"
)

// Event is a verified, provider-neutral webhook notification.
type Event struct {
	Kind            EventKind
	PaymentID       string
	ProviderRef     string
	CustomerRef     string
	SubscriptionRef string
	PeriodStart     time.Time
	PeriodEnd       time.Time
}

type Gateway interface {
	Name() string
	CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error)
	ParseWebhook(payload []byte, header func(string) string) (*Event, error)
}
