package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"github.com/stripe/stripe-go/v79/webhook"
)

type StripeGateway struct {
	api                 *client.API
	webhookSecret       string
	subscriptionPriceID string
}

func NewStripeGateway(secretKey, webhookSecret, subscriptionPriceID string) *StripeGateway {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeGateway{
		api:                 api,
		webhookSecret:       webhookSecret,
		subscriptionPriceID: subscriptionPriceID,
	}
}

func (g *StripeGateway) Name() string { return "stripe" }

func (g *StripeGateway) ensureCustomer(req IntentRequest) (string, error) {
	if req.CustomerRef != "" {
		return req.CustomerRef, nil
	}
	params := &stripe.CustomerParams{
		Email: stripe.String(req.Email),
		Name:  stripe.String(req.Name),
	}
	params.AddMetadata("user_id", req.UserID)
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey("customer-" + req.IdempotencyKey)
	}
	cust, err := g.api.Customers.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe customer: %w", err)
	}
	return cust.ID, nil
}

func (g *StripeGateway) CreateIntent(_ context.Context, req IntentRequest) (*Intent, error) {
	customerID, err := g.ensureCustomer(req)
	if err != nil {
		return nil, err
	}

	switch req.Plan {
	case PlanStrategyPack:
		params := &stripe.PaymentIntentParams{
			Amount:   stripe.Int64(req.AmountCents),
			Currency: stripe.String(req.Currency),
			Customer: stripe.String(customerID),
			AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
				Enabled: stripe.Bool(true),
			},
		}
		params.AddMetadata("payment_id", req.PaymentID)
		params.AddMetadata("plan", string(req.Plan))
		if req.IdempotencyKey != "" {
			params.SetIdempotencyKey(req.IdempotencyKey)
		}

		pi, err := g.api.PaymentIntents.New(params)
		if err != nil {
			return nil, fmt.Errorf("stripe payment intent: %w", err)
		}
		return &Intent{ClientSecret: pi.ClientSecret, ProviderRef: pi.ID, CustomerRef: customerID}, nil

	case PlanSubscription:
		if g.subscriptionPriceID == "" {
			return nil, ErrNotConfigured
		}
		params := &stripe.SubscriptionParams{
			Customer: stripe.String(customerID),
			Items: []*stripe.SubscriptionItemsParams{
				{Price: stripe.String(g.subscriptionPriceID)},
			},
			PaymentBehavior: stripe.String("default_incomplete"),
			PaymentSettings: &stripe.SubscriptionPaymentSettingsParams{
				SaveDefaultPaymentMethod: stripe.String("on_subscription"),
			},
		}
		params.AddExpand("latest_invoice.payment_intent")
		params.AddMetadata("payment_id", req.PaymentID)
		if req.IdempotencyKey != "" {
			params.SetIdempotencyKey(req.IdempotencyKey)
		}

		sub, err := g.api.Subscriptions.New(params)
		if err != nil {
			return nil, fmt.Errorf("stripe subscription: %w", err)
		}
		if sub.LatestInvoice == nil || sub.LatestInvoice.PaymentIntent == nil {
			return nil, errors.New("stripe subscription has no payment intent")
		}
		return &Intent{
			ClientSecret: sub.LatestInvoice.PaymentIntent.ClientSecret,
			ProviderRef:  sub.ID,
			CustomerRef:  customerID,
		}, nil
	}
	return nil, ErrUnsupportedPlan
}

func (g *StripeGateway) ParseWebhook(payload []byte, header func(string) string) (*Event, error) {
	if g.webhookSecret == "" {
		return nil, ErrNotConfigured
	}
	event, err := webhook.ConstructEventWithOptions(payload, header("Stripe-Signature"), g.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	switch event.Type {
	case "payment_intent.succeeded", "payment_intent.payment_failed":
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return nil, fmt.Errorf("stripe payment intent payload: %w", err)
		}
		// intents raised by subscription invoices carry no plan metadata;
		// those are settled through the subscription events
		if pi.Metadata["plan"] != string(PlanStrategyPack) {
			return &Event{Kind: EventIgnored}, nil
		}
		kind := EventPaymentSucceeded
		if event.Type == "payment_intent.payment_failed" {
			kind = EventPaymentFailed
		}
		out := &Event{Kind: kind, PaymentID: pi.Metadata["payment_id"], ProviderRef: pi.ID}
		if pi.Customer != nil {
			out.CustomerRef = pi.Customer.ID
		}
		return out, nil

	case "customer.subscription.created", "customer.subscription.updated", "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return nil, fmt.Errorf("stripe subscription payload: %w", err)
		}
		out := &Event{
			Kind:            subscriptionKind(string(event.Type), sub.Status),
			PaymentID:       sub.Metadata["payment_id"],
			ProviderRef:     sub.ID,
			SubscriptionRef: sub.ID,
			PeriodStart:     unix(sub.CurrentPeriodStart),
			PeriodEnd:       unix(sub.CurrentPeriodEnd),
		}
		if sub.Customer != nil {
			out.CustomerRef = sub.Customer.ID
		}
		return out, nil
	}
	return &Event{Kind: EventIgnored}, nil
}

func subscriptionKind(eventType string, status stripe.SubscriptionStatus) EventKind {
	if eventType == "customer.subscription.deleted" {
		return EventSubscriptionCanceled
	}
	switch status {
	case stripe.SubscriptionStatusActive, stripe.SubscriptionStatusTrialing:
		return EventSubscriptionActive
	case stripe.SubscriptionStatusCanceled, stripe.SubscriptionStatusUnpaid, stripe.SubscriptionStatusIncompleteExpired:
		return EventSubscriptionCanceled
	}
	return EventIgnored
}

func unix(sec int64) time.Time {
	if sec == 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}
