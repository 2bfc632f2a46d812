package service

import (
	"context"
	"errors"

	"tradie-recovery-be/internal/dto"
	"tradie-recovery-be/internal/entity"
	"tradie-recovery-be/internal/model"
	"tradie-recovery-be/internal/pkg/authz"
	"tradie-recovery-be/internal/pkg/logger"
	"tradie-recovery-be/internal/pkg/serverutils"
	"tradie-recovery-be/internal/repository/specification"
	"tradie-recovery-be/internal/repository/unitofwork"
	"tradie-recovery-be/pkg/events"
	"tradie-recovery-be/pkg/payment"

	"github.com/google/uuid"
)

const (
	PaymentPending   = "pending"
	PaymentSucceeded = "succeeded"
	PaymentFailed    = "failed"
)

type IPaymentService interface {
	// CreateIntent reuses the payment row for a repeated idempotency key.
	CreateIntent(ctx context.Context, identity *authz.Identity, req *dto.CreateIntentRequest, idempotencyKey string) (*dto.IntentResponse, error)
	ListPayments(ctx context.Context, userID uuid.UUID) ([]dto.PaymentResponse, error)
	HandleWebhook(ctx context.Context, provider string, payload []byte, header func(string) string) error
}

type PaymentSettings struct {
	Provider               string
	Currency               string
	StrategyPackPriceCents int64
}

type paymentService struct {
	uowFactory unitofwork.RepositoryFactory
	gateways   map[string]payment.Gateway
	settings   PaymentSettings
	events     events.Publisher
	logger     logger.ILogger
}

func NewPaymentService(
	uowFactory unitofwork.RepositoryFactory,
	gateways []payment.Gateway,
	settings PaymentSettings,
	publisher events.Publisher,
	log logger.ILogger,
) IPaymentService {
	byName := make(map[string]payment.Gateway, len(gateways))
	for _, g := range gateways {
		if g != nil {
			byName[g.Name()] = g
		}
	}
	return &paymentService{
		uowFactory: uowFactory,
		gateways:   byName,
		settings:   settings,
		events:     publisher,
		logger:     log,
	}
}

func (s *paymentService) CreateIntent(ctx context.Context, identity *authz.Identity, req *dto.CreateIntentRequest, idempotencyKey string) (*dto.IntentResponse, error) {
	gw, ok := s.gateways[s.settings.Provider]
	if !ok {
		return nil, serverutils.NewUnavailable("payment provider not configured")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: identity.ID})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, serverutils.NewNotFound("user not found")
	}

	var p *model.Payment
	if idempotencyKey != "" {
		p, err = uow.PaymentRepository().FindByIdempotencyKey(ctx, user.Id, idempotencyKey)
		if err != nil {
			return nil, err
		}
		if p != nil && p.Plan != req.Plan {
			return nil, serverutils.NewConflict("idempotency key was used for a different plan")
		}
		if p != nil && p.Status == PaymentSucceeded {
			return nil, serverutils.NewConflict("payment already completed")
		}
	}

	amount := int64(0)
	if payment.Plan(req.Plan) == payment.PlanStrategyPack {
		amount = s.settings.StrategyPackPriceCents
	}
	if p == nil {
		p = &model.Payment{
			UserId:   user.Id,
			Provider: gw.Name(),
			Plan:     req.Plan,
			Amount:   amount,
			Currency: s.settings.Currency,
			Status:   PaymentPending,
		}
		if idempotencyKey == "" {
			if err := uow.PaymentRepository().Create(ctx, p); err != nil {
				return nil, err
			}
		} else {
			key := idempotencyKey
			p.IdempotencyKey = &key
			created, err := uow.PaymentRepository().CreateIfAbsent(ctx, p)
			if err != nil {
				return nil, err
			}
			if !created {
				// a concurrent request with the same key won the insert
				p, err = uow.PaymentRepository().FindByIdempotencyKey(ctx, user.Id, idempotencyKey)
				if err != nil {
					return nil, err
				}
				if p == nil {
					return nil, serverutils.NewConflict("idempotency key is in use")
				}
				if p.Plan != req.Plan {
					return nil, serverutils.NewConflict("idempotency key was used for a different plan")
				}
			}
		}
	}

	customerRef := ""
	if user.StripeCustomerId != nil {
		customerRef = *user.StripeCustomerId
	}
	intent, err := gw.CreateIntent(ctx, payment.IntentRequest{
		PaymentID:      p.Id.String(),
		Plan:           payment.Plan(req.Plan),
		AmountCents:    p.Amount,
		Currency:       p.Currency,
		CustomerRef:    customerRef,
		UserID:         user.Id.String(),
		Email:          user.Email,
		Name:           user.FullName,
		IdempotencyKey: idempotencyKey,
	})
	if err != nil {
		if errors.Is(err, payment.ErrUnsupportedPlan) {
			return nil, serverutils.NewBadRequest(err.Error())
		}
		if errors.Is(err, payment.ErrNotConfigured) {
			return nil, serverutils.NewUnavailable(err.Error())
		}
		s.logger.Error("PaymentService", "Failed to create payment intent", map[string]interface{}{"payment_id": p.Id, "provider": gw.Name(), "error": err.Error()})
		return nil, serverutils.NewInternal("failed to create payment", err)
	}

	p.ProviderRef = intent.ProviderRef
	if err := uow.PaymentRepository().Update(ctx, p); err != nil {
		return nil, err
	}
	if intent.CustomerRef != "" && user.StripeCustomerId == nil {
		ref := intent.CustomerRef
		user.StripeCustomerId = &ref
		if err := uow.UserRepository().Update(ctx, user); err != nil {
			return nil, err
		}
	}

	s.logger.Info("PaymentService", "Payment intent created", map[string]interface{}{"payment_id": p.Id, "provider": gw.Name(), "plan": p.Plan})
	return &dto.IntentResponse{
		ClientSecret: intent.ClientSecret,
		PaymentId:    p.Id,
		Provider:     gw.Name(),
		RedirectURL:  intent.RedirectURL,
	}, nil
}

func (s *paymentService) ListPayments(ctx context.Context, userID uuid.UUID) ([]dto.PaymentResponse, error) {
	payments, err := s.uowFactory.NewUnitOfWork(ctx).PaymentRepository().ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	res := make([]dto.PaymentResponse, 0, len(payments))
	for _, p := range payments {
		res = append(res, toPaymentResponse(p))
	}
	return res, nil
}

func (s *paymentService) HandleWebhook(ctx context.Context, provider string, payload []byte, header func(string) string) error {
	gw, ok := s.gateways[provider]
	if !ok {
		return serverutils.NewNotFound("unknown payment provider")
	}
	event, err := gw.ParseWebhook(payload, header)
	if err != nil {
		if errors.Is(err, payment.ErrInvalidSignature) {
			s.logger.Warn("PaymentService", "Rejected webhook with invalid signature", map[string]interface{}{"provider": provider})
			return serverutils.NewBadRequest("invalid signature")
		}
		return serverutils.NewBadRequest("malformed webhook payload")
	}

	s.logger.Info("PaymentService", "Webhook received", map[string]interface{}{"provider": provider, "kind": event.Kind, "payment_id": event.PaymentID})

	switch event.Kind {
	case payment.EventPaymentSucceeded:
		return s.settle(ctx, event, PaymentSucceeded)
	case payment.EventPaymentFailed:
		return s.settle(ctx, event, PaymentFailed)
	case payment.EventSubscriptionActive, payment.EventSubscriptionCanceled:
		return s.syncSubscription(ctx, event)
	}
	return nil
}

// settle moves a pending payment to its final status. Replays of an already
// settled payment change nothing, so a credit is granted once.
func (s *paymentService) settle(ctx context.Context, event *payment.Event, status string) error {
	paymentID, err := uuid.Parse(event.PaymentID)
	if err != nil {
		s.logger.Warn("PaymentService", "Webhook without a known payment id", map[string]interface{}{"payment_id": event.PaymentID})
		return nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	p, err := uow.PaymentRepository().FindByID(ctx, paymentID)
	if err != nil {
		return err
	}
	if p == nil {
		s.logger.Warn("PaymentService", "Webhook for unknown payment", map[string]interface{}{"payment_id": paymentID})
		return nil
	}
	if p.Status == PaymentSucceeded || p.Status == status {
		return nil
	}

	p.Status = status
	if event.ProviderRef != "" {
		p.ProviderRef = event.ProviderRef
	}
	if err := uow.PaymentRepository().Update(ctx, p); err != nil {
		return err
	}
	if status == PaymentSucceeded && payment.Plan(p.Plan) == payment.PlanStrategyPack {
		if _, err := uow.UserRepository().AddStrategyPackCredits(ctx, p.UserId, 1); err != nil {
			return err
		}
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	if status == PaymentSucceeded {
		publishEvent(ctx, s.events, s.logger, events.PaymentSucceeded, map[string]interface{}{
			"user_id":     p.UserId.String(),
			"plan":        planLabel(p.Plan),
			"amount":      p.Amount,
			"currency":    p.Currency,
			"entity_type": "payment",
			"entity_id":   p.Id.String(),
		})
	}
	return nil
}

func planLabel(plan string) string {
	switch payment.Plan(plan) {
	case payment.PlanStrategyPack:
		return "a strategy pack"
	case payment.PlanSubscription:
		return "your subscription"
	}
	return plan
}

func (s *paymentService) syncSubscription(ctx context.Context, event *payment.Event) error {
	if event.CustomerRef == "" {
		return nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().FindOne(ctx, specification.ByStripeCustomer{CustomerID: event.CustomerRef})
	if err != nil {
		return err
	}
	if user == nil {
		s.logger.Warn("PaymentService", "Subscription event for unknown customer", map[string]interface{}{"customer": event.CustomerRef})
		return nil
	}

	if event.Kind == payment.EventSubscriptionActive {
		user.PlanType = entity.PlanSubscription
		user.PlanStatus = "active"
		if !event.PeriodStart.IsZero() {
			start := event.PeriodStart
			user.PlanPeriodStart = &start
		}
		if !event.PeriodEnd.IsZero() {
			end := event.PeriodEnd
			user.PlanPeriodEnd = &end
		}
		if event.SubscriptionRef != "" {
			ref := event.SubscriptionRef
			user.StripeSubscriptionId = &ref
		}
	} else {
		user.PlanType = entity.PlanNone
		user.PlanStatus = "canceled"
		user.StripeSubscriptionId = nil
	}
	if err := uow.UserRepository().Update(ctx, user); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	s.logger.Info("PaymentService", "Subscription synced", map[string]interface{}{"user_id": user.Id, "status": user.PlanStatus})
	return nil
}
