package controller

import (
	"tradie-recovery-be/internal/dto"
	"tradie-recovery-be/internal/pkg/serverutils"
	"tradie-recovery-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

const idempotencyHeader = "Idempotency-Key"

type IPaymentController interface {
	RegisterRoutes(r fiber.Router)
	CreateIntent(ctx *fiber.Ctx) error
	ListPayments(ctx *fiber.Ctx) error
	Webhook(ctx *fiber.Ctx) error
}

type paymentController struct {
	service service.IPaymentService
	auth    *serverutils.Authenticator
}

func NewPaymentController(service service.IPaymentService, auth *serverutils.Authenticator) IPaymentController {
	return &paymentController{service: service, auth: auth}
}

func (c *paymentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/payments")
	// Providers authenticate webhooks by signature, not by bearer token.
	h.Post("/webhook/:provider", c.Webhook)

	h.Post("/intent", c.auth.RequireAuth, c.CreateIntent)
	h.Get("/", c.auth.RequireAuth, c.ListPayments)
}

func (c *paymentController) CreateIntent(ctx *fiber.Ctx) error {
	id, err := identity(ctx)
	if err != nil {
		return err
	}
	var req dto.CreateIntentRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	res, err := c.service.CreateIntent(ctx.UserContext(), id, &req, ctx.Get(idempotencyHeader))
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.CreatedResponse("Payment intent created", res))
}

func (c *paymentController) ListPayments(ctx *fiber.Ctx) error {
	id, err := identity(ctx)
	if err != nil {
		return err
	}
	res, err := c.service.ListPayments(ctx.UserContext(), id.ID)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get payments", res))
}

func (c *paymentController) Webhook(ctx *fiber.Ctx) error {
	// fasthttp reuses the body buffer once the handler returns
	payload := append([]byte(nil), ctx.Body()...)
	header := func(key string) string { return ctx.Get(key) }
	if err := c.service.HandleWebhook(ctx.UserContext(), ctx.Params("provider"), payload, header); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("OK", nil))
}
