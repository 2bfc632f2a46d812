package controller

import (
	"tradie-recovery-be/internal/dto"
	"tradie-recovery-be/internal/pkg/authz"
	"tradie-recovery-be/internal/pkg/serverutils"
	"tradie-recovery-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IApplicationController interface {
	RegisterRoutes(r fiber.Router)
	Submit(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Get(ctx *fiber.Ctx) error
	UpdateStatus(ctx *fiber.Ctx) error
	Analyze(ctx *fiber.Ctx) error
}

type applicationController struct {
	service service.IApplicationService
	auth    *serverutils.Authenticator
}

func NewApplicationController(service service.IApplicationService, auth *serverutils.Authenticator) IApplicationController {
	return &applicationController{service: service, auth: auth}
}

func (c *applicationController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/applications")
	h.Post("/", c.auth.OptionalAuth, c.Submit)
	h.Get("/", c.auth.RequireAuth, c.List)
	h.Get("/:id", c.auth.RequireAuth, c.Get)
	h.Patch("/:id/status", c.auth.RequireAuth, serverutils.RequireCapability(authz.ApplicationsReview), c.UpdateStatus)
	h.Post("/:id/analyze", c.auth.RequireAuth, serverutils.RequireCapability(authz.ApplicationsReview), c.Analyze)
}

func (c *applicationController) Submit(ctx *fiber.Ctx) error {
	var req dto.SubmitApplicationRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	// anonymous submissions carry a nil identity
	res, err := c.service.Submit(ctx.UserContext(), serverutils.CurrentIdentity(ctx), &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.CreatedResponse("Application submitted", res))
}

func (c *applicationController) List(ctx *fiber.Ctx) error {
	id, err := identity(ctx)
	if err != nil {
		return err
	}
	var req dto.ApplicationListRequest
	if err := parseQuery(ctx, &req); err != nil {
		return err
	}
	res, err := c.service.List(ctx.UserContext(), id, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get applications", res))
}

func (c *applicationController) Get(ctx *fiber.Ctx) error {
	id, err := identity(ctx)
	if err != nil {
		return err
	}
	appID, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	res, err := c.service.Get(ctx.UserContext(), id, appID)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get application", res))
}

func (c *applicationController) UpdateStatus(ctx *fiber.Ctx) error {
	id, err := identity(ctx)
	if err != nil {
		return err
	}
	appID, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateApplicationStatusRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	res, err := c.service.UpdateStatus(ctx.UserContext(), id, appID, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Application status updated", res))
}

func (c *applicationController) Analyze(ctx *fiber.Ctx) error {
	id, err := identity(ctx)
	if err != nil {
		return err
	}
	appID, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	res, err := c.service.Analyze(ctx.UserContext(), id, appID)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Application analyzed", res))
}
