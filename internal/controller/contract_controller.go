package controller

import (
	"tradie-recovery-be/internal/dto"
	"tradie-recovery-be/internal/pkg/serverutils"
	"tradie-recovery-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IContractController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Get(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	Analyze(ctx *fiber.Ctx) error
	ListTimeline(ctx *fiber.Ctx) error
	AddTimelineEvent(ctx *fiber.Ctx) error
}

type contractController struct {
	service service.IContractService
	auth    *serverutils.Authenticator
}

func NewContractController(service service.IContractService, auth *serverutils.Authenticator) IContractController {
	return &contractController{service: service, auth: auth}
}

func (c *contractController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/contracts")
	h.Post("/", c.auth.RequireAuth, c.Create)
	h.Get("/", c.auth.RequireAuth, c.List)
	h.Get("/:id", c.auth.RequireAuth, c.Get)
	h.Patch("/:id", c.auth.RequireAuth, c.Update)
	h.Delete("/:id", c.auth.RequireAuth, c.Delete)
	h.Post("/:id/analyze", c.auth.RequireAuth, c.Analyze)
	h.Get("/:id/timeline", c.auth.RequireAuth, c.ListTimeline)
	h.Post("/:id/timeline", c.auth.RequireAuth, c.AddTimelineEvent)
}

func (c *contractController) Create(ctx *fiber.Ctx) error {
	id, err := identity(ctx)
	if err != nil {
		return err
	}
	var req dto.CreateContractRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	res, err := c.service.Create(ctx.UserContext(), id, &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.CreatedResponse("Contract created", res))
}

func (c *contractController) List(ctx *fiber.Ctx) error {
	id, err := identity(ctx)
	if err != nil {
		return err
	}
	var req dto.ContractListRequest
	if err := parseQuery(ctx, &req); err != nil {
		return err
	}
	res, err := c.service.List(ctx.UserContext(), id, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get contracts", res))
}

func (c *contractController) Get(ctx *fiber.Ctx) error {
	id, err := identity(ctx)
	if err != nil {
		return err
	}
	contractID, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	res, err := c.service.Get(ctx.UserContext(), id, contractID)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get contract", res))
}

func (c *contractController) Update(ctx *fiber.Ctx) error {
	id, err := identity(ctx)
	if err != nil {
		return err
	}
	contractID, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateContractRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	res, err := c.service.Update(ctx.UserContext(), id, contractID, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Contract updated", res))
}

func (c *contractController) Delete(ctx *fiber.Ctx) error {
	id, err := identity(ctx)
	if err != nil {
		return err
	}
	contractID, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	if err := c.service.Delete(ctx.UserContext(), id, contractID); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Contract deleted", nil))
}

func (c *contractController) Analyze(ctx *fiber.Ctx) error {
	id, err := identity(ctx)
	if err != nil {
		return err
	}
	contractID, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	var req dto.AnalyzeContractRequest
	// body is optional here
	if len(ctx.Body()) > 0 {
		if err := parseBody(ctx, &req); err != nil {
			return err
		}
	}
	res, err := c.service.Analyze(ctx.UserContext(), id, contractID, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Contract analyzed", res))
}

func (c *contractController) ListTimeline(ctx *fiber.Ctx) error {
	id, err := identity(ctx)
	if err != nil {
		return err
	}
	contractID, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	res, err := c.service.ListTimeline(ctx.UserContext(), id, contractID)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get timeline", res))
}

func (c *contractController) AddTimelineEvent(ctx *fiber.Ctx) error {
	id, err := identity(ctx)
	if err != nil {
		return err
	}
	contractID, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	var req dto.CreateTimelineEventRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	res, err := c.service.AddTimelineEvent(ctx.UserContext(), id, contractID, &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.CreatedResponse("Timeline event added", res))
}
