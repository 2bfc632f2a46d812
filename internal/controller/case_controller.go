package controller

import (
	"tradie-recovery-be/internal/dto"
	"tradie-recovery-be/internal/pkg/serverutils"
	"tradie-recovery-be/internal/service"
	"tradie-recovery-be/pkg/strategy"

	"github.com/gofiber/fiber/v2"
)

type ICaseController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Get(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	Close(ctx *fiber.Ctx) error
	ListTimeline(ctx *fiber.Ctx) error
	AddTimelineEvent(ctx *fiber.Ctx) error
	ToggleTimelineEvent(ctx *fiber.Ctx) error
	GenerateStrategyPack(ctx *fiber.Ctx) error
	GenerateStrategy(ctx *fiber.Ctx) error
}

type caseController struct {
	service  service.ICaseService
	strategy service.IStrategyService
	auth     *serverutils.Authenticator
}

func NewCaseController(service service.ICaseService, strategy service.IStrategyService, auth *serverutils.Authenticator) ICaseController {
	return &caseController{service: service, strategy: strategy, auth: auth}
}

func (c *caseController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/cases")
	h.Post("/", c.auth.RequireAuth, c.Create)
	h.Get("/", c.auth.RequireAuth, c.List)
	h.Get("/:id", c.auth.RequireAuth, c.Get)
	h.Patch("/:id", c.auth.RequireAuth, c.Update)
	h.Delete("/:id", c.auth.RequireAuth, c.Delete)
	h.Post("/:id/close", c.auth.RequireAuth, c.Close)
	h.Get("/:id/timeline", c.auth.RequireAuth, c.ListTimeline)
	h.Post("/:id/timeline", c.auth.RequireAuth, c.AddTimelineEvent)
	h.Post("/:id/strategy-pack", c.auth.RequireAuth, c.GenerateStrategyPack)

	r.Patch("/timeline/:eventId/toggle", c.auth.RequireAuth, c.ToggleTimelineEvent)
	r.Post("/strategy/generate", c.auth.RequireAuth, c.GenerateStrategy)
}

func (c *caseController) Create(ctx *fiber.Ctx) error {
	id, err := identity(ctx)
	if err != nil {
		return err
	}
	var req dto.CreateCaseRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	res, err := c.service.Create(ctx.UserContext(), id, &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.CreatedResponse("Case created", res))
}

func (c *caseController) List(ctx *fiber.Ctx) error {
	id, err := identity(ctx)
	if err != nil {
		return err
	}
	var req dto.CaseListRequest
	if err := parseQuery(ctx, &req); err != nil {
		return err
	}
	res, err := c.service.List(ctx.UserContext(), id, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get cases", res))
}

func (c *caseController) Get(ctx *fiber.Ctx) error {
	id, err := identity(ctx)
	if err != nil {
		return err
	}
	caseID, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	res, err := c.service.Get(ctx.UserContext(), id, caseID)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get case", res))
}

func (c *caseController) Update(ctx *fiber.Ctx) error {
	id, err := identity(ctx)
	if err != nil {
		return err
	}
	caseID, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateCaseRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	res, err := c.service.Update(ctx.UserContext(), id, caseID, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Case updated", res))
}

func (c *caseController) Delete(ctx *fiber.Ctx) error {
	id, err := identity(ctx)
	if err != nil {
		return err
	}
	caseID, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	if err := c.service.Delete(ctx.UserContext(), id, caseID); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Case deleted", nil))
}

func (c *caseController) Close(ctx *fiber.Ctx) error {
	id, err := identity(ctx)
	if err != nil {
		return err
	}
	caseID, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	var req dto.CloseCaseRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	res, err := c.service.Close(ctx.UserContext(), id, caseID, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Case closed", res))
}

func (c *caseController) ListTimeline(ctx *fiber.Ctx) error {
	id, err := identity(ctx)
	if err != nil {
		return err
	}
	caseID, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	res, err := c.service.ListTimeline(ctx.UserContext(), id, caseID)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get timeline", res))
}

func (c *caseController) AddTimelineEvent(ctx *fiber.Ctx) error {
	id, err := identity(ctx)
	if err != nil {
		return err
	}
	caseID, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	var req dto.CreateTimelineEventRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	res, err := c.service.AddTimelineEvent(ctx.UserContext(), id, caseID, &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.CreatedResponse("Timeline event added", res))
}

func (c *caseController) ToggleTimelineEvent(ctx *fiber.Ctx) error {
	id, err := identity(ctx)
	if err != nil {
		return err
	}
	eventID, err := paramID(ctx, "eventId")
	if err != nil {
		return err
	}
	res, err := c.service.ToggleTimelineEvent(ctx.UserContext(), id, eventID)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Timeline event updated", res))
}

func (c *caseController) GenerateStrategyPack(ctx *fiber.Ctx) error {
	id, err := identity(ctx)
	if err != nil {
		return err
	}
	caseID, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	res, err := c.strategy.GeneratePack(ctx.UserContext(), id, caseID)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.CreatedResponse("Strategy pack generated", res))
}

func (c *caseController) GenerateStrategy(ctx *fiber.Ctx) error {
	var facts strategy.Facts
	if err := parseBody(ctx, &facts); err != nil {
		return err
	}
	result, source := c.strategy.Generate(ctx.UserContext(), facts)
	return ctx.JSON(serverutils.SuccessResponse("Strategy generated", fiber.Map{
		"strategy": result,
		"source":   source,
	}))
}
