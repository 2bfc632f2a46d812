package controller

import (
	"tradie-recovery-be/internal/dto"
	"tradie-recovery-be/internal/pkg/serverutils"
	"tradie-recovery-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ICalendarController interface {
	RegisterRoutes(r fiber.Router)
	Connect(ctx *fiber.Ctx) error
	Callback(ctx *fiber.Ctx) error
	ListIntegrations(ctx *fiber.Ctx) error
	Disconnect(ctx *fiber.Ctx) error
	ListEvents(ctx *fiber.Ctx) error
	CreateEvent(ctx *fiber.Ctx) error
}

type calendarController struct {
	service service.ICalendarService
	auth    *serverutils.Authenticator
}

func NewCalendarController(service service.ICalendarService, auth *serverutils.Authenticator) ICalendarController {
	return &calendarController{service: service, auth: auth}
}

func (c *calendarController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/calendar")
	h.Get("/integrations", c.auth.RequireAuth, c.ListIntegrations)
	h.Delete("/integrations/:id", c.auth.RequireAuth, c.Disconnect)
	h.Get("/events", c.auth.RequireAuth, c.ListEvents)
	h.Post("/events", c.auth.RequireAuth, c.CreateEvent)

	h.Get("/:provider/connect", c.auth.RequireAuth, c.Connect)
	// The provider redirects the browser here; the state parameter carries the user.
	h.Get("/:provider/callback", c.Callback)
}

func (c *calendarController) Connect(ctx *fiber.Ctx) error {
	id, err := identity(ctx)
	if err != nil {
		return err
	}
	res, err := c.service.ConnectURL(ctx.UserContext(), id, ctx.Params("provider"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Authorize at the returned url", res))
}

func (c *calendarController) Callback(ctx *fiber.Ctx) error {
	var req dto.CalendarCallbackRequest
	if err := parseQuery(ctx, &req); err != nil {
		return err
	}
	res, err := c.service.Callback(ctx.UserContext(), ctx.Params("provider"), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Calendar connected", res))
}

func (c *calendarController) ListIntegrations(ctx *fiber.Ctx) error {
	id, err := identity(ctx)
	if err != nil {
		return err
	}
	res, err := c.service.ListIntegrations(ctx.UserContext(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get integrations", res))
}

func (c *calendarController) Disconnect(ctx *fiber.Ctx) error {
	id, err := identity(ctx)
	if err != nil {
		return err
	}
	integrationID, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	if err := c.service.Disconnect(ctx.UserContext(), id, integrationID); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Calendar disconnected", nil))
}

func (c *calendarController) ListEvents(ctx *fiber.Ctx) error {
	id, err := identity(ctx)
	if err != nil {
		return err
	}
	res, err := c.service.ListEvents(ctx.UserContext(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get events", res))
}

func (c *calendarController) CreateEvent(ctx *fiber.Ctx) error {
	id, err := identity(ctx)
	if err != nil {
		return err
	}
	var req dto.CreateCalendarEventRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	res, err := c.service.CreateEvent(ctx.UserContext(), id, &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.CreatedResponse("Event created", res))
}
