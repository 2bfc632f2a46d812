package controller

import (
	"tradie-recovery-be/internal/dto"
	"tradie-recovery-be/internal/pkg/authz"
	"tradie-recovery-be/internal/pkg/serverutils"
	"tradie-recovery-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAdminController interface {
	RegisterRoutes(r fiber.Router)
	GetDashboard(ctx *fiber.Ctx) error
	GetAllUsers(ctx *fiber.Ctx) error
	ChangeRole(ctx *fiber.Ctx) error
	GetLogs(ctx *fiber.Ctx) error
	GetLogDetail(ctx *fiber.Ctx) error
}

type adminController struct {
	service service.IAdminService
	auth    *serverutils.Authenticator
}

func NewAdminController(service service.IAdminService, auth *serverutils.Authenticator) IAdminController {
	return &adminController{service: service, auth: auth}
}

// Capability is checked before the session so callers without the role get
// a 403 rather than a session error.
func (c *adminController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/admin")
	h.Get("/dashboard", c.auth.RequireAuth, serverutils.RequireCapability(authz.DashboardView), c.auth.RequireAdminSession, c.GetDashboard)
	h.Get("/users", c.auth.RequireAuth, serverutils.RequireCapability(authz.UsersList), c.auth.RequireAdminSession, c.GetAllUsers)
	h.Patch("/users/:id/role", c.auth.RequireAuth, serverutils.RequireCapability(authz.UsersRole), c.auth.RequireAdminSession, c.ChangeRole)
	h.Get("/logs", c.auth.RequireAuth, serverutils.RequireCapability(authz.LogsView), c.auth.RequireAdminSession, c.GetLogs)
	h.Get("/logs/:id", c.auth.RequireAuth, serverutils.RequireCapability(authz.LogsView), c.auth.RequireAdminSession, c.GetLogDetail)
}

func (c *adminController) GetDashboard(ctx *fiber.Ctx) error {
	id, err := identity(ctx)
	if err != nil {
		return err
	}
	res, err := c.service.Dashboard(ctx.UserContext(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get dashboard", res))
}

func (c *adminController) GetAllUsers(ctx *fiber.Ctx) error {
	id, err := identity(ctx)
	if err != nil {
		return err
	}
	var req dto.AdminUserListRequest
	if err := parseQuery(ctx, &req); err != nil {
		return err
	}
	res, err := c.service.ListUsers(ctx.UserContext(), id, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get users", res))
}

func (c *adminController) ChangeRole(ctx *fiber.Ctx) error {
	id, err := identity(ctx)
	if err != nil {
		return err
	}
	userID, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	var req dto.ChangeRoleRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	res, err := c.service.ChangeRole(ctx.UserContext(), id, userID, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Role updated", res))
}

func (c *adminController) GetLogs(ctx *fiber.Ctx) error {
	id, err := identity(ctx)
	if err != nil {
		return err
	}
	var req dto.LogListRequest
	if err := parseQuery(ctx, &req); err != nil {
		return err
	}
	res, err := c.service.ListLogs(ctx.UserContext(), id, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get logs", res))
}

func (c *adminController) GetLogDetail(ctx *fiber.Ctx) error {
	id, err := identity(ctx)
	if err != nil {
		return err
	}
	res, err := c.service.GetLog(ctx.UserContext(), id, ctx.Params("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get log detail", res))
}
