package controller

import (
	"tradie-recovery-be/internal/dto"
	"tradie-recovery-be/internal/pkg/serverutils"
	"tradie-recovery-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAuthController interface {
	RegisterRoutes(r fiber.Router)
	Register(ctx *fiber.Ctx) error
	Login(ctx *fiber.Ctx) error
	Me(ctx *fiber.Ctx) error
	AdminLogin(ctx *fiber.Ctx) error
	AdminLogout(ctx *fiber.Ctx) error
}

type authController struct {
	service service.IAuthService
	auth    *serverutils.Authenticator
}

func NewAuthController(service service.IAuthService, auth *serverutils.Authenticator) IAuthController {
	return &authController{service: service, auth: auth}
}

func (c *authController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/auth")
	h.Post("/register", c.Register)
	h.Post("/login", c.Login)
	h.Get("/me", c.auth.RequireAuth, c.Me)

	// Admin sessions are separate from the bearer token lifetime.
	r.Post("/admin/login", c.AdminLogin)
	r.Post("/admin/logout", c.auth.RequireAuth, c.AdminLogout)
}

func (c *authController) Register(ctx *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.Register(ctx.UserContext(), &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.CreatedResponse("User registered successfully", res))
}

func (c *authController) Login(ctx *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.Login(ctx.UserContext(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Login successful", res))
}

func (c *authController) Me(ctx *fiber.Ctx) error {
	id, err := identity(ctx)
	if err != nil {
		return err
	}
	res, err := c.service.Me(ctx.UserContext(), id.ID)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get profile", res))
}

func (c *authController) AdminLogin(ctx *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.LoginAdmin(ctx.UserContext(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Admin login successful", res))
}

func (c *authController) AdminLogout(ctx *fiber.Ctx) error {
	id, err := identity(ctx)
	if err != nil {
		return err
	}
	if id.SessionID == "" {
		return serverutils.NewBadRequest("no admin session on this token")
	}
	if err := c.service.LogoutAdmin(ctx.UserContext(), id.SessionID); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Logged out", nil))
}
