package controller

import (
	"tradie-recovery-be/internal/pkg/authz"
	"tradie-recovery-be/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func paramID(ctx *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params(name))
	if err != nil {
		return uuid.Nil, serverutils.NewBadRequest("invalid " + name)
	}
	return id, nil
}

func identity(ctx *fiber.Ctx) (*authz.Identity, error) {
	id := serverutils.CurrentIdentity(ctx)
	if id == nil {
		return nil, serverutils.NewUnauthorized("missing token")
	}
	return id, nil
}

func parseBody(ctx *fiber.Ctx, req interface{}) error {
	if err := ctx.BodyParser(req); err != nil {
		return serverutils.NewBadRequest("invalid request body")
	}
	return serverutils.ValidateRequest(req)
}

func parseQuery(ctx *fiber.Ctx, req interface{}) error {
	if err := ctx.QueryParser(req); err != nil {
		return serverutils.NewBadRequest("invalid query")
	}
	return serverutils.ValidateRequest(req)
}
