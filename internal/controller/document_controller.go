package controller

import (
	"fmt"
	"strings"

	"tradie-recovery-be/internal/dto"
	"tradie-recovery-be/internal/pkg/serverutils"
	"tradie-recovery-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IDocumentController interface {
	RegisterRoutes(r fiber.Router)
	Upload(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Get(ctx *fiber.Ctx) error
	Download(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error

	ListTags(ctx *fiber.Ctx) error
	DocumentTags(ctx *fiber.Ctx) error
	SuggestTags(ctx *fiber.Ctx) error
	ApplyTags(ctx *fiber.Ctx) error
	RemoveTag(ctx *fiber.Ctx) error
}

type documentController struct {
	service service.IDocumentService
	tags    service.ITagService
	auth    *serverutils.Authenticator
}

func NewDocumentController(service service.IDocumentService, tags service.ITagService, auth *serverutils.Authenticator) IDocumentController {
	return &documentController{service: service, tags: tags, auth: auth}
}

func (c *documentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/documents")
	h.Post("/", c.auth.RequireAuth, c.Upload)
	h.Get("/", c.auth.RequireAuth, c.List)
	h.Get("/:id", c.auth.RequireAuth, c.Get)
	h.Get("/:id/download", c.auth.RequireAuth, c.Download)
	h.Patch("/:id", c.auth.RequireAuth, c.Update)
	h.Delete("/:id", c.auth.RequireAuth, c.Delete)

	h.Get("/:id/tags", c.auth.RequireAuth, c.DocumentTags)
	h.Post("/:id/tags/suggest", c.auth.RequireAuth, c.SuggestTags)
	h.Post("/:id/tags", c.auth.RequireAuth, c.ApplyTags)
	h.Delete("/:id/tags/:tagId", c.auth.RequireAuth, c.RemoveTag)

	r.Get("/tags", c.auth.RequireAuth, c.ListTags)
}

func optionalFormID(ctx *fiber.Ctx, key string) (*uuid.UUID, error) {
	raw := strings.TrimSpace(ctx.FormValue(key))
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, serverutils.NewBadRequest("invalid " + key)
	}
	return &id, nil
}

func (c *documentController) Upload(ctx *fiber.Ctx) error {
	id, err := identity(ctx)
	if err != nil {
		return err
	}
	file, err := ctx.FormFile("file")
	if err != nil {
		return serverutils.NewBadRequest("file is required")
	}

	caseID, err := optionalFormID(ctx, "case_id")
	if err != nil {
		return err
	}
	contractID, err := optionalFormID(ctx, "contract_id")
	if err != nil {
		return err
	}

	body, err := file.Open()
	if err != nil {
		return serverutils.NewBadRequest("unreadable file")
	}
	defer body.Close()

	res, err := c.service.Upload(ctx.UserContext(), id, &dto.UploadDocumentRequest{
		CaseId:      caseID,
		ContractId:  contractID,
		Category:    ctx.FormValue("category"),
		Description: ctx.FormValue("description"),
		Filename:    file.Filename,
		Size:        file.Size,
	}, body)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.CreatedResponse("Document uploaded", res))
}

func (c *documentController) List(ctx *fiber.Ctx) error {
	id, err := identity(ctx)
	if err != nil {
		return err
	}
	var req dto.DocumentListRequest
	if err := parseQuery(ctx, &req); err != nil {
		return err
	}
	res, err := c.service.List(ctx.UserContext(), id, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get documents", res))
}

func (c *documentController) Get(ctx *fiber.Ctx) error {
	id, err := identity(ctx)
	if err != nil {
		return err
	}
	docID, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	res, err := c.service.Get(ctx.UserContext(), id, docID)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get document", res))
}

func (c *documentController) Download(ctx *fiber.Ctx) error {
	id, err := identity(ctx)
	if err != nil {
		return err
	}
	docID, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	body, doc, err := c.service.Download(ctx.UserContext(), id, docID)
	if err != nil {
		return err
	}

	ctx.Set(fiber.HeaderContentType, doc.MimeType)
	ctx.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", doc.Filename))
	// fasthttp closes the stream once it has been written out
	return ctx.SendStream(body, int(doc.Size))
}

func (c *documentController) Update(ctx *fiber.Ctx) error {
	id, err := identity(ctx)
	if err != nil {
		return err
	}
	docID, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateDocumentRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	res, err := c.service.Update(ctx.UserContext(), id, docID, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Document updated", res))
}

func (c *documentController) Delete(ctx *fiber.Ctx) error {
	id, err := identity(ctx)
	if err != nil {
		return err
	}
	docID, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	if err := c.service.Delete(ctx.UserContext(), id, docID); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Document deleted", nil))
}

func (c *documentController) ListTags(ctx *fiber.Ctx) error {
	res, err := c.tags.ListTags(ctx.UserContext())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get tags", res))
}

func (c *documentController) DocumentTags(ctx *fiber.Ctx) error {
	id, err := identity(ctx)
	if err != nil {
		return err
	}
	docID, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	res, err := c.tags.DocumentTags(ctx.UserContext(), id, docID)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get document tags", res))
}

func (c *documentController) SuggestTags(ctx *fiber.Ctx) error {
	id, err := identity(ctx)
	if err != nil {
		return err
	}
	docID, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	res, err := c.tags.Suggest(ctx.UserContext(), id, docID)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Tag suggestions generated", res))
}

func (c *documentController) ApplyTags(ctx *fiber.Ctx) error {
	id, err := identity(ctx)
	if err != nil {
		return err
	}
	docID, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	var req dto.ApplyTagsRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	res, err := c.tags.Apply(ctx.UserContext(), id, docID, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Tags applied", res))
}

func (c *documentController) RemoveTag(ctx *fiber.Ctx) error {
	id, err := identity(ctx)
	if err != nil {
		return err
	}
	docID, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	tagID, err := paramID(ctx, "tagId")
	if err != nil {
		return err
	}
	if err := c.tags.Remove(ctx.UserContext(), id, docID, tagID); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Tag removed", nil))
}
