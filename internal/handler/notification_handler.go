package handler

import (
	"tradie-recovery-be/internal/dto"
	"tradie-recovery-be/internal/pkg/authz"
	"tradie-recovery-be/internal/pkg/logger"
	"tradie-recovery-be/internal/pkg/serverutils"
	"tradie-recovery-be/internal/service"
	internalWS "tradie-recovery-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

type NotificationHandler struct {
	service *service.NotificationService
	hub     *internalWS.Hub
	auth    *serverutils.Authenticator
	logger  logger.ILogger
}

func NewNotificationHandler(service *service.NotificationService, hub *internalWS.Hub, auth *serverutils.Authenticator, log logger.ILogger) *NotificationHandler {
	return &NotificationHandler{
		service: service,
		hub:     hub,
		auth:    auth,
		logger:  log,
	}
}

// ServeWs handles websocket requests from the peer.
func (h *NotificationHandler) ServeWs(c *fiber.Ctx) error {
	// Browsers cannot set headers on the upgrade request, so the query wins.
	tokenStr := c.Query("token")
	if tokenStr == "" {
		tokenStr, _ = serverutils.ExtractBearerToken(c.Get(fiber.HeaderAuthorization))
	}
	if tokenStr == "" {
		return serverutils.NewUnauthorized("missing token (query 'token' or header 'Authorization')")
	}

	identity, err := h.auth.Authenticate(c.UserContext(), tokenStr)
	if err != nil {
		h.logger.Warn("NotificationHandler", "Invalid token in WS handshake", map[string]interface{}{"error": err.Error()})
		return serverutils.NewUnauthorized("invalid token")
	}
	userID := identity.ID

	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	return websocket.New(func(conn *websocket.Conn) {
		h.logger.Info("NotificationHandler", "Starting WebSocket session", map[string]interface{}{"user_id": userID})
		internalWS.ServeWs(h.hub, conn, userID)
		h.logger.Info("NotificationHandler", "WebSocket session ended", map[string]interface{}{"user_id": userID})
	})(c)
}

func currentUserID(c *fiber.Ctx) (uuid.UUID, error) {
	identity := serverutils.CurrentIdentity(c)
	if identity == nil {
		return uuid.Nil, serverutils.NewUnauthorized("missing token")
	}
	return identity.ID, nil
}

func notificationID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, serverutils.NewBadRequest("invalid id")
	}
	return id, nil
}

// GetNotifications returns the user's notifications.
func (h *NotificationHandler) GetNotifications(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	var req dto.NotificationListRequest
	if err := c.QueryParser(&req); err != nil {
		return serverutils.NewBadRequest("invalid query")
	}

	page, err := h.service.List(c.UserContext(), userID, &req)
	if err != nil {
		return err
	}
	return c.JSON(serverutils.SuccessResponse("Success get notifications", page))
}

func (h *NotificationHandler) GetSummary(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	summary, err := h.service.Summary(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(serverutils.SuccessResponse("Success get summary", summary))
}

// MarkAsRead marks a specific notification as read.
func (h *NotificationHandler) MarkAsRead(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	id, err := notificationID(c)
	if err != nil {
		return err
	}
	if err := h.service.MarkAsRead(c.UserContext(), userID, id); err != nil {
		return err
	}
	return c.JSON(serverutils.SuccessResponse[any]("Notification marked as read", nil))
}

// MarkAllAsRead marks all user's notifications as read.
func (h *NotificationHandler) MarkAllAsRead(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	res, err := h.service.MarkAllAsRead(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(serverutils.SuccessResponse("All notifications marked as read", res))
}

func (h *NotificationHandler) Archive(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	id, err := notificationID(c)
	if err != nil {
		return err
	}
	if err := h.service.Archive(c.UserContext(), userID, id); err != nil {
		return err
	}
	return c.JSON(serverutils.SuccessResponse[any]("Notification archived", nil))
}

func (h *NotificationHandler) Delete(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	id, err := notificationID(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), userID, id); err != nil {
		return err
	}
	return c.JSON(serverutils.SuccessResponse[any]("Notification deleted", nil))
}

// Generate runs the deadline scan on demand.
func (h *NotificationHandler) Generate(c *fiber.Ctx) error {
	res, err := h.service.GenerateDeadlineNotifications(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(serverutils.SuccessResponse("Deadline notifications generated", res))
}

// RegisterRoutes registers the notification routes.
func (h *NotificationHandler) RegisterRoutes(router fiber.Router) {
	notif := router.Group("/notifications", h.auth.RequireAuth)
	notif.Get("/", h.GetNotifications)
	notif.Get("/summary", h.GetSummary)
	notif.Patch("/read-all", h.MarkAllAsRead)
	notif.Patch("/:id/read", h.MarkAsRead)
	notif.Patch("/:id/archive", h.Archive)
	notif.Delete("/:id", h.Delete)
	notif.Post("/generate", serverutils.RequireCapability(authz.NotificationsGen), h.Generate)

	router.Get("/ws", h.ServeWs)
}
