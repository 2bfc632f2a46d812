package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"tradie-recovery-be/internal/dto"
	"tradie-recovery-be/internal/entity"
	"tradie-recovery-be/internal/model"
	"tradie-recovery-be/internal/pkg/logger"
	"tradie-recovery-be/internal/pkg/serverutils"
	"tradie-recovery-be/internal/repository"
	"tradie-recovery-be/internal/repository/specification"
	"tradie-recovery-be/internal/repository/unitofwork"
	"tradie-recovery-be/pkg/events"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const deadlineWindow = 72 * time.Hour

// DefaultNotificationTypes is the event-to-notification registry seeded on startup.
var DefaultNotificationTypes = []model.NotificationType{
	{
		Code:        events.ApplicationSubmitted,
		DisplayName: "New application",
		Template:    "{full_name} submitted an application ({trade}, {state})",
		TargetType:  "ROLE",
		TargetRole:  "admin,moderator",
		Priority:    "high",
		ActionURL:   "/admin/applications/{entity_id}",
		IsActive:    true,
	},
	{
		Code:        events.ApplicationStatusChanged,
		DisplayName: "Application reviewed",
		Template:    "Your application was {status}",
		TargetType:  "SELF",
		Priority:    "medium",
		ActionURL:   "/applications/{entity_id}",
		IsActive:    true,
	},
	{
		Code:        events.CaseCreated,
		DisplayName: "Case opened",
		Template:    "Case {case_number} opened: {title}",
		TargetType:  "SELF",
		Priority:    "medium",
		ActionURL:   "/cases/{entity_id}",
		IsActive:    true,
	},
	{
		Code:        events.DocumentReady,
		DisplayName: "Strategy pack ready",
		Template:    "Your strategy pack for {case_number} is ready to download",
		TargetType:  "SELF",
		Priority:    "high",
		ActionURL:   "/cases/{entity_id}/documents",
		IsActive:    true,
	},
	{
		Code:        events.DeadlineApproaching,
		DisplayName: "Deadline approaching",
		Template:    "{title}: {next_action} is due {due_date}",
		TargetType:  "SELF",
		Priority:    "urgent",
		ActionURL:   "/{entity_type}s/{entity_id}",
		IsActive:    true,
	},
	{
		Code:        events.PaymentSucceeded,
		DisplayName: "Payment received",
		Template:    "Payment received for {plan}",
		TargetType:  "SELF",
		Priority:    "medium",
		ActionURL:   "/billing",
		IsActive:    true,
	},
}

// NotificationDelivery defines how to push real-time updates.
// Typically implemented by the WebSocket Hub.
type NotificationDelivery interface {
	Send(userID uuid.UUID, notification model.Notification)
}

// EventSource is the durable broker subscription, satisfied by the NATS subscriber.
type EventSource interface {
	Subscribe(subject, durableName string, handler events.Handler) error
}

type NotificationService struct {
	repo       repository.NotificationRepository
	uowFactory unitofwork.RepositoryFactory
	delivery   NotificationDelivery
	logger     logger.ILogger
	now        func() time.Time
}

func NewNotificationService(
	repo repository.NotificationRepository,
	uowFactory unitofwork.RepositoryFactory,
	delivery NotificationDelivery,
	log logger.ILogger,
) *NotificationService {
	return &NotificationService{
		repo:       repo,
		uowFactory: uowFactory,
		delivery:   delivery,
		logger:     log,
		now:        time.Now,
	}
}

func (s *NotificationService) SeedTypes(ctx context.Context) error {
	n, err := s.repo.EnsureNotificationTypes(ctx, DefaultNotificationTypes)
	if err != nil {
		return err
	}
	if n > 0 {
		s.logger.Info("NotificationService", "Seeded notification types", map[string]interface{}{"inserted": n})
	}
	return nil
}

// Start begins listening to the event bus.
func (s *NotificationService) Start(source EventSource) error {
	if err := source.Subscribe("events.>", "notif-service-worker", s.HandleEvent); err != nil {
		s.logger.Error("NotificationService", "Failed to start notification subscriber", map[string]interface{}{"error": err.Error()})
		return err
	}
	s.logger.Info("NotificationService", "Notification service started, listening to events.>", nil)
	return nil
}

func (s *NotificationService) HandleEvent(ctx context.Context, event events.Event) error {
	typeCode := strings.TrimPrefix(event.EventType(), "events.")

	config, err := s.repo.GetNotificationTypeByCode(ctx, typeCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("NotificationService", fmt.Sprintf("Config not found for code: '%s'", typeCode), nil)
			return nil
		}
		return err
	}
	if !config.IsActive {
		return nil
	}

	recipients, err := s.resolveRecipients(ctx, config, event)
	if err != nil {
		s.logger.Error("NotificationService", fmt.Sprintf("Error resolving recipients for %s", typeCode), map[string]interface{}{"error": err.Error()})
		return err
	}

	for _, userID := range recipients {
		notif := s.buildNotification(userID, config, event)
		if err := s.repo.CreateNotification(ctx, &notif); err != nil {
			s.logger.Error("NotificationService", fmt.Sprintf("Error saving notification for user %s", userID), map[string]interface{}{"error": err.Error()})
			continue
		}
		if s.delivery != nil {
			s.delivery.Send(userID, notif)
		}
	}
	return nil
}

func (s *NotificationService) resolveRecipients(ctx context.Context, config *model.NotificationType, event events.Event) ([]uuid.UUID, error) {
	switch config.TargetType {
	case "SELF":
		uidStr, _ := event.Payload()["user_id"].(string)
		uid, err := uuid.Parse(uidStr)
		if err != nil {
			s.logger.Warn("NotificationService", fmt.Sprintf("TargetType SELF but no user_id found in payload for event %s", config.Code), nil)
			return nil, nil
		}
		return []uuid.UUID{uid}, nil
	case "ADMIN":
		return s.repo.GetUserIDsByRole(ctx, string(entity.UserRoleAdmin))
	case "ROLE":
		var roles []string
		for _, r := range strings.Split(config.TargetRole, ",") {
			if r = strings.TrimSpace(r); r != "" {
				roles = append(roles, r)
			}
		}
		if len(roles) == 0 {
			return nil, nil
		}
		return s.repo.GetUserIDsByRole(ctx, roles...)
	}
	return nil, nil
}

func render(template string, payload map[string]interface{}) string {
	out := template
	for k, v := range payload {
		out = strings.ReplaceAll(out, "{"+k+"}", fmt.Sprintf("%v", v))
	}
	return out
}

func (s *NotificationService) buildNotification(userID uuid.UUID, config *model.NotificationType, event events.Event) model.Notification {
	payload := event.Payload()

	var actorID *uuid.UUID
	if actorStr, ok := payload["actor_id"].(string); ok {
		if aid, err := uuid.Parse(actorStr); err == nil {
			actorID = &aid
		}
	}

	entityType, _ := payload["entity_type"].(string)
	var entityID *uuid.UUID
	if eidStr, ok := payload["entity_id"].(string); ok {
		if eid, err := uuid.Parse(eidStr); err == nil {
			entityID = &eid
		}
	}

	actionURL := ""
	if config.ActionURL != "" {
		actionURL = render(config.ActionURL, payload)
		// unresolved placeholders mean the event lacked the fields for a deep link
		if strings.Contains(actionURL, "{") {
			actionURL = ""
		}
	}

	metaJSON, _ := json.Marshal(payload)

	return model.Notification{
		ID:         uuid.New(),
		UserID:     userID,
		ActorID:    actorID,
		TypeCode:   config.Code,
		Title:      config.DisplayName,
		Message:    render(config.Template, payload),
		Priority:   config.Priority,
		ActionURL:  actionURL,
		Metadata:   datatypes.JSON(metaJSON),
		EntityType: entityType,
		EntityID:   entityID,
		CreatedAt:  s.now(),
	}
}

func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, req *dto.NotificationListRequest) (*serverutils.Page[model.Notification], error) {
	limit, offset := normalizePage(req.Limit, req.Offset)
	items, total, err := s.repo.GetNotificationsByUserID(ctx, userID, repository.NotificationFilter{
		UnreadOnly: req.Unread,
		Archived:   req.Archived,
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.Notification{}
	}
	return &serverutils.Page[model.Notification]{Items: items, Total: total, Limit: limit, Offset: offset}, nil
}

func (s *NotificationService) Summary(ctx context.Context, userID uuid.UUID) (*repository.NotificationSummary, error) {
	return s.repo.GetSummary(ctx, userID)
}

func (s *NotificationService) MarkAsRead(ctx context.Context, userID, id uuid.UUID) error {
	ok, err := s.repo.MarkAsRead(ctx, userID, id)
	if err != nil {
		return err
	}
	if !ok {
		return serverutils.NewNotFound("notification not found")
	}
	return nil
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) (*dto.MarkAllReadResponse, error) {
	n, err := s.repo.MarkAllAsRead(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &dto.MarkAllReadResponse{Updated: n}, nil
}

func (s *NotificationService) Archive(ctx context.Context, userID, id uuid.UUID) error {
	ok, err := s.repo.Archive(ctx, userID, id)
	if err != nil {
		return err
	}
	if !ok {
		return serverutils.NewNotFound("notification not found")
	}
	return nil
}

func (s *NotificationService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	ok, err := s.repo.Delete(ctx, userID, id)
	if err != nil {
		return err
	}
	if !ok {
		return serverutils.NewNotFound("notification not found")
	}
	return nil
}

type deadlineItem struct {
	userID     uuid.UUID
	entityType string
	entityID   uuid.UUID
	title      string
	nextAction string
	due        time.Time
}

// GenerateDeadlineNotifications scans open cases and contracts whose next
// action falls due within three days. Each item is notified at most once a day.
func (s *NotificationService) GenerateDeadlineNotifications(ctx context.Context) (*dto.GenerateNotificationsResponse, error) {
	now := s.now()
	window := specification.NextActionDueBetween{From: now, To: now.Add(deadlineWindow)}
	uow := s.uowFactory.NewUnitOfWork(ctx)

	cases, err := uow.CaseRepository().FindAll(ctx, window, specification.NotStatus{Status: string(entity.CaseResolved)})
	if err != nil {
		return nil, err
	}
	contracts, err := uow.ContractRepository().FindAll(ctx, window,
		specification.NotStatus{Status: string(entity.ContractCompleted)},
		specification.NotStatus{Status: string(entity.ContractTerminated)},
	)
	if err != nil {
		return nil, err
	}

	items := make([]deadlineItem, 0, len(cases)+len(contracts))
	for _, c := range cases {
		items = append(items, deadlineItem{c.UserId, "case", c.Id, c.Title, c.NextAction, *c.NextActionDue})
	}
	for _, c := range contracts {
		items = append(items, deadlineItem{c.UserId, "contract", c.Id, c.Title, c.NextAction, *c.NextActionDue})
	}

	res := &dto.GenerateNotificationsResponse{Scanned: len(items)}
	for _, it := range items {
		exists, err := s.repo.ExistsSince(ctx, it.userID, events.DeadlineApproaching, it.entityID, now.Add(-24*time.Hour))
		if err != nil {
			return nil, err
		}
		if exists {
			continue
		}
		nextAction := it.nextAction
		if nextAction == "" {
			nextAction = "next action"
		}
		event := events.New(events.DeadlineApproaching, map[string]interface{}{
			"user_id":     it.userID.String(),
			"title":       it.title,
			"next_action": nextAction,
			"due_date":    it.due.Format("2 Jan 2006"),
			"entity_type": it.entityType,
			"entity_id":   it.entityID.String(),
		})
		if err := s.HandleEvent(ctx, event); err != nil {
			return nil, err
		}
		res.Created++
	}

	s.logger.Info("NotificationService", "Deadline scan finished", map[string]interface{}{"scanned": res.Scanned, "created": res.Created})
	return res, nil
}
