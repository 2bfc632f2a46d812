package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"tradie-recovery-be/internal/dto"
	"tradie-recovery-be/internal/entity"
	"tradie-recovery-be/internal/pkg/authz"
	"tradie-recovery-be/internal/pkg/logger"
	"tradie-recovery-be/internal/pkg/serverutils"
	"tradie-recovery-be/internal/repository/specification"
	"tradie-recovery-be/internal/repository/unitofwork"
	"tradie-recovery-be/pkg/events"
	"tradie-recovery-be/pkg/strategy"

	"github.com/google/uuid"
)

type IApplicationService interface {
	// Submit accepts anonymous submissions; identity may be nil.
	Submit(ctx context.Context, identity *authz.Identity, req *dto.SubmitApplicationRequest) (*dto.ApplicationResponse, error)
	List(ctx context.Context, identity *authz.Identity, req *dto.ApplicationListRequest) (*serverutils.Page[dto.ApplicationResponse], error)
	Get(ctx context.Context, identity *authz.Identity, id uuid.UUID) (*dto.ApplicationResponse, error)
	UpdateStatus(ctx context.Context, identity *authz.Identity, id uuid.UUID, req *dto.UpdateApplicationStatusRequest) (*dto.ApplicationResponse, error)
	Analyze(ctx context.Context, identity *authz.Identity, id uuid.UUID) (*dto.ApplicationResponse, error)
}

type applicationService struct {
	uowFactory unitofwork.RepositoryFactory
	generator  *strategy.Generator
	events     events.Publisher
	tasks      ITaskDispatcher
	logger     logger.ILogger
}

func NewApplicationService(
	uowFactory unitofwork.RepositoryFactory,
	generator *strategy.Generator,
	publisher events.Publisher,
	tasks ITaskDispatcher,
	log logger.ILogger,
) IApplicationService {
	return &applicationService{
		uowFactory: uowFactory,
		generator:  generator,
		events:     publisher,
		tasks:      tasks,
		logger:     log,
	}
}

func (s *applicationService) Submit(ctx context.Context, identity *authz.Identity, req *dto.SubmitApplicationRequest) (*dto.ApplicationResponse, error) {
	app := &entity.Application{
		FullName:     strings.TrimSpace(req.FullName),
		Email:        strings.TrimSpace(req.Email),
		Phone:        strings.TrimSpace(req.Phone),
		BusinessName: req.BusinessName,
		Trade:        strings.TrimSpace(req.Trade),
		State:        strings.ToLower(strings.TrimSpace(req.State)),
		IssueType:    strings.TrimSpace(req.IssueType),
		Description:  strings.TrimSpace(req.Description),
		Amount:       req.Amount,
		Status:       entity.ApplicationPending,
	}
	if req.IssueDate != nil && *req.IssueDate != "" {
		d, err := time.Parse("2006-01-02", *req.IssueDate)
		if err != nil {
			return nil, serverutils.NewBadRequest("issueDate must be YYYY-MM-DD")
		}
		app.IssueDate = &d
	}
	if identity != nil {
		uid := identity.ID
		app.UserId = &uid
	}

	if err := s.uowFactory.NewUnitOfWork(ctx).ApplicationRepository().Create(ctx, app); err != nil {
		return nil, err
	}

	s.logger.Info("ApplicationService", "Application submitted", map[string]interface{}{"application_id": app.Id, "trade": app.Trade, "state": app.State})
	s.tasks.Dispatch(ctx, TopicWelcomeEmail, dto.WelcomeEmailTask{Email: app.Email, FullName: app.FullName})
	publishEvent(ctx, s.events, s.logger, events.ApplicationSubmitted, map[string]interface{}{
		"full_name":   app.FullName,
		"trade":       app.Trade,
		"state":       app.State,
		"entity_type": "application",
		"entity_id":   app.Id.String(),
	})

	res := toApplicationResponse(app)
	return &res, nil
}

func (s *applicationService) List(ctx context.Context, identity *authz.Identity, req *dto.ApplicationListRequest) (*serverutils.Page[dto.ApplicationResponse], error) {
	limit, offset := normalizePage(req.Limit, req.Offset)

	filters := []specification.Specification{specification.ByStatus{Status: req.Status}}
	if !identity.Can(authz.ApplicationsList) {
		filters = append(filters, specification.UserOwnedBy{UserID: identity.ID})
	}

	repo := s.uowFactory.NewUnitOfWork(ctx).ApplicationRepository()
	total, err := repo.Count(ctx, filters...)
	if err != nil {
		return nil, err
	}
	apps, err := repo.FindAll(ctx, append(filters,
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit, Offset: offset},
	)...)
	if err != nil {
		return nil, err
	}

	items := make([]dto.ApplicationResponse, 0, len(apps))
	for _, a := range apps {
		items = append(items, toApplicationResponse(a))
	}
	return &serverutils.Page[dto.ApplicationResponse]{Items: items, Total: total, Limit: limit, Offset: offset}, nil
}

func (s *applicationService) load(ctx context.Context, identity *authz.Identity, id uuid.UUID) (*entity.Application, error) {
	app, err := s.uowFactory.NewUnitOfWork(ctx).ApplicationRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if app == nil {
		return nil, serverutils.NewNotFound("application not found")
	}
	owner := app.UserId != nil && identity != nil && *app.UserId == identity.ID
	if !owner && !identity.Can(authz.ApplicationsList) {
		return nil, serverutils.NewForbidden("not allowed to view this application")
	}
	return app, nil
}

func (s *applicationService) Get(ctx context.Context, identity *authz.Identity, id uuid.UUID) (*dto.ApplicationResponse, error) {
	app, err := s.load(ctx, identity, id)
	if err != nil {
		return nil, err
	}
	res := toApplicationResponse(app)
	return &res, nil
}

func (s *applicationService) UpdateStatus(ctx context.Context, identity *authz.Identity, id uuid.UUID, req *dto.UpdateApplicationStatusRequest) (*dto.ApplicationResponse, error) {
	if !identity.Can(authz.ApplicationsReview) {
		return nil, serverutils.NewForbidden("reviewer role required")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	app, err := uow.ApplicationRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if app == nil {
		return nil, serverutils.NewNotFound("application not found")
	}
	if app.Status != entity.ApplicationPending {
		return nil, serverutils.NewConflict(fmt.Sprintf("application is already %s", app.Status))
	}

	now := time.Now()
	reviewer := identity.ID
	app.Status = entity.ApplicationStatus(req.Status)
	app.ReviewedBy = &reviewer
	app.ReviewedAt = &now
	app.ReviewNotes = req.Notes
	if err := uow.ApplicationRepository().Update(ctx, app); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info("ApplicationService", "Application reviewed", map[string]interface{}{"application_id": app.Id, "status": app.Status, "reviewer": reviewer})
	s.tasks.Dispatch(ctx, TopicApplicationStatusEmail, dto.ApplicationStatusEmailTask{
		Email:    app.Email,
		FullName: app.FullName,
		Status:   string(app.Status),
		Notes:    app.ReviewNotes,
	})
	if app.UserId != nil {
		publishEvent(ctx, s.events, s.logger, events.ApplicationStatusChanged, map[string]interface{}{
			"user_id":     app.UserId.String(),
			"actor_id":    reviewer.String(),
			"status":      string(app.Status),
			"entity_type": "application",
			"entity_id":   app.Id.String(),
		})
	}

	res := toApplicationResponse(app)
	return &res, nil
}

func (s *applicationService) Analyze(ctx context.Context, identity *authz.Identity, id uuid.UUID) (*dto.ApplicationResponse, error) {
	if !identity.Can(authz.ApplicationsReview) {
		return nil, serverutils.NewForbidden("reviewer role required")
	}
	app, err := s.load(ctx, identity, id)
	if err != nil {
		return nil, err
	}

	facts := strategy.Facts{
		ClientName:  app.FullName,
		CaseTitle:   fmt.Sprintf("%s payment dispute", app.Trade),
		IssueType:   app.IssueType,
		Description: app.Description,
		State:       app.State,
		Trade:       app.Trade,
	}
	if app.Amount != nil {
		facts.Amount = *app.Amount
	}
	result, source := s.generator.Generate(ctx, facts)
	raw, err := json.Marshal(result)
	if err != nil {
		return nil, serverutils.NewInternal("failed to encode analysis", err)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	current, err := uow.ApplicationRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, serverutils.NewNotFound("application not found")
	}
	current.AiAnalysis = raw
	if err := uow.ApplicationRepository().Update(ctx, current); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info("ApplicationService", "Application analysed", map[string]interface{}{"application_id": id, "source": source})
	res := toApplicationResponse(current)
	return &res, nil
}
