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
	"tradie-recovery-be/pkg/refnum"
	"tradie-recovery-be/pkg/strategy"

	"github.com/google/uuid"
)

type ICaseService interface {
	Create(ctx context.Context, identity *authz.Identity, req *dto.CreateCaseRequest) (*dto.CaseResponse, error)
	List(ctx context.Context, identity *authz.Identity, req *dto.CaseListRequest) (*serverutils.Page[dto.CaseResponse], error)
	Get(ctx context.Context, identity *authz.Identity, id uuid.UUID) (*dto.CaseResponse, error)
	Update(ctx context.Context, identity *authz.Identity, id uuid.UUID, req *dto.UpdateCaseRequest) (*dto.CaseResponse, error)
	Delete(ctx context.Context, identity *authz.Identity, id uuid.UUID) error
	Close(ctx context.Context, identity *authz.Identity, id uuid.UUID, req *dto.CloseCaseRequest) (*dto.CaseResponse, error)

	// AnalyzeCase replaces the inline fallback with generated analysis.
	AnalyzeCase(ctx context.Context, id uuid.UUID) error

	ListTimeline(ctx context.Context, identity *authz.Identity, caseID uuid.UUID) ([]dto.TimelineEventResponse, error)
	AddTimelineEvent(ctx context.Context, identity *authz.Identity, caseID uuid.UUID, req *dto.CreateTimelineEventRequest) (*dto.TimelineEventResponse, error)
	ToggleTimelineEvent(ctx context.Context, identity *authz.Identity, eventID uuid.UUID) (*dto.TimelineEventResponse, error)
}

type caseService struct {
	uowFactory unitofwork.RepositoryFactory
	generator  *strategy.Generator
	events     events.Publisher
	tasks      ITaskDispatcher
	logger     logger.ILogger
}

func NewCaseService(
	uowFactory unitofwork.RepositoryFactory,
	generator *strategy.Generator,
	publisher events.Publisher,
	tasks ITaskDispatcher,
	log logger.ILogger,
) ICaseService {
	return &caseService{
		uowFactory: uowFactory,
		generator:  generator,
		events:     publisher,
		tasks:      tasks,
		logger:     log,
	}
}

// normalizeIntake folds the top-level request fields into the stored form so
// later analysis can rebuild the same facts from the row alone.
func normalizeIntake(req *dto.CreateCaseRequest) dto.CaseIntake {
	var intake dto.CaseIntake
	if req.Intake != nil {
		intake = *req.Intake
	}
	if intake.Personal.FullName == "" {
		intake.Personal.FullName = req.ClientName
	}
	if intake.Project.State == "" {
		intake.Project.State = req.State
	}
	if intake.Project.Trade == "" {
		intake.Project.Trade = req.Trade
	}
	intake.Project.State = strings.ToLower(strings.TrimSpace(intake.Project.State))
	if intake.RiskFlags == nil {
		intake.RiskFlags = []string{}
	}
	return intake
}

func factsFromCase(c *entity.Case) strategy.Facts {
	var intake dto.CaseIntake
	if len(c.Intake) > 0 {
		_ = json.Unmarshal(c.Intake, &intake)
	}

	description := c.Description
	if intake.DesiredOutcome != "" {
		description += "\nDesired outcome: " + intake.DesiredOutcome
	}
	if len(intake.RiskFlags) > 0 {
		description += "\nRisk flags: " + strings.Join(intake.RiskFlags, ", ")
	}

	return strategy.Facts{
		ClientName:  intake.Personal.FullName,
		CaseTitle:   c.Title,
		IssueType:   c.IssueType,
		Description: description,
		State:       intake.Project.State,
		Trade:       intake.Project.Trade,
		Amount:      c.Amount,
	}
}

func (s *caseService) Create(ctx context.Context, identity *authz.Identity, req *dto.CreateCaseRequest) (*dto.CaseResponse, error) {
	intake := normalizeIntake(req)
	intakeJSON, err := json.Marshal(intake)
	if err != nil {
		return nil, serverutils.NewBadRequest("invalid intake form")
	}

	c := &entity.Case{
		UserId:        identity.ID,
		CaseNumber:    refnum.New(refnum.CasePrefix),
		Title:         strings.TrimSpace(req.Title),
		Status:        entity.CaseActive,
		IssueType:     req.IssueType,
		Amount:        req.Amount,
		Description:   req.Description,
		Intake:        intakeJSON,
		NextAction:    req.NextAction,
		NextActionDue: req.NextActionDue,
	}

	fallback, err := json.Marshal(strategy.Fallback(factsFromCase(c)))
	if err != nil {
		return nil, serverutils.NewInternal("failed to build analysis", err)
	}
	c.AiAnalysis = fallback
	c.AnalysisStatus = entity.AnalysisFallback
	if s.generator.Enabled() {
		c.AnalysisStatus = entity.AnalysisPending
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.CaseRepository().Create(ctx, c); err != nil {
		return nil, err
	}
	caseID := c.Id
	if err := uow.TimelineRepository().Create(ctx, &entity.TimelineEvent{
		UserId:      c.UserId,
		CaseId:      &caseID,
		Title:       "Case opened",
		Description: fmt.Sprintf("Case %s created", c.CaseNumber),
		EventDate:   time.Now(),
		Completed:   true,
	}); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info("CaseService", "Case created", map[string]interface{}{"case_id": c.Id, "case_number": c.CaseNumber, "analysis": c.AnalysisStatus})
	if c.AnalysisStatus == entity.AnalysisPending {
		s.tasks.Dispatch(ctx, TopicCaseAnalyze, dto.CaseAnalyzeTask{CaseId: c.Id})
	}
	publishEvent(ctx, s.events, s.logger, events.CaseCreated, map[string]interface{}{
		"user_id":     c.UserId.String(),
		"case_number": c.CaseNumber,
		"title":       c.Title,
		"entity_type": "case",
		"entity_id":   c.Id.String(),
	})

	res := toCaseResponse(c)
	return &res, nil
}

func (s *caseService) List(ctx context.Context, identity *authz.Identity, req *dto.CaseListRequest) (*serverutils.Page[dto.CaseResponse], error) {
	limit, offset := normalizePage(req.Limit, req.Offset)

	filters := []specification.Specification{specification.ByStatus{Status: req.Status}}
	if !identity.Can(authz.CasesAny) {
		filters = append(filters, specification.UserOwnedBy{UserID: identity.ID})
	}

	repo := s.uowFactory.NewUnitOfWork(ctx).CaseRepository()
	total, err := repo.Count(ctx, filters...)
	if err != nil {
		return nil, err
	}
	cases, err := repo.FindAll(ctx, append(filters,
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit, Offset: offset},
	)...)
	if err != nil {
		return nil, err
	}

	items := make([]dto.CaseResponse, 0, len(cases))
	for _, c := range cases {
		items = append(items, toCaseResponse(c))
	}
	return &serverutils.Page[dto.CaseResponse]{Items: items, Total: total, Limit: limit, Offset: offset}, nil
}

// loadCase returns 404 before 403 so ids of foreign cases still resolve to "forbidden".
func loadCase(ctx context.Context, uow unitofwork.UnitOfWork, identity *authz.Identity, id uuid.UUID) (*entity.Case, error) {
	c, err := uow.CaseRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, serverutils.NewNotFound("case not found")
	}
	if err := authz.Authorize(identity, c.UserId, authz.CasesAny); err != nil {
		return nil, serverutils.NewForbidden("not allowed to access this case")
	}
	return c, nil
}

func (s *caseService) Get(ctx context.Context, identity *authz.Identity, id uuid.UUID) (*dto.CaseResponse, error) {
	c, err := loadCase(ctx, s.uowFactory.NewUnitOfWork(ctx), identity, id)
	if err != nil {
		return nil, err
	}
	res := toCaseResponse(c)
	return &res, nil
}

func (s *caseService) Update(ctx context.Context, identity *authz.Identity, id uuid.UUID, req *dto.UpdateCaseRequest) (*dto.CaseResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	c, err := loadCase(ctx, uow, identity, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		c.Title = strings.TrimSpace(*req.Title)
	}
	if req.Status != nil {
		c.Status = entity.CaseStatus(*req.Status)
	}
	if req.IssueType != nil {
		c.IssueType = *req.IssueType
	}
	if req.Description != nil {
		c.Description = *req.Description
	}
	if req.Amount != nil {
		c.Amount = *req.Amount
	}
	if req.NextAction != nil {
		c.NextAction = *req.NextAction
	}
	if req.NextActionDue != nil {
		c.NextActionDue = req.NextActionDue
	}
	if req.Progress != nil {
		c.Progress = *req.Progress
	}
	if req.MoodScore != nil {
		c.MoodScore = req.MoodScore
	}
	if req.MoodNote != nil {
		c.MoodNote = *req.MoodNote
	}

	if err := uow.CaseRepository().Update(ctx, c); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	res := toCaseResponse(c)
	return &res, nil
}

func (s *caseService) Delete(ctx context.Context, identity *authz.Identity, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	c, err := loadCase(ctx, uow, identity, id)
	if err != nil {
		return err
	}
	if err := uow.CaseRepository().Delete(ctx, c.Id); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}
	s.logger.Info("CaseService", "Case deleted", map[string]interface{}{"case_id": id, "by": identity.ID})
	return nil
}

func (s *caseService) Close(ctx context.Context, identity *authz.Identity, id uuid.UUID, req *dto.CloseCaseRequest) (*dto.CaseResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	c, err := loadCase(ctx, uow, identity, id)
	if err != nil {
		return nil, err
	}
	if c.Status == entity.CaseResolved {
		return nil, serverutils.NewConflict("case is already closed")
	}

	now := time.Now()
	c.Status = entity.CaseResolved
	c.ResolutionMethod = req.ResolutionMethod
	c.RecoveredAmount = req.RecoveredAmount
	c.SatisfactionScore = req.SatisfactionScore
	c.ClosedAt = &now
	c.Progress = 100
	c.NextAction = ""
	c.NextActionDue = nil
	if err := uow.CaseRepository().Update(ctx, c); err != nil {
		return nil, err
	}

	caseID := c.Id
	if err := uow.TimelineRepository().Create(ctx, &entity.TimelineEvent{
		UserId:      c.UserId,
		CaseId:      &caseID,
		Title:       "Case closed",
		Description: "Resolved by " + req.ResolutionMethod,
		EventDate:   now,
		Completed:   true,
	}); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	res := toCaseResponse(c)
	return &res, nil
}

func (s *caseService) AnalyzeCase(ctx context.Context, id uuid.UUID) error {
	c, err := s.uowFactory.NewUnitOfWork(ctx).CaseRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return err
	}
	if c == nil {
		return nil
	}

	result, source := s.generator.Generate(ctx, factsFromCase(c))
	raw, err := json.Marshal(result)
	if err != nil {
		return err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	current, err := uow.CaseRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return err
	}
	if current == nil {
		return nil
	}
	if source == strategy.SourceAI {
		current.AiAnalysis = raw
		current.AnalysisStatus = entity.AnalysisCompleted
	} else {
		current.AnalysisStatus = entity.AnalysisFallback
	}
	if err := uow.CaseRepository().Update(ctx, current); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	s.logger.Info("CaseService", "Case analysis finished", map[string]interface{}{"case_id": id, "source": source})
	return nil
}

func (s *caseService) ListTimeline(ctx context.Context, identity *authz.Identity, caseID uuid.UUID) ([]dto.TimelineEventResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if _, err := loadCase(ctx, uow, identity, caseID); err != nil {
		return nil, err
	}
	items, err := uow.TimelineRepository().FindAll(ctx,
		specification.ByCaseID{CaseID: caseID},
		specification.OrderBy{Field: "event_date", Desc: false},
	)
	if err != nil {
		return nil, err
	}
	res := make([]dto.TimelineEventResponse, 0, len(items))
	for _, t := range items {
		res = append(res, toTimelineResponse(t))
	}
	return res, nil
}

func (s *caseService) AddTimelineEvent(ctx context.Context, identity *authz.Identity, caseID uuid.UUID, req *dto.CreateTimelineEventRequest) (*dto.TimelineEventResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	c, err := loadCase(ctx, uow, identity, caseID)
	if err != nil {
		return nil, err
	}
	id := c.Id
	event := &entity.TimelineEvent{
		UserId:      c.UserId,
		CaseId:      &id,
		Title:       req.Title,
		Description: req.Description,
		EventDate:   req.EventDate,
		Completed:   req.Completed,
	}
	if err := uow.TimelineRepository().Create(ctx, event); err != nil {
		return nil, err
	}
	res := toTimelineResponse(event)
	return &res, nil
}

func (s *caseService) ToggleTimelineEvent(ctx context.Context, identity *authz.Identity, eventID uuid.UUID) (*dto.TimelineEventResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	event, err := uow.TimelineRepository().FindOne(ctx, specification.ByID{ID: eventID})
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, serverutils.NewNotFound("timeline event not found")
	}
	perm := authz.CasesAny
	if event.ContractId != nil {
		perm = authz.ContractsAny
	}
	if err := authz.Authorize(identity, event.UserId, perm); err != nil {
		return nil, serverutils.NewForbidden("not allowed to change this event")
	}

	event.Completed = !event.Completed
	if err := uow.TimelineRepository().Update(ctx, event); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}
	res := toTimelineResponse(event)
	return &res, nil
}
