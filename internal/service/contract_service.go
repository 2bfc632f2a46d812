package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"tradie-recovery-be/internal/dto"
	"tradie-recovery-be/internal/entity"
	"tradie-recovery-be/internal/pkg/authz"
	"tradie-recovery-be/internal/pkg/logger"
	"tradie-recovery-be/internal/pkg/serverutils"
	"tradie-recovery-be/internal/repository/specification"
	"tradie-recovery-be/internal/repository/unitofwork"
	"tradie-recovery-be/pkg/refnum"
	"tradie-recovery-be/pkg/strategy"

	"github.com/google/uuid"
)

type IContractService interface {
	Create(ctx context.Context, identity *authz.Identity, req *dto.CreateContractRequest) (*dto.ContractResponse, error)
	List(ctx context.Context, identity *authz.Identity, req *dto.ContractListRequest) (*serverutils.Page[dto.ContractResponse], error)
	Get(ctx context.Context, identity *authz.Identity, id uuid.UUID) (*dto.ContractResponse, error)
	Update(ctx context.Context, identity *authz.Identity, id uuid.UUID, req *dto.UpdateContractRequest) (*dto.ContractResponse, error)
	Delete(ctx context.Context, identity *authz.Identity, id uuid.UUID) error
	Analyze(ctx context.Context, identity *authz.Identity, id uuid.UUID, req *dto.AnalyzeContractRequest) (*dto.ContractResponse, error)

	ListTimeline(ctx context.Context, identity *authz.Identity, contractID uuid.UUID) ([]dto.TimelineEventResponse, error)
	AddTimelineEvent(ctx context.Context, identity *authz.Identity, contractID uuid.UUID, req *dto.CreateTimelineEventRequest) (*dto.TimelineEventResponse, error)
}

type contractService struct {
	uowFactory unitofwork.RepositoryFactory
	generator  *strategy.Generator
	logger     logger.ILogger
}

func NewContractService(uowFactory unitofwork.RepositoryFactory, generator *strategy.Generator, log logger.ILogger) IContractService {
	return &contractService{uowFactory: uowFactory, generator: generator, logger: log}
}

func loadContract(ctx context.Context, uow unitofwork.UnitOfWork, identity *authz.Identity, id uuid.UUID) (*entity.Contract, error) {
	c, err := uow.ContractRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, serverutils.NewNotFound("contract not found")
	}
	if err := authz.Authorize(identity, c.UserId, authz.ContractsAny); err != nil {
		return nil, serverutils.NewForbidden("not allowed to access this contract")
	}
	return c, nil
}

func (s *contractService) Create(ctx context.Context, identity *authz.Identity, req *dto.CreateContractRequest) (*dto.ContractResponse, error) {
	status := entity.ContractDraft
	if req.Status != "" {
		status = entity.ContractStatus(req.Status)
	}
	c := &entity.Contract{
		UserId:         identity.ID,
		ContractNumber: refnum.New(refnum.ContractPrefix),
		Title:          strings.TrimSpace(req.Title),
		Status:         status,
		Parties:        req.Parties,
		Value:          req.Value,
		Terms:          req.Terms,
		NextAction:     req.NextAction,
		NextActionDue:  req.NextActionDue,
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.ContractRepository().Create(ctx, c); err != nil {
		return nil, err
	}
	contractID := c.Id
	if err := uow.TimelineRepository().Create(ctx, &entity.TimelineEvent{
		UserId:     c.UserId,
		ContractId: &contractID,
		Title:      "Contract recorded",
		EventDate:  time.Now(),
		Completed:  true,
	}); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info("ContractService", "Contract created", map[string]interface{}{"contract_id": c.Id, "contract_number": c.ContractNumber})
	res := toContractResponse(c)
	return &res, nil
}

func (s *contractService) List(ctx context.Context, identity *authz.Identity, req *dto.ContractListRequest) (*serverutils.Page[dto.ContractResponse], error) {
	limit, offset := normalizePage(req.Limit, req.Offset)

	filters := []specification.Specification{specification.ByStatus{Status: req.Status}}
	if !identity.Can(authz.ContractsAny) {
		filters = append(filters, specification.UserOwnedBy{UserID: identity.ID})
	}

	repo := s.uowFactory.NewUnitOfWork(ctx).ContractRepository()
	total, err := repo.Count(ctx, filters...)
	if err != nil {
		return nil, err
	}
	contracts, err := repo.FindAll(ctx, append(filters,
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit, Offset: offset},
	)...)
	if err != nil {
		return nil, err
	}

	items := make([]dto.ContractResponse, 0, len(contracts))
	for _, c := range contracts {
		items = append(items, toContractResponse(c))
	}
	return &serverutils.Page[dto.ContractResponse]{Items: items, Total: total, Limit: limit, Offset: offset}, nil
}

func (s *contractService) Get(ctx context.Context, identity *authz.Identity, id uuid.UUID) (*dto.ContractResponse, error) {
	c, err := loadContract(ctx, s.uowFactory.NewUnitOfWork(ctx), identity, id)
	if err != nil {
		return nil, err
	}
	res := toContractResponse(c)
	return &res, nil
}

func (s *contractService) Update(ctx context.Context, identity *authz.Identity, id uuid.UUID, req *dto.UpdateContractRequest) (*dto.ContractResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	c, err := loadContract(ctx, uow, identity, id)
	if err != nil {
		return nil, err
	}
	if req.Title != nil {
		c.Title = strings.TrimSpace(*req.Title)
	}
	if req.Status != nil {
		c.Status = entity.ContractStatus(*req.Status)
	}
	if req.Parties != nil {
		c.Parties = req.Parties
	}
	if req.Value != nil {
		c.Value = *req.Value
	}
	if req.Terms != nil {
		c.Terms = *req.Terms
	}
	if req.NextAction != nil {
		c.NextAction = *req.NextAction
	}
	if req.NextActionDue != nil {
		c.NextActionDue = req.NextActionDue
	}

	if err := uow.ContractRepository().Update(ctx, c); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}
	res := toContractResponse(c)
	return &res, nil
}

func (s *contractService) Delete(ctx context.Context, identity *authz.Identity, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	c, err := loadContract(ctx, uow, identity, id)
	if err != nil {
		return err
	}
	if err := uow.ContractRepository().Delete(ctx, c.Id); err != nil {
		return err
	}
	return uow.Commit()
}

// Analyze runs synchronously; contract reviews are short enough to fit the request.
func (s *contractService) Analyze(ctx context.Context, identity *authz.Identity, id uuid.UUID, req *dto.AnalyzeContractRequest) (*dto.ContractResponse, error) {
	c, err := loadContract(ctx, s.uowFactory.NewUnitOfWork(ctx), identity, id)
	if err != nil {
		return nil, err
	}

	review, source := s.generator.ReviewContract(ctx, strategy.ContractFacts{
		Title:   c.Title,
		Parties: c.Parties,
		Value:   c.Value,
		Terms:   c.Terms,
		State:   strings.ToLower(strings.TrimSpace(req.State)),
	})
	raw, err := json.Marshal(review)
	if err != nil {
		return nil, serverutils.NewInternal("failed to encode review", err)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	current, err := uow.ContractRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, serverutils.NewNotFound("contract not found")
	}
	current.AiAnalysis = raw
	if err := uow.ContractRepository().Update(ctx, current); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info("ContractService", "Contract reviewed", map[string]interface{}{"contract_id": id, "source": source})
	res := toContractResponse(current)
	return &res, nil
}

func (s *contractService) ListTimeline(ctx context.Context, identity *authz.Identity, contractID uuid.UUID) ([]dto.TimelineEventResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if _, err := loadContract(ctx, uow, identity, contractID); err != nil {
		return nil, err
	}
	items, err := uow.TimelineRepository().FindAll(ctx,
		specification.ByContractID{ContractID: contractID},
		specification.OrderBy{Field: "event_date"},
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

func (s *contractService) AddTimelineEvent(ctx context.Context, identity *authz.Identity, contractID uuid.UUID, req *dto.CreateTimelineEventRequest) (*dto.TimelineEventResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	c, err := loadContract(ctx, uow, identity, contractID)
	if err != nil {
		return nil, err
	}
	id := c.Id
	event := &entity.TimelineEvent{
		UserId:      c.UserId,
		ContractId:  &id,
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
