package service

import (
	"context"
	"errors"
	"time"

	"tradie-recovery-be/internal/dto"
	"tradie-recovery-be/internal/entity"
	"tradie-recovery-be/internal/pkg/authz"
	"tradie-recovery-be/internal/pkg/logger"
	"tradie-recovery-be/internal/pkg/serverutils"
	"tradie-recovery-be/internal/repository/specification"
	"tradie-recovery-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IAdminService interface {
	Dashboard(ctx context.Context, identity *authz.Identity) (*dto.DashboardResponse, error)

	// User Management
	ListUsers(ctx context.Context, identity *authz.Identity, req *dto.AdminUserListRequest) (*serverutils.Page[dto.UserListResponse], error)
	ChangeRole(ctx context.Context, identity *authz.Identity, userID uuid.UUID, req *dto.ChangeRoleRequest) (*dto.UserListResponse, error)

	// Logs
	ListLogs(ctx context.Context, identity *authz.Identity, req *dto.LogListRequest) ([]dto.LogListResponse, error)
	GetLog(ctx context.Context, identity *authz.Identity, id string) (*dto.LogDetailResponse, error)
}

type adminService struct {
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
}

func NewAdminService(uowFactory unitofwork.RepositoryFactory, log logger.ILogger) IAdminService {
	return &adminService{uowFactory: uowFactory, logger: log}
}

func requireCapability(identity *authz.Identity, p authz.Permission) error {
	if !identity.Can(p) {
		return serverutils.NewForbidden("insufficient permissions")
	}
	return nil
}

// ============================================================================
// Dashboard
// ============================================================================

func (s *adminService) Dashboard(ctx context.Context, identity *authz.Identity) (*dto.DashboardResponse, error) {
	if err := requireCapability(identity, authz.DashboardView); err != nil {
		return nil, err
	}
	uow := s.uowFactory.NewUnitOfWork(ctx)

	users, err := uow.UserRepository().CountByRole(ctx)
	if err != nil {
		return nil, err
	}
	apps, err := uow.ApplicationRepository().CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	cases, err := uow.CaseRepository().CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	contracts, err := uow.ContractRepository().Count(ctx)
	if err != nil {
		return nil, err
	}
	docs, err := uow.DocumentRepository().Count(ctx)
	if err != nil {
		return nil, err
	}

	return &dto.DashboardResponse{
		Users:        users,
		Applications: apps,
		Cases:        cases,
		Contracts:    contracts,
		Documents:    docs,
	}, nil
}

// ============================================================================
// User Management
// ============================================================================

func toUserListResponse(u *entity.User) dto.UserListResponse {
	return dto.UserListResponse{
		Id:                  u.Id,
		Email:               u.Email,
		FullName:            u.FullName,
		Role:                string(u.Role),
		Status:              string(u.Status),
		PlanType:            string(u.PlanType),
		StrategyPackCredits: u.StrategyPackCredits,
		CreatedAt:           u.CreatedAt,
	}
}

func (s *adminService) ListUsers(ctx context.Context, identity *authz.Identity, req *dto.AdminUserListRequest) (*serverutils.Page[dto.UserListResponse], error) {
	if err := requireCapability(identity, authz.UsersList); err != nil {
		return nil, err
	}
	limit, offset := normalizePage(req.Limit, req.Offset)

	var filters []specification.Specification
	if req.Search != "" {
		filters = append(filters, specification.UserSearch{Query: req.Search})
	}
	if req.Role != "" {
		role, ok := authz.ParseRole(req.Role)
		if !ok {
			return nil, serverutils.NewBadRequest("unknown role")
		}
		filters = append(filters, specification.ByRole{Roles: []string{string(role)}})
	}

	repo := s.uowFactory.NewUnitOfWork(ctx).UserRepository()
	total, err := repo.Count(ctx, filters...)
	if err != nil {
		return nil, err
	}
	users, err := repo.FindAll(ctx, append(filters,
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit, Offset: offset},
	)...)
	if err != nil {
		return nil, err
	}

	items := make([]dto.UserListResponse, 0, len(users))
	for _, u := range users {
		items = append(items, toUserListResponse(u))
	}
	return &serverutils.Page[dto.UserListResponse]{Items: items, Total: total, Limit: limit, Offset: offset}, nil
}

func (s *adminService) ChangeRole(ctx context.Context, identity *authz.Identity, userID uuid.UUID, req *dto.ChangeRoleRequest) (*dto.UserListResponse, error) {
	if err := requireCapability(identity, authz.UsersRole); err != nil {
		return nil, err
	}
	role, ok := authz.ParseRole(req.Role)
	if !ok {
		return nil, serverutils.NewBadRequest("unknown role")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userID})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, serverutils.NewNotFound("user not found")
	}
	if user.Id == identity.ID && role != authz.RoleAdmin {
		return nil, serverutils.NewConflict("admins cannot demote themselves")
	}
	if err := uow.UserRepository().UpdateRole(ctx, user.Id, entity.UserRole(role)); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info("AdminService", "User role changed", map[string]interface{}{"user_id": user.Id, "from": user.Role, "to": role, "by": identity.ID})
	user.Role = entity.UserRole(role)
	res := toUserListResponse(user)
	return &res, nil
}

// ============================================================================
// Logs
// ============================================================================

func parseLogTime(ts string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.000Z0700"} {
		if t, err := time.Parse(layout, ts); err == nil {
			return t
		}
	}
	return time.Time{}
}

func toLogListResponse(l logger.LogEntry) dto.LogListResponse {
	return dto.LogListResponse{
		Id:        l.Id,
		Level:     l.Level,
		Module:    l.Module,
		Message:   l.Message,
		CreatedAt: parseLogTime(l.Timestamp),
	}
}

func (s *adminService) ListLogs(ctx context.Context, identity *authz.Identity, req *dto.LogListRequest) ([]dto.LogListResponse, error) {
	if err := requireCapability(identity, authz.LogsView); err != nil {
		return nil, err
	}
	limit, offset := normalizePage(req.Limit, req.Offset)
	logs, err := s.logger.GetLogs(req.Level, limit, offset)
	if err != nil {
		return nil, serverutils.NewInternal("failed to read logs", err)
	}
	res := make([]dto.LogListResponse, 0, len(logs))
	for _, l := range logs {
		res = append(res, toLogListResponse(l))
	}
	return res, nil
}

func (s *adminService) GetLog(ctx context.Context, identity *authz.Identity, id string) (*dto.LogDetailResponse, error) {
	if err := requireCapability(identity, authz.LogsView); err != nil {
		return nil, err
	}
	l, err := s.logger.GetLogById(id)
	if err != nil {
		if errors.Is(err, logger.ErrLogNotFound) {
			return nil, serverutils.NewNotFound("log entry not found")
		}
		return nil, serverutils.NewInternal("failed to read logs", err)
	}
	return &dto.LogDetailResponse{LogListResponse: toLogListResponse(*l), Details: l.Details}, nil
}
