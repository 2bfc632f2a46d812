package service

import (
	"context"
	"strings"
	"time"

	"tradie-recovery-be/internal/dto"
	"tradie-recovery-be/internal/entity"
	"tradie-recovery-be/internal/pkg/authz"
	"tradie-recovery-be/internal/pkg/logger"
	"tradie-recovery-be/internal/pkg/serverutils"
	"tradie-recovery-be/internal/repository/specification"
	"tradie-recovery-be/internal/repository/unitofwork"
	"tradie-recovery-be/pkg/session"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type IAuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	LoginAdmin(ctx context.Context, req *dto.LoginRequest) (*dto.AdminLoginResponse, error)
	LogoutAdmin(ctx context.Context, sessionID string) error
	Me(ctx context.Context, userID uuid.UUID) (*dto.UserProfileResponse, error)

	// ResolveIdentity backs the auth middleware.
	ResolveIdentity(ctx context.Context, claims *serverutils.Claims) (*authz.Identity, error)
}

type authService struct {
	uowFactory unitofwork.RepositoryFactory
	issuer     *serverutils.TokenIssuer
	sessions   *session.AdminSessions
	tasks      ITaskDispatcher
	logger     logger.ILogger
}

func NewAuthService(
	uowFactory unitofwork.RepositoryFactory,
	issuer *serverutils.TokenIssuer,
	sessions *session.AdminSessions,
	tasks ITaskDispatcher,
	log logger.ILogger,
) IAuthService {
	return &authService{
		uowFactory: uowFactory,
		issuer:     issuer,
		sessions:   sessions,
		tasks:      tasks,
		logger:     log,
	}
}

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	uow := s.uowFactory.NewUnitOfWork(ctx)
	existing, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: email})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, serverutils.NewConflict("email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	hashStr := string(hash)

	user := &entity.User{
		Email:        email,
		PasswordHash: &hashStr,
		FullName:     strings.TrimSpace(req.FullName),
		Phone:        req.Phone,
		BusinessName: req.BusinessName,
		Role:         entity.UserRoleUser,
		Status:       entity.UserStatusActive,
		PlanType:     entity.PlanNone,
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.UserRepository().Create(ctx, user); err != nil {
		return nil, err
	}
	linked, err := uow.ApplicationRepository().LinkByEmail(ctx, email, user.Id)
	if err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info("AuthService", "User registered", map[string]interface{}{"user_id": user.Id, "linked_applications": linked})
	s.tasks.Dispatch(ctx, TopicWelcomeEmail, dto.WelcomeEmailTask{Email: user.Email, FullName: user.FullName})

	res, err := s.issueFor(user, "", 0)
	if err != nil {
		return nil, err
	}
	res.LinkedApplications = linked
	return res, nil
}

func (s *authService) authenticate(ctx context.Context, req *dto.LoginRequest) (*entity.User, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: req.Email})
	if err != nil {
		return nil, err
	}
	if user == nil || user.PasswordHash == nil {
		return nil, serverutils.NewUnauthorized("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, serverutils.NewUnauthorized("invalid credentials")
	}
	if user.Status == entity.UserStatusBlocked {
		return nil, serverutils.NewForbidden("account is blocked")
	}
	return user, nil
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.authenticate(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.issueFor(user, "", 0)
}

func (s *authService) LoginAdmin(ctx context.Context, req *dto.LoginRequest) (*dto.AdminLoginResponse, error) {
	if s.sessions == nil {
		return nil, serverutils.NewUnavailable("session store unavailable")
	}
	user, err := s.authenticate(ctx, req)
	if err != nil {
		return nil, err
	}
	if !authz.Can(authz.Role(user.Role), authz.DashboardView) {
		return nil, serverutils.NewForbidden("admin access required")
	}

	sid, err := s.sessions.Create(ctx, user.Id)
	if err != nil {
		s.logger.Error("AuthService", "Failed to create admin session", map[string]interface{}{"error": err.Error()})
		return nil, serverutils.NewUnavailable("session store unavailable")
	}
	res, err := s.issueFor(user, sid, s.sessions.TTL())
	if err != nil {
		return nil, err
	}
	s.logger.Info("AuthService", "Admin session created", map[string]interface{}{"user_id": user.Id})
	return &dto.AdminLoginResponse{AuthResponse: *res, SessionExpiresAt: res.ExpiresAt}, nil
}

func (s *authService) LogoutAdmin(ctx context.Context, sessionID string) error {
	if s.sessions == nil {
		return serverutils.NewUnavailable("session store unavailable")
	}
	if sessionID == "" {
		return nil
	}
	return s.sessions.Revoke(ctx, sessionID)
}

func (s *authService) Me(ctx context.Context, userID uuid.UUID) (*dto.UserProfileResponse, error) {
	user, err := s.uowFactory.NewUnitOfWork(ctx).UserRepository().FindOne(ctx, specification.ByID{ID: userID})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, serverutils.NewNotFound("user not found")
	}
	res := toUserProfile(user)
	return &res, nil
}

// ResolveIdentity loads the caller. Tokens from the external identity provider
// create the user row on first sight; self-issued tokens must match a row.
func (s *authService) ResolveIdentity(ctx context.Context, claims *serverutils.Claims) (*authz.Identity, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	var user *entity.User
	var err error
	if id, parseErr := uuid.Parse(claims.Subject); parseErr == nil {
		user, err = uow.UserRepository().FindOne(ctx, specification.ByID{ID: id})
		if err != nil {
			return nil, err
		}
	}
	if user == nil && claims.External && claims.Email != "" {
		user, err = uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: claims.Email})
		if err != nil {
			return nil, err
		}
		if user == nil {
			user, err = s.provisionExternal(ctx, claims)
			if err != nil {
				return nil, err
			}
		}
	}
	if user == nil {
		return nil, serverutils.NewUnauthorized("unknown user")
	}
	if user.Status == entity.UserStatusBlocked {
		return nil, serverutils.NewForbidden("account is blocked")
	}

	return &authz.Identity{ID: user.Id, Email: user.Email, Role: authz.Role(user.Role)}, nil
}

func (s *authService) provisionExternal(ctx context.Context, claims *serverutils.Claims) (*entity.User, error) {
	email := strings.ToLower(strings.TrimSpace(claims.Email))
	user := &entity.User{
		Email:    email,
		FullName: strings.Split(email, "@")[0],
		Role:     entity.UserRoleUser,
		Status:   entity.UserStatusActive,
		PlanType: entity.PlanNone,
	}
	if id, err := uuid.Parse(claims.Subject); err == nil {
		user.Id = id
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.UserRepository().Create(ctx, user); err != nil {
		return nil, err
	}
	if _, err := uow.ApplicationRepository().LinkByEmail(ctx, email, user.Id); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}
	s.logger.Info("AuthService", "Provisioned user from identity provider", map[string]interface{}{"user_id": user.Id})
	return user, nil
}

func (s *authService) issueFor(user *entity.User, sid string, ttl time.Duration) (*dto.AuthResponse, error) {
	token, expiresAt, err := s.issuer.Issue(user.Id, user.Email, authz.Role(user.Role), sid, ttl)
	if err != nil {
		return nil, serverutils.NewInternal("failed to issue token", err)
	}
	return &dto.AuthResponse{Token: token, ExpiresAt: expiresAt, User: toUserProfile(user)}, nil
}
