package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"tradie-recovery-be/internal/dto"
	"tradie-recovery-be/internal/model"
	"tradie-recovery-be/internal/pkg/authz"
	"tradie-recovery-be/internal/pkg/logger"
	"tradie-recovery-be/internal/pkg/serverutils"
	"tradie-recovery-be/internal/repository/unitofwork"
	"tradie-recovery-be/pkg/session"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/microsoft"
)

const (
	CalendarGoogle  = "google"
	CalendarOutlook = "outlook"
)

type ICalendarService interface {
	ConnectURL(ctx context.Context, identity *authz.Identity, provider string) (*dto.CalendarConnectResponse, error)
	Callback(ctx context.Context, provider string, req *dto.CalendarCallbackRequest) (*dto.CalendarIntegrationResponse, error)
	ListIntegrations(ctx context.Context, identity *authz.Identity) ([]dto.CalendarIntegrationResponse, error)
	Disconnect(ctx context.Context, identity *authz.Identity, id uuid.UUID) error
	CreateEvent(ctx context.Context, identity *authz.Identity, req *dto.CreateCalendarEventRequest) (*dto.CalendarEventResponse, error)
	ListEvents(ctx context.Context, identity *authz.Identity) ([]dto.CalendarEventResponse, error)
}

type OAuthClient struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

type CalendarSettings struct {
	Google  OAuthClient
	Outlook OAuthClient
}

type calendarService struct {
	uowFactory unitofwork.RepositoryFactory
	states     *session.OAuthStates
	configs    map[string]*oauth2.Config
	apiBase    map[string]string
	logger     logger.ILogger
}

func NewCalendarService(uowFactory unitofwork.RepositoryFactory, states *session.OAuthStates, settings CalendarSettings, log logger.ILogger) ICalendarService {
	configs := make(map[string]*oauth2.Config)
	if settings.Google.ClientID != "" {
		configs[CalendarGoogle] = &oauth2.Config{
			ClientID:     settings.Google.ClientID,
			ClientSecret: settings.Google.ClientSecret,
			RedirectURL:  settings.Google.RedirectURL,
			Scopes:       []string{"https://www.googleapis.com/auth/calendar.events"},
			Endpoint:     google.Endpoint,
		}
	}
	if settings.Outlook.ClientID != "" {
		configs[CalendarOutlook] = &oauth2.Config{
			ClientID:     settings.Outlook.ClientID,
			ClientSecret: settings.Outlook.ClientSecret,
			RedirectURL:  settings.Outlook.RedirectURL,
			Scopes:       []string{"offline_access", "Calendars.ReadWrite"},
			Endpoint:     microsoft.AzureADEndpoint("common"),
		}
	}
	return &calendarService{
		uowFactory: uowFactory,
		states:     states,
		configs:    configs,
		apiBase: map[string]string{
			CalendarGoogle:  "https://www.googleapis.com/calendar/v3",
			CalendarOutlook: "https://graph.microsoft.com/v1.0",
		},
		logger: log,
	}
}

func (s *calendarService) config(provider string) (*oauth2.Config, error) {
	if s.states == nil {
		return nil, serverutils.NewUnavailable("calendar sync requires the session store")
	}
	cfg, ok := s.configs[provider]
	if !ok {
		return nil, serverutils.NewUnavailable(fmt.Sprintf("%s calendar is not configured", provider))
	}
	return cfg, nil
}

func (s *calendarService) ConnectURL(ctx context.Context, identity *authz.Identity, provider string) (*dto.CalendarConnectResponse, error) {
	cfg, err := s.config(provider)
	if err != nil {
		return nil, err
	}
	state, err := s.states.Issue(ctx, identity.ID, provider)
	if err != nil {
		return nil, serverutils.NewUnavailable("failed to start calendar authorization")
	}
	return &dto.CalendarConnectResponse{URL: cfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)}, nil
}

func toIntegrationResponse(in model.CalendarIntegration) dto.CalendarIntegrationResponse {
	res := dto.CalendarIntegrationResponse{
		Id:         in.Id,
		Provider:   in.Provider,
		CalendarId: in.CalendarId,
		CreatedAt:  in.CreatedAt,
	}
	if !in.TokenExpiry.IsZero() {
		expiry := in.TokenExpiry
		res.TokenExpiry = &expiry
	}
	return res
}

func (s *calendarService) Callback(ctx context.Context, provider string, req *dto.CalendarCallbackRequest) (*dto.CalendarIntegrationResponse, error) {
	cfg, err := s.config(provider)
	if err != nil {
		return nil, err
	}
	userID, err := s.states.Consume(ctx, req.State, provider)
	if err != nil {
		return nil, serverutils.NewBadRequest("invalid or expired authorization state")
	}

	token, err := cfg.Exchange(ctx, req.Code)
	if err != nil {
		s.logger.Warn("CalendarService", "Authorization code exchange failed", map[string]interface{}{"provider": provider, "error": err.Error()})
		return nil, serverutils.NewBadRequest("failed to exchange authorization code")
	}

	integration := &model.CalendarIntegration{
		UserId:       userID,
		Provider:     provider,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenExpiry:  token.Expiry,
		CalendarId:   "primary",
	}
	if err := s.uowFactory.NewUnitOfWork(ctx).CalendarRepository().UpsertIntegration(ctx, integration); err != nil {
		return nil, err
	}

	s.logger.Info("CalendarService", "Calendar connected", map[string]interface{}{"user_id": userID, "provider": provider})
	res := toIntegrationResponse(*integration)
	return &res, nil
}

func (s *calendarService) ListIntegrations(ctx context.Context, identity *authz.Identity) ([]dto.CalendarIntegrationResponse, error) {
	items, err := s.uowFactory.NewUnitOfWork(ctx).CalendarRepository().ListIntegrations(ctx, identity.ID)
	if err != nil {
		return nil, err
	}
	res := make([]dto.CalendarIntegrationResponse, 0, len(items))
	for _, in := range items {
		res = append(res, toIntegrationResponse(in))
	}
	return res, nil
}

func (s *calendarService) Disconnect(ctx context.Context, identity *authz.Identity, id uuid.UUID) error {
	repo := s.uowFactory.NewUnitOfWork(ctx).CalendarRepository()
	in, err := repo.FindIntegration(ctx, id)
	if err != nil {
		return err
	}
	if in == nil || in.UserId != identity.ID {
		return serverutils.NewNotFound("calendar integration not found")
	}
	return repo.DeleteIntegration(ctx, id)
}

func toCalendarEventResponse(e model.CalendarEvent) dto.CalendarEventResponse {
	return dto.CalendarEventResponse{
		Id:            e.Id,
		IntegrationId: e.IntegrationId,
		CaseId:        e.CaseId,
		ExternalId:    e.ExternalId,
		Title:         e.Title,
		Description:   e.Description,
		StartsAt:      e.StartsAt,
		EndsAt:        e.EndsAt,
	}
}

func (s *calendarService) CreateEvent(ctx context.Context, identity *authz.Identity, req *dto.CreateCalendarEventRequest) (*dto.CalendarEventResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if req.CaseId != nil {
		if _, err := loadCase(ctx, uow, identity, *req.CaseId); err != nil {
			return nil, err
		}
	}

	event := &model.CalendarEvent{
		UserId:      identity.ID,
		CaseId:      req.CaseId,
		Title:       req.Title,
		Description: req.Description,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
	}

	var integration *model.CalendarIntegration
	if req.Provider != "" {
		var err error
		integration, err = uow.CalendarRepository().FindIntegrationByProvider(ctx, identity.ID, req.Provider)
		if err != nil {
			return nil, err
		}
		if integration == nil {
			return nil, serverutils.NewBadRequest(fmt.Sprintf("%s calendar is not connected", req.Provider))
		}
		event.IntegrationId = &integration.Id

		externalID, err := s.push(ctx, integration, event)
		if err != nil {
			s.logger.Warn("CalendarService", "Failed to push event to provider", map[string]interface{}{"provider": req.Provider, "error": err.Error()})
		}
		event.ExternalId = externalID
	}

	if err := uow.CalendarRepository().CreateEvent(ctx, event); err != nil {
		return nil, err
	}
	res := toCalendarEventResponse(*event)
	return &res, nil
}

func (s *calendarService) ListEvents(ctx context.Context, identity *authz.Identity) ([]dto.CalendarEventResponse, error) {
	items, err := s.uowFactory.NewUnitOfWork(ctx).CalendarRepository().ListEvents(ctx, identity.ID)
	if err != nil {
		return nil, err
	}
	res := make([]dto.CalendarEventResponse, 0, len(items))
	for _, e := range items {
		res = append(res, toCalendarEventResponse(e))
	}
	return res, nil
}

// push creates the event in the provider calendar and persists any refreshed token.
func (s *calendarService) push(ctx context.Context, in *model.CalendarIntegration, e *model.CalendarEvent) (string, error) {
	cfg, ok := s.configs[in.Provider]
	if !ok {
		return "", fmt.Errorf("%s calendar is not configured", in.Provider)
	}

	ts := cfg.TokenSource(ctx, &oauth2.Token{
		AccessToken:  in.AccessToken,
		RefreshToken: in.RefreshToken,
		Expiry:       in.TokenExpiry,
	})
	token, err := ts.Token()
	if err != nil {
		return "", fmt.Errorf("refresh token: %w", err)
	}
	if token.AccessToken != in.AccessToken {
		in.AccessToken = token.AccessToken
		in.TokenExpiry = token.Expiry
		if token.RefreshToken != "" {
			in.RefreshToken = token.RefreshToken
		}
		if err := s.uowFactory.NewUnitOfWork(ctx).CalendarRepository().UpsertIntegration(ctx, in); err != nil {
			s.logger.Warn("CalendarService", "Failed to persist refreshed token", map[string]interface{}{"integration_id": in.Id, "error": err.Error()})
		}
	}

	var endpoint string
	var body interface{}
	switch in.Provider {
	case CalendarGoogle:
		endpoint = fmt.Sprintf("%s/calendars/%s/events", s.apiBase[CalendarGoogle], url.PathEscape(in.CalendarId))
		body = map[string]interface{}{
			"summary":     e.Title,
			"description": e.Description,
			"start":       map[string]string{"dateTime": e.StartsAt.UTC().Format(time.RFC3339)},
			"end":         map[string]string{"dateTime": e.EndsAt.UTC().Format(time.RFC3339)},
		}
	case CalendarOutlook:
		endpoint = s.apiBase[CalendarOutlook] + "/me/events"
		body = map[string]interface{}{
			"subject": e.Title,
			"body":    map[string]string{"contentType": "text", "content": e.Description},
			"start":   map[string]string{"dateTime": e.StartsAt.UTC().Format("2006-01-02T15:04:05"), "timeZone": "UTC"},
			"end":     map[string]string{"dateTime": e.EndsAt.UTC().Format("2006-01-02T15:04:05"), "timeZone": "UTC"},
		}
	default:
		return "", fmt.Errorf("unknown calendar provider %q", in.Provider)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token)).Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("provider returned %d: %s", resp.StatusCode, msg)
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", err
	}
	return created.ID, nil
}
