package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"tradie-recovery-be/internal/bootstrap"
	"tradie-recovery-be/internal/config"
	"tradie-recovery-be/internal/model"
	"tradie-recovery-be/internal/pkg/logger"
	"tradie-recovery-be/internal/pkg/mailer"
	"tradie-recovery-be/internal/server"
	"tradie-recovery-be/pkg/database"
	"tradie-recovery-be/pkg/payment"
	"tradie-recovery-be/pkg/session"
	"tradie-recovery-be/pkg/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type memStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemStore() *memStore { return &memStore{data: map[string][]byte{}} }

func (m *memStore) Put(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, session.ErrNotFound
	}
	return v, nil
}

func (m *memStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// fakeGateway accepts webhooks signed with the literal "ok".
type fakeGateway struct{}

func (fakeGateway) Name() string { return "fake" }

func (fakeGateway) CreateIntent(_ context.Context, req payment.IntentRequest) (*payment.Intent, error) {
	return &payment.Intent{ClientSecret: "secret_" + req.PaymentID, ProviderRef: "ref_" + req.PaymentID}, nil
}

func (fakeGateway) ParseWebhook(payload []byte, header func(string) string) (*payment.Event, error) {
	if header("X-Fake-Signature") != "ok" {
		return nil, payment.ErrInvalidSignature
	}
	var body struct {
		Kind      string `json:"kind"`
		PaymentID string `json:"payment_id"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, errors.New("bad payload")
	}
	return &payment.Event{Kind: payment.EventKind(body.Kind), PaymentID: body.PaymentID}, nil
}

type env struct {
	app *fiber.App
	db  *gorm.DB
}

type envelope struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

const uploadLimit = 1024

func newEnv(t *testing.T) *env {
	t.Helper()
	return newEnvWith(t, nil)
}

func newEnvWith(t *testing.T, configure func(*config.Config)) *env {
	t.Helper()
	db, err := database.NewSQLiteDB(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, model.All()...))

	dir := t.TempDir()
	cfg := &config.Config{
		App: config.AppConfig{
			ClientURL:          "http://localhost:3000",
			CorsAllowedOrigins: "http://localhost:3000",
			Environment:        "test",
			LogFilePath:        filepath.Join(dir, "app.log"),
			NotificationLog:    filepath.Join(dir, "notifications.log"),
		},
		Auth:    config.AuthConfig{JWTSecret: "test-secret", TokenTTLHours: 24, AdminSessionTTL: 8},
		Payment: config.PaymentConfig{Provider: "fake", Currency: "aud", StrategyPackPriceCents: 4900},
		Storage: config.StorageConfig{Driver: "local", LocalDir: filepath.Join(dir, "uploads"), UploadMaxBytes: uploadLimit},
	}

	if configure != nil {
		configure(cfg)
	}

	store, err := storage.NewLocalStorage(cfg.Storage.LocalDir)
	require.NoError(t, err)

	c, err := bootstrap.NewContainer(db, cfg,
		bootstrap.WithLogger(logger.NewIsolatedLogger(cfg.App.LogFilePath)),
		bootstrap.WithSessionStore(newMemStore()),
		bootstrap.WithMailer(mailer.NewEmailService("", 0, "", "", "", "", "")),
		bootstrap.WithLLMProvider(nil),
		bootstrap.WithStorage(store),
		bootstrap.WithPaymentGateways(fakeGateway{}),
	)
	require.NoError(t, err)
	require.NoError(t, c.Seed(context.Background()))
	t.Cleanup(func() {
		c.Close()
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return &env{app: server.New(cfg, c).GetApp(), db: db}
}

func (e *env) do(t *testing.T, req *http.Request, token string) (int, envelope, []byte) {
	t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var env envelope
	_ = json.Unmarshal(raw, &env)
	return resp.StatusCode, env, raw
}

func (e *env) json(t *testing.T, method, path, token string, body interface{}, headers ...string) (int, envelope) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	status, env, _ := e.do(t, req, token)
	return status, env
}

func (e *env) register(t *testing.T, email string) string {
	t.Helper()
	status, res := e.json(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":     email,
		"password":  "password123",
		"full_name": "Test Tradie",
	})
	require.Equal(t, http.StatusCreated, status, res.Message)
	var auth struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(res.Data, &auth))
	require.NotEmpty(t, auth.Token)
	return auth.Token
}

func (e *env) setRole(t *testing.T, email, role string) {
	t.Helper()
	require.NoError(t, e.db.Model(&model.User{}).Where("email = ?", email).Update("role", role).Error)
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

func count(t *testing.T, db *gorm.DB, m interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(m).Count(&n).Error)
	return n
}

func application() map[string]interface{} {
	return map[string]interface{}{
		"fullName":    "Jane Sparky",
		"phone":       "0400000000",
		"email":       "jane@example.com",
		"trade":       "electrician",
		"state":       "NSW",
		"issueType":   "unpaid_invoice",
		"description": "Builder has not paid the final invoice",
		"amount":      12500,
	}
}

func TestHealth(t *testing.T) {
	e := newEnv(t)
	status, _, raw := e.do(t, httptest.NewRequest(http.MethodGet, "/health", nil), "")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(raw), "ok")
}

func TestCorsOrigins(t *testing.T) {
	for name, origins := range map[string]string{"wildcard": "*", "unset": ""} {
		t.Run(name, func(t *testing.T) {
			e := newEnvWith(t, func(cfg *config.Config) { cfg.App.CorsAllowedOrigins = origins })
			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			req.Header.Set("Origin", "http://elsewhere.example")
			resp, err := e.app.Test(req, -1)
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
			assert.Empty(t, resp.Header.Get("Access-Control-Allow-Credentials"))
		})
	}

	e := newEnv(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", resp.Header.Get("Access-Control-Allow-Credentials"))
}

func TestApplicationSubmitAndReview(t *testing.T) {
	e := newEnv(t)
	modToken := e.register(t, "mod@example.com")
	e.setRole(t, "mod@example.com", "moderator")
	userToken := e.register(t, "user@example.com")

	status, res := e.json(t, http.MethodPost, "/api/applications", "", application())
	require.Equal(t, http.StatusCreated, status, res.Message)
	app := decode[struct {
		Id     string `json:"id"`
		Status string `json:"status"`
	}](t, res.Data)
	assert.Equal(t, "pending", app.Status)

	invalid := application()
	delete(invalid, "email")
	status, _ = e.json(t, http.MethodPost, "/api/applications", "", invalid)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, int64(1), count(t, e.db, &model.Application{}))

	blank := application()
	blank["trade"] = "   "
	blank["state"] = " "
	blank["issueType"] = " "
	blank["description"] = "   "
	status, res = e.json(t, http.MethodPost, "/api/applications", "", blank)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, res.Message, "trade")
	assert.Equal(t, int64(1), count(t, e.db, &model.Application{}))

	status, _ = e.json(t, http.MethodPatch, "/api/applications/"+app.Id+"/status", userToken, map[string]string{"status": "approved"})
	assert.Equal(t, http.StatusForbidden, status)

	status, res = e.json(t, http.MethodPatch, "/api/applications/"+app.Id+"/status", modToken, map[string]string{"status": "approved", "notes": "looks good"})
	require.Equal(t, http.StatusOK, status, res.Message)
	assert.Equal(t, "approved", decode[struct {
		Status string `json:"status"`
	}](t, res.Data).Status)

	status, _ = e.json(t, http.MethodPatch, "/api/applications/"+app.Id+"/status", modToken, map[string]string{"status": "rejected"})
	assert.Equal(t, http.StatusConflict, status)

	// the submission fanned out to staff
	status, res = e.json(t, http.MethodGet, "/api/notifications/summary", modToken, nil)
	require.Equal(t, http.StatusOK, status)
	summary := decode[struct {
		Unread       int64 `json:"unread"`
		HighPriority int64 `json:"high_priority"`
	}](t, res.Data)
	assert.Equal(t, int64(1), summary.Unread)
	assert.Equal(t, int64(1), summary.HighPriority)

	status, res = e.json(t, http.MethodGet, "/api/notifications/summary", userToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Zero(t, decode[struct {
		Total int64 `json:"total"`
	}](t, res.Data).Total)
}

func TestCaseLifecycleAndStrategyPack(t *testing.T) {
	e := newEnv(t)
	token := e.register(t, "owner@example.com")
	otherToken := e.register(t, "other@example.com")

	status, res := e.json(t, http.MethodPost, "/api/cases", token, map[string]interface{}{
		"title":       "Unpaid final invoice",
		"issue_type":  "unpaid_invoice",
		"description": "Final stage invoice overdue by 60 days",
		"amount":      8000,
	})
	require.Equal(t, http.StatusCreated, status, res.Message)
	created := decode[struct {
		Id             string          `json:"id"`
		CaseNumber     string          `json:"case_number"`
		AiAnalysis     json.RawMessage `json:"ai_analysis"`
		AnalysisStatus string          `json:"analysis_status"`
	}](t, res.Data)
	assert.NotEmpty(t, created.CaseNumber)
	assert.Equal(t, "fallback", created.AnalysisStatus)
	assert.NotEqual(t, "null", string(created.AiAnalysis))

	status, _ = e.json(t, http.MethodGet, "/api/cases/"+created.Id, otherToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, res = e.json(t, http.MethodGet, "/api/cases/"+created.Id+"/timeline", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]json.RawMessage](t, res.Data), 1)

	status, _ = e.json(t, http.MethodPost, "/api/cases/"+created.Id+"/strategy-pack", token, nil)
	assert.Equal(t, http.StatusPaymentRequired, status)

	require.NoError(t, e.db.Model(&model.User{}).Where("email = ?", "owner@example.com").Update("strategy_pack_credits", 1).Error)
	status, res = e.json(t, http.MethodPost, "/api/cases/"+created.Id+"/strategy-pack", token, nil)
	require.Equal(t, http.StatusCreated, status, res.Message)

	status, res = e.json(t, http.MethodGet, "/api/users/me", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Zero(t, decode[struct {
		Credits int `json:"strategy_pack_credits"`
	}](t, res.Data).Credits)

	var sources []string
	require.NoError(t, e.db.Model(&model.DocumentTagAssignment{}).Distinct().Pluck("source", &sources).Error)
	for _, src := range sources {
		assert.Contains(t, []string{model.TagSourceAI, model.TagSourceManual, model.TagSourceSystem}, src)
	}

	status, res = e.json(t, http.MethodGet, "/api/documents?case_id="+created.Id, token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, int64(2), decode[struct {
		Total int64 `json:"total"`
	}](t, res.Data).Total)

	// case opened + pack ready
	status, res = e.json(t, http.MethodGet, "/api/notifications", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, int64(2), decode[struct {
		Total int64 `json:"total"`
	}](t, res.Data).Total)

	status, res = e.json(t, http.MethodPatch, "/api/notifications/read-all", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, int64(2), decode[struct {
		Updated int64 `json:"updated"`
	}](t, res.Data).Updated)

	status, _ = e.json(t, http.MethodPost, "/api/cases/"+created.Id+"/close", token, map[string]interface{}{
		"resolution_method": "paid_in_full",
		"recovered_amount":  8000,
	})
	assert.Equal(t, http.StatusOK, status)
}

func TestContractsAreOwnerScoped(t *testing.T) {
	e := newEnv(t)
	token := e.register(t, "owner@example.com")
	otherToken := e.register(t, "other@example.com")

	status, res := e.json(t, http.MethodPost, "/api/contracts", token, map[string]interface{}{
		"title":   "Kitchen fit-out",
		"parties": []string{"Acme Builders", "Jo Sparky"},
		"value":   40000,
	})
	require.Equal(t, http.StatusCreated, status, res.Message)
	contract := decode[struct {
		Id string `json:"id"`
	}](t, res.Data)

	status, _ = e.json(t, http.MethodGet, "/api/contracts/"+contract.Id, otherToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = e.json(t, http.MethodGet, "/api/contracts/"+contract.Id, token, nil)
	assert.Equal(t, http.StatusOK, status)
}

func multipartUpload(t *testing.T, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.WriteField("category", "evidence"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/documents", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestDocumentUpload(t *testing.T) {
	e := newEnv(t)
	token := e.register(t, "docs@example.com")

	status, env, _ := e.do(t, multipartUpload(t, "invoice.txt", []byte("Invoice 42: 8000 AUD outstanding")), token)
	require.Equal(t, http.StatusCreated, status, env.Message)
	doc := decode[struct {
		Id       string `json:"id"`
		MimeType string `json:"mime_type"`
	}](t, env.Data)
	assert.Equal(t, "text/plain", doc.MimeType)

	status, _, raw := e.do(t, httptest.NewRequest(http.MethodGet, "/api/documents/"+doc.Id+"/download", nil), token)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Invoice 42: 8000 AUD outstanding", string(raw))

	otherToken := e.register(t, "other@example.com")
	status, _, _ = e.do(t, httptest.NewRequest(http.MethodGet, "/api/documents/"+doc.Id, nil), otherToken)
	assert.Equal(t, http.StatusForbidden, status)
	status, _, _ = e.do(t, httptest.NewRequest(http.MethodGet, "/api/documents/"+doc.Id+"/download", nil), otherToken)
	assert.Equal(t, http.StatusForbidden, status)

	zip := append([]byte("PK\x03\x04"), bytes.Repeat([]byte{0}, 64)...)
	status, _, _ = e.do(t, multipartUpload(t, "invoice.pdf", zip), token)
	assert.Equal(t, http.StatusUnsupportedMediaType, status)

	status, _, _ = e.do(t, multipartUpload(t, "big.txt", []byte(strings.Repeat("a", uploadLimit+1))), token)
	assert.Equal(t, http.StatusRequestEntityTooLarge, status)

	assert.Equal(t, int64(1), count(t, e.db, &model.Document{}))
}

func TestAdminRoutesRequireRoleAndSession(t *testing.T) {
	e := newEnv(t)
	userToken := e.register(t, "plain@example.com")
	e.register(t, "boss@example.com")
	e.setRole(t, "boss@example.com", "admin")

	var target model.User
	require.NoError(t, e.db.Where("email = ?", "plain@example.com").First(&target).Error)

	status, _ := e.json(t, http.MethodPatch, "/api/admin/users/"+target.Id.String()+"/role", userToken, map[string]string{"role": "admin"})
	assert.Equal(t, http.StatusForbidden, status)
	require.NoError(t, e.db.First(&target, "id = ?", target.Id).Error)
	assert.Equal(t, "user", target.Role)

	status, _ = e.json(t, http.MethodPost, "/api/admin/login", "", map[string]string{"email": "plain@example.com", "password": "password123"})
	assert.Equal(t, http.StatusForbidden, status)

	status, res := e.json(t, http.MethodPost, "/api/admin/login", "", map[string]string{"email": "boss@example.com", "password": "password123"})
	require.Equal(t, http.StatusOK, status, res.Message)
	adminToken := decode[struct {
		Token string `json:"token"`
	}](t, res.Data).Token

	status, _ = e.json(t, http.MethodGet, "/api/admin/dashboard", adminToken, nil)
	assert.Equal(t, http.StatusOK, status)

	status, res = e.json(t, http.MethodPatch, "/api/admin/users/"+target.Id.String()+"/role", adminToken, map[string]string{"role": "moderator"})
	require.Equal(t, http.StatusOK, status, res.Message)
	require.NoError(t, e.db.First(&target, "id = ?", target.Id).Error)
	assert.Equal(t, "moderator", target.Role)

	status, _ = e.json(t, http.MethodPost, "/api/admin/logout", adminToken, nil)
	require.Equal(t, http.StatusOK, status)
	status, _ = e.json(t, http.MethodGet, "/api/admin/dashboard", adminToken, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestPaymentIntentAndWebhookAreIdempotent(t *testing.T) {
	e := newEnv(t)
	token := e.register(t, "payer@example.com")

	status, res := e.json(t, http.MethodPost, "/api/payments/intent", token, map[string]string{"plan": "strategy_pack"}, "Idempotency-Key", "k1")
	require.Equal(t, http.StatusCreated, status, res.Message)
	first := decode[struct {
		PaymentId    string `json:"payment_id"`
		ClientSecret string `json:"client_secret"`
	}](t, res.Data)
	assert.Equal(t, "secret_"+first.PaymentId, first.ClientSecret)

	status, res = e.json(t, http.MethodPost, "/api/payments/intent", token, map[string]string{"plan": "strategy_pack"}, "Idempotency-Key", "k1")
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, first.PaymentId, decode[struct {
		PaymentId string `json:"payment_id"`
	}](t, res.Data).PaymentId)

	status, _ = e.json(t, http.MethodPost, "/api/payments/intent", token, map[string]string{"plan": "subscription"}, "Idempotency-Key", "k1")
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, int64(1), count(t, e.db, &model.Payment{}))

	hook := map[string]string{"kind": string(payment.EventPaymentSucceeded), "payment_id": first.PaymentId}
	status, _ = e.json(t, http.MethodPost, "/api/payments/webhook/fake", "", hook, "X-Fake-Signature", "forged")
	assert.Equal(t, http.StatusBadRequest, status)

	for i := 0; i < 2; i++ {
		status, _ = e.json(t, http.MethodPost, "/api/payments/webhook/fake", "", hook, "X-Fake-Signature", "ok")
		require.Equal(t, http.StatusOK, status)
	}

	var user model.User
	require.NoError(t, e.db.Where("email = ?", "payer@example.com").First(&user).Error)
	assert.Equal(t, 1, user.StrategyPackCredits)

	status, res = e.json(t, http.MethodGet, "/api/payments", token, nil)
	require.Equal(t, http.StatusOK, status)
	payments := decode[[]struct {
		Status string `json:"status"`
	}](t, res.Data)
	require.Len(t, payments, 1)
	assert.Equal(t, "succeeded", payments[0].Status)

	var notified int64
	require.NoError(t, e.db.Model(&model.Notification{}).Where("user_id = ? AND type_code = ?", user.Id, "PAYMENT_SUCCEEDED").Count(&notified).Error)
	assert.Equal(t, int64(1), notified)

	status, _ = e.json(t, http.MethodPost, "/api/payments/webhook/unknown", "", hook)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestUnauthenticatedRequestsAreRejected(t *testing.T) {
	e := newEnv(t)
	for _, path := range []string{"/api/cases", "/api/documents", "/api/notifications", "/api/auth/me"} {
		status, _ := e.json(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, status, path)
	}
	status, _ := e.json(t, http.MethodGet, "/api/cases", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}
