package integration

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tradie-recovery-be/internal/bootstrap"
	"tradie-recovery-be/internal/config"
	"tradie-recovery-be/internal/dto"
	"tradie-recovery-be/internal/model"
	"tradie-recovery-be/internal/pkg/logger"
	"tradie-recovery-be/internal/pkg/mailer"
	"tradie-recovery-be/internal/pkg/serverutils"
	"tradie-recovery-be/internal/server"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// TestAdminAuth runs the admin session flow against Postgres and Redis.
func TestAdminAuth(t *testing.T) {
	db := openPostgres(t)
	if os.Getenv("REDIS_URL") == "" {
		t.Skip("Skipping integration test: REDIS_URL not set")
	}
	cfg := config.Load()
	cfg.App.NatsURL = ""
	cfg.Storage.Driver = "local"
	cfg.Storage.LocalDir = t.TempDir()

	container, err := bootstrap.NewContainer(db, cfg,
		bootstrap.WithLogger(logger.NewIsolatedLogger(filepath.Join(t.TempDir(), "app.log"))),
		bootstrap.WithMailer(mailer.NewEmailService("", 0, "", "", "", "", "")),
		bootstrap.WithLLMProvider(nil),
	)
	require.NoError(t, err)
	t.Cleanup(container.Close)
	require.NoError(t, container.Seed(context.Background()))
	app := server.New(cfg, container).GetApp()

	adminPass := "admin12345"
	adminHash, _ := bcrypt.GenerateFromPassword([]byte(adminPass), bcrypt.DefaultCost)
	hash := string(adminHash)
	suffix := uuid.NewString()[:8]

	admin := model.User{Email: "testadmin-" + suffix + "@example.com", FullName: "Test Admin", PasswordHash: &hash, Role: "admin", Status: "active"}
	user := model.User{Email: "testuser-" + suffix + "@example.com", FullName: "Test User", PasswordHash: &hash, Role: "user", Status: "active"}
	require.NoError(t, db.Create(&admin).Error)
	require.NoError(t, db.Create(&user).Error)
	t.Cleanup(func() {
		db.Unscoped().Delete(&model.User{}, "id IN ?", []uuid.UUID{admin.Id, user.Id})
	})

	login := func(email, password string) (int, serverutils.BaseResponse[dto.AdminLoginResponse]) {
		body, _ := json.Marshal(dto.LoginRequest{Email: email, Password: password})
		req := httptest.NewRequest("POST", "/api/admin/login", strings.NewReader(string(body)))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		defer resp.Body.Close()
		var result serverutils.BaseResponse[dto.AdminLoginResponse]
		_ = json.NewDecoder(resp.Body).Decode(&result)
		return resp.StatusCode, result
	}
	dashboard := func(token string) int {
		req := httptest.NewRequest("GET", "/api/admin/dashboard", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		resp.Body.Close()
		return resp.StatusCode
	}

	t.Run("Login as Admin success", func(t *testing.T) {
		status, result := login(admin.Email, adminPass)
		require.Equal(t, 200, status)
		assert.True(t, result.Success)
		assert.NotEmpty(t, result.Data.Token)
		assert.Equal(t, "admin", result.Data.User.Role)
		assert.Equal(t, 200, dashboard(result.Data.Token))

		req := httptest.NewRequest("POST", "/api/admin/logout", nil)
		req.Header.Set("Authorization", "Bearer "+result.Data.Token)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, 401, dashboard(result.Data.Token), "revoked session is rejected")
	})

	t.Run("Login as Regular User denied", func(t *testing.T) {
		status, _ := login(user.Email, adminPass)
		assert.Equal(t, 403, status)
	})

	t.Run("Invalid Password", func(t *testing.T) {
		status, _ := login(admin.Email, "wrongpassword")
		assert.Equal(t, 401, status)
	})

}
