package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"tradie-recovery-be/internal/dto"
	"tradie-recovery-be/internal/entity"
	"tradie-recovery-be/internal/model"
	"tradie-recovery-be/internal/pkg/logger"
	"tradie-recovery-be/internal/pkg/serverutils"
	"tradie-recovery-be/internal/repository/implementation"
	"tradie-recovery-be/internal/repository/unitofwork"
	"tradie-recovery-be/pkg/database"
	"tradie-recovery-be/pkg/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordingDelivery struct {
	mu   sync.Mutex
	sent map[uuid.UUID][]model.Notification
}

func (r *recordingDelivery) Send(userID uuid.UUID, n model.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sent == nil {
		r.sent = map[uuid.UUID][]model.Notification{}
	}
	r.sent[userID] = append(r.sent[userID], n)
}

func (r *recordingDelivery) count(userID uuid.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sent[userID])
}

func newServiceDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.NewSQLiteDB(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, model.All()...))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func newNotificationFixture(t *testing.T) (*NotificationService, *recordingDelivery, unitofwork.RepositoryFactory) {
	t.Helper()
	db := newServiceDB(t)
	factory := unitofwork.NewRepositoryFactory(db)
	delivery := &recordingDelivery{}
	svc := NewNotificationService(
		implementation.NewNotificationRepository(db),
		factory,
		delivery,
		logger.NewIsolatedLogger(filepath.Join(t.TempDir(), "notifications.log")),
	)
	require.NoError(t, svc.SeedTypes(context.Background()))
	return svc, delivery, factory
}

func createUser(t *testing.T, factory unitofwork.RepositoryFactory, email string, role entity.UserRole) *entity.User {
	t.Helper()
	ctx := context.Background()
	u := &entity.User{Email: email, FullName: "Test User", Role: role, Status: entity.UserStatusActive, PlanType: entity.PlanNone}
	require.NoError(t, factory.NewUnitOfWork(ctx).UserRepository().Create(ctx, u))
	return u
}

func TestHandleEventTargetsRoles(t *testing.T) {
	ctx := context.Background()
	svc, delivery, factory := newNotificationFixture(t)
	admin := createUser(t, factory, "admin@example.com", entity.UserRoleAdmin)
	mod := createUser(t, factory, "mod@example.com", entity.UserRoleModerator)
	user := createUser(t, factory, "user@example.com", entity.UserRoleUser)

	err := svc.HandleEvent(ctx, events.New(events.ApplicationSubmitted, map[string]interface{}{
		"full_name":   "Jane Sparky",
		"trade":       "plumber",
		"state":       "VIC",
		"entity_type": "application",
		"entity_id":   uuid.NewString(),
	}))
	require.NoError(t, err)

	assert.Equal(t, 1, delivery.count(admin.Id))
	assert.Equal(t, 1, delivery.count(mod.Id))
	assert.Zero(t, delivery.count(user.Id))

	page, err := svc.List(ctx, mod.Id, &dto.NotificationListRequest{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Jane Sparky submitted an application (plumber, VIC)", page.Items[0].Message)
	assert.Equal(t, "high", page.Items[0].Priority)
}

func TestHandleEventIgnoresUnknownCodes(t *testing.T) {
	svc, delivery, factory := newNotificationFixture(t)
	user := createUser(t, factory, "user@example.com", entity.UserRoleUser)

	err := svc.HandleEvent(context.Background(), events.New("NOT_A_REAL_EVENT", map[string]interface{}{"user_id": user.Id.String()}))
	require.NoError(t, err)
	assert.Zero(t, delivery.count(user.Id))
}

func TestNotificationMutationsAreOwnerScoped(t *testing.T) {
	ctx := context.Background()
	svc, _, factory := newNotificationFixture(t)
	owner := createUser(t, factory, "owner@example.com", entity.UserRoleUser)
	other := createUser(t, factory, "other@example.com", entity.UserRoleUser)

	require.NoError(t, svc.HandleEvent(ctx, events.New(events.CaseCreated, map[string]interface{}{
		"user_id":     owner.Id.String(),
		"case_number": "CASE-1",
		"title":       "Unpaid invoice",
	})))
	page, err := svc.List(ctx, owner.Id, &dto.NotificationListRequest{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	id := page.Items[0].ID

	var appErr *serverutils.AppError
	err = svc.MarkAsRead(ctx, other.Id, id)
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, 404, appErr.Code)
	assert.True(t, errors.As(svc.Delete(ctx, other.Id, id), &appErr))

	require.NoError(t, svc.MarkAsRead(ctx, owner.Id, id))
	summary, err := svc.Summary(ctx, owner.Id)
	require.NoError(t, err)
	assert.Equal(t, int64(1), summary.Total)
	assert.Zero(t, summary.Unread)

	require.NoError(t, svc.Archive(ctx, owner.Id, id))
	summary, err = svc.Summary(ctx, owner.Id)
	require.NoError(t, err)
	assert.Equal(t, int64(1), summary.Archived)
}

func TestDeadlineScanNotifiesOncePerDay(t *testing.T) {
	ctx := context.Background()
	svc, delivery, factory := newNotificationFixture(t)
	owner := createUser(t, factory, "owner@example.com", entity.UserRoleUser)

	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	soon := now.Add(48 * time.Hour)
	later := now.Add(10 * 24 * time.Hour)
	uow := factory.NewUnitOfWork(ctx)
	for i, due := range []time.Time{soon, later} {
		d := due
		require.NoError(t, uow.CaseRepository().Create(ctx, &entity.Case{
			UserId:        owner.Id,
			CaseNumber:    fmt.Sprintf("CASE-%d", i),
			Title:         fmt.Sprintf("Case %d", i),
			Status:        entity.CaseActive,
			IssueType:     "unpaid_invoice",
			NextAction:    "Send letter of demand",
			NextActionDue: &d,
		}))
	}

	res, err := svc.GenerateDeadlineNotifications(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Scanned)
	assert.Equal(t, 1, res.Created)

	res, err = svc.GenerateDeadlineNotifications(ctx)
	require.NoError(t, err)
	assert.Zero(t, res.Created, "same item is not notified twice within a day")
	assert.Equal(t, 1, delivery.count(owner.Id))

	now = now.Add(25 * time.Hour)
	res, err = svc.GenerateDeadlineNotifications(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Created)
}
