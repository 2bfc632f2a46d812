package unitofwork

import (
	"context"
	"fmt"
	"testing"
	"time"

	"tradie-recovery-be/internal/entity"
	"tradie-recovery-be/internal/model"
	"tradie-recovery-be/internal/repository"
	"tradie-recovery-be/internal/repository/implementation"
	"tradie-recovery-be/internal/repository/specification"
	"tradie-recovery-be/pkg/database"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
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

func seedUser(t *testing.T, uow UnitOfWork, email string) *entity.User {
	t.Helper()
	u := &entity.User{Email: email, FullName: "Test User", Role: entity.UserRoleUser, Status: entity.UserStatusActive, PlanType: entity.PlanNone}
	require.NoError(t, uow.UserRepository().Create(context.Background(), u))
	return u
}

func TestRollbackDiscardsWrites(t *testing.T) {
	ctx := context.Background()
	factory := NewRepositoryFactory(newTestDB(t))

	uow := factory.NewUnitOfWork(ctx)
	require.NoError(t, uow.Begin(ctx))
	seedUser(t, uow, "gone@example.com")
	require.NoError(t, uow.Rollback())
	assert.NoError(t, uow.Rollback(), "second rollback is a no-op")

	count, err := factory.NewUnitOfWork(ctx).UserRepository().Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestCaseUpdateKeepsOwnerAndNumber(t *testing.T) {
	ctx := context.Background()
	uow := NewRepositoryFactory(newTestDB(t)).NewUnitOfWork(ctx)
	owner := seedUser(t, uow, "owner@example.com")

	c := &entity.Case{UserId: owner.Id, CaseNumber: "CASE-1", Title: "Deck", Status: entity.CaseActive, IssueType: "unpaid", AnalysisStatus: entity.AnalysisFallback}
	require.NoError(t, uow.CaseRepository().Create(ctx, c))
	require.NotEqual(t, uuid.Nil, c.Id)

	c.UserId = uuid.New()
	c.CaseNumber = "CASE-2"
	c.Title = "Deck and pergola"
	c.Progress = 0
	require.NoError(t, uow.CaseRepository().Update(ctx, c))

	stored, err := uow.CaseRepository().FindOne(ctx, specification.ByID{ID: c.Id})
	require.NoError(t, err)
	assert.Equal(t, owner.Id, stored.UserId)
	assert.Equal(t, "CASE-1", stored.CaseNumber)
	assert.Equal(t, "Deck and pergola", stored.Title)
}

func TestCaseNumberIsUnique(t *testing.T) {
	ctx := context.Background()
	uow := NewRepositoryFactory(newTestDB(t)).NewUnitOfWork(ctx)
	owner := seedUser(t, uow, "dup@example.com")

	first := &entity.Case{UserId: owner.Id, CaseNumber: "CASE-X", Title: "A", Status: entity.CaseActive, IssueType: "unpaid"}
	require.NoError(t, uow.CaseRepository().Create(ctx, first))
	second := &entity.Case{UserId: owner.Id, CaseNumber: "CASE-X", Title: "B", Status: entity.CaseActive, IssueType: "unpaid"}
	assert.Error(t, uow.CaseRepository().Create(ctx, second))
}

func TestStrategyPackCreditsNeverGoNegative(t *testing.T) {
	ctx := context.Background()
	uow := NewRepositoryFactory(newTestDB(t)).NewUnitOfWork(ctx)
	u := seedUser(t, uow, "credits@example.com")
	users := uow.UserRepository()

	ok, err := users.AddStrategyPackCredits(ctx, u.Id, -1)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = users.AddStrategyPackCredits(ctx, u.Id, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = users.AddStrategyPackCredits(ctx, u.Id, -1)
	require.NoError(t, err)
	assert.True(t, ok)

	stored, err := users.FindOne(ctx, specification.ByID{ID: u.Id})
	require.NoError(t, err)
	assert.Zero(t, stored.StrategyPackCredits)
}

func TestLinkApplicationsByEmail(t *testing.T) {
	ctx := context.Background()
	uow := NewRepositoryFactory(newTestDB(t)).NewUnitOfWork(ctx)
	apps := uow.ApplicationRepository()

	for _, email := range []string{"Lead@Example.com", "other@example.com"} {
		require.NoError(t, apps.Create(ctx, &entity.Application{
			FullName: "Lead", Email: email, Phone: "0400000000", Trade: "plumbing",
			State: "vic", IssueType: "unpaid", Description: "owed", Status: entity.ApplicationPending,
		}))
	}
	u := seedUser(t, uow, "lead@example.com")

	n, err := apps.LinkByEmail(ctx, u.Email, u.Id)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	byStatus, err := apps.CountByStatus(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, byStatus["pending"])
}

func TestTagAssignmentIsIdempotent(t *testing.T) {
	ctx := context.Background()
	uow := NewRepositoryFactory(newTestDB(t)).NewUnitOfWork(ctx)
	tags := uow.TagRepository()

	seeded := []model.DocumentTag{{Name: "Invoice", Category: "financial"}, {Name: "Contract", Category: "legal"}}
	n, err := tags.EnsureTags(ctx, seeded)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	n, err = tags.EnsureTags(ctx, []model.DocumentTag{{Name: "Invoice", Category: "financial"}})
	require.NoError(t, err)
	assert.Zero(t, n)

	found, err := tags.FindTagsByNames(ctx, []string{"Invoice"})
	require.NoError(t, err)
	require.Len(t, found, 1)

	docID := uuid.New()
	created, err := tags.Assign(ctx, &model.DocumentTagAssignment{DocumentId: docID, TagId: found[0].Id, Source: "manual"})
	require.NoError(t, err)
	assert.True(t, created)
	created, err = tags.Assign(ctx, &model.DocumentTagAssignment{DocumentId: docID, TagId: found[0].Id, Source: "ai"})
	require.NoError(t, err)
	assert.False(t, created)

	assigned, err := tags.ListAssignments(ctx, docID)
	require.NoError(t, err)
	require.Len(t, assigned, 1)
	assert.Equal(t, "Invoice", assigned[0].Tag.Name)
}

func TestNotificationSummaryCounts(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := implementation.NewNotificationRepository(db)
	userID := uuid.New()

	var ids []uuid.UUID
	for _, p := range []string{"high", "low", "medium"} {
		n := &model.Notification{UserID: userID, TypeCode: "CASE_CREATED", Title: "t", Message: "m", Priority: p}
		require.NoError(t, repo.CreateNotification(ctx, n))
		ids = append(ids, n.ID)
	}

	summary, err := repo.GetSummary(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, repository.NotificationSummary{Total: 3, Unread: 3, HighPriority: 1}, *summary)

	ok, err := repo.MarkAsRead(ctx, userID, ids[0])
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.Archive(ctx, userID, ids[1])
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.MarkAsRead(ctx, uuid.New(), ids[2])
	require.NoError(t, err)
	assert.False(t, ok, "other users cannot touch the row")

	summary, err = repo.GetSummary(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, repository.NotificationSummary{Total: 3, Unread: 1, Archived: 1, HighPriority: 0}, *summary)

	exists, err := repo.ExistsSince(ctx, userID, "CASE_CREATED", uuid.New(), time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestIdempotencyKeyIsUniquePerUser(t *testing.T) {
	ctx := context.Background()
	factory := NewRepositoryFactory(newTestDB(t))
	uow := factory.NewUnitOfWork(ctx)
	alice := seedUser(t, uow, "alice@example.com")
	bob := seedUser(t, uow, "bob@example.com")

	newPayment := func(userID uuid.UUID, key string) *model.Payment {
		return &model.Payment{UserId: userID, Provider: "stripe", Plan: "strategy_pack", Amount: 4900, Currency: "aud", Status: "pending", IdempotencyKey: &key}
	}

	created, err := uow.PaymentRepository().CreateIfAbsent(ctx, newPayment(alice.Id, "k1"))
	require.NoError(t, err)
	assert.True(t, created)

	created, err = uow.PaymentRepository().CreateIfAbsent(ctx, newPayment(alice.Id, "k1"))
	require.NoError(t, err)
	assert.False(t, created, "same user and key is a replay")

	created, err = uow.PaymentRepository().CreateIfAbsent(ctx, newPayment(bob.Id, "k1"))
	require.NoError(t, err)
	assert.True(t, created)

	// payments without a key never collide
	for i := 0; i < 2; i++ {
		require.NoError(t, uow.PaymentRepository().Create(ctx, &model.Payment{UserId: alice.Id, Provider: "stripe", Plan: "strategy_pack", Amount: 4900, Currency: "aud", Status: "pending"}))
	}

	payments, err := uow.PaymentRepository().ListByUser(ctx, alice.Id)
	require.NoError(t, err)
	assert.Len(t, payments, 3)
}
