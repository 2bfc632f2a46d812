package integration

import (
	"context"
	"sync"
	"testing"

	"tradie-recovery-be/internal/entity"
	"tradie-recovery-be/internal/model"
	"tradie-recovery-be/internal/repository/specification"
	"tradie-recovery-be/internal/repository/unitofwork"
	"tradie-recovery-be/pkg/refnum"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormConnection(t *testing.T) {
	db := openPostgres(t)
	ctx := context.Background()

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Ping())

	uowFactory := unitofwork.NewRepositoryFactory(db)

	user := &entity.User{
		Email:    "test-integration-" + uuid.NewString() + "@example.com",
		FullName: "Integration Test User",
		Role:     entity.UserRoleUser,
		Status:   entity.UserStatusActive,
		PlanType: entity.PlanNone,
	}
	require.NoError(t, uowFactory.NewUnitOfWork(ctx).UserRepository().Create(ctx, user))
	t.Cleanup(func() {
		db.Unscoped().Where("user_id = ?", user.Id).Delete(&model.TimelineEvent{})
		db.Unscoped().Where("user_id = ?", user.Id).Delete(&model.Case{})
		db.Unscoped().Where("user_id = ?", user.Id).Delete(&model.Payment{})
		db.Unscoped().Delete(&model.User{}, "id = ?", user.Id)
	})

	t.Run("Rollback discards case and timeline", func(t *testing.T) {
		uow := uowFactory.NewUnitOfWork(ctx)
		require.NoError(t, uow.Begin(ctx))
		c := &entity.Case{UserId: user.Id, CaseNumber: refnum.New(refnum.CasePrefix), Title: "Rolled back", Status: entity.CaseActive, IssueType: "unpaid_invoice"}
		require.NoError(t, uow.CaseRepository().Create(ctx, c))
		caseID := c.Id
		require.NoError(t, uow.TimelineRepository().Create(ctx, &entity.TimelineEvent{UserId: user.Id, CaseId: &caseID, Title: "Case opened"}))
		require.NoError(t, uow.Rollback())

		found, err := uowFactory.NewUnitOfWork(ctx).CaseRepository().FindOne(ctx, specification.ByID{ID: caseID})
		require.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("Credits never go negative under concurrent spends", func(t *testing.T) {
		repo := uowFactory.NewUnitOfWork(ctx).UserRepository()
		ok, err := repo.AddStrategyPackCredits(ctx, user.Id, 2)
		require.NoError(t, err)
		require.True(t, ok)

		var wg sync.WaitGroup
		var mu sync.Mutex
		spent := 0
		for i := 0; i < 5; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				ok, err := uowFactory.NewUnitOfWork(ctx).UserRepository().AddStrategyPackCredits(ctx, user.Id, -1)
				if err == nil && ok {
					mu.Lock()
					spent++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, 2, spent)

		stored, err := repo.FindOne(ctx, specification.ByID{ID: user.Id})
		require.NoError(t, err)
		assert.Zero(t, stored.StrategyPackCredits)
	})

	t.Run("Idempotency key lookup is scoped to the user", func(t *testing.T) {
		key := "idem-" + uuid.NewString()
		repo := uowFactory.NewUnitOfWork(ctx).PaymentRepository()
		p := &model.Payment{UserId: user.Id, Provider: "stripe", Plan: "strategy_pack", Amount: 4900, Currency: "aud", Status: "pending", IdempotencyKey: &key}
		require.NoError(t, repo.Create(ctx, p))

		found, err := repo.FindByIdempotencyKey(ctx, user.Id, key)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, p.Id, found.Id)

		other, err := repo.FindByIdempotencyKey(ctx, uuid.New(), key)
		require.NoError(t, err)
		assert.Nil(t, other)
	})
}
