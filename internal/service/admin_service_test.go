package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"tradie-recovery-be/internal/dto"
	"tradie-recovery-be/internal/entity"
	"tradie-recovery-be/internal/pkg/logger"
	"tradie-recovery-be/internal/pkg/serverutils"
	"tradie-recovery-be/internal/repository/specification"
	"tradie-recovery-be/internal/repository/unitofwork"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChangeRoleRequiresCapability(t *testing.T) {
	ctx := context.Background()
	factory := unitofwork.NewRepositoryFactory(newServiceDB(t))
	svc := NewAdminService(factory, logger.NewIsolatedLogger(filepath.Join(t.TempDir(), "app.log")))

	admin := createUser(t, factory, "admin@example.com", entity.UserRoleAdmin)
	mod := createUser(t, factory, "mod@example.com", entity.UserRoleModerator)
	user := createUser(t, factory, "user@example.com", entity.UserRoleUser)

	var appErr *serverutils.AppError
	_, err := svc.ChangeRole(ctx, identityOf(mod), user.Id, &dto.ChangeRoleRequest{Role: "admin"})
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, 403, appErr.Code)

	stored, err := factory.NewUnitOfWork(ctx).UserRepository().FindOne(ctx, specification.ByID{ID: user.Id})
	require.NoError(t, err)
	assert.Equal(t, entity.UserRoleUser, stored.Role)

	res, err := svc.ChangeRole(ctx, identityOf(admin), user.Id, &dto.ChangeRoleRequest{Role: "moderator"})
	require.NoError(t, err)
	assert.Equal(t, "moderator", res.Role)

	_, err = svc.ChangeRole(ctx, identityOf(admin), admin.Id, &dto.ChangeRoleRequest{Role: "user"})
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, 409, appErr.Code)

	_, err = svc.Dashboard(ctx, identityOf(mod))
	assert.NoError(t, err)
	_, err = svc.Dashboard(ctx, identityOf(user))
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, 403, appErr.Code)
}
