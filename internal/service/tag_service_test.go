package service

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"tradie-recovery-be/internal/dto"
	"tradie-recovery-be/internal/entity"
	"tradie-recovery-be/internal/pkg/authz"
	"tradie-recovery-be/internal/pkg/logger"
	"tradie-recovery-be/internal/pkg/serverutils"
	"tradie-recovery-be/internal/repository/unitofwork"
	"tradie-recovery-be/pkg/storage"
	"tradie-recovery-be/pkg/strategy"
	"tradie-recovery-be/pkg/tagging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTagFixture(t *testing.T) (ITagService, unitofwork.RepositoryFactory, storage.Storage) {
	t.Helper()
	factory := unitofwork.NewRepositoryFactory(newServiceDB(t))
	dir := t.TempDir()
	store, err := storage.NewLocalStorage(filepath.Join(dir, "uploads"))
	require.NoError(t, err)
	svc := NewTagService(factory, tagging.NewSuggester(strategy.NewGenerator(nil, 0)), store, logger.NewIsolatedLogger(filepath.Join(dir, "app.log")))
	return svc, factory, store
}

func createDocument(t *testing.T, factory unitofwork.RepositoryFactory, store storage.Storage, owner *entity.User, filename, content string) *entity.Document {
	t.Helper()
	ctx := context.Background()
	key := storage.BuildKey(owner.Id.String(), "documents", filename)
	require.NoError(t, store.Put(ctx, key, bytes.NewReader([]byte(content)), int64(len(content)), "text/plain"))
	doc := &entity.Document{
		UserId:      owner.Id,
		Filename:    filename,
		StoragePath: key,
		MimeType:    "text/plain",
		Size:        int64(len(content)),
		Source:      entity.DocumentUploaded,
	}
	require.NoError(t, factory.NewUnitOfWork(ctx).DocumentRepository().Create(ctx, doc))
	return doc
}

func identityOf(u *entity.User) *authz.Identity {
	return &authz.Identity{ID: u.Id, Email: u.Email, Role: authz.Role(u.Role)}
}

func TestTagSeedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTagFixture(t)

	n, err := svc.Seed(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(tagging.DefaultVocabulary), n)

	n, err = svc.Seed(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	tags, err := svc.ListTags(ctx)
	require.NoError(t, err)
	assert.Len(t, tags, len(tagging.DefaultVocabulary))
}

func TestApplyAndRemoveTrackUsage(t *testing.T) {
	ctx := context.Background()
	svc, factory, store := newTagFixture(t)
	_, err := svc.Seed(ctx)
	require.NoError(t, err)
	owner := createUser(t, factory, "owner@example.com", entity.UserRoleUser)
	doc := createDocument(t, factory, store, owner, "notes.txt", "site notes")
	id := identityOf(owner)

	for i := 0; i < 2; i++ {
		applied, err := svc.Apply(ctx, id, doc.Id, &dto.ApplyTagsRequest{Tags: []string{"Invoice"}})
		require.NoError(t, err)
		require.Len(t, applied, 1)
		assert.Equal(t, "manual", applied[0].Source)
		assert.Equal(t, owner.Id, *applied[0].AssignedBy)
	}

	tags, err := svc.ListTags(ctx)
	require.NoError(t, err)
	usage := map[string]int{}
	var invoiceTag dto.TagResponse
	for _, tg := range tags {
		usage[tg.Name] = tg.UsageCount
		if tg.Name == "Invoice" {
			invoiceTag = tg
		}
	}
	assert.Equal(t, 1, usage["Invoice"], "reapplying a tag does not double count")

	var appErr *serverutils.AppError
	_, err = svc.Apply(ctx, id, doc.Id, &dto.ApplyTagsRequest{Tags: []string{"Made Up"}})
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, 400, appErr.Code)

	require.NoError(t, svc.Remove(ctx, id, doc.Id, invoiceTag.Id))
	err = svc.Remove(ctx, id, doc.Id, invoiceTag.Id)
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, 404, appErr.Code)

	assigned, err := svc.DocumentTags(ctx, id, doc.Id)
	require.NoError(t, err)
	assert.Empty(t, assigned)
}

func TestTagsAreOwnerScoped(t *testing.T) {
	ctx := context.Background()
	svc, factory, store := newTagFixture(t)
	_, err := svc.Seed(ctx)
	require.NoError(t, err)
	owner := createUser(t, factory, "owner@example.com", entity.UserRoleUser)
	stranger := createUser(t, factory, "stranger@example.com", entity.UserRoleUser)
	admin := createUser(t, factory, "admin@example.com", entity.UserRoleAdmin)
	doc := createDocument(t, factory, store, owner, "receipt.txt", "paid")

	var appErr *serverutils.AppError
	_, err = svc.Apply(ctx, identityOf(stranger), doc.Id, &dto.ApplyTagsRequest{Tags: []string{"Receipt"}})
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, 403, appErr.Code)

	_, err = svc.Apply(ctx, identityOf(admin), doc.Id, &dto.ApplyTagsRequest{Tags: []string{"Receipt"}})
	assert.NoError(t, err)
}

func TestSuggestFallsBackToKeywords(t *testing.T) {
	ctx := context.Background()
	svc, factory, store := newTagFixture(t)
	_, err := svc.Seed(ctx)
	require.NoError(t, err)
	owner := createUser(t, factory, "owner@example.com", entity.UserRoleUser)
	doc := createDocument(t, factory, store, owner, "invoice_march.txt", "Tax invoice for bathroom renovation")

	res, err := svc.Suggest(ctx, identityOf(owner), doc.Id)
	require.NoError(t, err)
	assert.Equal(t, string(strategy.SourceFallback), res.Source)
	require.NotEmpty(t, res.Suggestions)
	assert.Equal(t, "Invoice", res.Suggestions[0].Tag)
}
