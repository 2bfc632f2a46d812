package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"tradie-recovery-be/internal/dto"
	"tradie-recovery-be/internal/model"
	"tradie-recovery-be/internal/pkg/authz"
	"tradie-recovery-be/internal/pkg/logger"
	"tradie-recovery-be/internal/pkg/serverutils"
	"tradie-recovery-be/internal/repository/unitofwork"
	"tradie-recovery-be/pkg/storage"
	"tradie-recovery-be/pkg/tagging"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"gorm.io/datatypes"
)

const (
	vocabularyCacheKey = "tags:vocabulary"
	suggestionPeekSize = 4 << 10
)

type ITagService interface {
	Seed(ctx context.Context) (int, error)
	ListTags(ctx context.Context) ([]dto.TagResponse, error)
	DocumentTags(ctx context.Context, identity *authz.Identity, documentID uuid.UUID) ([]dto.DocumentTagResponse, error)
	Suggest(ctx context.Context, identity *authz.Identity, documentID uuid.UUID) (*dto.TagSuggestionResponse, error)
	Apply(ctx context.Context, identity *authz.Identity, documentID uuid.UUID, req *dto.ApplyTagsRequest) ([]dto.DocumentTagResponse, error)
	Remove(ctx context.Context, identity *authz.Identity, documentID, tagID uuid.UUID) error
}

type tagService struct {
	uowFactory unitofwork.RepositoryFactory
	suggester  *tagging.Suggester
	storage    storage.Storage
	cache      *cache.Cache
	logger     logger.ILogger
}

func NewTagService(uowFactory unitofwork.RepositoryFactory, suggester *tagging.Suggester, store storage.Storage, log logger.ILogger) ITagService {
	return &tagService{
		uowFactory: uowFactory,
		suggester:  suggester,
		storage:    store,
		cache:      cache.New(5*time.Minute, 10*time.Minute),
		logger:     log,
	}
}

func (s *tagService) Seed(ctx context.Context) (int, error) {
	tags := make([]model.DocumentTag, 0, len(tagging.DefaultVocabulary))
	for _, t := range tagging.DefaultVocabulary {
		tags = append(tags, model.DocumentTag{Name: t.Name, Category: t.Category, Description: t.Description, Color: t.Color})
	}
	n, err := s.uowFactory.NewUnitOfWork(ctx).TagRepository().EnsureTags(ctx, tags)
	if err != nil {
		return 0, err
	}
	s.cache.Delete(vocabularyCacheKey)
	if n > 0 {
		s.logger.Info("TagService", "Seeded tag vocabulary", map[string]interface{}{"inserted": n})
	}
	return n, nil
}

func (s *tagService) vocabulary(ctx context.Context) ([]model.DocumentTag, error) {
	if cached, ok := s.cache.Get(vocabularyCacheKey); ok {
		return cached.([]model.DocumentTag), nil
	}
	tags, err := s.uowFactory.NewUnitOfWork(ctx).TagRepository().ListTags(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.SetDefault(vocabularyCacheKey, tags)
	return tags, nil
}

func (s *tagService) ListTags(ctx context.Context) ([]dto.TagResponse, error) {
	tags, err := s.vocabulary(ctx)
	if err != nil {
		return nil, err
	}
	res := make([]dto.TagResponse, 0, len(tags))
	for _, t := range tags {
		res = append(res, toTagResponse(t))
	}
	return res, nil
}

func toDocumentTagResponses(in []model.DocumentTagAssignment) []dto.DocumentTagResponse {
	res := make([]dto.DocumentTagResponse, 0, len(in))
	for _, a := range in {
		res = append(res, dto.DocumentTagResponse{
			TagResponse: toTagResponse(a.Tag),
			Source:      a.Source,
			Confidence:  a.Confidence,
			AssignedBy:  a.AssignedBy,
			AssignedAt:  a.CreatedAt,
		})
	}
	return res
}

func (s *tagService) DocumentTags(ctx context.Context, identity *authz.Identity, documentID uuid.UUID) ([]dto.DocumentTagResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if _, err := loadDocument(ctx, uow, identity, documentID); err != nil {
		return nil, err
	}
	assignments, err := uow.TagRepository().ListAssignments(ctx, documentID)
	if err != nil {
		return nil, err
	}
	return toDocumentTagResponses(assignments), nil
}

func (s *tagService) peek(ctx context.Context, key, mimeType string) string {
	if !strings.HasPrefix(mimeType, "text/") {
		return ""
	}
	rc, err := s.storage.Open(ctx, key)
	if err != nil {
		return ""
	}
	defer rc.Close()
	data, err := io.ReadAll(io.LimitReader(rc, suggestionPeekSize))
	if err != nil {
		return ""
	}
	return string(data)
}

func (s *tagService) Suggest(ctx context.Context, identity *authz.Identity, documentID uuid.UUID) (*dto.TagSuggestionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	doc, err := loadDocument(ctx, uow, identity, documentID)
	if err != nil {
		return nil, err
	}
	tags, err := s.vocabulary(ctx)
	if err != nil {
		return nil, err
	}
	vocab := make([]tagging.Tag, 0, len(tags))
	for _, t := range tags {
		vocab = append(vocab, tagging.Tag{Name: t.Name, Category: t.Category, Description: t.Description, Color: t.Color})
	}

	suggestions, source := s.suggester.Suggest(ctx, doc.Filename, s.peek(ctx, doc.StoragePath, doc.MimeType), vocab)

	raw, err := json.Marshal(suggestions)
	if err != nil {
		return nil, serverutils.NewInternal("failed to encode suggestions", err)
	}
	if err := uow.TagRepository().SaveSuggestion(ctx, &model.AITagSuggestion{
		DocumentId:  doc.Id,
		Suggestions: datatypes.JSON(raw),
		Source:      string(source),
	}); err != nil {
		return nil, err
	}

	res := &dto.TagSuggestionResponse{DocumentId: doc.Id, Source: string(source), Suggestions: make([]dto.TagSuggestion, 0, len(suggestions))}
	for _, sg := range suggestions {
		res.Suggestions = append(res.Suggestions, dto.TagSuggestion{Tag: sg.Tag, Confidence: sg.Confidence, Reasoning: sg.Reasoning, Category: sg.Category})
	}
	return res, nil
}

func (s *tagService) Apply(ctx context.Context, identity *authz.Identity, documentID uuid.UUID, req *dto.ApplyTagsRequest) ([]dto.DocumentTagResponse, error) {
	source := req.Source
	if source == "" {
		source = model.TagSourceManual
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if _, err := loadDocument(ctx, uow, identity, documentID); err != nil {
		return nil, err
	}
	tags, err := uow.TagRepository().FindTagsByNames(ctx, req.Tags)
	if err != nil {
		return nil, err
	}
	known := make(map[string]model.DocumentTag, len(tags))
	for _, t := range tags {
		known[t.Name] = t
	}
	var unknown []string
	for _, name := range req.Tags {
		if _, ok := known[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		return nil, serverutils.NewBadRequest(fmt.Sprintf("unknown tags: %s", strings.Join(unknown, ", ")))
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	for _, name := range req.Tags {
		tag := known[name]
		a := &model.DocumentTagAssignment{DocumentId: documentID, TagId: tag.Id, Source: source}
		if source == model.TagSourceAI {
			if c, ok := req.Confidences[name]; ok {
				a.Confidence = &c
			}
		} else {
			uid := identity.ID
			a.AssignedBy = &uid
		}
		added, err := uow.TagRepository().Assign(ctx, a)
		if err != nil {
			return nil, err
		}
		if added {
			if err := uow.TagRepository().IncrementUsage(ctx, tag.Id, 1); err != nil {
				return nil, err
			}
		}
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}
	s.cache.Delete(vocabularyCacheKey)

	assignments, err := s.uowFactory.NewUnitOfWork(ctx).TagRepository().ListAssignments(ctx, documentID)
	if err != nil {
		return nil, err
	}
	return toDocumentTagResponses(assignments), nil
}

func (s *tagService) Remove(ctx context.Context, identity *authz.Identity, documentID, tagID uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if _, err := loadDocument(ctx, uow, identity, documentID); err != nil {
		return err
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	removed, err := uow.TagRepository().Unassign(ctx, documentID, tagID)
	if err != nil {
		return err
	}
	if !removed {
		return serverutils.NewNotFound("tag is not assigned to this document")
	}
	if err := uow.TagRepository().IncrementUsage(ctx, tagID, -1); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}
	s.cache.Delete(vocabularyCacheKey)
	return nil
}
