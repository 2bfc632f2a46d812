package service

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"tradie-recovery-be/internal/dto"
	"tradie-recovery-be/internal/entity"
	"tradie-recovery-be/internal/model"
	"tradie-recovery-be/internal/pkg/authz"
	"tradie-recovery-be/internal/pkg/logger"
	"tradie-recovery-be/internal/pkg/serverutils"
	"tradie-recovery-be/internal/repository/specification"
	"tradie-recovery-be/internal/repository/unitofwork"
	"tradie-recovery-be/pkg/events"
	"tradie-recovery-be/pkg/packdoc"
	"tradie-recovery-be/pkg/storage"
	"tradie-recovery-be/pkg/strategy"

	"github.com/google/uuid"
)

const strategyPackTag = "Strategy Pack"

type IStrategyService interface {
	// Generate previews a strategy for raw facts without touching storage.
	Generate(ctx context.Context, facts strategy.Facts) (strategy.Strategy, strategy.Source)
	GeneratePack(ctx context.Context, identity *authz.Identity, caseID uuid.UUID) (*dto.StrategyPackResponse, error)
}

type strategyService struct {
	uowFactory unitofwork.RepositoryFactory
	generator  *strategy.Generator
	storage    storage.Storage
	events     events.Publisher
	tasks      ITaskDispatcher
	logger     logger.ILogger
	now        func() time.Time
}

func NewStrategyService(
	uowFactory unitofwork.RepositoryFactory,
	generator *strategy.Generator,
	store storage.Storage,
	publisher events.Publisher,
	tasks ITaskDispatcher,
	log logger.ILogger,
) IStrategyService {
	return &strategyService{
		uowFactory: uowFactory,
		generator:  generator,
		storage:    store,
		events:     publisher,
		tasks:      tasks,
		logger:     log,
		now:        time.Now,
	}
}

func (s *strategyService) Generate(ctx context.Context, facts strategy.Facts) (strategy.Strategy, strategy.Source) {
	return s.generator.Generate(ctx, facts)
}

type renderedFile struct {
	name        string
	contentType string
	key         string
	data        []byte
}

func (s *strategyService) GeneratePack(ctx context.Context, identity *authz.Identity, caseID uuid.UUID) (*dto.StrategyPackResponse, error) {
	c, err := loadCase(ctx, s.uowFactory.NewUnitOfWork(ctx), identity, caseID)
	if err != nil {
		return nil, err
	}

	// Credits belong to the case owner, not to staff acting on their behalf.
	owner, err := s.uowFactory.NewUnitOfWork(ctx).UserRepository().FindOne(ctx, specification.ByID{ID: c.UserId})
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, serverutils.NewNotFound("case owner not found")
	}
	now := s.now()
	exempt := identity.Can(authz.StrategyPackFree) || owner.HasActiveSubscription(now)
	if !exempt && owner.StrategyPackCredits <= 0 {
		return nil, serverutils.NewPaymentRequired("a strategy pack purchase or active subscription is required")
	}

	result, source := s.generator.Generate(ctx, factsFromCase(c))
	in := packdoc.Input{CaseID: c.Id.String(), CaseNumber: c.CaseNumber, GeneratedAt: now, Strategy: result}

	var pdfBuf, docxBuf bytes.Buffer
	if err := packdoc.RenderPDF(&pdfBuf, in); err != nil {
		return nil, serverutils.NewInternal("failed to render strategy pack", err)
	}
	if err := packdoc.RenderDOCX(&docxBuf, in); err != nil {
		return nil, serverutils.NewInternal("failed to render strategy pack", err)
	}

	files := []renderedFile{
		{name: packdoc.FileName(in.CaseID, "pdf", now), contentType: "application/pdf", data: pdfBuf.Bytes()},
		{name: packdoc.FileName(in.CaseID, "docx", now), contentType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document", data: docxBuf.Bytes()},
	}

	var stored []string
	cleanup := func() {
		for _, key := range stored {
			if err := s.storage.Delete(context.WithoutCancel(ctx), key); err != nil {
				s.logger.Warn("StrategyService", "Failed to remove orphaned pack file", map[string]interface{}{"key": key, "error": err.Error()})
			}
		}
	}
	for i := range files {
		files[i].key = storage.BuildKey(c.UserId.String(), "strategy-packs", files[i].name)
		if err := s.storage.Put(ctx, files[i].key, bytes.NewReader(files[i].data), int64(len(files[i].data)), files[i].contentType); err != nil {
			cleanup()
			return nil, serverutils.NewInternal("failed to store strategy pack", err)
		}
		stored = append(stored, files[i].key)
	}

	docs, updated, err := s.persistPack(ctx, c.Id, owner.Id, exempt, result, files, now)
	if err != nil {
		cleanup()
		return nil, err
	}

	s.logger.Info("StrategyService", "Strategy pack generated", map[string]interface{}{"case_id": c.Id, "source": source, "exempt": exempt})
	s.tasks.Dispatch(ctx, TopicDocumentReadyEmail, dto.DocumentReadyEmailTask{UserId: owner.Id, CaseNumber: updated.CaseNumber})
	publishEvent(ctx, s.events, s.logger, events.DocumentReady, map[string]interface{}{
		"user_id":     owner.Id.String(),
		"case_number": updated.CaseNumber,
		"entity_type": "case",
		"entity_id":   updated.Id.String(),
	})

	res := &dto.StrategyPackResponse{Case: toCaseResponse(updated), Source: string(source)}
	for _, d := range docs {
		res.Documents = append(res.Documents, toDocumentResponse(d))
	}
	return res, nil
}

// persistPack records the generated files in one transaction. A consumed
// credit, the document rows and the case snapshot either all land or none do.
func (s *strategyService) persistPack(
	ctx context.Context,
	caseID, ownerID uuid.UUID,
	exempt bool,
	result strategy.Strategy,
	files []renderedFile,
	now time.Time,
) ([]*entity.Document, *entity.Case, error) {
	snapshot, err := json.Marshal(result)
	if err != nil {
		return nil, nil, serverutils.NewInternal("failed to encode strategy", err)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, nil, err
	}
	defer uow.Rollback()

	if !exempt {
		ok, err := uow.UserRepository().AddStrategyPackCredits(ctx, ownerID, -1)
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			return nil, nil, serverutils.NewPaymentRequired("no strategy pack credits remaining")
		}
	}

	c, err := uow.CaseRepository().FindOne(ctx, specification.ByID{ID: caseID})
	if err != nil {
		return nil, nil, err
	}
	if c == nil {
		return nil, nil, serverutils.NewNotFound("case not found")
	}

	tags, err := uow.TagRepository().FindTagsByNames(ctx, []string{strategyPackTag})
	if err != nil {
		return nil, nil, err
	}

	docs := make([]*entity.Document, 0, len(files))
	for _, f := range files {
		id := caseID
		doc := &entity.Document{
			UserId:      ownerID,
			CaseId:      &id,
			Filename:    f.name,
			StoragePath: f.key,
			MimeType:    f.contentType,
			Size:        int64(len(f.data)),
			Category:    "strategy_pack",
			Description: "Generated strategy pack",
			Source:      entity.DocumentGenerated,
		}
		if err := uow.DocumentRepository().Create(ctx, doc); err != nil {
			return nil, nil, err
		}
		for _, tag := range tags {
			added, err := uow.TagRepository().Assign(ctx, &model.DocumentTagAssignment{
				DocumentId: doc.Id,
				TagId:      tag.Id,
				Source:     model.TagSourceSystem,
			})
			if err != nil {
				return nil, nil, err
			}
			if added {
				if err := uow.TagRepository().IncrementUsage(ctx, tag.Id, 1); err != nil {
					return nil, nil, err
				}
			}
		}
		docs = append(docs, doc)
	}

	c.StrategyPack = snapshot
	if err := uow.CaseRepository().Update(ctx, c); err != nil {
		return nil, nil, err
	}
	if err := uow.TimelineRepository().Create(ctx, &entity.TimelineEvent{
		UserId:      ownerID,
		CaseId:      &caseID,
		Title:       "Strategy pack generated",
		Description: "PDF and Word versions are available in documents",
		EventDate:   now,
		Completed:   true,
	}); err != nil {
		return nil, nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, nil, err
	}
	return docs, c, nil
}
