package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"tradie-recovery-be/internal/dto"
	"tradie-recovery-be/internal/entity"
	"tradie-recovery-be/internal/pkg/authz"
	"tradie-recovery-be/internal/pkg/logger"
	"tradie-recovery-be/internal/pkg/serverutils"
	"tradie-recovery-be/internal/repository/specification"
	"tradie-recovery-be/internal/repository/unitofwork"
	"tradie-recovery-be/pkg/storage"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// allowedMimeTypes is matched against the sniffed base type only; a file
// whose content does not look like one of these is rejected whatever its name.
var allowedMimeTypes = map[string]bool{
	"application/pdf":    true,
	"text/plain":         true,
	"text/csv":           true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,

	"image/png":  true,
	"image/jpeg": true,
	"image/gif":  true,
	"image/webp": true,

	"application/vnd.ms-excel": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
}

type IDocumentService interface {
	Upload(ctx context.Context, identity *authz.Identity, req *dto.UploadDocumentRequest, body io.Reader) (*dto.DocumentResponse, error)
	List(ctx context.Context, identity *authz.Identity, req *dto.DocumentListRequest) (*serverutils.Page[dto.DocumentResponse], error)
	Get(ctx context.Context, identity *authz.Identity, id uuid.UUID) (*dto.DocumentResponse, error)
	// Download returns the stored object; the caller closes it.
	Download(ctx context.Context, identity *authz.Identity, id uuid.UUID) (io.ReadCloser, *dto.DocumentResponse, error)
	Update(ctx context.Context, identity *authz.Identity, id uuid.UUID, req *dto.UpdateDocumentRequest) (*dto.DocumentResponse, error)
	Delete(ctx context.Context, identity *authz.Identity, id uuid.UUID) error
}

type documentService struct {
	uowFactory unitofwork.RepositoryFactory
	storage    storage.Storage
	maxBytes   int64
	logger     logger.ILogger
}

func NewDocumentService(uowFactory unitofwork.RepositoryFactory, store storage.Storage, maxBytes int64, log logger.ILogger) IDocumentService {
	return &documentService{uowFactory: uowFactory, storage: store, maxBytes: maxBytes, logger: log}
}

func baseMime(m *mimetype.MIME) string {
	t, _, _ := strings.Cut(m.String(), ";")
	return strings.TrimSpace(t)
}

func (s *documentService) Upload(ctx context.Context, identity *authz.Identity, req *dto.UploadDocumentRequest, body io.Reader) (*dto.DocumentResponse, error) {
	if req.Size > s.maxBytes {
		return nil, serverutils.NewTooLarge(fmt.Sprintf("file exceeds %d bytes", s.maxBytes))
	}
	data, err := io.ReadAll(io.LimitReader(body, s.maxBytes+1))
	if err != nil {
		return nil, serverutils.NewBadRequest("failed to read upload")
	}
	if int64(len(data)) > s.maxBytes {
		return nil, serverutils.NewTooLarge(fmt.Sprintf("file exceeds %d bytes", s.maxBytes))
	}
	if len(data) == 0 {
		return nil, serverutils.NewBadRequest("file is empty")
	}

	mimeType := baseMime(mimetype.Detect(data))
	if !allowedMimeTypes[mimeType] {
		return nil, serverutils.NewUnsupportedMedia(fmt.Sprintf("file type %s is not allowed", mimeType))
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if req.CaseId != nil {
		if _, err := loadCase(ctx, uow, identity, *req.CaseId); err != nil {
			return nil, err
		}
	}
	if req.ContractId != nil {
		if _, err := loadContract(ctx, uow, identity, *req.ContractId); err != nil {
			return nil, err
		}
	}

	filename := path.Base(strings.ReplaceAll(req.Filename, "\\", "/"))
	if filename == "." || filename == "/" || filename == "" {
		filename = "upload"
	}
	key := storage.BuildKey(identity.ID.String(), "uploads", uuid.NewString()+"-"+filename)
	if err := s.storage.Put(ctx, key, bytes.NewReader(data), int64(len(data)), mimeType); err != nil {
		return nil, serverutils.NewInternal("failed to store file", err)
	}

	doc := &entity.Document{
		UserId:      identity.ID,
		CaseId:      req.CaseId,
		ContractId:  req.ContractId,
		Filename:    filename,
		StoragePath: key,
		MimeType:    mimeType,
		Size:        int64(len(data)),
		Category:    req.Category,
		Description: req.Description,
		Source:      entity.DocumentUploaded,
	}
	if err := uow.DocumentRepository().Create(ctx, doc); err != nil {
		if delErr := s.storage.Delete(context.WithoutCancel(ctx), key); delErr != nil {
			s.logger.Warn("DocumentService", "Failed to remove orphaned upload", map[string]interface{}{"key": key, "error": delErr.Error()})
		}
		return nil, err
	}

	s.logger.Info("DocumentService", "Document uploaded", map[string]interface{}{"document_id": doc.Id, "mime_type": mimeType, "size": doc.Size})
	res := toDocumentResponse(doc)
	return &res, nil
}

func (s *documentService) List(ctx context.Context, identity *authz.Identity, req *dto.DocumentListRequest) (*serverutils.Page[dto.DocumentResponse], error) {
	limit, offset := normalizePage(req.Limit, req.Offset)
	uow := s.uowFactory.NewUnitOfWork(ctx)

	var filters []specification.Specification
	if !identity.Can(authz.DocumentsAny) {
		filters = append(filters, specification.UserOwnedBy{UserID: identity.ID})
	}
	if req.CaseId != "" {
		id, err := uuid.Parse(req.CaseId)
		if err != nil {
			return nil, serverutils.NewBadRequest("invalid case_id")
		}
		filters = append(filters, specification.ByCaseID{CaseID: id})
	}
	if req.ContractId != "" {
		id, err := uuid.Parse(req.ContractId)
		if err != nil {
			return nil, serverutils.NewBadRequest("invalid contract_id")
		}
		filters = append(filters, specification.ByContractID{ContractID: id})
	}

	repo := uow.DocumentRepository()
	total, err := repo.Count(ctx, filters...)
	if err != nil {
		return nil, err
	}
	docs, err := repo.FindAll(ctx, append(filters,
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit, Offset: offset},
	)...)
	if err != nil {
		return nil, err
	}

	items := make([]dto.DocumentResponse, 0, len(docs))
	for _, d := range docs {
		items = append(items, toDocumentResponse(d))
	}
	return &serverutils.Page[dto.DocumentResponse]{Items: items, Total: total, Limit: limit, Offset: offset}, nil
}

func loadDocument(ctx context.Context, uow unitofwork.UnitOfWork, identity *authz.Identity, id uuid.UUID) (*entity.Document, error) {
	doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, serverutils.NewNotFound("document not found")
	}
	if err := authz.Authorize(identity, doc.UserId, authz.DocumentsAny); err != nil {
		return nil, serverutils.NewForbidden("not allowed to access this document")
	}
	return doc, nil
}

func (s *documentService) Get(ctx context.Context, identity *authz.Identity, id uuid.UUID) (*dto.DocumentResponse, error) {
	doc, err := loadDocument(ctx, s.uowFactory.NewUnitOfWork(ctx), identity, id)
	if err != nil {
		return nil, err
	}
	res := toDocumentResponse(doc)
	return &res, nil
}

func (s *documentService) Download(ctx context.Context, identity *authz.Identity, id uuid.UUID) (io.ReadCloser, *dto.DocumentResponse, error) {
	doc, err := loadDocument(ctx, s.uowFactory.NewUnitOfWork(ctx), identity, id)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.storage.Open(ctx, doc.StoragePath)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, serverutils.NewNotFound("stored file is missing")
		}
		return nil, nil, serverutils.NewInternal("failed to open file", err)
	}
	res := toDocumentResponse(doc)
	return rc, &res, nil
}

func (s *documentService) Update(ctx context.Context, identity *authz.Identity, id uuid.UUID, req *dto.UpdateDocumentRequest) (*dto.DocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	doc, err := loadDocument(ctx, uow, identity, id)
	if err != nil {
		return nil, err
	}
	if req.Category != nil {
		doc.Category = *req.Category
	}
	if req.Description != nil {
		doc.Description = *req.Description
	}
	if err := uow.DocumentRepository().Update(ctx, doc); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}
	res := toDocumentResponse(doc)
	return &res, nil
}

func (s *documentService) Delete(ctx context.Context, identity *authz.Identity, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	doc, err := loadDocument(ctx, uow, identity, id)
	if err != nil {
		return err
	}
	if err := uow.DocumentRepository().Delete(ctx, doc.Id); err != nil {
		return err
	}
	if err := s.storage.Delete(ctx, doc.StoragePath); err != nil && !errors.Is(err, storage.ErrNotFound) {
		s.logger.Warn("DocumentService", "Failed to delete stored file", map[string]interface{}{"key": doc.StoragePath, "error": err.Error()})
	}
	s.logger.Info("DocumentService", "Document deleted", map[string]interface{}{"document_id": id, "by": identity.ID})
	return nil
}
