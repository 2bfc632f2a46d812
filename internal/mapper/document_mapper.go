package mapper

import (
	"tradie-recovery-be/internal/entity"
	"tradie-recovery-be/internal/model"
)

type DocumentMapper struct{}

func NewDocumentMapper() *DocumentMapper {
	return &DocumentMapper{}
}

func (m *DocumentMapper) ToEntity(d *model.Document) *entity.Document {
	if d == nil {
		return nil
	}
	return &entity.Document{
		Id:          d.Id,
		UserId:      d.UserId,
		CaseId:      d.CaseId,
		ContractId:  d.ContractId,
		Filename:    d.Filename,
		StoragePath: d.StoragePath,
		MimeType:    d.MimeType,
		Size:        d.Size,
		Category:    d.Category,
		Description: d.Description,
		Source:      entity.DocumentSource(d.Source),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func (m *DocumentMapper) ToModel(d *entity.Document) *model.Document {
	if d == nil {
		return nil
	}
	return &model.Document{
		Id:          d.Id,
		UserId:      d.UserId,
		CaseId:      d.CaseId,
		ContractId:  d.ContractId,
		Filename:    d.Filename,
		StoragePath: d.StoragePath,
		MimeType:    d.MimeType,
		Size:        d.Size,
		Category:    d.Category,
		Description: d.Description,
		Source:      string(d.Source),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}
