package entity

import (
	"time"

	"github.com/google/uuid"
)

type DocumentSource string

const (
	DocumentUploaded  DocumentSource = "upload"
	DocumentGenerated DocumentSource = "generated"
)

type Document struct {
	Id          uuid.UUID
	UserId      uuid.UUID
	CaseId      *uuid.UUID
	ContractId  *uuid.UUID
	Filename    string
	StoragePath string
	MimeType    string
	Size        int64
	Category    string
	Description string
	Source      DocumentSource
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
