package contract

import (
	"context"

	"tradie-recovery-be/internal/entity"
	"tradie-recovery-be/internal/model"
	"tradie-recovery-be/internal/repository/specification"

	"github.com/google/uuid"
)

type DocumentRepository interface {
	Create(ctx context.Context, doc *entity.Document) error
	Update(ctx context.Context, doc *entity.Document) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Document, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Document, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}

// TagRepository works on models directly; tags have no domain behaviour.
type TagRepository interface {
	ListTags(ctx context.Context) ([]model.DocumentTag, error)
	FindTagsByNames(ctx context.Context, names []string) ([]model.DocumentTag, error)
	FindTag(ctx context.Context, id uuid.UUID) (*model.DocumentTag, error)
	// EnsureTags inserts any tag whose name is not present yet.
	EnsureTags(ctx context.Context, tags []model.DocumentTag) (int, error)

	ListAssignments(ctx context.Context, documentID uuid.UUID) ([]model.DocumentTagAssignment, error)
	// Assign returns false when the document already carries the tag.
	Assign(ctx context.Context, a *model.DocumentTagAssignment) (bool, error)
	Unassign(ctx context.Context, documentID, tagID uuid.UUID) (bool, error)
	IncrementUsage(ctx context.Context, tagID uuid.UUID, delta int) error

	SaveSuggestion(ctx context.Context, s *model.AITagSuggestion) error
	LatestSuggestion(ctx context.Context, documentID uuid.UUID) (*model.AITagSuggestion, error)
}
