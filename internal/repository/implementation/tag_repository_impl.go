package implementation

import (
	"context"
	"errors"

	"tradie-recovery-be/internal/model"
	"tradie-recovery-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TagRepositoryImpl struct {
	db *gorm.DB
}

func NewTagRepository(db *gorm.DB) contract.TagRepository {
	return &TagRepositoryImpl{db: db}
}

func (r *TagRepositoryImpl) ListTags(ctx context.Context) ([]model.DocumentTag, error) {
	var tags []model.DocumentTag
	err := r.db.WithContext(ctx).Order("category ASC, name ASC").Find(&tags).Error
	return tags, err
}

func (r *TagRepositoryImpl) FindTagsByNames(ctx context.Context, names []string) ([]model.DocumentTag, error) {
	var tags []model.DocumentTag
	if len(names) == 0 {
		return tags, nil
	}
	err := r.db.WithContext(ctx).Where("name IN ?", names).Find(&tags).Error
	return tags, err
}

func (r *TagRepositoryImpl) FindTag(ctx context.Context, id uuid.UUID) (*model.DocumentTag, error) {
	var tag model.DocumentTag
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&tag).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tag, nil
}

func (r *TagRepositoryImpl) EnsureTags(ctx context.Context, tags []model.DocumentTag) (int, error) {
	if len(tags) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(&tags)
	return int(result.RowsAffected), result.Error
}

func (r *TagRepositoryImpl) ListAssignments(ctx context.Context, documentID uuid.UUID) ([]model.DocumentTagAssignment, error) {
	var out []model.DocumentTagAssignment
	err := r.db.WithContext(ctx).
		Preload("Tag").
		Where("document_id = ?", documentID).
		Order("created_at ASC").
		Find(&out).Error
	return out, err
}

func (r *TagRepositoryImpl) Assign(ctx context.Context, a *model.DocumentTagAssignment) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "document_id"}, {Name: "tag_id"}},
			DoNothing: true,
		}).
		Omit("Tag").
		Create(a)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *TagRepositoryImpl) Unassign(ctx context.Context, documentID, tagID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("document_id = ? AND tag_id = ?", documentID, tagID).
		Delete(&model.DocumentTagAssignment{})
	return result.RowsAffected > 0, result.Error
}

func (r *TagRepositoryImpl) IncrementUsage(ctx context.Context, tagID uuid.UUID, delta int) error {
	return r.db.WithContext(ctx).Model(&model.DocumentTag{}).
		Where("id = ?", tagID).
		UpdateColumn("usage_count", gorm.Expr("usage_count + ?", delta)).Error
}

func (r *TagRepositoryImpl) SaveSuggestion(ctx context.Context, s *model.AITagSuggestion) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *TagRepositoryImpl) LatestSuggestion(ctx context.Context, documentID uuid.UUID) (*model.AITagSuggestion, error) {
	var s model.AITagSuggestion
	err := r.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Order("created_at DESC").
		First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}
