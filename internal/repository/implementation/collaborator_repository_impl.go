package implementation

import (
	"context"
	"errors"

	"noteshare-be/internal/entity"
	"noteshare-be/internal/mapper"
	"noteshare-be/internal/model"
	"noteshare-be/internal/repository/contract"
	"noteshare-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CollaboratorRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.NoteMapper
}

func NewCollaboratorRepository(db *gorm.DB) contract.CollaboratorRepository {
	return &CollaboratorRepositoryImpl{
		db:     db,
		mapper: mapper.NewNoteMapper(),
	}
}

func (r *CollaboratorRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *CollaboratorRepositoryImpl) Create(ctx context.Context, link *entity.Collaborator) error {
	m := r.mapper.CollaboratorToModel(link)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return translateUniqueViolation(err)
	}
	*link = *r.mapper.CollaboratorToEntity(m)
	return nil
}

func (r *CollaboratorRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Collaborator{}, id).Error
}

func (r *CollaboratorRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Collaborator, error) {
	var m model.Collaborator
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.CollaboratorToEntity(&m), nil
}

func (r *CollaboratorRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Collaborator, error) {
	var models []*model.Collaborator
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.CollaboratorsToEntities(models), nil
}

func (r *CollaboratorRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Collaborator{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *CollaboratorRepositoryImpl) AttachUser(ctx context.Context, email string, userId uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Collaborator{}).
		Where("LOWER(email) = LOWER(?) AND user_id IS NULL", email).
		Update("user_id", userId).Error
}

func (r *CollaboratorRepositoryImpl) DetachUser(ctx context.Context, userId uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Collaborator{}).
		Where("user_id = ?", userId).
		Update("user_id", nil).Error
}
