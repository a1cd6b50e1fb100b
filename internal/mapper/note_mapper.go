package mapper

import (
	"time"

	"noteshare-be/internal/entity"
	"noteshare-be/internal/model"

	"gorm.io/datatypes"
)

type NoteMapper struct{}

func NewNoteMapper() *NoteMapper {
	return &NoteMapper{}
}

func (m *NoteMapper) ToEntity(n *model.Note) *entity.Note {
	if n == nil {
		return nil
	}

	var updatedAt *time.Time
	if !n.UpdatedAt.IsZero() {
		t := n.UpdatedAt
		updatedAt = &t
	}

	return &entity.Note{
		Id:          n.Id,
		UserId:      n.UserId,
		UrlToken:    n.UrlToken,
		Title:       n.Title,
		Description: n.Description,
		Labels:      []string(n.Labels),
		Visibility:  entity.NoteVisibility(n.Visibility),
		CreatedAt:   n.CreatedAt,
		UpdatedAt:   updatedAt,
	}
}

func (m *NoteMapper) ToModel(n *entity.Note) *model.Note {
	if n == nil {
		return nil
	}

	var updatedAt time.Time
	if n.UpdatedAt != nil {
		updatedAt = *n.UpdatedAt
	}

	return &model.Note{
		Id:          n.Id,
		UserId:      n.UserId,
		UrlToken:    n.UrlToken,
		Title:       n.Title,
		Description: n.Description,
		Labels:      datatypes.NewJSONSlice(n.Labels),
		Visibility:  string(n.Visibility),
		CreatedAt:   n.CreatedAt,
		UpdatedAt:   updatedAt,
	}
}

func (m *NoteMapper) ToEntities(notes []*model.Note) []*entity.Note {
	entities := make([]*entity.Note, len(notes))
	for i, n := range notes {
		entities[i] = m.ToEntity(n)
	}
	return entities
}

func (m *NoteMapper) CollaboratorToEntity(c *model.Collaborator) *entity.Collaborator {
	if c == nil {
		return nil
	}
	return &entity.Collaborator{
		Id:        c.Id,
		NoteId:    c.NoteId,
		Email:     c.Email,
		UserId:    c.UserId,
		CreatedAt: c.CreatedAt,
	}
}

func (m *NoteMapper) CollaboratorToModel(c *entity.Collaborator) *model.Collaborator {
	if c == nil {
		return nil
	}
	return &model.Collaborator{
		Id:        c.Id,
		NoteId:    c.NoteId,
		Email:     c.Email,
		UserId:    c.UserId,
		CreatedAt: c.CreatedAt,
	}
}

func (m *NoteMapper) CollaboratorsToEntities(links []*model.Collaborator) []*entity.Collaborator {
	entities := make([]*entity.Collaborator, len(links))
	for i, c := range links {
		entities[i] = m.CollaboratorToEntity(c)
	}
	return entities
}
