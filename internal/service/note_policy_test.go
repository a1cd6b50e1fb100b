package service

import (
	"context"
	"testing"

	"noteshare-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotePolicy(t *testing.T) {
	ctx := context.Background()

	owner := &entity.User{Id: uuid.New(), Email: "owner@example.com"}
	collaborator := &entity.User{Id: uuid.New(), Email: "collab@example.com"}
	invitee := &entity.User{Id: uuid.New(), Email: "invitee@example.com"}
	stranger := &entity.User{Id: uuid.New(), Email: "stranger@example.com"}

	note := &entity.Note{Id: uuid.New(), UserId: owner.Id, Visibility: entity.NoteVisibilityPrivate}

	s := newFakeStore()
	// Linked by user reference.
	s.addCollaborator(&entity.Collaborator{
		Id:     uuid.New(),
		NoteId: note.Id,
		Email:  "collab@example.com",
		UserId: &collaborator.Id,
	})
	// Invited before registering: email only, no user link yet.
	s.addCollaborator(&entity.Collaborator{
		Id:     uuid.New(),
		NoteId: note.Id,
		Email:  "Invitee@Example.com",
	})

	policy := NewNotePolicy(newFakeFactory(s))

	t.Run("view and edit", func(t *testing.T) {
		cases := []struct {
			name   string
			caller *entity.User
			want   bool
		}{
			{"owner", owner, true},
			{"collaborator by user reference", collaborator, true},
			{"collaborator by email fallback", invitee, true},
			{"stranger", stranger, false},
			{"anonymous", nil, false},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				canView, err := policy.CanView(ctx, tc.caller, note)
				require.NoError(t, err)
				assert.Equal(t, tc.want, canView)

				canEdit, err := policy.CanEdit(ctx, tc.caller, note)
				require.NoError(t, err)
				assert.Equal(t, tc.want, canEdit)
			})
		}
	})

	t.Run("delete is owner only", func(t *testing.T) {
		assert.True(t, policy.CanDelete(owner, note))
		assert.False(t, policy.CanDelete(collaborator, note))
		assert.False(t, policy.CanDelete(invitee, note))
		assert.False(t, policy.CanDelete(stranger, note))
		assert.False(t, policy.CanDelete(nil, note))
	})

	t.Run("collaborator on another note grants nothing here", func(t *testing.T) {
		otherNote := &entity.Note{Id: uuid.New(), UserId: owner.Id}
		canView, err := policy.CanView(ctx, collaborator, otherNote)
		require.NoError(t, err)
		assert.False(t, canView)
	})
}
