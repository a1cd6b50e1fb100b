package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"noteshare-be/internal/entity"
	"noteshare-be/internal/repository/contract"
	"noteshare-be/internal/repository/implementation"
	"noteshare-be/internal/repository/specification"
	"noteshare-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// In-memory fakes over the repository contracts. They interpret the handful of
// specification types the services actually build, which keeps service tests
// off the database.

type fakeStore struct {
	mu sync.Mutex

	users         map[uuid.UUID]*entity.User
	notes         map[uuid.UUID]*entity.Note
	collaborators map[uuid.UUID]*entity.Collaborator
	otpTokens     map[uuid.UUID]*entity.EmailVerificationToken
	refreshTokens map[string]*entity.RefreshToken // keyed by hash

	// Recorded calls for assertions.
	noteFindAllSpecs [][]specification.Specification
	noteCountSpecs   [][]specification.Specification
	refreshedNotes   []uuid.UUID

	// Canned search results.
	findAllResult []*entity.Note
	countResult   int64

	// Injected failures.
	createUserErr         error
	deleteVerificationErr error

	beginCount    int
	commitCount   int
	rollbackCount int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:         make(map[uuid.UUID]*entity.User),
		notes:         make(map[uuid.UUID]*entity.Note),
		collaborators: make(map[uuid.UUID]*entity.Collaborator),
		otpTokens:     make(map[uuid.UUID]*entity.EmailVerificationToken),
		refreshTokens: make(map[string]*entity.RefreshToken),
	}
}

func (s *fakeStore) addUser(u *entity.User) { s.users[u.Id] = u }
func (s *fakeStore) addNote(n *entity.Note) { s.notes[n.Id] = n }
func (s *fakeStore) addCollaborator(c *entity.Collaborator) {
	s.collaborators[c.Id] = c
}

// fakeFactory hands the same store to every unit of work.
type fakeFactory struct {
	store *fakeStore
}

func (f *fakeFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &fakeUoW{store: f.store}
}

func newFakeFactory(store *fakeStore) unitofwork.RepositoryFactory {
	return &fakeFactory{store: store}
}

type fakeUoW struct {
	store *fakeStore
}

func (u *fakeUoW) Begin(ctx context.Context) error {
	u.store.beginCount++
	return nil
}

func (u *fakeUoW) Commit() error {
	u.store.commitCount++
	return nil
}

func (u *fakeUoW) Rollback() error {
	u.store.rollbackCount++
	return nil
}

func (u *fakeUoW) UserRepository() contract.UserRepository {
	return &fakeUserRepo{store: u.store}
}

func (u *fakeUoW) NoteRepository() contract.NoteRepository {
	return &fakeNoteRepo{store: u.store}
}

func (u *fakeUoW) CollaboratorRepository() contract.CollaboratorRepository {
	return &fakeCollaboratorRepo{store: u.store}
}

// --- users ---

type fakeUserRepo struct {
	store *fakeStore
}

func (r *fakeUserRepo) Create(ctx context.Context, user *entity.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.createUserErr != nil {
		return r.store.createUserErr
	}
	for _, existing := range r.store.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return implementation.ErrDuplicate
		}
	}
	r.store.users[user.Id] = user
	return nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *entity.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.users[user.Id] = user
	return nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.users, id)
	return nil
}

func (r *fakeUserRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, user := range r.store.users {
		if userMatches(user, specs) {
			return user, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*entity.User
	for _, user := range r.store.users {
		if userMatches(user, specs) {
			out = append(out, user)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	users, _ := r.FindAll(ctx, specs...)
	return int64(len(users)), nil
}

func userMatches(user *entity.User, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByEmail:
			if !strings.EqualFold(user.Email, s.Email) {
				return false
			}
		case specification.ByID:
			if user.Id != s.ID {
				return false
			}
		}
	}
	return true
}

func (r *fakeUserRepo) MarkVerified(ctx context.Context, userId uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if user, ok := r.store.users[userId]; ok {
		user.EmailVerified = true
		now := time.Now()
		user.VerifiedAt = &now
	}
	return nil
}

func (r *fakeUserRepo) UpdatePassword(ctx context.Context, userId uuid.UUID, hash string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if user, ok := r.store.users[userId]; ok {
		user.PasswordHash = &hash
	}
	return nil
}

func (r *fakeUserRepo) CreateEmailVerificationToken(ctx context.Context, token *entity.EmailVerificationToken) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.otpTokens[token.Id] = token
	return nil
}

func (r *fakeUserRepo) FindEmailVerificationToken(ctx context.Context, specs ...specification.Specification) (*entity.EmailVerificationToken, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, token := range r.store.otpTokens {
		if otpMatches(token, specs) {
			return token, nil
		}
	}
	return nil, nil
}

func otpMatches(token *entity.EmailVerificationToken, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.UserOwnedBy:
			if token.UserId != s.UserID {
				return false
			}
		case specification.ByToken:
			if token.Token != s.Token {
				return false
			}
		}
	}
	return true
}

func (r *fakeUserRepo) DeleteEmailVerificationToken(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.deleteVerificationErr != nil {
		return r.store.deleteVerificationErr
	}
	delete(r.store.otpTokens, id)
	return nil
}

func (r *fakeUserRepo) CreateRefreshToken(ctx context.Context, token *entity.RefreshToken) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.refreshTokens[token.TokenHash] = token
	return nil
}

func (r *fakeUserRepo) FindRefreshToken(ctx context.Context, specs ...specification.Specification) (*entity.RefreshToken, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, spec := range specs {
		if s, ok := spec.(specification.ByTokenHash); ok {
			if token, found := r.store.refreshTokens[s.TokenHash]; found {
				return token, nil
			}
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if token, ok := r.store.refreshTokens[tokenHash]; ok && token.RevokedAt == nil {
		now := time.Now()
		token.RevokedAt = &now
	}
	return nil
}

// --- notes ---

type fakeNoteRepo struct {
	store *fakeStore
}

func (r *fakeNoteRepo) Create(ctx context.Context, note *entity.Note) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, existing := range r.store.notes {
		if existing.UrlToken == note.UrlToken {
			return implementation.ErrDuplicate
		}
	}
	r.store.notes[note.Id] = note
	return nil
}

func (r *fakeNoteRepo) Update(ctx context.Context, note *entity.Note) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.notes[note.Id] = note
	return nil
}

func (r *fakeNoteRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.notes, id)
	return nil
}

func (r *fakeNoteRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Note, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, spec := range specs {
		if s, ok := spec.(specification.ByID); ok {
			if note, found := r.store.notes[s.ID]; found {
				return note, nil
			}
		}
	}
	return nil, nil
}

// FindAll records the specs it was called with and returns the canned result;
// predicate translation belongs to the SQL layer, not to this fake.
func (r *fakeNoteRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Note, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.noteFindAllSpecs = append(r.store.noteFindAllSpecs, specs)
	return r.store.findAllResult, nil
}

func (r *fakeNoteRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.noteCountSpecs = append(r.store.noteCountSpecs, specs)
	return r.store.countResult, nil
}

func (r *fakeNoteRepo) RefreshSearchVector(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.refreshedNotes = append(r.store.refreshedNotes, id)
	return nil
}

// --- collaborators ---

type fakeCollaboratorRepo struct {
	store *fakeStore
}

func (r *fakeCollaboratorRepo) Create(ctx context.Context, link *entity.Collaborator) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, existing := range r.store.collaborators {
		if existing.NoteId == link.NoteId && strings.EqualFold(existing.Email, link.Email) {
			return implementation.ErrDuplicate
		}
	}
	r.store.collaborators[link.Id] = link
	return nil
}

func (r *fakeCollaboratorRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.collaborators, id)
	return nil
}

func (r *fakeCollaboratorRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Collaborator, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, link := range r.store.collaborators {
		if collaboratorMatches(link, specs) {
			return link, nil
		}
	}
	return nil, nil
}

func (r *fakeCollaboratorRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Collaborator, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*entity.Collaborator
	for _, link := range r.store.collaborators {
		if collaboratorMatches(link, specs) {
			out = append(out, link)
		}
	}
	return out, nil
}

func (r *fakeCollaboratorRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	links, _ := r.FindAll(ctx, specs...)
	return int64(len(links)), nil
}

func collaboratorMatches(link *entity.Collaborator, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.CollaboratorOfNote:
			if link.NoteId != s.NoteID {
				return false
			}
		case specification.ByID:
			if link.Id != s.ID {
				return false
			}
		case specification.ByCollaboratorEmail:
			if !strings.EqualFold(link.Email, s.Email) {
				return false
			}
		case specification.CollaboratorMatchesUser:
			byUser := link.UserId != nil && *link.UserId == s.UserID
			byEmail := strings.EqualFold(link.Email, s.Email)
			if !byUser && !byEmail {
				return false
			}
		}
	}
	return true
}

func (r *fakeCollaboratorRepo) AttachUser(ctx context.Context, email string, userId uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, link := range r.store.collaborators {
		if link.UserId == nil && strings.EqualFold(link.Email, email) {
			id := userId
			link.UserId = &id
		}
	}
	return nil
}

func (r *fakeCollaboratorRepo) DetachUser(ctx context.Context, userId uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, link := range r.store.collaborators {
		if link.UserId != nil && *link.UserId == userId {
			link.UserId = nil
		}
	}
	return nil
}

// --- side-effect fakes ---

type fakeMailer struct {
	mu      sync.Mutex
	otps    []string
	invites []string
}

func (m *fakeMailer) SendOTP(toEmail, otp string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.otps = append(m.otps, toEmail)
	return nil
}

func (m *fakeMailer) SendCollaboratorInvite(toEmail, inviterName, noteTitle, noteURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invites = append(m.invites, toEmail)
	return nil
}

type fakeIndexPublisher struct {
	mu      sync.Mutex
	noteIds []uuid.UUID
}

func (p *fakeIndexPublisher) PublishNoteIndex(noteId uuid.UUID) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.noteIds = append(p.noteIds, noteId)
	return nil
}
