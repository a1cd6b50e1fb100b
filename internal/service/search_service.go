package service

import (
	"context"
	"strings"

	"noteshare-be/internal/dto"
	"noteshare-be/internal/entity"
	"noteshare-be/internal/pkg/serverutils"
	"noteshare-be/internal/repository/specification"
	"noteshare-be/internal/repository/unitofwork"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	maxQueryLength = 255
	maxPerPage     = 100

	defaultPerPageDashboard = 20
	defaultPerPageCatalog   = 50
)

type ISearchService interface {
	// Search runs an owner or shared scoped query for an authenticated caller.
	Search(ctx context.Context, caller *entity.User, req *dto.SearchNotesRequest) (*dto.SearchNotesResponse, error)

	// Catalog lists a target user's public notes. Anonymous callers are fine;
	// even the owner sees only what the public sees here.
	Catalog(ctx context.Context, targetUserId uuid.UUID, req *dto.SearchNotesRequest) (*dto.SearchNotesResponse, error)
}

type searchService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewSearchService(uowFactory unitofwork.RepositoryFactory) ISearchService {
	return &searchService{uowFactory: uowFactory}
}

func (s *searchService) Search(ctx context.Context, caller *entity.User, req *dto.SearchNotesRequest) (*dto.SearchNotesResponse, error) {
	var scopeSpec specification.Specification
	switch req.Scope {
	case dto.ScopeShared:
		scopeSpec = specification.SharedWithUser{UserID: caller.Id, Email: caller.Email}
	case dto.ScopeOwner, "":
		scopeSpec = specification.NoteOwnedByUser{UserID: caller.Id}
	default:
		return nil, serverutils.NewBadRequest("Unknown search scope")
	}
	return s.run(ctx, scopeSpec, req, defaultPerPageDashboard)
}

func (s *searchService) Catalog(ctx context.Context, targetUserId uuid.UUID, req *dto.SearchNotesRequest) (*dto.SearchNotesResponse, error) {
	scopeSpec := catalogScope{UserID: targetUserId}
	return s.run(ctx, scopeSpec, req, defaultPerPageCatalog)
}

// catalogScope combines owner and public-visibility filters into one spec.
type catalogScope struct {
	UserID uuid.UUID
}

func (c catalogScope) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("notes.user_id = ? AND notes.visibility = ?", c.UserID, entity.NoteVisibilityPublic)
}

func (s *searchService) run(ctx context.Context, scopeSpec specification.Specification, req *dto.SearchNotesRequest, defaultPerPage int) (*dto.SearchNotesResponse, error) {
	page, perPage, err := normalizePagination(req.Page, req.PerPage, defaultPerPage)
	if err != nil {
		return nil, err
	}

	query := strings.TrimSpace(req.Query)
	if len(query) > maxQueryLength {
		return nil, serverutils.NewBadRequest("Search query too long")
	}

	filters := []specification.Specification{scopeSpec}
	if query != "" {
		filters = append(filters, specification.NoteSearchQuery{Query: query})
	}
	if len(req.Labels) > 0 {
		filters = append(filters, specification.LabelsOverlap{Labels: req.Labels})
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.NoteRepository()

	// Total uses the exact same predicate as the page fetch.
	total, err := repo.Count(ctx, filters...)
	if err != nil {
		return nil, serverutils.NewInternal(err)
	}

	pageSpecs := append(filters,
		specification.OrderBy{Field: "COALESCE(notes.updated_at, notes.created_at)", Desc: true},
		specification.OrderBy{Field: "notes.id", Desc: true},
		specification.Pagination{Limit: perPage, Offset: (page - 1) * perPage},
	)
	notes, err := repo.FindAll(ctx, pageSpecs...)
	if err != nil {
		return nil, serverutils.NewInternal(err)
	}

	items := make([]dto.NoteResponse, 0, len(notes))
	for _, note := range notes {
		items = append(items, *noteResponse(note))
	}

	totalPages := 0
	if total > 0 {
		totalPages = int((total + int64(perPage) - 1) / int64(perPage))
	}

	return &dto.SearchNotesResponse{
		Data: items,
		Meta: dto.PageMeta{
			Page:       page,
			PerPage:    perPage,
			Total:      total,
			TotalPages: totalPages,
		},
	}, nil
}

func normalizePagination(page int, perPage *int, defaultPerPage int) (int, int, error) {
	if page < 1 {
		return 0, 0, serverutils.NewBadRequest("Page must be a positive integer")
	}
	size := defaultPerPage
	if perPage != nil {
		size = *perPage
	}
	if size < 1 || size > maxPerPage {
		return 0, 0, serverutils.NewBadRequest("Invalid page size")
	}
	return page, size, nil
}
