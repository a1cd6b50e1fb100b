package dto

// SearchScope selects which slice of notes a search runs over.
type SearchScope string

const (
	ScopeOwner   SearchScope = "owner"
	ScopeShared  SearchScope = "shared"
	ScopeCatalog SearchScope = "catalog"
)

// SearchNotesRequest carries a nil PerPage when the caller did not ask for a
// size, so the endpoint default applies only to a truly absent parameter. An
// explicit zero is invalid, not a request for the default.
type SearchNotesRequest struct {
	Scope   SearchScope
	Query   string
	Labels  []string
	Page    int
	PerPage *int
}

type PageMeta struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

type SearchNotesResponse struct {
	Data []NoteResponse `json:"data"`
	Meta PageMeta       `json:"meta"`
}
