package controller

import (
	"noteshare-be/internal/dto"
	"noteshare-be/internal/pkg/serverutils"
	"noteshare-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ICatalogController interface {
	RegisterRoutes(r fiber.Router)
	ListNotes(ctx *fiber.Ctx) error
}

type catalogController struct {
	searchService service.ISearchService
	optionalAuth  fiber.Handler
}

func NewCatalogController(searchService service.ISearchService, optionalAuth fiber.Handler) ICatalogController {
	return &catalogController{
		searchService: searchService,
		optionalAuth:  optionalAuth,
	}
}

func (c *catalogController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/catalog/v1")
	h.Use(c.optionalAuth)
	h.Get(":userUuid/notes", c.ListNotes)
}

// ListNotes is the public browsing surface: only the target user's public
// notes, no matter who asks.
func (c *catalogController) ListNotes(ctx *fiber.Ctx) error {
	targetUserId, err := parseUUIDParam(ctx, "userUuid")
	if err != nil {
		return err
	}

	perPage, err := queryPerPage(ctx)
	if err != nil {
		return err
	}

	req := dto.SearchNotesRequest{
		Scope:   dto.ScopeCatalog,
		Query:   ctx.Query("q"),
		Labels:  queryLabels(ctx),
		Page:    ctx.QueryInt("page", 1),
		PerPage: perPage,
	}

	res, err := c.searchService.Catalog(ctx.Context(), targetUserId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success browse catalog", res))
}
