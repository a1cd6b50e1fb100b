package controller

import (
	"strconv"

	"noteshare-be/internal/dto"
	"noteshare-be/internal/pkg/serverutils"
	"noteshare-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type INoteController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	Search(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	ListCollaborators(ctx *fiber.Ctx) error
	AddCollaborator(ctx *fiber.Ctx) error
	RemoveCollaborator(ctx *fiber.Ctx) error
}

type noteController struct {
	noteService   service.INoteService
	searchService service.ISearchService
	requireAuth   fiber.Handler
}

func NewNoteController(noteService service.INoteService, searchService service.ISearchService, requireAuth fiber.Handler) INoteController {
	return &noteController{
		noteService:   noteService,
		searchService: searchService,
		requireAuth:   requireAuth,
	}
}

func (c *noteController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/note/v1")
	h.Use(c.requireAuth)
	h.Post("", c.Create)
	h.Get("search", c.Search)
	h.Get(":id", c.Show)
	h.Put(":id", c.Update)
	h.Delete(":id", c.Delete)
	h.Get(":id/collaborators", c.ListCollaborators)
	h.Post(":id/collaborators", c.AddCollaborator)
	h.Delete(":id/collaborators", c.RemoveCollaborator)
	h.Delete(":id/collaborators/:collabId", c.RemoveCollaborator)
}

func (c *noteController) Create(ctx *fiber.Ctx) error {
	caller := serverutils.CurrentUser(ctx)

	var req dto.CreateNoteRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewBadRequest("Invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.noteService.Create(ctx.Context(), caller, &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.CreatedResponse("Success create note", res))
}

func (c *noteController) Search(ctx *fiber.Ctx) error {
	caller := serverutils.CurrentUser(ctx)

	perPage, err := queryPerPage(ctx)
	if err != nil {
		return err
	}

	req := dto.SearchNotesRequest{
		Scope:   dto.SearchScope(ctx.Query("scope", string(dto.ScopeOwner))),
		Query:   ctx.Query("q"),
		Labels:  queryLabels(ctx),
		Page:    ctx.QueryInt("page", 1),
		PerPage: perPage,
	}

	res, err := c.searchService.Search(ctx.Context(), caller, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success search notes", res))
}

func (c *noteController) Show(ctx *fiber.Ctx) error {
	caller := serverutils.CurrentUser(ctx)

	id, err := parseUUIDParam(ctx, "id")
	if err != nil {
		return err
	}

	res, err := c.noteService.GetById(ctx.Context(), caller, id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show note", res))
}

func (c *noteController) Update(ctx *fiber.Ctx) error {
	caller := serverutils.CurrentUser(ctx)

	id, err := parseUUIDParam(ctx, "id")
	if err != nil {
		return err
	}

	var req dto.UpdateNoteRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewBadRequest("Invalid request body")
	}
	req.Id = id

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.noteService.Update(ctx.Context(), caller, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update note", res))
}

func (c *noteController) Delete(ctx *fiber.Ctx) error {
	caller := serverutils.CurrentUser(ctx)

	id, err := parseUUIDParam(ctx, "id")
	if err != nil {
		return err
	}

	if err := c.noteService.Delete(ctx.Context(), caller, id); err != nil {
		return err
	}

	return ctx.SendStatus(fiber.StatusNoContent)
}

func (c *noteController) ListCollaborators(ctx *fiber.Ctx) error {
	caller := serverutils.CurrentUser(ctx)

	id, err := parseUUIDParam(ctx, "id")
	if err != nil {
		return err
	}

	res, err := c.noteService.ListCollaborators(ctx.Context(), caller, id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list collaborators", res))
}

func (c *noteController) AddCollaborator(ctx *fiber.Ctx) error {
	caller := serverutils.CurrentUser(ctx)

	id, err := parseUUIDParam(ctx, "id")
	if err != nil {
		return err
	}

	var req dto.AddCollaboratorRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewBadRequest("Invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.noteService.AddCollaborator(ctx.Context(), caller, id, &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.CreatedResponse("Success add collaborator", res))
}

// RemoveCollaborator serves both removal forms: by link id in the path, or by
// email in the query string.
func (c *noteController) RemoveCollaborator(ctx *fiber.Ctx) error {
	caller := serverutils.CurrentUser(ctx)

	noteId, err := parseUUIDParam(ctx, "id")
	if err != nil {
		return err
	}

	if collabParam := ctx.Params("collabId"); collabParam != "" {
		collabId, parseErr := uuid.Parse(collabParam)
		if parseErr != nil {
			return serverutils.NewBadRequest("Invalid collaborator id")
		}
		if err := c.noteService.RemoveCollaboratorById(ctx.Context(), caller, noteId, collabId); err != nil {
			return err
		}
		return ctx.SendStatus(fiber.StatusNoContent)
	}

	email := ctx.Query("email")
	if email == "" {
		return serverutils.NewBadRequest("Provide a collaborator id or an email")
	}
	if err := c.noteService.RemoveCollaboratorByEmail(ctx.Context(), caller, noteId, email); err != nil {
		return err
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}

func parseUUIDParam(ctx *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params(name))
	if err != nil {
		return uuid.Nil, serverutils.NewBadRequest("Invalid " + name + " parameter")
	}
	return id, nil
}

// queryPerPage distinguishes an absent per_page parameter from an explicit
// value; only absence falls back to the endpoint default.
func queryPerPage(ctx *fiber.Ctx) (*int, error) {
	raw := ctx.Query("per_page")
	if raw == "" {
		return nil, nil
	}
	size, err := strconv.Atoi(raw)
	if err != nil {
		return nil, serverutils.NewBadRequest("Invalid per_page parameter")
	}
	return &size, nil
}

// queryLabels accepts both the repeatable `labels` form and the singular
// `label` alias.
func queryLabels(ctx *fiber.Ctx) []string {
	var labels []string
	for _, key := range []string{"labels", "label"} {
		for _, raw := range ctx.Context().QueryArgs().PeekMulti(key) {
			if len(raw) > 0 {
				labels = append(labels, string(raw))
			}
		}
	}
	return labels
}
