package controller

import (
	"noteshare-be/internal/pkg/serverutils"
	"noteshare-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IUserController interface {
	RegisterRoutes(r fiber.Router)
	Me(ctx *fiber.Ctx) error
}

type userController struct {
	userService service.IUserService
	requireAuth fiber.Handler
}

func NewUserController(userService service.IUserService, requireAuth fiber.Handler) IUserController {
	return &userController{
		userService: userService,
		requireAuth: requireAuth,
	}
}

func (c *userController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/user/v1")
	h.Use(c.requireAuth)
	h.Get("me", c.Me)
}

func (c *userController) Me(ctx *fiber.Ctx) error {
	res, err := c.userService.Me(ctx.Context(), serverutils.CurrentUser(ctx))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get profile", res))
}
