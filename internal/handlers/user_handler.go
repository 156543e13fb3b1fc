package handlers

import (
	"errors"

	"userrecords/internal/models"
	"userrecords/internal/services"
	"userrecords/internal/validation"
	"userrecords/internal/views"
	"userrecords/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// UsersPath is where the user routes are mounted and where every write redirects to.
const UsersPath = "/users"

// UserHandler handles HTTP requests for user records.
type UserHandler struct {
	service *services.UserService
	logger  logrus.FieldLogger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service *services.UserService, logger logrus.FieldLogger) *UserHandler {
	return &UserHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the user routes with the Fiber app.
func (h *UserHandler) RegisterRoutes(router fiber.Router) {
	userRoutes := router.Group(UsersPath)
	userRoutes.Get("/", h.HandleListUsers)
	userRoutes.Post("/", h.HandleCreateUser)
	userRoutes.Get("/edit/:id", h.HandleEditUser)
	userRoutes.Post("/update/:id", h.HandleUpdateUser)
	userRoutes.Get("/delete/:id", h.HandleDeleteUser)
}

// HandleListUsers renders every user.
func (h *UserHandler) HandleListUsers(c *fiber.Ctx) error {
	users, err := h.service.GetAllUsers()
	if err != nil {
		return err
	}
	return c.Render("users/index", fiber.Map{
		"Title": "Users",
		"Users": users,
	}, views.Layout)
}

// HandleCreateUser validates the form and creates a user. Validation failures
// render the error page; every other outcome redirects to the list, and
// unexpected failures are only logged.
func (h *UserHandler) HandleCreateUser(c *fiber.Ctx) error {
	var input models.UserInput
	if err := c.BodyParser(&input); err != nil {
		logger.LogError(h.logger, "failed to parse create user body", err, nil)
		return c.Redirect(UsersPath)
	}

	user, err := h.service.CreateUser(input)
	if err != nil {
		var verr *validation.Error
		if errors.As(err, &verr) {
			return c.Render("users/error", fiber.Map{
				"Title":         "Invalid user",
				"ErrorMessages": verr.Messages,
			}, views.Layout)
		}
		logger.LogError(h.logger, "failed to create user", err, nil)
		return c.Redirect(UsersPath)
	}

	h.logger.WithField("user_id", user.ID).Info("user created")
	return c.Redirect(UsersPath)
}

// HandleEditUser renders the edit form. A missing user renders a not-found notice.
func (h *UserHandler) HandleEditUser(c *fiber.Ctx) error {
	user, err := h.service.GetUserByID(c.Params("id"))
	if err != nil {
		return err
	}
	return c.Render("users/edit", fiber.Map{
		"Title": "Edit user",
		"User":  user,
	}, views.Layout)
}

// HandleUpdateUser overwrites the user with the submitted fields.
func (h *UserHandler) HandleUpdateUser(c *fiber.Ctx) error {
	var input models.UserInput
	if err := c.BodyParser(&input); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.service.UpdateUser(c.Params("id"), input); err != nil {
		return err
	}
	return c.Redirect(UsersPath)
}

// HandleDeleteUser deletes the user and redirects to the list.
func (h *UserHandler) HandleDeleteUser(c *fiber.Ctx) error {
	if err := h.service.DeleteUser(c.Params("id")); err != nil {
		return err
	}
	return c.Redirect(UsersPath)
}
