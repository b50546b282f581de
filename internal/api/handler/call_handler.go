package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"github.com/bankverify/callsheet/internal/assign"
	"github.com/bankverify/callsheet/internal/form"
	"github.com/bankverify/callsheet/internal/identity"
	"github.com/bankverify/callsheet/internal/model"
	"github.com/bankverify/callsheet/internal/repository"
	"github.com/bankverify/callsheet/internal/session"
)

// CallHandler serves the single-page form's workflow endpoints: identity,
// assignment, submission and cancellation.
type CallHandler struct {
	identities *identity.Store
	sessions   *session.Manager
	logger     *zap.Logger
}

// NewCallHandler creates a new handler instance.
func NewCallHandler(identities *identity.Store, sessions *session.Manager, logger *zap.Logger) *CallHandler {
	return &CallHandler{identities: identities, sessions: sessions, logger: logger}
}

type identityBody struct {
	UserName string `json:"userName"`
}

// GetIdentity returns the persisted caller name, empty if none is set.
func (h *CallHandler) GetIdentity(c fiber.Ctx) error {
	name, _ := h.identities.Get()
	return c.Status(fiber.StatusOK).JSON(identityBody{UserName: name})
}

// SetIdentity stores the caller's display name.
func (h *CallHandler) SetIdentity(c fiber.Ctx) error {
	var body identityBody
	if err := c.Bind().Body(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}

	name, err := h.identities.Set(body.UserName)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Display name cannot be empty",
		})
	}

	return c.Status(fiber.StatusOK).JSON(identityBody{UserName: name})
}

// callerName resolves the identity for a request: the X-User-Name header
// wins, otherwise the persisted name. Empty means the caller has not passed
// the identity gate yet.
func (h *CallHandler) callerName(c fiber.Ctx) string {
	if name := c.Get("X-User-Name"); name != "" {
		return name
	}
	name, _ := h.identities.Get()
	return name
}

type assignmentResponse struct {
	Bank           *model.BankRecord `json:"bank"`
	RequiredFields map[string]bool   `json:"requiredFields"`
	Warning        string            `json:"warning,omitempty"`
}

// Next claims the next available record for the caller and presents it.
func (h *CallHandler) Next(c fiber.Ctx) error {
	name := h.callerName(c)
	if name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Set a display name before requesting assignments",
		})
	}

	sess := h.sessions.Get(name)
	rec, err := sess.Next(c.Context())
	if rec == nil && err != nil {
		return handleError(c, err)
	}

	resp := assignmentResponse{
		Bank:           rec,
		RequiredFields: form.RequiredFields(model.FormDraft{}),
	}
	if err != nil {
		// Claim write failed but the record is still presented; the
		// caller sees a soft warning rather than losing the assignment.
		h.logger.Warn("presenting record despite claim failure",
			zap.Int64("id", rec.ID), zap.Error(err))
		resp.Warning = "The record could not be marked as claimed; another caller may receive it too."
	}

	return c.Status(fiber.StatusOK).JSON(resp)
}

// Current returns the record presently assigned to the caller.
func (h *CallHandler) Current(c fiber.Ctx) error {
	name := h.callerName(c)
	if name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Set a display name before requesting assignments",
		})
	}

	rec := h.sessions.Get(name).Current()
	if rec == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "No record is currently assigned",
		})
	}

	return c.Status(fiber.StatusOK).JSON(assignmentResponse{
		Bank:           rec,
		RequiredFields: form.RequiredFields(model.FormDraft{}),
	})
}

// Requirements evaluates which fields a draft currently requires. The form
// calls this on every change to drive live field visibility and errors.
func (h *CallHandler) Requirements(c fiber.Ctx) error {
	var draft model.FormDraft
	if err := c.Bind().Body(&draft); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"requiredFields": form.RequiredFields(draft),
	})
}

// Submit validates the caller's draft and writes the merged record back.
func (h *CallHandler) Submit(c fiber.Ctx) error {
	name := h.callerName(c)
	if name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Set a display name before submitting",
		})
	}

	var draft model.FormDraft
	if err := c.Bind().Body(&draft); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}

	if err := h.sessions.Get(name).Submit(c.Context(), draft); err != nil {
		return handleError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Outcome recorded",
	})
}

// Cancel releases the caller's current record back to the pool.
func (h *CallHandler) Cancel(c fiber.Ctx) error {
	name := h.callerName(c)
	if name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Set a display name before cancelling",
		})
	}

	if err := h.sessions.Get(name).Cancel(c.Context()); err != nil {
		return handleError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Record released",
	})
}

// Helper function for error handling
func handleError(c fiber.Ctx, err error) error {
	var validationErr *form.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"message": validationErr.Error(),
			"field":   validationErr.Field,
		})
	case errors.Is(err, assign.ErrNoAvailability):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message":   "No unassigned records are available right now",
			"retryable": true,
		})
	case errors.Is(err, session.ErrBusy):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": "A previous operation is still in progress",
		})
	case errors.Is(err, session.ErrNoCurrentRecord):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "No record is currently assigned",
		})
	case repository.IsTransport(err):
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"message":   "The record store could not be reached; please retry",
			"retryable": true,
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Internal server error",
		})
	}
}
