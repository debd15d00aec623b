// handlers_contact.go - Contact form handler
package api

import (
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/axoraweb/seo-backend/internal/models"
	"github.com/labstack/echo/v4"
)

const contactThanks = "Thank you for your message! We'll get back to you within 24 hours."

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ContactHandlerImpl implements the ContactHandler interface
type ContactHandlerImpl struct {
	logger *slog.Logger
}

// NewContactHandler creates a new contact handler
func NewContactHandler(logger *slog.Logger) ContactHandler {
	return &ContactHandlerImpl{logger: logger}
}

type contactRequest models.ContactRequest

func (r *contactRequest) validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	r.Message = strings.TrimSpace(r.Message)
	if r.Name == "" {
		return NewValidationError("name", "Name, email, and message are required")
	}
	if r.Email == "" {
		return NewValidationError("email", "Name, email, and message are required")
	}
	if r.Message == "" {
		return NewValidationError("message", "Name, email, and message are required")
	}
	if !emailPattern.MatchString(r.Email) {
		return NewValidationError("email", "Please provide a valid email address")
	}
	return nil
}

type contactResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// HandleContact validates and records a contact form submission
func (h *ContactHandlerImpl) HandleContact(c echo.Context) error {
	var req contactRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError(CodeValidation, "invalid JSON body", err)
	}
	if err := req.validate(); err != nil {
		return err
	}

	h.logger.Info("contact form submission",
		"name", req.Name,
		"email", req.Email,
		"company", req.Company,
		"service", req.Service,
		"budget", req.Budget,
		"timeline", req.Timeline,
		"submittedAt", time.Now().UTC().Format(time.RFC3339),
	)

	return respond(c, http.StatusOK, contactResponse{
		Success: true,
		Message: contactThanks,
	})
}
