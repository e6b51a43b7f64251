package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/ErlanBelekov/contacts-api/internal/domain"
	"github.com/ErlanBelekov/contacts-api/internal/identity"
	"github.com/ErlanBelekov/contacts-api/internal/transport/http/respond"
	"github.com/ErlanBelekov/contacts-api/internal/usecase"
	"github.com/gin-gonic/gin"
)

type contactUsecaser interface {
	List(ctx context.Context, ownerID string) ([]*domain.Contact, error)
	Get(ctx context.Context, id, ownerID string) (*domain.Contact, error)
	Create(ctx context.Context, ownerID string, input usecase.ContactInput) (*domain.Contact, error)
	Update(ctx context.Context, id, ownerID string, patch domain.ContactPatch) (*domain.Contact, error)
	Delete(ctx context.Context, id, ownerID string) error
}

type ContactHandler struct {
	contactUsecase contactUsecaser
	logger         *slog.Logger
}

func NewContactHandler(contactUsecase contactUsecaser, logger *slog.Logger) *ContactHandler {
	return &ContactHandler{
		contactUsecase: contactUsecase,
		logger:         logger.With("component", "contact_handler"),
	}
}

// Pointers tell a PATCH which fields were sent. There is no
// owner field; the owner always comes from the token.
type contactRequest struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Phone     *string `json:"phone"`
}

type contactResponse struct {
	ID        string    `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toContactResponse(c *domain.Contact) contactResponse {
	return contactResponse{
		ID:        c.ID,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Phone:     c.Phone,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// GET /api/contacts
func (h *ContactHandler) List(c *gin.Context) {
	owner, ok := h.owner(c)
	if !ok {
		return
	}

	contacts, err := h.contactUsecase.List(c.Request.Context(), owner)
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}

	resp := make([]contactResponse, len(contacts))
	for i, ct := range contacts {
		resp[i] = toContactResponse(ct)
	}
	c.JSON(http.StatusOK, resp)
}

// GET /api/contacts/:id
func (h *ContactHandler) GetByID(c *gin.Context) {
	owner, ok := h.owner(c)
	if !ok {
		return
	}

	ct, err := h.contactUsecase.Get(c.Request.Context(), c.Param("id"), owner)
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toContactResponse(ct))
}

// POST /api/contacts
func (h *ContactHandler) Create(c *gin.Context) {
	owner, ok := h.owner(c)
	if !ok {
		return
	}

	var req contactRequest
	if err := bindJSON(c, &req); err != nil {
		respond.Error(c, h.logger, err)
		return
	}

	ct, err := h.contactUsecase.Create(c.Request.Context(), owner, usecase.ContactInput{
		FirstName: deref(req.FirstName),
		LastName:  deref(req.LastName),
		Phone:     deref(req.Phone),
	})
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, toContactResponse(ct))
}

// PATCH /api/contacts/:id
func (h *ContactHandler) Update(c *gin.Context) {
	owner, ok := h.owner(c)
	if !ok {
		return
	}

	var req contactRequest
	if err := bindJSON(c, &req); err != nil {
		respond.Error(c, h.logger, err)
		return
	}

	ct, err := h.contactUsecase.Update(c.Request.Context(), c.Param("id"), owner, domain.ContactPatch{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	})
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toContactResponse(ct))
}

// DELETE /api/contacts/:id
func (h *ContactHandler) Delete(c *gin.Context) {
	owner, ok := h.owner(c)
	if !ok {
		return
	}

	if err := h.contactUsecase.Delete(c.Request.Context(), c.Param("id"), owner); err != nil {
		respond.Error(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, respond.Message(msgContactDeleted))
}

// owner reads the account the Auth middleware attached. A route mounted
// without the middleware fails closed with 401.
func (h *ContactHandler) owner(c *gin.Context) (string, bool) {
	id, ok := identity.FromContext(c.Request.Context())
	if !ok {
		respond.Error(c, h.logger, domain.ErrMissingToken)
		return "", false
	}
	return id.AccountID, true
}
