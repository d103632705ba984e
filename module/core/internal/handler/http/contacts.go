package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nandanugg/safetrip/module/core/domain"
	"github.com/nandanugg/safetrip/module/core/service"
)

type contactService interface {
	List(ctx context.Context) ([]domain.EmergencyContact, error)
	Add(ctx context.Context, contact domain.EmergencyContact) (domain.EmergencyContact, error)
	Update(ctx context.Context, id string, contact domain.EmergencyContact) (domain.EmergencyContact, error)
	Delete(ctx context.Context, id string) error
}

type contactRequest struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Relationship string `json:"relationship"`
	IsPriority   bool   `json:"is_priority"`
}

func (r contactRequest) toDomain() domain.EmergencyContact {
	return domain.EmergencyContact{
		Name:         r.Name,
		Phone:        r.Phone,
		Relationship: r.Relationship,
		IsPriority:   r.IsPriority,
	}
}

type ContactHandler struct {
	contacts contactService
}

func NewContactHandler(contacts contactService) *ContactHandler {
	return &ContactHandler{contacts: contacts}
}

func (h *ContactHandler) Register(r *gin.RouterGroup) {
	r.GET("/contacts", h.List)
	r.POST("/contacts", h.Create)
	r.PUT("/contacts/:id", h.Update)
	r.DELETE("/contacts/:id", h.Delete)
}

func (h *ContactHandler) List(c *gin.Context) {
	list, err := h.contacts.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch contacts"})
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *ContactHandler) Create(c *gin.Context) {
	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	contact, err := h.contacts.Add(c.Request.Context(), req.toDomain())
	if err != nil {
		writeContactError(c, err)
		return
	}
	c.JSON(http.StatusCreated, contact)
}

func (h *ContactHandler) Update(c *gin.Context) {
	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	contact, err := h.contacts.Update(c.Request.Context(), c.Param("id"), req.toDomain())
	if err != nil {
		writeContactError(c, err)
		return
	}
	c.JSON(http.StatusOK, contact)
}

func (h *ContactHandler) Delete(c *gin.Context) {
	if err := h.contacts.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeContactError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func writeContactError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidContact):
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and phone are required"})
	case errors.Is(err, service.ErrContactNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "contact not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save contact"})
	}
}
