package workspaces

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/productcube/workspace-service/internal/middleware"
	"github.com/productcube/workspace-service/internal/models"
	"github.com/productcube/workspace-service/pkg/randid"
	"github.com/productcube/workspace-service/pkg/response"
)

// Handler exposes the workspace operations over HTTP.
type Handler struct {
	svc Service
}

// NewHandler creates a workspaces handler.
func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// CreateWorkspaceRequest is the body for POST /workspaces.
type CreateWorkspaceRequest struct {
	Name string `json:"name" binding:"required"`
}

// InviteRequest is the body for POST /workspaces/:name/invites.
type InviteRequest struct {
	Email string `json:"email" binding:"required"`
}

// Create handles POST /workspaces.
func (h *Handler) Create(c *gin.Context) {
	caller := middleware.CallerFrom(c)
	var body CreateWorkspaceRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "name required")
		return
	}
	ws, err := h.svc.Create(c.Request.Context(), caller, body.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, ws)
}

// Get handles GET /workspaces/:name. Members and invited come back as
// profiles with digested user ids.
func (h *Handler) Get(c *gin.Context) {
	caller := middleware.CallerFrom(c)
	view, err := h.svc.Get(c.Request.Context(), caller, c.Param("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, view)
}

// List handles GET /workspaces.
func (h *Handler) List(c *gin.Context) {
	caller := middleware.CallerFrom(c)
	list, err := h.svc.List(c.Request.Context(), caller)
	if err != nil {
		respondError(c, err)
		return
	}
	if list == nil {
		list = []models.Workspace{}
	}
	response.OK(c, list)
}

// Invite handles POST /workspaces/:name/invites.
func (h *Handler) Invite(c *gin.Context) {
	caller := middleware.CallerFrom(c)
	var body InviteRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "email required")
		return
	}
	if err := h.svc.Invite(c.Request.Context(), caller, c.Param("name"), body.Email); err != nil {
		respondError(c, err)
		return
	}
	response.NoContent(c)
}

// Accept handles POST /workspaces/:name/invites/accept.
func (h *Handler) Accept(c *gin.Context) {
	caller := middleware.CallerFrom(c)
	if err := h.svc.Accept(c.Request.Context(), caller, c.Param("name")); err != nil {
		respondError(c, err)
		return
	}
	response.NoContent(c)
}

// Decline handles POST /workspaces/:name/invites/decline.
func (h *Handler) Decline(c *gin.Context) {
	caller := middleware.CallerFrom(c)
	if err := h.svc.Decline(c.Request.Context(), caller, c.Param("name")); err != nil {
		respondError(c, err)
		return
	}
	response.NoContent(c)
}

// Delete handles DELETE /workspaces/:name.
func (h *Handler) Delete(c *gin.Context) {
	caller := middleware.CallerFrom(c)
	if err := h.svc.Delete(c.Request.Context(), caller, c.Param("name")); err != nil {
		respondError(c, err)
		return
	}
	response.NoContent(c)
}

// PendingInvitations handles GET /invitations/:userId (inter-service only).
func (h *Handler) PendingInvitations(c *gin.Context) {
	caller := middleware.CallerFrom(c)
	names, err := h.svc.PendingInvitations(c.Request.Context(), caller, c.Param("userId"))
	if err != nil {
		respondError(c, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	response.OK(c, names)
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotAuthenticated):
		response.Unauthorized(c, ErrNotAuthenticated.Error())
	case errors.Is(err, ErrForbidden):
		response.Forbidden(c, ErrForbidden.Error())
	case errors.Is(err, ErrNotFound):
		response.NotFound(c, ErrNotFound.Error())
	case errors.Is(err, ErrInvalidName), errors.Is(err, ErrInvalidEmail), errors.Is(err, ErrInvalidRequest):
		response.BadRequest(c, err.Error())
	case errors.Is(err, ErrAlreadyExists), errors.Is(err, ErrAlreadyMember), errors.Is(err, ErrAlreadyInvited):
		response.Conflict(c, err.Error())
	case errors.Is(err, ErrUpstream), errors.Is(err, randid.ErrExhausted):
		response.ServiceUnavailable(c, "upstream service error")
	default:
		response.Internal(c, "internal error")
	}
}
