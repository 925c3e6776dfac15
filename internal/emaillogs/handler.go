package emaillogs

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/productcube/workspace-service/internal/middleware"
	"github.com/productcube/workspace-service/internal/models"
	"github.com/productcube/workspace-service/internal/workspaces"
	"github.com/productcube/workspace-service/pkg/response"
)

// Handler exposes the invitation email ledger to workspace members.
type Handler struct {
	repo *Repository
	svc  workspaces.Service
}

// NewHandler creates an email logs handler; the workspaces service gates
// access to a workspace's ledger.
func NewHandler(repo *Repository, svc workspaces.Service) *Handler {
	return &Handler{repo: repo, svc: svc}
}

// ListByWorkspace handles GET /workspaces/:name/emails. Members only.
func (h *Handler) ListByWorkspace(c *gin.Context) {
	caller := middleware.CallerFrom(c)
	workspaceID, err := h.svc.IsMember(c.Request.Context(), caller, c.Param("name"))
	if err != nil {
		switch {
		case errors.Is(err, workspaces.ErrNotAuthenticated):
			response.Unauthorized(c, err.Error())
		case errors.Is(err, workspaces.ErrNotFound):
			response.NotFound(c, err.Error())
		case errors.Is(err, workspaces.ErrForbidden):
			response.Forbidden(c, err.Error())
		default:
			response.ServiceUnavailable(c, "upstream service error")
		}
		return
	}
	logs, err := h.repo.ListByWorkspace(c.Request.Context(), workspaceID)
	if err != nil {
		response.Internal(c, "failed to load email logs")
		return
	}
	if logs == nil {
		logs = []*models.EmailLog{}
	}
	response.OK(c, logs)
}
