// AngelaMos | 2026
// handler.go

package project

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/templates/admin-console/internal/core"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes expects a router already gated to Admins.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/projects", h.ListProjects)
}

func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.service.ListProjects(r.Context())
	if err != nil {
		core.ServerError(w, r, err)
		return
	}

	core.OK(w, ProjectListResponse{
		Projects: ToProjectResponseList(projects),
	})
}
