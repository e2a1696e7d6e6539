// AngelaMos | 2026
// handler.go

package user

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/templates/admin-console/internal/core"
	"github.com/carterperez-dev/templates/admin-console/internal/middleware"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterAdminRoutes mounts the user administration endpoints on a router
// that is already gated to Admins.
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Post("/add-user", h.CreateUser)
	r.Get("/all-users", h.ListUsers)
	r.Get("/user/{id}", h.GetUser)
	r.Put("/edit-user/{id}", h.UpdateUser)
	r.Delete("/delete-user/{id}", h.DeleteUser)
}

func (h *Handler) RegisterProfileRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.With(authenticator).Get("/profile/{id}", h.GetProfile)
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "Invalid request body")
		return
	}

	user, err := h.service.CreateUser(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	core.Created(w, CreateUserResponse{
		Message: "User created successfully",
		UserID:  user.ID,
		Role:    user.Role,
	})
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	params := ListUsersParams{
		Search: strings.TrimSpace(r.URL.Query().Get("search")),
		Role:   strings.TrimSpace(r.URL.Query().Get("role")),
	}

	users, err := h.service.ListUsers(r.Context(), params)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	core.OK(w, UserListResponse{
		Message: "Users fetched successfully",
		Users:   ToUserSummaryList(users),
	})
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUserID(w, r)
	if !ok {
		return
	}

	detail, err := h.service.GetUser(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	core.OK(w, UserResponse{
		Message: "User fetched successfully",
		User:    *detail,
	})
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUserID(w, r)
	if !ok {
		return
	}

	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "Invalid request body")
		return
	}

	user, err := h.service.UpdateUser(r.Context(), id, req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	core.OK(w, UpdateUserResponse{
		Message: "User updated successfully",
		User:    ToUpdatedUser(user),
	})
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUserID(w, r)
	if !ok {
		return
	}

	requesterID := middleware.GetUserID(r.Context())
	if err := h.service.DeleteUser(r.Context(), requesterID, id); err != nil {
		h.writeError(w, r, err)
		return
	}

	core.OK(w, DeleteUserResponse{
		Message:       "User deleted successfully",
		DeletedUserID: id,
	})
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	if claims == nil {
		core.Unauthorized(w, "Unauthorized: token data not found")
		return
	}

	// Non-admins always get their own record, so their path id is not parsed.
	var id int64
	if claims.Role == RoleAdmin {
		var ok bool
		if id, ok = parseUserID(w, r); !ok {
			return
		}
	}

	detail, err := h.service.GetProfile(r.Context(), claims, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	core.OK(w, UserResponse{
		Message: "User profile fetched successfully",
		User:    *detail,
	})
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var projectErr *ProjectNotFoundError

	switch {
	case core.IsAppError(err):
		core.JSONError(w, err)
	case errors.As(err, &projectErr):
		core.JSONError(w, core.NotFoundError(projectErr.Error()))
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "User")
	case errors.Is(err, core.ErrUnauthorized):
		core.Unauthorized(w, "")
	default:
		core.ServerError(w, r, err)
	}
}

func parseUserID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		core.BadRequest(w, "Invalid user id")
		return 0, false
	}
	return id, true
}
