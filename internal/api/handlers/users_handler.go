package handlers

import (
	"net/http"

	"github.com/bracula/campus/internal/api/types"
	"github.com/bracula/campus/internal/models"
	"github.com/bracula/campus/internal/services"
)

type UsersHandler struct {
	users services.UserService
}

func NewUsersHandler(users services.UserService) *UsersHandler {
	return &UsersHandler{users: users}
}

func (h *UsersHandler) Me(w http.ResponseWriter, r *http.Request) {
	p, err := h.users.GetProfile(r.Context(), actor(r).UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Status: types.StatusSuccess, User: p})
}

func (h *UsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	p, err := h.users.GetProfile(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Status: types.StatusSuccess, User: p})
}

func (h *UsersHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req types.ProfileUpdateRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := h.users.UpdateProfile(r.Context(), actor(r).UserID, models.ProfileUpdate{
		FullName:  req.FullName,
		AvatarURL: req.AvatarURL,
		Bio:       req.Bio,
		Interests: req.Interests,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Status: types.StatusSuccess, Message: "Profile updated", User: p})
}
