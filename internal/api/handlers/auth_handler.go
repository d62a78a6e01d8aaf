package handlers

import (
	"net/http"

	"github.com/bracula/campus/internal/api/types"
	"github.com/bracula/campus/internal/auth"
	"github.com/bracula/campus/internal/services"
)

type AuthHandler struct {
	auth    services.AuthService
	cookies auth.CookieConfig
}

func NewAuthHandler(svc services.AuthService, cookies auth.CookieConfig) *AuthHandler {
	return &AuthHandler{auth: svc, cookies: cookies}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req types.LoginRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	profile, token, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.cookies.Set(w, token)
	writeJSON(w, http.StatusOK, types.APIResponse{
		Status:  types.StatusSuccess,
		Message: "Login successful",
		User:    profile,
	})
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req types.RegisterRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	id, err := h.auth.Register(r.Context(), services.RegisterInput{
		FullName:   req.FullName,
		StudentID:  req.StudentID,
		Email:      req.Email,
		Password:   req.Password,
		Department: req.Department,
		AvatarURL:  req.AvatarURL,
		Bio:        req.Bio,
		Interests:  req.Interests,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, types.APIResponse{
		Status:  types.StatusSuccess,
		Message: "User was created successfully",
		Data:    map[string]int64{"user_id": id},
	})
}

// Logout always succeeds and expires the cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.auth.Logout(r.Context(), h.cookies.Token(r))
	h.cookies.Clear(w)
	writeJSON(w, http.StatusOK, types.Success("Logged out successfully"))
}

// Session reports who the current session belongs to.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, types.APIResponse{Status: types.StatusSuccess, User: actor(r)})
}
