package handlers

import (
	"net/http"

	"github.com/bracula/campus/internal/api/types"
	"github.com/bracula/campus/internal/models"
	"github.com/bracula/campus/internal/services"
	appErr "github.com/bracula/campus/pkg/errors"
)

type AccommodationsHandler struct {
	listings services.AccommodationService
}

func NewAccommodationsHandler(listings services.AccommodationService) *AccommodationsHandler {
	return &AccommodationsHandler{listings: listings}
}

// List serves GET /accommodations; ?owner=me limits to the caller's listings.
func (h *AccommodationsHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.listings.List(r.Context(), actor(r), r.URL.Query().Get("owner") == "me")
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Status: types.StatusSuccess, Data: items, Meta: &types.Meta{Total: len(items)}})
}

func (h *AccommodationsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	v, err := h.listings.Get(r.Context(), actor(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Status: types.StatusSuccess, Data: v})
}

func (h *AccommodationsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req types.AccommodationCreateRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	v, err := h.listings.Create(r.Context(), actor(r), services.CreateAccommodationInput{
		Title:       req.Title,
		RoomType:    req.RoomType,
		Price:       req.Price,
		Location:    req.Location,
		Description: req.Description,
		ContactInfo: req.ContactInfo,
		Images:      req.Images,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, types.APIResponse{Status: types.StatusSuccess, Message: "Accommodation created successfully", Data: v})
}

func (h *AccommodationsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req types.AccommodationUpdateRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	v, err := h.listings.Update(r.Context(), actor(r), id, models.AccommodationUpdate{
		Title:       req.Title,
		RoomType:    req.RoomType,
		Price:       req.Price,
		Location:    req.Location,
		Description: req.Description,
		ContactInfo: req.ContactInfo,
		Status:      req.Status,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Status: types.StatusSuccess, Message: "Accommodation updated successfully", Data: v})
}

func (h *AccommodationsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.listings.Delete(r.Context(), actor(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, types.Success("Accommodation deleted successfully"))
}

func (h *AccommodationsHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	fav, err := h.listings.ToggleFavorite(r.Context(), actor(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Status: types.StatusSuccess, Data: map[string]bool{"is_favorite": fav}})
}

// Inquiries is switched off.
func (h *AccommodationsHandler) Inquiries(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, appErr.New(appErr.CodeDisabled, "Inquiry functionality is currently disabled"))
}
