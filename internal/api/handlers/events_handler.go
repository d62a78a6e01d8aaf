package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/bracula/campus/internal/api/types"
	"github.com/bracula/campus/internal/repository"
	"github.com/bracula/campus/internal/services"
	appErr "github.com/bracula/campus/pkg/errors"
)

// eventDateLayouts are the accepted forms of an event's date.
var eventDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	time.DateTime,
	time.DateOnly,
}

type EventsHandler struct {
	events services.EventService
}

func NewEventsHandler(events services.EventService) *EventsHandler {
	return &EventsHandler{events: events}
}

// List serves GET /events?type=a,b&date=YYYY-MM-DD.
func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	var f repository.EventFilter
	q := r.URL.Query()
	for _, t := range strings.Split(q.Get("type"), ",") {
		if t = strings.TrimSpace(t); t != "" {
			f.Types = append(f.Types, t)
		}
	}
	if d := q.Get("date"); d != "" {
		day, err := time.Parse(time.DateOnly, d)
		if err != nil {
			writeError(w, r, appErr.Invalid("date", "date must be YYYY-MM-DD"))
			return
		}
		f.Day = &day
	}

	items, err := h.events.List(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Status: types.StatusSuccess, Data: items, Meta: &types.Meta{Total: len(items)}})
}

func (h *EventsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	v, err := h.events.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Status: types.StatusSuccess, Data: v})
}

func (h *EventsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req types.EventCreateRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	date, ok := parseEventDate(req.Date)
	if !ok {
		writeError(w, r, appErr.Invalid("date", "date must be an ISO 8601 date or date-time"))
		return
	}

	v, err := h.events.Create(r.Context(), actor(r), services.CreateEventInput{
		Name:        req.Name,
		Type:        req.Type,
		Date:        date,
		Location:    req.Location,
		OrganizerID: req.OrganizerID,
		CoverImage:  req.CoverImage,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, types.APIResponse{Status: types.StatusSuccess, Message: "Event created successfully", Data: v})
}

func (h *EventsHandler) ToggleRegistration(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	status, err := h.events.ToggleRegistration(r.Context(), actor(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Status: types.StatusSuccess, Data: map[string]string{"registration_status": status}})
}

func (h *EventsHandler) RegistrationStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok, err := h.events.IsRegistered(r.Context(), actor(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Status: types.StatusSuccess, Data: map[string]bool{"is_registered": ok}})
}

func parseEventDate(s string) (time.Time, bool) {
	for _, layout := range eventDateLayouts {
		if t, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
