package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/bracula/campus/internal/api/middleware"
	"github.com/bracula/campus/internal/api/types"
	"github.com/bracula/campus/internal/api/validators"
	"github.com/bracula/campus/internal/auth"
	appErr "github.com/bracula/campus/pkg/errors"
	"github.com/bracula/campus/pkg/logger"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	types.WriteJSON(w, status, v)
}

// writeError renders err with its mapped status. Server faults are logged
// with the full error; the client only sees a generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := types.StatusFor(err)
	if status >= http.StatusInternalServerError {
		logger.L().Error("request failed",
			zap.String("id", middleware.GetRequestID(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err))
	}
	writeJSON(w, status, types.FromAppError(err))
}

// decode reads a JSON body strictly into dst and validates it. Unknown fields
// and trailing data are rejected.
func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return validators.Body(err)
	}
	if dec.More() {
		return appErr.New(appErr.CodeInvalid, "request body must contain a single JSON object")
	}
	return validators.Struct(dst)
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, appErr.Invalid("id", "invalid id")
	}
	return id, nil
}

// actor returns the identity of the session RequireSession attached.
func actor(r *http.Request) auth.Identity {
	if s, ok := middleware.SessionFrom(r.Context()); ok {
		return s.Identity
	}
	return auth.Identity{}
}
