package validators

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	appErr "github.com/bracula/campus/pkg/errors"
)

// unknownFieldPrefix is the message encoding/json produces when a decoder with
// DisallowUnknownFields meets an extra key. The package exports no typed error
// for it; TestBody_UnknownFieldFromDecoder breaks if the wording changes.
const unknownFieldPrefix = "json: unknown field "

// Body maps a json.Decoder failure to an invalid AppError, naming the field
// when the decoder reports one.
func Body(err error) error {
	var typeErr *json.UnmarshalTypeError
	var maxErr *http.MaxBytesError
	switch {
	case errors.Is(err, io.EOF):
		return appErr.New(appErr.CodeInvalid, "request body is empty")
	case errors.As(err, &typeErr):
		return appErr.Invalid(typeErr.Field, typeErr.Field+" has the wrong type")
	case errors.As(err, &maxErr):
		return appErr.New(appErr.CodeInvalid, "request body too large")
	case strings.HasPrefix(err.Error(), unknownFieldPrefix):
		field := strings.Trim(strings.TrimPrefix(err.Error(), unknownFieldPrefix), `"`)
		return appErr.Invalid(field, "unknown field: "+field)
	default:
		return appErr.New(appErr.CodeInvalid, "invalid JSON body")
	}
}
