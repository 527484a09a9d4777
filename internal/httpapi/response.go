package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/goliatone/go-formcloud/pkg/answers"
	"github.com/goliatone/go-formcloud/pkg/openapi"
	"github.com/goliatone/go-formcloud/pkg/orchestrator"
	"github.com/goliatone/go-formcloud/pkg/render"
	"github.com/goliatone/go-formcloud/pkg/store"
	"github.com/goliatone/go-formcloud/pkg/validation"
)

// Response is the JSON envelope of every API reply.
type Response struct {
	Data  any    `json:"data"`
	Error *Error `json:"error"`
}

// Error describes a failed request. Fields lists per-answer messages for
// rejected submissions.
type Error struct {
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Details string              `json:"details,omitempty"`
	Fields  map[string][]string `json:"fields,omitempty"`
}

var (
	errBadRequest       = errors.New("httpapi: bad request")
	errUnsupportedMedia = errors.New("httpapi: unsupported media type")
	errNotConfirmed     = errors.New("httpapi: deletion not confirmed")
)

// invalidAnswersError reports answers rejected by the submission contract.
type invalidAnswersError struct {
	err    error
	fields map[string][]string
}

func (e *invalidAnswersError) Error() string { return e.err.Error() }
func (e *invalidAnswersError) Unwrap() error { return e.err }

const invalidAnswersMessage = "Some answers are not valid"

func writeJSON(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

func ok(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, Response{Data: data})
}

func created(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusCreated, Response{Data: data})
}

// classify maps err onto a status and an API error body.
func classify(err error) (int, *Error) {
	var invalid *invalidAnswersError
	var failure *validation.ValidationFailure
	switch {
	case errors.Is(err, orchestrator.ErrFormNotFound), errors.Is(err, orchestrator.ErrRecordNotFound):
		return http.StatusNotFound, &Error{Code: "NOT_FOUND", Message: "Not found", Details: err.Error()}
	case errors.As(err, &failure):
		return http.StatusUnprocessableEntity, &Error{
			Code:    "INCOMPLETE",
			Message: failure.UserMessage(),
			Fields:  requiredFields(failure),
		}
	case errors.As(err, &invalid):
		return http.StatusUnprocessableEntity, &Error{
			Code:    "INVALID_ANSWERS",
			Message: invalidAnswersMessage,
			Details: strings.Join(openapi.Reasons(invalid.err), "; "),
			Fields:  invalid.fields,
		}
	case errors.Is(err, answers.ErrUnknownOption), errors.Is(err, answers.ErrInvalidValue):
		return http.StatusUnprocessableEntity, &Error{Code: "INVALID_ANSWERS", Message: invalidAnswersMessage, Details: err.Error()}
	case errors.Is(err, answers.ErrUnknownField), errors.Is(err, answers.ErrNotCheckbox),
		errors.Is(err, answers.ErrDisplayOnly), errors.Is(err, errBadRequest):
		return http.StatusBadRequest, &Error{Code: "BAD_REQUEST", Message: "Bad request", Details: err.Error()}
	case errors.Is(err, errUnsupportedMedia):
		return http.StatusUnsupportedMediaType, &Error{Code: "UNSUPPORTED_MEDIA_TYPE", Message: "Unsupported media type", Details: err.Error()}
	case errors.Is(err, errNotConfirmed):
		return http.StatusConflict, &Error{Code: "NOT_CONFIRMED", Message: orchestrator.DeletePrompt, Details: "repeat the request with confirm=true"}
	case errors.Is(err, store.ErrStore):
		return http.StatusInternalServerError, &Error{Code: "STORE_ERROR", Message: store.RetryMessage}
	}
	return http.StatusInternalServerError, &Error{Code: "INTERNAL_ERROR", Message: "Internal server error"}
}

func requiredFields(failure *validation.ValidationFailure) map[string][]string {
	out := make(map[string][]string, len(failure.Missing))
	for _, key := range failure.Missing {
		out[key] = []string{render.RequiredMessage}
	}
	return out
}
