package server

import (
	stderrors "errors"
	"net/http"

	"github.com/matzehuels/topodraw/pkg/errors"
)

type errorResponse struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// statusFor maps error codes to HTTP status codes.
func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidOrientation,
		errors.ErrCodeInvalidConfig, errors.ErrCodeInvalidPath:
		return http.StatusBadRequest
	case errors.ErrCodeInvalidTopology:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeNotFound, errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err as JSON. Internal errors are logged by the
// caller's access log and reported to the client without detail.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)

	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorBody(r, string(errors.ErrCodeInvalidInput), "request body too large"))
		return
	}

	if code == "" {
		code = errors.ErrCodeInternal
	}
	status := statusFor(code)
	msg := errors.UserMessage(err)
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	writeJSON(w, status, errorBody(r, string(code), msg))
}

func errorBody(r *http.Request, code, msg string) errorResponse {
	return errorResponse{Error: errorDetail{
		Code:      code,
		Message:   msg,
		RequestID: RequestIDFromContext(r.Context()),
	}}
}

func errNotFound(r *http.Request) error {
	return errors.New(errors.ErrCodeNotFound, "no route for %s %s", r.Method, r.URL.Path)
}
