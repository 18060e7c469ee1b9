package httpapi

import (
	"encoding/json"
	"net/http"
)

// errorBody is the shape of every non-2xx JSON response.
type errorBody struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors,omitempty"`
	Error   string              `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorBody{Message: message})
}

func writeValidationErrors(w http.ResponseWriter, errs map[string][]string) {
	writeJSON(w, http.StatusUnprocessableEntity, errorBody{Message: "Validation errors", Errors: errs})
}

// serverError logs err with the request id and answers 500. The error text is
// exposed to the client only in debug mode.
func (s *Server) serverError(w http.ResponseWriter, r *http.Request, message string, err error) {
	s.logger.Error(r.Context(), message, "request_id", RequestIDFromContext(r.Context()), "error", err)

	body := errorBody{Message: message}
	if s.debug {
		body.Error = err.Error()
	}
	writeJSON(w, http.StatusInternalServerError, body)
}
