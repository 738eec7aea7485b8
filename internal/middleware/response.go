package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/joinportal/intake/internal/handler/dto"
)

// writeError writes a JSON error body with the given status code.
func writeError(w http.ResponseWriter, status int, body dto.ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
