package web

import (
	"net/http"
	"strings"

	"github.com/JonMunkholm/useradmin/internal/document"
)

type documentRequest struct {
	Value string `json:"value"`
}

// DocumentResult reports whether a CPF or CNPJ passes its check digits.
type DocumentResult struct {
	Valid     bool   `json:"valid"`
	Kind      string `json:"kind,omitempty"`
	Formatted string `json:"formatted"`
	Digits    string `json:"digits"`
}

// handleValidateDocument checks a CPF or CNPJ without touching any user.
// An invalid document is a 200 with valid=false.
func (s *Server) handleValidateDocument(w http.ResponseWriter, r *http.Request) {
	var req documentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Value) == "" {
		respondError(w, r, errMissingDocInput, http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, CheckDocument(req.Value))
}

// CheckDocument builds the validation report for value.
func CheckDocument(value string) DocumentResult {
	return DocumentResult{
		Valid:     document.IsValid(value),
		Kind:      document.Kind(value),
		Formatted: document.Format(value),
		Digits:    document.Digits(value),
	}
}
