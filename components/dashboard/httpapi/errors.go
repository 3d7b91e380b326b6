package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

var categoryStatus = []struct {
	category goerrors.Category
	status   int
}{
	{goerrors.CategoryNotFound, http.StatusNotFound},
	{goerrors.CategoryBadInput, http.StatusBadRequest},
	{goerrors.CategoryValidation, http.StatusBadRequest},
	{goerrors.CategoryConflict, http.StatusConflict},
	{goerrors.CategoryMethodNotAllowed, http.StatusMethodNotAllowed},
	{goerrors.CategoryExternal, http.StatusBadGateway},
}

// StatusCode maps an error to the HTTP status transports answer with.
// Extended categories resolve through their parent category.
func StatusCode(err error) int {
	if err == nil {
		return http.StatusOK
	}
	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	if mapped.Code != 0 {
		return mapped.Code
	}
	category := string(mapped.Category)
	for _, entry := range categoryStatus {
		parent := string(entry.category)
		if category == parent || strings.HasPrefix(category, parent+"_") {
			return entry.status
		}
	}
	return http.StatusInternalServerError
}

// ErrorResponse converts err into the JSON error envelope without stack data.
func ErrorResponse(err error) goerrors.ErrorResponse {
	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers()).Clone()
	mapped.Location = nil
	return mapped.ToErrorResponse(false, nil)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, StatusCode(err), ErrorResponse(err))
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
