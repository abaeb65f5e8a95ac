package proxy

import (
	"encoding/json"
	"net/http"

	"bastion-hq/gateway/pkg/proxy/types"
)

// WriteJSONResponse writes v as a JSON body with the given status.
func WriteJSONResponse(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// WriteErrorResponse writes an error body with the given status.
func WriteErrorResponse(w http.ResponseWriter, status int, body *types.ErrorResponse) error {
	return WriteJSONResponse(w, status, body)
}

// WriteError maps err through HandleError and writes the result.
func WriteError(w http.ResponseWriter, err error) (int, error) {
	status, body := HandleError(err)
	return status, WriteErrorResponse(w, status, body)
}
