package httphandler

import (
	"encoding/json"
	"net/http"

	"github.com/ericfisherdev/streamfinder/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeRawJSON writes an upstream JSON payload verbatim.
func writeRawJSON(w http.ResponseWriter, status int, data []byte) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// LoginRequest is the JSON body for the login endpoint.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is the JSON representation of a successful login.
type LoginResponse struct {
	Success bool   `json:"success"`
	AuthKey string `json:"authKey"`
	Email   string `json:"email"`
}

// TokenResponse is the JSON representation of the resolved session identity.
// Source reports which channel served the read ("cookie" or "store").
type TokenResponse struct {
	HasToken bool   `json:"hasToken"`
	AuthKey  string `json:"authKey,omitempty"`
	Email    string `json:"email,omitempty"`
	Source   string `json:"source,omitempty"`
}

// StreamResponse is the JSON representation of a stream resolution outcome.
type StreamResponse struct {
	Found       bool   `json:"found"`
	URL         string `json:"url,omitempty"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
}

// AddonResponse is the JSON representation of one installed addon.
type AddonResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	TransportURL string `json:"transport_url"`
}

// LibraryItemResponse is the JSON representation of one library item.
type LibraryItemResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// toTokenResponse converts a resolved identity to its JSON representation.
func toTokenResponse(id model.SessionIdentity) TokenResponse {
	if !id.IsAuthenticated() {
		return TokenResponse{HasToken: false}
	}
	return TokenResponse{
		HasToken: true,
		AuthKey:  id.AuthKey,
		Email:    id.Email,
		Source:   string(id.Source),
	}
}

// toAddonResponse converts a domain Addon to its JSON representation.
func toAddonResponse(a model.Addon) AddonResponse {
	return AddonResponse{
		ID:           a.ID,
		Name:         a.Name,
		TransportURL: a.TransportURL,
	}
}

// toLibraryItemResponse converts a domain LibraryItem to its JSON representation.
func toLibraryItemResponse(it model.LibraryItem) LibraryItemResponse {
	return LibraryItemResponse{
		ID:   it.ID,
		Name: it.Name,
		Type: it.Type,
	}
}
