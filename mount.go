package arrangementhub

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/websocket"
)

// DiffRequest is one diff or overlay request over HTTP or websocket. Tokens
// are optional on overlay requests; when omitted they are computed from the
// two documents.
type DiffRequest struct {
	OldXML string  `json:"oldXml" validate:"required"`
	NewXML string  `json:"newXml" validate:"required"`
	Tokens []Token `json:"tokens,omitempty"`
}

// DiffResponse carries a computed token stream.
type DiffResponse struct {
	Tokens []Token `json:"tokens"`
}

// MountConfig configures the mount handler
type MountConfig struct {
	Differ            *Differ
	Upgrader          *websocket.Upgrader
	WebSocketDisabled bool
	Compact           bool
}

// MountOption configures a mounted handler
type MountOption func(*MountConfig)

// WithDiffer mounts an existing Differ instead of a fresh default one.
func WithDiffer(d *Differ) MountOption {
	return func(c *MountConfig) { c.Differ = d }
}

// WithoutWebSocket disables the /live endpoint.
func WithoutWebSocket() MountOption {
	return func(c *MountConfig) { c.WebSocketDisabled = true }
}

// WithCompactOutput minifies colored documents before they leave the handler.
func WithCompactOutput() MountOption {
	return func(c *MountConfig) { c.Compact = true }
}

// Mount creates an http.Handler exposing the diff engine as a JSON API:
// POST /api/diff computes tokens, POST /api/overlay returns colored
// documents, GET /live upgrades to a websocket where each client frame is a
// diff request and each reply a full overlay response.
func Mount(opts ...MountOption) http.Handler {
	config := MountConfig{
		Differ: NewDiffer(),
		Upgrader: &websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}

	for _, opt := range opts {
		opt(&config)
	}

	return &diffHandler{config: config}
}

type diffHandler struct {
	config MountConfig
}

func (h *diffHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/api/diff":
		h.handleDiff(w, r)
	case r.Method == http.MethodPost && r.URL.Path == "/api/overlay":
		h.handleOverlay(w, r)
	case r.URL.Path == "/live" && !h.config.WebSocketDisabled:
		h.handleLive(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *diffHandler) handleDiff(w http.ResponseWriter, r *http.Request) {
	req, ok := h.bindRequest(w, r)
	if !ok {
		return
	}

	tokens, err := h.config.Differ.ComputeTokens(req.OldXML, req.NewXML)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DiffResponse{Tokens: tokens})
}

func (h *diffHandler) handleOverlay(w http.ResponseWriter, r *http.Request) {
	req, ok := h.bindRequest(w, r)
	if !ok {
		return
	}

	result, err := h.overlay(req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// overlay computes tokens when the request omits them, then projects.
func (h *diffHandler) overlay(req *DiffRequest) (*OverlayResult, error) {
	tokens := req.Tokens
	if tokens == nil {
		var err error
		tokens, err = h.config.Differ.ComputeTokens(req.OldXML, req.NewXML)
		if err != nil {
			return nil, err
		}
	}

	result, err := h.config.Differ.ApplyOverlay(req.OldXML, req.NewXML, tokens)
	if err != nil {
		return nil, err
	}

	if h.config.Compact {
		result.OldXML = CompactXML(result.OldXML)
		result.NewXML = CompactXML(result.NewXML)
	}
	return result, nil
}

// bindRequest decodes and validates the request body, writing a 400 on
// failure.
func (h *diffHandler) bindRequest(w http.ResponseWriter, r *http.Request) (*DiffRequest, bool) {
	var req DiffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return nil, false
	}
	if err := validate.Struct(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return nil, false
	}
	for i, tok := range req.Tokens {
		if err := tok.Validate(); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("token %d: %v", i, err)})
			return nil, false
		}
	}
	return &req, true
}

func (h *diffHandler) handleLive(w http.ResponseWriter, r *http.Request) {
	conn, err := h.config.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	for {
		var req DiffRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("websocket read failed: %v", err)
			}
			return
		}

		result, err := h.overlay(&req)
		if err != nil {
			if writeErr := conn.WriteJSON(map[string]string{"error": err.Error()}); writeErr != nil {
				return
			}
			continue
		}
		if err := conn.WriteJSON(result); err != nil {
			return
		}
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrMalformedXML):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, ErrInvalidToken):
		status = http.StatusBadRequest
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}
