package pos

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/zombor/swiftcart/internal/cart"
	"github.com/zombor/swiftcart/internal/catalog"
	"github.com/zombor/swiftcart/internal/detect"
)

// corsError writes an error response with CORS headers set
func corsError(w http.ResponseWriter, message string, code int) {
	setCORSHeaders(w)
	http.Error(w, message, code)
}

// setCORSHeaders sets CORS headers on a response
func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.Header().Set("Access-Control-Max-Age", "3600")
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

func jsonError(w http.ResponseWriter, message string, code int) {
	setCORSHeaders(w)
	writeJSON(w, code, map[string]string{"error": message})
}

// handleIndex serves the HTML interface
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexHTML)
}

// handleCatalog returns the product catalog
func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, catalog.Products())
}

// cartResponse is the JSON shape of the cart
type cartResponse struct {
	Items        []cart.Entry `json:"items"`
	TotalCents   int          `json:"total_cents"`
	TotalDisplay string       `json:"total_display"`
}

func (s *Server) cartResponse() cartResponse {
	total := s.store.TotalCents()
	return cartResponse{
		Items:        s.store.Items(),
		TotalCents:   total,
		TotalDisplay: cart.FormatCents(total),
	}
}

// handleGetCart returns the cart contents and total
func (s *Server) handleGetCart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.cartResponse())
}

// handleAddCartItem adds one catalog product to the cart
func (s *Server) handleAddCartItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID int `json:"product_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		corsError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	product, ok := catalog.ByID(req.ProductID)
	if !ok {
		jsonError(w, "Unknown product", http.StatusNotFound)
		return
	}

	s.store.Add(product)
	writeJSON(w, http.StatusCreated, s.cartResponse())
}

// handleClearCart empties the cart
func (s *Server) handleClearCart(w http.ResponseWriter, r *http.Request) {
	s.store.Clear()
	w.WriteHeader(http.StatusNoContent)
}

// detectionResponse is the JSON shape of the simulator state
type detectionResponse struct {
	Active  bool            `json:"active"`
	Regions []detect.Region `json:"regions"`
}

func (s *Server) detectionResponse() detectionResponse {
	return detectionResponse{
		Active:  s.simulator.Active(),
		Regions: s.simulator.Regions(),
	}
}

// handleStartDetection activates the detection simulator. Starting the camera
// is a new user action, so any lingering identification state is cleared.
func (s *Server) handleStartDetection(w http.ResponseWriter, r *http.Request) {
	s.workflow.Gate().Reset()
	s.simulator.Start()
	writeJSON(w, http.StatusOK, s.detectionResponse())
}

// handleStopDetection deactivates the detection simulator
func (s *Server) handleStopDetection(w http.ResponseWriter, r *http.Request) {
	s.simulator.Stop()
	writeJSON(w, http.StatusOK, s.detectionResponse())
}

// handleGetDetection returns the simulator state and visible regions
func (s *Server) handleGetDetection(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.detectionResponse())
}

// gateResponse is the JSON shape of the confirmation gate
type gateResponse struct {
	State   string              `json:"state"`
	Pending *detect.PendingItem `json:"pending,omitempty"`
	Error   string              `json:"error,omitempty"`
}

func (s *Server) gateResponse() gateResponse {
	gate := s.workflow.Gate()
	resp := gateResponse{State: gate.State().String()}
	if item, ok := gate.Pending(); ok {
		resp.Pending = &item
	}
	if message, ok := gate.Failure(); ok {
		resp.Error = message
	}
	return resp
}

// handleIdentify accepts an image upload and runs identification
func (s *Server) handleIdentify(w http.ResponseWriter, r *http.Request) {
	// Parse multipart form (max 50MB to handle high-resolution phone photos)
	maxFormSize := int64(50 << 20) // 50MB
	if err := r.ParseMultipartForm(maxFormSize); err != nil {
		slog.Error("Error parsing multipart form", "error", err)
		jsonError(w, "Error parsing form", http.StatusBadRequest)
		return
	}

	f, header, err := r.FormFile("file")
	if err != nil {
		slog.Error("Error getting file from form", "error", err)
		jsonError(w, "No file was selected. Please choose a file to upload.", http.StatusBadRequest)
		return
	}
	defer f.Close()

	if header.Size > maxFormSize {
		jsonError(w, "File is too large. Maximum size is 50MB.", http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(f)
	if err != nil {
		slog.Error("Error reading file data", "error", err, "filename", header.Filename)
		jsonError(w, "Error reading file. Please try again.", http.StatusInternalServerError)
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = contentTypeForFilename(header.Filename)
	}
	contentType = strings.ToLower(strings.TrimSpace(contentType))

	// Uploading an image supersedes the live camera view
	s.simulator.Stop()
	s.workflow.Analyze(data, contentType)

	writeJSON(w, http.StatusOK, s.gateResponse())
}

// contentTypeForFilename maps common upload extensions to media types
func contentTypeForFilename(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".pdf":
		return "application/pdf"
	case ".heic":
		return "image/heic"
	case ".heif":
		return "image/heif"
	}
	return "application/octet-stream"
}

// handleIdentifyState returns the confirmation gate state
func (s *Server) handleIdentifyState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.gateResponse())
}

// handleConfirm adds the pending candidate to the cart
func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	item, ok := s.workflow.Confirm()
	if !ok {
		jsonError(w, "No pending item to confirm", http.StatusConflict)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"confirmed": item,
		"cart":      s.cartResponse(),
	})
}

// handleDiscard drops the pending candidate
func (s *Server) handleDiscard(w http.ResponseWriter, r *http.Request) {
	if !s.workflow.Discard() {
		jsonError(w, "No pending item to discard", http.StatusConflict)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleVoice interprets a recognized utterance
func (s *Server) handleVoice(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Transcript string `json:"transcript"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		corsError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	response := s.assistant.HandleTranscript(req.Transcript)
	writeJSON(w, http.StatusOK, map[string]string{
		"transcript": req.Transcript,
		"response":   response,
	})
}

// handleSuggestion returns the current product suggestion
func (s *Server) handleSuggestion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"suggestion": s.refresher.Current(),
	})
}
