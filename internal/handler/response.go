package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
)

const (
	contentTypeJSON = "application/json"
	contentTypeHTML = "text/html; charset=utf-8"
)

type timestampResponse struct {
	Timestamp int64 `json:"timestamp"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeBody sends a fully rendered body so Content-Length is exact.
func writeBody(w http.ResponseWriter, status int, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(status)
	w.Write(body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		writeEmpty(w, http.StatusInternalServerError)
		return
	}
	writeBody(w, status, contentTypeJSON, body)
}

// writeError answers 500 with {"error": message}.
func writeError(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: message})
}

func writeHTML(w http.ResponseWriter, body []byte) {
	writeBody(w, http.StatusOK, contentTypeHTML, body)
}

func writeEmpty(w http.ResponseWriter, status int) {
	w.WriteHeader(status)
}
