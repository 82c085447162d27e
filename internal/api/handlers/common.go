// Package handlers implements the HTTP surface over the Argumentation
// Core: submitting evidence for resolution and querying the Domain
// Memory Store.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func nowUnix() int64 {
	return time.Now().Unix()
}
