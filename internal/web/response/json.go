package response

import (
	"encoding/json"
	"net/http"
)

// RenderJSON writes v as JSON. HTML characters are left
// unescaped so schema text matches the rendered head markup.
func RenderJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	writeJSON(w, statusCode, v)
}

// RenderHTML writes an HTML fragment
func RenderHTML(w http.ResponseWriter, statusCode int, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	_, _ = w.Write([]byte(body))
}

func writeJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}
