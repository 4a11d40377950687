package handlers

import (
	"net/http"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/wonny/clientwatch/internal/calendar"
)

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// respondMarkdown writes a rendered markdown document
func respondMarkdown(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(body))
}

// asOfParam reads ?as_of=YYYY-MM-DD; absent means today on the monitor clock
func asOfParam(r *http.Request) (calendar.Date, error) {
	s := r.URL.Query().Get("as_of")
	if s == "" {
		return calendar.Date{}, nil
	}
	return calendar.Parse(s)
}

// boolParam reads a boolean query flag; absent is false
func boolParam(r *http.Request, name string) (bool, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return false, nil
	}
	return strconv.ParseBool(s)
}
