package utils

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
)

// MsgpackContentType is served when the client asks for it in Accept.
const MsgpackContentType = "application/msgpack"

// WantsMsgpack reports whether the request prefers a msgpack body.
func WantsMsgpack(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, MsgpackContentType) || strings.Contains(accept, "application/x-msgpack")
}

// WriteResponse encodes data as msgpack or JSON depending on the request's Accept header.
func WriteResponse(w http.ResponseWriter, r *http.Request, status int, data interface{}, log zerolog.Logger) {
	if r != nil && WantsMsgpack(r) {
		body, err := msgpack.Marshal(data)
		if err != nil {
			log.Error().Err(err).Msg("Failed to encode msgpack response")
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", MsgpackContentType)
		w.WriteHeader(status)
		if _, err := w.Write(body); err != nil {
			log.Error().Err(err).Msg("Failed to write msgpack response")
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// WriteError writes an {"error": message} body.
func WriteError(w http.ResponseWriter, r *http.Request, status int, message string, log zerolog.Logger) {
	WriteResponse(w, r, status, map[string]string{"error": message}, log)
}
