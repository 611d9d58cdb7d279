// Package render writes API payloads as JSON or, when the client asks for it, msgpack.
package render

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	ContentTypeJSON    = "application/json"
	ContentTypeMsgpack = "application/msgpack"
)

// WantsMsgpack reports whether the Accept header prefers msgpack
func WantsMsgpack(r *http.Request) bool {
	for _, part := range strings.Split(r.Header.Get("Accept"), ",") {
		mt := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		if mt == ContentTypeMsgpack || mt == "application/x-msgpack" {
			return true
		}
	}
	return false
}

// encodeFailure is sent when a payload cannot be encoded
const encodeFailure = `{"error":"failed to encode response"}` + "\n"

// Write encodes data in the negotiated format.
// msgpack reuses the json struct tags so both encodings share field names.
// The body is encoded before the header is written, so an encoding failure
// becomes a 500 instead of a truncated response.
func Write(w http.ResponseWriter, r *http.Request, status int, data interface{}, log zerolog.Logger) {
	if r == nil || !WantsMsgpack(r) {
		JSON(w, status, data, log)
		return
	}

	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(data); err != nil {
		log.Error().Err(err).Msg("Failed to encode msgpack response")
		writeEncodeFailure(w)
		return
	}
	send(w, ContentTypeMsgpack, status, buf.Bytes())
}

// JSON writes a JSON response
func JSON(w http.ResponseWriter, status int, data interface{}, log zerolog.Logger) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(data); err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON response")
		writeEncodeFailure(w)
		return
	}
	send(w, ContentTypeJSON, status, buf.Bytes())
}

// Error writes {"error": message} with the given status
func Error(w http.ResponseWriter, r *http.Request, status int, message string, log zerolog.Logger) {
	Write(w, r, status, map[string]string{"error": message}, log)
}

func send(w http.ResponseWriter, contentType string, status int, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func writeEncodeFailure(w http.ResponseWriter) {
	send(w, ContentTypeJSON, http.StatusInternalServerError, []byte(encodeFailure))
}
