// Package respond writes API responses as JSON or MessagePack.
package respond

import (
	"encoding/json"
	"net/http"
	"strings"

	"GeoSuite/internal/log"

	"github.com/vmihailenco/msgpack/v5"
)

const MsgPackType = "application/x-msgpack"

type errorBody struct {
	Error string `json:"error"`
}

// Write encodes data with the status code, using MessagePack when the client
// asks for it and JSON otherwise.
func Write(w http.ResponseWriter, r *http.Request, status int, data any) {
	if wantsMsgPack(r) {
		w.Header().Set("Content-Type", MsgPackType)
		w.WriteHeader(status)
		enc := msgpack.NewEncoder(w)
		enc.SetCustomStructTag("json")
		if err := enc.Encode(data); err != nil {
			log.Errorf("encoding msgpack response: %v", err)
		}
		return
	}
	body, err := json.Marshal(data)
	if err != nil {
		log.Errorf("encoding json response: %v", err)
		http.Error(w, "Encoding error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
	w.Write([]byte("\n"))
}

func OK(w http.ResponseWriter, r *http.Request, data any) {
	Write(w, r, http.StatusOK, data)
}

// Error writes {"error": msg}.
func Error(w http.ResponseWriter, r *http.Request, status int, msg string) {
	Write(w, r, status, errorBody{Error: msg})
}

// File writes a binary attachment.
func File(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	if filename != "" {
		w.Header().Set("Content-Disposition", "attachment; filename=\""+filename+"\"")
	}
	if _, err := w.Write(body); err != nil {
		log.Errorf("writing %s: %v", filename, err)
	}
}

func wantsMsgPack(r *http.Request) bool {
	return r != nil && strings.Contains(r.Header.Get("Accept"), MsgPackType)
}
