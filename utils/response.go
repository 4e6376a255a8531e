package utils

import (
	"encoding/json"
	"net/http"
)

// APIMessage is the shared {ok, message} envelope for errors and simple acks.
type APIMessage struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteMessage(w http.ResponseWriter, status int, ok bool, message string) {
	WriteJSON(w, status, APIMessage{OK: ok, Message: message})
}
