package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"raffle/utils"
)

// ValidateJSON decodes a JSON payload into dst and runs the struct validator,
// writing the error response itself when either step fails.
func ValidateJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	if ct := r.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "application/json") {
		utils.WriteMessage(w, http.StatusUnsupportedMediaType, false, "Content-Type must be application/json")
		return http.ErrNotSupported
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		utils.WriteMessage(w, http.StatusBadRequest, false, "Invalid JSON body")
		return err
	}
	if err := utils.ValidateStruct(dst); err != nil {
		utils.WriteMessage(w, http.StatusBadRequest, false, err.Error())
		return err
	}
	return nil
}
