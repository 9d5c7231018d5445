package http

import (
	"net/http"

	"github.com/aussiebroadwan/brokerage/pkg/httpx"
	"github.com/aussiebroadwan/brokerage/pkg/validx"
)

// bind decodes the JSON body into dst and validates it. On failure the error
// response has been written and bind returns false.
func bind(w http.ResponseWriter, r *http.Request, v *validx.Validator, dst any) bool {
	if mt := httpx.MediaType(r); mt != "" && mt != "application/json" {
		writeError(w, r, httpx.ErrUnsupportedType)
		return false
	}

	if err := httpx.DecodeJSON(w, r, dst); err != nil {
		writeError(w, r, err)
		return false
	}

	if err := v.Struct(dst); err != nil {
		writeError(w, r, err)
		return false
	}
	return true
}
