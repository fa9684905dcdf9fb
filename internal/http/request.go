package http

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"

	"github.com/oapi-codegen/runtime"

	"github.com/tuanvumaihuynh/vending-machine/internal/apperr"
	"github.com/tuanvumaihuynh/vending-machine/internal/http/apierr"
)

const maxBodyBytes = 1 << 20

// decodeBody fills dst from a JSON or form encoded request body. Form fields
// are matched by json tag.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	mediaType := "application/x-www-form-urlencoded"
	if ct := r.Header.Get("Content-Type"); ct != "" {
		var err error
		mediaType, _, err = mime.ParseMediaType(ct)
		if err != nil {
			return apperr.ValidationErr.WithMsg("invalid content type").WrapParent(err)
		}
	}

	switch mediaType {
	case "application/json":
		if r.ContentLength == 0 {
			return nil
		}
		if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
			return apperr.ValidationErr.WithMsg("invalid JSON body").WrapParent(err)
		}
		return nil
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return apperr.ValidationErr.WithMsg("invalid form body").WrapParent(err)
		}
		return bindForm(dst, r.PostForm)
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
			return apperr.ValidationErr.WithMsg("invalid form body").WrapParent(err)
		}
		return bindForm(dst, r.MultipartForm.Value)
	default:
		return apperr.ValidationErr.WithMsg(fmt.Sprintf("unsupported content type %q", mediaType))
	}
}

func bindForm(dst any, form map[string][]string) error {
	if err := runtime.BindForm(dst, form, nil, nil); err != nil {
		return apperr.ValidationErr.WithMsg("invalid form body").WrapParent(err)
	}
	return nil
}

// paramErr reports a parameter that failed to parse as a validation error.
func paramErr(param string, err error) error {
	return apperr.ValidationErr.WrapParent(&apierr.ParamError{Param: param, Err: err})
}
