package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/DRSN-tech/product-catalog/pkg/e"
	"github.com/go-chi/chi/v5"
)

const (
	defaultPage     = 0
	defaultPageSize = 10
)

type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func NewErrorResponse(code int, message string) *ErrorResponse {
	return &ErrorResponse{
		Code:    code,
		Message: message,
	}
}

// validationErrors — ошибки, текст которых отдаётся клиенту как есть.
var validationErrors = []error{
	e.ErrCategoryRequired,
	e.ErrNameRequired,
	e.ErrCategoryMalformed,
	e.ErrNameMalformed,
	e.ErrInvalidPage,
	e.ErrInvalidPageSize,
	e.ErrInvalidProductID,
	e.ErrInvalidRequestBody,
}

func ToHTTPResponse(err error) (int, string) {
	switch {
	case errors.Is(err, e.ErrProductNotFound):
		return http.StatusNotFound, e.ErrProductNotFound.Error()
	case e.IsValidation(err):
		for _, target := range validationErrors {
			if errors.Is(err, target) {
				return http.StatusBadRequest, target.Error()
			}
		}
		return http.StatusBadRequest, e.ErrValidation.Error()
	default:
		return http.StatusInternalServerError, e.ErrInternalServerError.Error()
	}
}

func WriteError(w http.ResponseWriter, err error) {
	code, msg := ToHTTPResponse(err)
	WriteSuccess(w, code, NewErrorResponse(code, msg))
}

func WriteSuccess(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func parseProductID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, e.ErrInvalidProductID
	}

	return id, nil
}

// parseIntQuery возвращает def, если параметр не задан.
func parseIntQuery(r *http.Request, key string, def int, invalid error) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, invalid
	}

	return v, nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	const maxBodySize = 1 << 20

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err := dec.Decode(dst); err != nil {
		return e.Wrap(err.Error(), e.ErrInvalidRequestBody)
	}

	return nil
}
