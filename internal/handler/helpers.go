package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	internal_errors "github.com/seojin-dev/goboard/internal/errors"
	"github.com/seojin-dev/goboard/internal/logger"
)

const defaultPage = 1

func writeErrorAndStatusCode(w http.ResponseWriter, err error) {
	switch e := err.(type) {
	case *internal_errors.ErrorWithStatusCode:
		http.Error(w, e.Message, e.StatusCode)
	case *internal_errors.ValidationError:
		http.Error(w, e.Error(), http.StatusBadRequest)
	default:
		// default error is 500
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func decodeValidate(r io.ReadCloser, body any) error {
	if err := json.NewDecoder(r).Decode(body); err != nil {
		logger.Log.Debug("invalid request body", "error", err)
		return &internal_errors.ErrorWithStatusCode{Message: "Body is invalid json", StatusCode: http.StatusBadRequest}
	}
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(body); err != nil {
		logger.Log.Debug("request body failed validation", "error", err)
		return &internal_errors.ErrorWithStatusCode{Message: "Required fields missing", StatusCode: http.StatusBadRequest}
	}
	return nil
}

// getIP resolves the client address, trusting proxy headers first.
func getIP(r *http.Request) (string, error) {
	ip := r.Header.Get("X-REAL-IP")
	if net.ParseIP(ip) != nil {
		return ip, nil
	}

	for _, ip := range strings.Split(r.Header.Get("X-FORWARDED-FOR"), ",") {
		ip = strings.TrimSpace(ip)
		if net.ParseIP(ip) != nil {
			return ip, nil
		}
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return "", err
	}
	if net.ParseIP(ip) != nil {
		return ip, nil
	}
	return "", fmt.Errorf("no valid ip found")
}

func parseIntParam(param string, paramName string) (int, error) {
	val, err := strconv.Atoi(param)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: must be an integer", paramName)
	}
	return val, nil
}

func urlParamId(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		return 0, &internal_errors.ErrorWithStatusCode{Message: fmt.Sprintf("invalid %s: must be an integer", name), StatusCode: http.StatusBadRequest}
	}
	return id, nil
}

// pageParams reads ?page and ?limit, falling back to page 1 and the
// configured page size.
func (h *Handler) pageParams(r *http.Request) (page, limit int, err error) {
	page = defaultPage
	if raw := r.URL.Query().Get("page"); raw != "" {
		if page, err = parseIntParam(raw, "page"); err != nil {
			return 0, 0, &internal_errors.ErrorWithStatusCode{Message: err.Error(), StatusCode: http.StatusBadRequest}
		}
	}
	limit = h.cfg.Public.PostsPerPage
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if limit, err = parseIntParam(raw, "limit"); err != nil {
			return 0, 0, &internal_errors.ErrorWithStatusCode{Message: err.Error(), StatusCode: http.StatusBadRequest}
		}
	}
	return page, limit, nil
}
