package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// MaxBodyBytes caps every decoded request body.
const MaxBodyBytes = 64 << 10

// ErrEmptyBody is returned by DecodeJSON when the body holds no JSON value.
var ErrEmptyBody = errors.New("empty body")

func DecodeJSON(body io.Reader, v interface{}) error {
	dec := json.NewDecoder(io.LimitReader(body, MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmptyBody
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("body must contain a single JSON object")
	}
	return nil
}

func ValidationDetails(errs validator.ValidationErrors) map[string]string {
	if len(errs) == 0 {
		return nil
	}
	details := make(map[string]string, len(errs))
	for _, err := range errs {
		details[err.Field()] = err.Tag()
	}
	return details
}

func ParseLimitOffset(values url.Values, defaultLimit, maxLimit int64) (int64, int64, error) {
	limit := defaultLimit
	offset := int64(0)

	if raw := strings.TrimSpace(values.Get("limit")); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			return 0, 0, errors.New("invalid limit")
		}
		limit = parsed
	}
	if raw := strings.TrimSpace(values.Get("offset")); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 0 {
			return 0, 0, errors.New("invalid offset")
		}
		offset = parsed
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return limit, offset, nil
}

// Page is the list envelope of the admin endpoints.
type Page[T any] struct {
	Items  []T   `json:"items"`
	Limit  int64 `json:"limit"`
	Offset int64 `json:"offset"`
	Total  int64 `json:"total"`
}

// Paginate slices items in memory. Items is never nil so it encodes as [].
func Paginate[T any](items []T, limit, offset int64) Page[T] {
	total := int64(len(items))
	page := Page[T]{Items: []T{}, Limit: limit, Offset: offset, Total: total}
	if offset < total {
		end := offset + limit
		if end > total {
			end = total
		}
		page.Items = items[offset:end]
	}
	return page
}
