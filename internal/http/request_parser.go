package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"pocketbook/internal/core"
)

// maxBodyBytes caps request bodies; every payload is a handful of fields.
const maxBodyBytes = 16 << 10

type navigateRequest struct {
	Screen string `json:"screen"`
}

type keypadRequest struct {
	Key string `json:"key"`
}

type transactionRequest struct {
	Name string `json:"name"`
}

type dictionaryItemRequest struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	MinPrice int64  `json:"minPrice"`
	MaxPrice int64  `json:"maxPrice"`
}

func (d dictionaryItemRequest) item() core.RecommendationItem {
	return core.RecommendationItem{
		ID:       strings.TrimSpace(d.ID),
		Name:     sanitizeInput(d.Name),
		MinPrice: d.MinPrice,
		MaxPrice: d.MaxPrice,
	}
}

// decodeJSON reads exactly one JSON object from the body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return errors.New("request body is empty")
		case errors.As(err, &maxErr):
			return fmt.Errorf("request body exceeds %d bytes", maxErr.Limit)
		default:
			return fmt.Errorf("malformed JSON: %w", err)
		}
	}
	if dec.More() {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}

// sanitizeInput drops control characters other than tab and newlines and
// trims surrounding whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
}
