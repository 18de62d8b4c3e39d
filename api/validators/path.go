package validators

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	pkgerrors "github.com/angelmondragon/counterpos/pkg/errors"
)

// ParsePathID reads a positive integer identifier from the chi URL parameter key.
func ParsePathID(r *http.Request, key string) (int, error) {
	raw := strings.TrimSpace(chi.URLParam(r, key))
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "invalid identifier").
			WithDetails(map[string]any{"field": key, "value": raw})
	}
	return id, nil
}
