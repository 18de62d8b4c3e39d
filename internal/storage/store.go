// Package storage defines the key-value contract the POS collections persist through.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	pkgerrors "github.com/angelmondragon/counterpos/pkg/errors"
)

// Keys of the three persisted collections.
const (
	KeyMenuItems = "menuItems"
	KeyCart      = "cart"
	KeyBills     = "bills"
)

// ErrDecode marks a stored document that exists but is not valid JSON for its collection.
var ErrDecode = errors.New("stored document is malformed")

// ErrUnavailable marks a write refused because the stored document was never loaded.
// Writing would replace records this process has not seen.
var ErrUnavailable = errors.New("stored document could not be loaded")

// Store reads and writes raw JSON documents by key.
type Store interface {
	// Read returns found=false when the key has never been written.
	Read(ctx context.Context, key string) (value string, found bool, err error)
	Write(ctx context.Context, key, value string) error
}

// Pinger exposes the readiness check for a backend.
type Pinger interface {
	Ping(ctx context.Context) error
}

// LoadJSON decodes the document at key into dest. It returns found=false for a
// missing or blank value, leaving dest untouched.
func LoadJSON(ctx context.Context, s Store, key string, dest any) (bool, error) {
	raw, found, err := s.Read(ctx, key)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "read "+key)
	}
	if !found || strings.TrimSpace(raw) == "" {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return true, pkgerrors.Wrap(pkgerrors.CodeStorage, fmt.Errorf("%w: %v", ErrDecode, err), "decode "+key)
	}
	return true, nil
}

// Unavailable reports that key must not be written until it loads successfully.
func Unavailable(key string, cause error) error {
	return pkgerrors.Wrap(pkgerrors.CodeStorage, fmt.Errorf("%w: %v", ErrUnavailable, cause), key+" unavailable until the store can be read")
}

// SaveJSON encodes value and writes it at key.
func SaveJSON(ctx context.Context, s Store, key string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode "+key)
	}
	if err := s.Write(ctx, key, string(payload)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "write "+key)
	}
	return nil
}
