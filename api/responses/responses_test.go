package responses

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/angelmondragon/counterpos/pkg/errors"
	"github.com/angelmondragon/counterpos/pkg/logger"
	"github.com/angelmondragon/counterpos/pkg/types"
)

func TestWriteSuccess(t *testing.T) {
	w := httptest.NewRecorder()
	WriteSuccessStatus(w, http.StatusCreated, map[string]string{"hello": "world"})

	if got := w.Code; got != http.StatusCreated {
		t.Fatalf("expected status 201 but got %d", got)
	}

	var body types.SuccessEnvelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode success envelope: %v", err)
	}
	if body.Data.(map[string]any)["hello"] != "world" {
		t.Fatalf("unexpected payload %v", body.Data)
	}
}

func TestWriteErrorMapsTypedError(t *testing.T) {
	w := httptest.NewRecorder()
	err := pkgerrors.New(pkgerrors.CodeValidation, "bad input").
		WithDetails(map[string]string{"field": "demo"})
	WriteError(context.Background(), nil, w, err)

	if got := w.Code; got != http.StatusBadRequest {
		t.Fatalf("expected status 400 but got %d", got)
	}

	var body types.ErrorEnvelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error envelope: %v", err)
	}
	if body.Error.Code != string(pkgerrors.CodeValidation) || body.Error.Message != "bad input" {
		t.Fatalf("unexpected error %+v", body.Error)
	}
	if body.Error.Details == nil {
		t.Fatalf("expected details in public payload")
	}
}

func TestWriteErrorDomainCodes(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{pkgerrors.New(pkgerrors.CodeEmptyCart, "cart is empty"), http.StatusUnprocessableEntity},
		{pkgerrors.New(pkgerrors.CodeConfirmationRequired, "confirm"), http.StatusPreconditionRequired},
		{pkgerrors.New(pkgerrors.CodeNotFound, "bill not found"), http.StatusNotFound},
		{pkgerrors.Wrap(pkgerrors.CodeStorage, errors.New("dial tcp"), "write cart"), http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		WriteError(context.Background(), nil, w, tc.err)
		if w.Code != tc.status {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.status, w.Code)
		}
	}
}

func TestWriteErrorDefaultsToInternalForUntrustedErrors(t *testing.T) {
	var logs bytes.Buffer
	logg := logger.New(logger.Options{ServiceName: "test", Output: &logs})
	w := httptest.NewRecorder()
	WriteError(context.Background(), logg, w, errors.New("boom"))

	if got := w.Code; got != http.StatusInternalServerError {
		t.Fatalf("expected status 500 but got %d", got)
	}

	var body types.ErrorEnvelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error envelope: %v", err)
	}
	if body.Error.Code != string(pkgerrors.CodeInternal) {
		t.Fatalf("unexpected code %s", body.Error.Code)
	}
	if body.Error.Details != nil {
		t.Fatalf("details should be omitted for internal errors")
	}
	if !strings.Contains(logs.String(), "request.error") {
		t.Fatalf("expected error to be logged, got %s", logs.String())
	}
}

func TestWriteTextAndPNG(t *testing.T) {
	w := httptest.NewRecorder()
	WriteText(w, "Bill: #1")
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") || w.Body.String() != "Bill: #1" {
		t.Fatalf("unexpected text response %q %q", ct, w.Body.String())
	}

	w = httptest.NewRecorder()
	WritePNG(w, []byte{0x89, 'P', 'N', 'G'})
	if w.Header().Get("Content-Type") != "image/png" || w.Body.Len() != 4 {
		t.Fatalf("unexpected png response")
	}
}
