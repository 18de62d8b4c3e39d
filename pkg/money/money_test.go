package money

import (
	"testing"

	pkgerrors "github.com/angelmondragon/counterpos/pkg/errors"
	"github.com/shopspring/decimal"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{raw: "25", want: "25.00"},
		{raw: " 12.5 ", want: "12.50"},
		{raw: "0", want: "0.00"},
		{raw: "9.999", want: "10.00"},
		{raw: "", wantErr: true},
		{raw: "abc", wantErr: true},
		{raw: "-1", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParsePrice(tt.raw)
		if tt.wantErr {
			if !pkgerrors.Is(err, pkgerrors.CodeValidation) {
				t.Fatalf("ParsePrice(%q) expected validation error, got %v", tt.raw, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParsePrice(%q) unexpected error: %v", tt.raw, err)
		}
		if Fixed(got) != tt.want {
			t.Fatalf("ParsePrice(%q) = %s, want %s", tt.raw, Fixed(got), tt.want)
		}
	}
}

func TestFormatAndLineTotal(t *testing.T) {
	price := decimal.RequireFromString("25")
	if got := Format(LineTotal(price, 3)); got != "₹75.00" {
		t.Fatalf("unexpected formatted total %q", got)
	}
	if got := Format(decimal.Zero); got != "₹0.00" {
		t.Fatalf("unexpected zero format %q", got)
	}
}
