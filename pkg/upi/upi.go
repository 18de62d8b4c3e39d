// Package upi builds UPI payment request links and their QR codes.
package upi

import (
	"net/url"
	"strings"

	pkgerrors "github.com/angelmondragon/counterpos/pkg/errors"
	"github.com/angelmondragon/counterpos/pkg/money"
	"github.com/shopspring/decimal"
	qrcode "github.com/skip2/go-qrcode"
)

const (
	DefaultPayee  = "restaurant@upi"
	DefaultNote   = "Restaurant Payment"
	Currency      = "INR"
	DefaultQRSize = 256
	scheme        = "upi://pay"
	minQRSize     = 64
)

// Request describes a payment request. Only Payee and Amount are required.
type Request struct {
	Payee  string
	Name   string
	Amount decimal.Decimal
	Note   string
}

// Payment is a rendered request.
type Payment struct {
	URI    string `json:"uri"`
	Amount string `json:"amount"`
}

// Build renders req as upi://pay?pa=..&pn=..&am=..&cu=INR&tn=.. with the amount
// fixed to two decimals. Blank payee and note fall back to the defaults.
func Build(req Request) (Payment, error) {
	if req.Amount.IsNegative() {
		return Payment{}, pkgerrors.New(pkgerrors.CodeValidation, "payment amount must not be negative").
			WithDetails(map[string]string{"amount": "must not be negative"})
	}
	payee := strings.TrimSpace(req.Payee)
	if payee == "" {
		payee = DefaultPayee
	}
	note := strings.TrimSpace(req.Note)
	if note == "" {
		note = DefaultNote
	}
	amount := money.Fixed(req.Amount)

	var b strings.Builder
	b.WriteString(scheme)
	b.WriteString("?pa=")
	b.WriteString(escape(payee))
	if name := strings.TrimSpace(req.Name); name != "" {
		b.WriteString("&pn=")
		b.WriteString(escape(name))
	}
	b.WriteString("&am=")
	b.WriteString(amount)
	b.WriteString("&cu=")
	b.WriteString(Currency)
	b.WriteString("&tn=")
	b.WriteString(escape(note))

	return Payment{URI: b.String(), Amount: amount}, nil
}

// QRCode encodes uri as a PNG with the highest error correction level.
func QRCode(uri string, size int) ([]byte, error) {
	if size < minQRSize {
		size = DefaultQRSize
	}
	png, err := qrcode.Encode(uri, qrcode.Highest, size)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode payment qr code")
	}
	return png, nil
}

func escape(value string) string {
	escaped := url.QueryEscape(value)
	escaped = strings.ReplaceAll(escaped, "+", "%20")
	return strings.ReplaceAll(escaped, "%40", "@")
}
