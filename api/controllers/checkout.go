package controllers

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/counterpos/api/responses"
	"github.com/angelmondragon/counterpos/internal/pos"
	pkgerrors "github.com/angelmondragon/counterpos/pkg/errors"
	"github.com/angelmondragon/counterpos/pkg/logger"
)

// CheckoutPay records a bill and returns the UPI payment request for it.
func CheckoutPay(svc pos.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pos service unavailable"))
			return
		}

		result, err := svc.Pay(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// CheckoutPrint records a bill, returns its printable slip and clears the cart.
// Clients asking for text/plain receive the slip alone.
func CheckoutPrint(svc pos.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pos service unavailable"))
			return
		}

		result, err := svc.Print(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if wantsText(r) {
			responses.WriteText(w, result.Printable)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// CheckoutPaymentCode renders the current cart's payment request as a QR PNG,
// or as JSON when format=json.
func CheckoutPaymentCode(svc pos.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pos service unavailable"))
			return
		}

		code, err := svc.PaymentCode(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if strings.EqualFold(r.URL.Query().Get("format"), "json") {
			responses.WriteSuccess(w, code.Payment)
			return
		}
		responses.WritePNG(w, code.PNG)
	}
}

func wantsText(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "text/plain") && !strings.Contains(accept, "application/json")
}
