package controllers

import (
	"net/http"

	"github.com/angelmondragon/counterpos/api/responses"
	"github.com/angelmondragon/counterpos/api/validators"
	"github.com/angelmondragon/counterpos/internal/analytics"
	"github.com/angelmondragon/counterpos/internal/pos"
	pkgerrors "github.com/angelmondragon/counterpos/pkg/errors"
	"github.com/angelmondragon/counterpos/pkg/logger"
)

// BillsList returns the bill history; view is daily (default) or monthly.
func BillsList(svc pos.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pos service unavailable"))
			return
		}

		view, err := analytics.ParseView(r.URL.Query().Get("view"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, svc.Bills(r.Context(), view))
	}
}

func BillDetail(svc pos.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pos service unavailable"))
			return
		}

		id, err := validators.ParsePathID(r, "billId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, err := svc.Bill(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

// BillPrint returns the text slip of a recorded bill.
func BillPrint(svc pos.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pos service unavailable"))
			return
		}

		id, err := validators.ParsePathID(r, "billId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		slip, err := svc.PrintBill(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteText(w, slip)
	}
}
