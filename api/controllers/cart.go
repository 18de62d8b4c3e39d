package controllers

import (
	"net/http"

	"github.com/angelmondragon/counterpos/api/controllers/dto"
	"github.com/angelmondragon/counterpos/api/responses"
	"github.com/angelmondragon/counterpos/api/validators"
	"github.com/angelmondragon/counterpos/internal/pos"
	pkgerrors "github.com/angelmondragon/counterpos/pkg/errors"
	"github.com/angelmondragon/counterpos/pkg/logger"
)

// CartFetch returns the current order with its total.
func CartFetch(svc pos.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pos service unavailable"))
			return
		}
		responses.WriteSuccess(w, svc.Cart(r.Context()))
	}
}

func CartAddItem(svc pos.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pos service unavailable"))
			return
		}

		var payload dto.AddToCartRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.AddToCart(r.Context(), payload.ItemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func CartChangeQuantity(svc pos.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pos service unavailable"))
			return
		}

		id, err := validators.ParsePathID(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload dto.ChangeQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ChangeQuantity(r.Context(), id, payload.Delta)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func CartRemoveItem(svc pos.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pos service unavailable"))
			return
		}

		id, err := validators.ParsePathID(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.RemoveLine(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// CartClear empties the cart. A non-empty cart needs {"confirm": true}.
func CartClear(svc pos.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pos service unavailable"))
			return
		}

		var payload dto.ClearCartRequest
		if err := validators.DecodeOptionalJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ClearCart(r.Context(), payload.Confirm)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
