package controllers

import (
	"net/http"

	"github.com/angelmondragon/counterpos/api/controllers/dto"
	"github.com/angelmondragon/counterpos/api/responses"
	"github.com/angelmondragon/counterpos/api/validators"
	"github.com/angelmondragon/counterpos/internal/menu"
	"github.com/angelmondragon/counterpos/internal/pos"
	pkgerrors "github.com/angelmondragon/counterpos/pkg/errors"
	"github.com/angelmondragon/counterpos/pkg/logger"
	"github.com/angelmondragon/counterpos/pkg/money"
)

// MenuList returns the menu in insertion order.
func MenuList(svc pos.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pos service unavailable"))
			return
		}
		responses.WriteSuccess(w, svc.Menu(r.Context()))
	}
}

// MenuCreate adds an item to the menu.
func MenuCreate(svc pos.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pos service unavailable"))
			return
		}

		input, err := decodeMenuItem(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.CreateItem(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// MenuUpdate replaces the editable fields of an item.
func MenuUpdate(svc pos.Service, logg *logger.Logger) http.HandlerFunc {
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
		input, err := decodeMenuItem(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.UpdateItem(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// MenuDelete removes an item and its cart line. Unknown ids succeed with removed=false.
func MenuDelete(svc pos.Service, logg *logger.Logger) http.HandlerFunc {
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

		result, err := svc.DeleteItem(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func decodeMenuItem(r *http.Request) (menu.Input, error) {
	var payload dto.MenuItemRequest
	if err := validators.DecodeJSONBody(r, &payload); err != nil {
		return menu.Input{}, err
	}
	price, err := money.ParsePrice(string(payload.Price))
	if err != nil {
		return menu.Input{}, err
	}
	return menu.Input{
		Name:        validators.SanitizeString(payload.Name, 80),
		Price:       price,
		Image:       validators.SanitizeString(payload.Image, 2048),
		Description: validators.SanitizeString(payload.Description, 500),
	}, nil
}
