package dto

import "github.com/angelmondragon/counterpos/api/validators"

// MenuItemRequest is the body of menu create and update calls.
type MenuItemRequest struct {
	Name        string            `json:"name" validate:"required,max=80"`
	Price       validators.Amount `json:"price" validate:"required"`
	Image       string            `json:"image" validate:"max=2048"`
	Description string            `json:"description" validate:"max=500"`
}

type AddToCartRequest struct {
	ItemID int `json:"item_id" validate:"required,min=1"`
}

type ChangeQuantityRequest struct {
	Delta int `json:"delta" validate:"required,min=-1000,max=1000"`
}

type ClearCartRequest struct {
	Confirm bool `json:"confirm"`
}
