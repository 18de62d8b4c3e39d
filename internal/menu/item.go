package menu

import (
	"fmt"
	"net/url"
	"strings"

	pkgerrors "github.com/angelmondragon/counterpos/pkg/errors"
	"github.com/angelmondragon/counterpos/pkg/money"
	"github.com/shopspring/decimal"
)

const placeholderImageURL = "https://picsum.photos/seed/%s/400/400"

// Item is a purchasable product on the counter menu.
type Item struct {
	ID          int             `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Description string          `json:"description"`
}

// DisplayImage returns the item image, or the placeholder seeded by the item name.
func (i Item) DisplayImage() string {
	if strings.TrimSpace(i.Image) != "" {
		return i.Image
	}
	return PlaceholderImage(i.Name)
}

// PlaceholderImage is deterministic for a given name.
func PlaceholderImage(name string) string {
	seed := url.PathEscape(strings.ToLower(strings.TrimSpace(name)))
	return fmt.Sprintf(placeholderImageURL, seed)
}

// Input carries the editable fields of an item.
type Input struct {
	Name        string
	Price       decimal.Decimal
	Image       string
	Description string
}

func (in Input) normalize() (Input, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return Input{}, pkgerrors.New(pkgerrors.CodeValidation, "name is required").
			WithDetails(map[string]string{"name": "is required"})
	}
	price, err := money.Normalize(in.Price)
	if err != nil {
		return Input{}, err
	}
	in.Price = price
	in.Image = strings.TrimSpace(in.Image)
	in.Description = strings.TrimSpace(in.Description)
	return in, nil
}
