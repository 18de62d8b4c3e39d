package menu

import "github.com/shopspring/decimal"

func seedItem(id int, name string, price int64, image, description string) Item {
	return Item{
		ID:          id,
		Name:        name,
		Price:       decimal.NewFromInt(price),
		Image:       image,
		Description: description,
	}
}

// DefaultItems is the catalog used when nothing usable is stored yet.
func DefaultItems() []Item {
	return []Item{
		seedItem(1, "Idly", 25, "https://images.unsplash.com/photo-1585937421612-70a008356fbe?w=800&q=80", "Soft rice cakes"),
		seedItem(2, "Puttu", 30, "https://images.unsplash.com/photo-1565299624946-b28f40a0ae38?w=800&q=80", "Steamed rice cake"),
		seedItem(3, "Dosa", 40, "https://images.unsplash.com/photo-1585937421612-70a008356fbe?w=800&q=80", "Crispy rice crepe"),
		seedItem(4, "Vada", 20, "https://images.unsplash.com/photo-1606503153255-59d8b8b2a8e1?w=800&q=80", "Fried lentil fritter"),
		seedItem(5, "Porrota", 15, "https://images.unsplash.com/photo-1551782450-17144efb9c50?w=800&q=80", "Flaky layered flatbread"),
		seedItem(6, "Samosa", 10, "https://images.unsplash.com/photo-1603133872878-684f208fb84b?w=800&q=80", "Fried pastry with filling"),
		seedItem(7, "Appam", 35, "https://images.unsplash.com/photo-1585937421612-70a008356fbe?w=800&q=80", "Fermented rice pancake"),
		seedItem(8, "Poori", 20, "https://images.unsplash.com/photo-1565299507177-b0ac66763828?w=800&q=80", "Deep fried bread"),
		seedItem(9, "Tea", 10, "https://images.unsplash.com/photo-1544787219-7f47ccb76574?w=800&q=80", "Hot tea"),
		seedItem(10, "Coffee", 15, "https://images.unsplash.com/photo-1461023058943-07fcbe16d735?w=800&q=80", "Hot coffee"),
	}
}
