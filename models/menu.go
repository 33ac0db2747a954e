package models

type MenuItem struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Price        float64 `json:"price"`
	CategoryID   string  `json:"categoryId"`
	ImageURL     string  `json:"imageUrl,omitempty"`
	ThumbnailURL string  `json:"thumbnailUrl,omitempty"`
	IsAvailable  bool    `json:"isAvailable"`
	RestaurantID string  `json:"restaurantId"`
}

func (m MenuItem) Key() string     { return m.ID }
func (m MenuItem) Title() string   { return m.Name }
func (m MenuItem) Summary() string { return m.Description }
