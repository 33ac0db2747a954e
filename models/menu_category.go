package models

type Category struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	RestaurantID string `json:"restaurantId"`
}

func (c Category) Key() string     { return c.ID }
func (c Category) Title() string   { return c.Name }
func (c Category) Summary() string { return c.Description }
