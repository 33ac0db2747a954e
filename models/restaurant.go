package models

type Address struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	Province   string `json:"province"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

type Restaurant struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	OwnerName   string  `json:"ownerName,omitempty"`
	Description string  `json:"description,omitempty"`
	CuisineType string  `json:"cuisineType,omitempty"`
	Email       string  `json:"email,omitempty"`
	Phone       string  `json:"phone,omitempty"`
	Address     Address `json:"address"`
	ImageURL    string  `json:"imageUrl,omitempty"`
	Rating      float64 `json:"rating,omitempty"`
	IsAvailable bool    `json:"isAvailable"`
}
