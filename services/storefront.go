package services

import (
	"context"

	"github.com/yeremiapane/food-delivery-web/cache"
	"github.com/yeremiapane/food-delivery-web/catalog"
	"github.com/yeremiapane/food-delivery-web/models"
)

type StorefrontAPI interface {
	ListRestaurants(ctx context.Context) ([]models.Restaurant, error)
	ListCategories(ctx context.Context, token, restaurantID string) ([]models.Category, error)
	ListMenuItems(ctx context.Context, token, restaurantID string) ([]models.MenuItem, error)
}

// Menu is the public view of one restaurant: its categories and orderable items.
type Menu struct {
	RestaurantID string            `json:"restaurantId"`
	Categories   []models.Category `json:"categories"`
	Items        []models.MenuItem `json:"items"`
}

// StorefrontService serves what anonymous customers browse. Reads go through the cache.
type StorefrontService struct {
	api   StorefrontAPI
	cache cache.Cache
}

func NewStorefrontService(api StorefrontAPI, c cache.Cache) *StorefrontService {
	if c == nil {
		c = cache.Nop{}
	}
	return &StorefrontService{api: api, cache: c}
}

// Restaurants lists the restaurants currently taking orders.
func (s *StorefrontService) Restaurants(ctx context.Context) ([]models.Restaurant, error) {
	var all []models.Restaurant
	if !s.cache.Get(ctx, cache.RestaurantsKey, &all) {
		var err error
		all, err = s.api.ListRestaurants(ctx)
		if err != nil {
			return nil, err
		}
		s.cache.Set(ctx, cache.RestaurantsKey, all)
	}

	open := make([]models.Restaurant, 0, len(all))
	for _, r := range all {
		if r.IsAvailable {
			open = append(open, r)
		}
	}
	return open, nil
}

func (s *StorefrontService) Menu(ctx context.Context, restaurantID string) (*Menu, error) {
	var m Menu
	if s.cache.Get(ctx, cache.MenuKey(restaurantID), &m) {
		return &m, nil
	}

	cats, err := s.api.ListCategories(ctx, "", restaurantID)
	if err != nil {
		return nil, err
	}
	items, err := s.api.ListMenuItems(ctx, "", restaurantID)
	if err != nil {
		return nil, err
	}

	m = Menu{RestaurantID: restaurantID, Categories: cats, Items: make([]models.MenuItem, 0, len(items))}
	for _, it := range items {
		if it.IsAvailable {
			m.Items = append(m.Items, it)
		}
	}
	catalog.SortByName(m.Categories)
	catalog.SortByName(m.Items)

	s.cache.Set(ctx, cache.MenuKey(restaurantID), m)
	return &m, nil
}
