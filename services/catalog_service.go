package services

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/food-delivery-web/apiclient"
	"github.com/yeremiapane/food-delivery-web/cache"
	"github.com/yeremiapane/food-delivery-web/catalog"
	"github.com/yeremiapane/food-delivery-web/forms"
	"github.com/yeremiapane/food-delivery-web/metrics"
	"github.com/yeremiapane/food-delivery-web/models"
	"github.com/yeremiapane/food-delivery-web/utils"
)

var ErrRecordNotFound = errors.New("record not found")

// collections holds one list per restaurant.
type collections[T catalog.Record] struct {
	mu   sync.Mutex
	byID map[string]*catalog.Collection[T]
}

func (c *collections[T]) get(restaurantID string) *catalog.Collection[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.byID == nil {
		c.byID = make(map[string]*catalog.Collection[T])
	}
	col, ok := c.byID[restaurantID]
	if !ok {
		col = catalog.NewCollection[T]()
		c.byID[restaurantID] = col
	}
	return col
}

func restaurantOf(sess *models.Session) (string, error) {
	if sess == nil || sess.RestaurantID == "" {
		return "", ErrNoRestaurant
	}
	return sess.RestaurantID, nil
}

func recordOutcome(form string, out forms.Outcome) {
	metrics.RecordFormSubmission(form, out.Label())
}

type CategoryAPI interface {
	ListCategories(ctx context.Context, token, restaurantID string) ([]models.Category, error)
	CreateCategory(ctx context.Context, token string, in apiclient.CategoryInput) (*models.Category, error)
	UpdateCategory(ctx context.Context, token, id string, in apiclient.CategoryInput) (*models.Category, error)
	DeleteCategory(ctx context.Context, token, id string) error
}

// CategoryService manages a restaurant's categories. The list is fetched once and then
// kept in step with each successful mutation, without refetching.
type CategoryService struct {
	api   CategoryAPI
	cache cache.Cache
	lists collections[models.Category]
}

func NewCategoryService(api CategoryAPI, c cache.Cache) *CategoryService {
	if c == nil {
		c = cache.Nop{}
	}
	return &CategoryService{api: api, cache: c}
}

func (s *CategoryService) load(ctx context.Context, sess *models.Session, refresh bool) (*catalog.Collection[models.Category], error) {
	rid, err := restaurantOf(sess)
	if err != nil {
		return nil, err
	}
	col := s.lists.get(rid)
	if col.Loaded() && !refresh {
		return col, nil
	}
	items, err := s.api.ListCategories(ctx, sess.UpstreamToken, rid)
	if err != nil {
		return nil, err
	}
	col.Load(items)
	utils.InfoLogger.WithFields(logrus.Fields{"restaurant": rid, "categories": col.Len()}).Info("Catalog loaded")
	return col, nil
}

// List returns the sorted categories whose name or description contains query.
func (s *CategoryService) List(ctx context.Context, sess *models.Session, query string, refresh bool) ([]models.Category, error) {
	col, err := s.load(ctx, sess, refresh)
	if err != nil {
		return nil, err
	}
	return col.View(query), nil
}

// Get returns a copy for the edit form.
func (s *CategoryService) Get(ctx context.Context, sess *models.Session, id string) (models.Category, error) {
	col, err := s.load(ctx, sess, false)
	if err != nil {
		return models.Category{}, err
	}
	c, ok := col.Get(id)
	if !ok {
		return models.Category{}, ErrRecordNotFound
	}
	return c, nil
}

// Create validates first; the list is only fetched once the form is valid.
func (s *CategoryService) Create(ctx context.Context, sess *models.Session, f *forms.Category) (*models.Category, forms.Outcome) {
	var col *catalog.Collection[models.Category]
	var created *models.Category
	out := forms.Submit(ctx, f, func(ctx context.Context) error {
		var err error
		if col, err = s.load(ctx, sess, false); err != nil {
			return err
		}
		created, err = s.api.CreateCategory(ctx, sess.UpstreamToken, apiclient.CategoryInput{
			Name:         f.Name,
			Description:  f.Description,
			RestaurantID: sess.RestaurantID,
		})
		return err
	})
	recordOutcome("category", out)
	if !out.OK() {
		return nil, out
	}

	if created.RestaurantID == "" {
		created.RestaurantID = sess.RestaurantID
	}
	col.Add(*created)
	s.cache.Delete(ctx, cache.MenuKey(sess.RestaurantID))
	return created, out
}

// Update only edits records already in this restaurant's list.
func (s *CategoryService) Update(ctx context.Context, sess *models.Session, id string, f *forms.Category) (*models.Category, forms.Outcome) {
	var col *catalog.Collection[models.Category]
	var updated *models.Category
	out := forms.Submit(ctx, f, func(ctx context.Context) error {
		var err error
		if col, err = s.load(ctx, sess, false); err != nil {
			return err
		}
		if _, ok := col.Get(id); !ok {
			return ErrRecordNotFound
		}
		updated, err = s.api.UpdateCategory(ctx, sess.UpstreamToken, id, apiclient.CategoryInput{
			Name:         f.Name,
			Description:  f.Description,
			RestaurantID: sess.RestaurantID,
		})
		return err
	})
	recordOutcome("category", out)
	if !out.OK() {
		return nil, out
	}

	updated.ID = id
	if updated.RestaurantID == "" {
		updated.RestaurantID = sess.RestaurantID
	}
	col.Replace(*updated)
	s.cache.Delete(ctx, cache.MenuKey(sess.RestaurantID))
	return updated, out
}

func (s *CategoryService) Delete(ctx context.Context, sess *models.Session, id string) error {
	col, err := s.load(ctx, sess, false)
	if err != nil {
		return err
	}
	if err := s.api.DeleteCategory(ctx, sess.UpstreamToken, id); err != nil {
		return err
	}
	col.Remove(id)
	s.cache.Delete(ctx, cache.MenuKey(sess.RestaurantID))
	return nil
}
