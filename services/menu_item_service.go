package services

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/food-delivery-web/apiclient"
	"github.com/yeremiapane/food-delivery-web/cache"
	"github.com/yeremiapane/food-delivery-web/catalog"
	"github.com/yeremiapane/food-delivery-web/forms"
	"github.com/yeremiapane/food-delivery-web/models"
	"github.com/yeremiapane/food-delivery-web/utils"
)

type MenuItemAPI interface {
	ListMenuItems(ctx context.Context, token, restaurantID string) ([]models.MenuItem, error)
	CreateMenuItem(ctx context.Context, token string, in apiclient.MenuItemInput) (*models.MenuItem, error)
	UpdateMenuItem(ctx context.Context, token, id string, in apiclient.MenuItemInput) (*models.MenuItem, error)
	DeleteMenuItem(ctx context.Context, token, id string) error
}

// MenuItemService is the menu counterpart of CategoryService.
type MenuItemService struct {
	api   MenuItemAPI
	cache cache.Cache
	lists collections[models.MenuItem]
}

func NewMenuItemService(api MenuItemAPI, c cache.Cache) *MenuItemService {
	if c == nil {
		c = cache.Nop{}
	}
	return &MenuItemService{api: api, cache: c}
}

func (s *MenuItemService) load(ctx context.Context, sess *models.Session, refresh bool) (*catalog.Collection[models.MenuItem], error) {
	rid, err := restaurantOf(sess)
	if err != nil {
		return nil, err
	}
	col := s.lists.get(rid)
	if col.Loaded() && !refresh {
		return col, nil
	}
	items, err := s.api.ListMenuItems(ctx, sess.UpstreamToken, rid)
	if err != nil {
		return nil, err
	}
	col.Load(items)
	utils.InfoLogger.WithFields(logrus.Fields{"restaurant": rid, "menu_items": col.Len()}).Info("Catalog loaded")
	return col, nil
}

func (s *MenuItemService) List(ctx context.Context, sess *models.Session, query string, refresh bool) ([]models.MenuItem, error) {
	col, err := s.load(ctx, sess, refresh)
	if err != nil {
		return nil, err
	}
	return col.View(query), nil
}

func (s *MenuItemService) Get(ctx context.Context, sess *models.Session, id string) (models.MenuItem, error) {
	col, err := s.load(ctx, sess, false)
	if err != nil {
		return models.MenuItem{}, err
	}
	m, ok := col.Get(id)
	if !ok {
		return models.MenuItem{}, ErrRecordNotFound
	}
	return m, nil
}

func menuItemInput(f *forms.MenuItem, restaurantID string) apiclient.MenuItemInput {
	in := apiclient.MenuItemInput{
		Name:         f.Name,
		Description:  f.Description,
		Price:        f.PriceValue(),
		CategoryID:   f.CategoryID,
		IsAvailable:  f.IsAvailable,
		RestaurantID: restaurantID,
	}
	for _, img := range []struct {
		field  forms.Field
		upload *forms.Upload
	}{
		{forms.FieldMainImage, f.MainImage},
		{forms.FieldThumbnail, f.Thumbnail},
	} {
		if img.upload == nil {
			continue
		}
		in.Images = append(in.Images, apiclient.FilePart{
			Field:       string(img.field),
			Filename:    img.upload.Filename,
			ContentType: img.upload.ContentType(),
			Data:        img.upload.Data,
		})
	}
	return in
}

func (s *MenuItemService) Create(ctx context.Context, sess *models.Session, f *forms.MenuItem) (*models.MenuItem, forms.Outcome) {
	f.Editing = false
	var col *catalog.Collection[models.MenuItem]
	var created *models.MenuItem
	out := forms.Submit(ctx, f, func(ctx context.Context) error {
		var err error
		if col, err = s.load(ctx, sess, false); err != nil {
			return err
		}
		created, err = s.api.CreateMenuItem(ctx, sess.UpstreamToken, menuItemInput(f, sess.RestaurantID))
		return err
	})
	recordOutcome("menu_item", out)
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

// Update keeps the stored images when the edit form sends none.
func (s *MenuItemService) Update(ctx context.Context, sess *models.Session, id string, f *forms.MenuItem) (*models.MenuItem, forms.Outcome) {
	f.Editing = true
	var col *catalog.Collection[models.MenuItem]
	var updated *models.MenuItem
	out := forms.Submit(ctx, f, func(ctx context.Context) error {
		var err error
		if col, err = s.load(ctx, sess, false); err != nil {
			return err
		}
		if _, ok := col.Get(id); !ok {
			return ErrRecordNotFound
		}
		updated, err = s.api.UpdateMenuItem(ctx, sess.UpstreamToken, id, menuItemInput(f, sess.RestaurantID))
		return err
	})
	recordOutcome("menu_item", out)
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

func (s *MenuItemService) Delete(ctx context.Context, sess *models.Session, id string) error {
	col, err := s.load(ctx, sess, false)
	if err != nil {
		return err
	}
	if err := s.api.DeleteMenuItem(ctx, sess.UpstreamToken, id); err != nil {
		return err
	}
	col.Remove(id)
	s.cache.Delete(ctx, cache.MenuKey(sess.RestaurantID))
	return nil
}
