package session

import (
	"context"
	"errors"
	"time"

	"github.com/yeremiapane/food-delivery-web/models"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("session not found")

// Store persists sessions. The cookie only references them by id.
type Store interface {
	Create(ctx context.Context, s *models.Session) error
	Get(ctx context.Context, id string) (*models.Session, error)
	Delete(ctx context.Context, id string) error
	UpdateProfile(ctx context.Context, id, name, email string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

func (g *GormStore) Create(ctx context.Context, s *models.Session) error {
	return g.DB.WithContext(ctx).Create(s).Error
}

func (g *GormStore) Get(ctx context.Context, id string) (*models.Session, error) {
	var s models.Session
	if err := g.DB.WithContext(ctx).Where("id = ?", id).First(&s).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (g *GormStore) Delete(ctx context.Context, id string) error {
	return g.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Session{}).Error
}

func (g *GormStore) UpdateProfile(ctx context.Context, id, name, email string) error {
	return g.DB.WithContext(ctx).Model(&models.Session{}).Where("id = ?", id).
		Updates(map[string]interface{}{"name": name, "email": email}).Error
}

func (g *GormStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := g.DB.WithContext(ctx).Where("expires_at <= ?", now).Delete(&models.Session{})
	return res.RowsAffected, res.Error
}
