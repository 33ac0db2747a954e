package models

import "time"

// Session is the server-side half of a signed-in browser. The cookie only carries ID.
type Session struct {
	ID            string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID        string    `gorm:"type:varchar(64);index;not null" json:"user_id"`
	Name          string    `gorm:"type:varchar(255)" json:"name"`
	Email         string    `gorm:"type:varchar(255);not null" json:"email"`
	Role          Role      `gorm:"type:varchar(20);not null" json:"role"`
	RestaurantID  string    `gorm:"type:varchar(64)" json:"restaurant_id,omitempty"`
	UpstreamToken string    `gorm:"type:text;not null" json:"-"`
	ExpiresAt     time.Time `gorm:"index;not null" json:"expires_at"`
	CreatedAt     time.Time `gorm:"not null" json:"created_at"`
}

func (s *Session) User() User {
	return User{ID: s.UserID, Name: s.Name, Email: s.Email, Role: s.Role}
}

func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
