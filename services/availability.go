package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/food-delivery-web/apiclient"
	"github.com/yeremiapane/food-delivery-web/cache"
	"github.com/yeremiapane/food-delivery-web/forms"
	"github.com/yeremiapane/food-delivery-web/metrics"
	"github.com/yeremiapane/food-delivery-web/models"
	"github.com/yeremiapane/food-delivery-web/notify"
	"github.com/yeremiapane/food-delivery-web/utils"
)

type Phase string

const (
	PhasePending    Phase = "pending"
	PhaseConfirmed  Phase = "confirmed"
	PhaseRolledBack Phase = "rolled_back"
)

var (
	ErrTogglePending = errors.New("an availability change is already in progress")
	ErrNoRestaurant  = errors.New("no restaurant is linked to this account")
)

// AvailabilityState is what the back office renders for the open/closed switch.
type AvailabilityState struct {
	RestaurantID string    `json:"restaurantId"`
	Available    bool      `json:"isAvailable"`
	Phase        Phase     `json:"phase"`
	Error        string    `json:"error,omitempty"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type RestaurantAPI interface {
	MyRestaurant(ctx context.Context, token string) (*models.Restaurant, error)
	SetRestaurantAvailability(ctx context.Context, token, id string, available bool) error
}

// AvailabilityToggler flips a restaurant's availability optimistically: the new value
// is shown at once and reverted if the upstream call fails.
type AvailabilityToggler struct {
	api      RestaurantAPI
	notifier notify.Notifier
	cache    cache.Cache
	timeout  time.Duration
	now      func() time.Time

	mu     sync.Mutex
	states map[string]*AvailabilityState
	wg     sync.WaitGroup
}

// NewAvailabilityToggler drops the cached restaurant marquee from c whenever a toggle
// is confirmed. c may be nil.
func NewAvailabilityToggler(api RestaurantAPI, notifier notify.Notifier, c cache.Cache, timeout time.Duration) *AvailabilityToggler {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if c == nil {
		c = cache.Nop{}
	}
	return &AvailabilityToggler{
		api:      api,
		notifier: notifier,
		cache:    c,
		timeout:  timeout,
		now:      time.Now,
		states:   make(map[string]*AvailabilityState),
	}
}

// Seed records a value known from elsewhere, e.g. a profile fetch. A pending toggle wins.
func (a *AvailabilityToggler) Seed(restaurantID string, available bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if st, ok := a.states[restaurantID]; ok && st.Phase == PhasePending {
		return
	}
	a.states[restaurantID] = &AvailabilityState{
		RestaurantID: restaurantID,
		Available:    available,
		Phase:        PhaseConfirmed,
		UpdatedAt:    a.now(),
	}
}

// State returns the current value, fetching the restaurant the first time.
func (a *AvailabilityToggler) State(ctx context.Context, sess *models.Session) (AvailabilityState, error) {
	if sess.RestaurantID == "" {
		return AvailabilityState{}, ErrNoRestaurant
	}

	a.mu.Lock()
	if st, ok := a.states[sess.RestaurantID]; ok {
		out := *st
		a.mu.Unlock()
		return out, nil
	}
	a.mu.Unlock()

	r, err := a.api.MyRestaurant(ctx, sess.UpstreamToken)
	if err != nil {
		return AvailabilityState{}, fmt.Errorf("load restaurant: %w", err)
	}
	a.Seed(sess.RestaurantID, r.IsAvailable)

	a.mu.Lock()
	defer a.mu.Unlock()
	return *a.states[sess.RestaurantID], nil
}

// Toggle flips the value and returns the pending state before the upstream call
// resolves. The outcome is pushed to the user as an availability_update event.
func (a *AvailabilityToggler) Toggle(ctx context.Context, sess *models.Session) (AvailabilityState, error) {
	if _, err := a.State(ctx, sess); err != nil {
		return AvailabilityState{}, err
	}

	a.mu.Lock()
	st := a.states[sess.RestaurantID]
	if st.Phase == PhasePending {
		a.mu.Unlock()
		return AvailabilityState{}, ErrTogglePending
	}
	prior := st.Available
	st.Available = !prior
	st.Phase = PhasePending
	st.Error = ""
	st.UpdatedAt = a.now()
	pending := *st
	a.mu.Unlock()

	a.wg.Add(1)
	go a.resolve(sess.UserID, sess.UpstreamToken, sess.RestaurantID, prior)
	return pending, nil
}

func (a *AvailabilityToggler) resolve(userID, token, restaurantID string, prior bool) {
	defer a.wg.Done()

	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()
	err := a.api.SetRestaurantAvailability(ctx, token, restaurantID, !prior)

	a.mu.Lock()
	st := a.states[restaurantID]
	if err != nil {
		st.Available = prior
		st.Phase = PhaseRolledBack
		st.Error = toastFor(err)
	} else {
		st.Phase = PhaseConfirmed
	}
	st.UpdatedAt = a.now()
	final := *st
	a.mu.Unlock()

	metrics.RecordAvailabilityToggle(string(final.Phase))
	fields := logrus.Fields{"restaurant": restaurantID, "phase": final.Phase, "available": final.Available}
	if err != nil {
		utils.ErrorLogger.WithFields(fields).Errorf("Availability toggle rolled back: %v", err)
	} else {
		utils.InfoLogger.WithFields(fields).Info("Availability toggle confirmed")
		a.cache.Delete(ctx, cache.RestaurantsKey)
	}

	if a.notifier == nil {
		return
	}
	a.notifier.Notify(userID, notify.Message{Event: notify.EventAvailabilityUpdate, Data: final})
	if err != nil {
		a.notifier.Toast(userID, models.ToastError, final.Error)
		return
	}

	// open storefront pages refetch the restaurant list
	a.notifier.BroadcastRole(models.RoleCustomer, notify.Message{
		Event: notify.EventStorefrontUpdate,
		Data:  StorefrontChange{RestaurantID: restaurantID, Available: final.Available},
	})
	msg := "Restaurant is now closed"
	if final.Available {
		msg = "Restaurant is now open"
	}
	a.notifier.Toast(userID, models.ToastSuccess, msg)
}

// StorefrontChange tells customers a restaurant opened or closed.
type StorefrontChange struct {
	RestaurantID string `json:"restaurantId"`
	Available    bool   `json:"isAvailable"`
}

// Wait blocks until every in-flight toggle has resolved.
func (a *AvailabilityToggler) Wait() {
	a.wg.Wait()
}

// toastFor is the one-line message for a failed upstream call.
func toastFor(err error) string {
	if apiErr, ok := apiclient.AsAPIError(err); ok && apiErr.Message != "" {
		return apiErr.Message
	}
	return forms.FallbackMessage
}
