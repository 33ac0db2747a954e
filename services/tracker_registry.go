package services

import (
	"context"
	"sync"

	"github.com/yeremiapane/food-delivery-web/models"
	"github.com/yeremiapane/food-delivery-web/notify"
)

type trackerEntry struct {
	tracker *DriverTracker
	refs    int
}

// TrackerRegistry keeps one running tracker per signed-in driver, shared by all of
// that driver's open dashboards. Driver actions go through it so the poller sees
// the driver's own changes as already known.
type TrackerRegistry struct {
	api      DriverAPI
	notifier notify.Notifier
	cfg      TrackerConfig

	mu       sync.Mutex
	trackers map[string]*trackerEntry
}

func NewTrackerRegistry(api DriverAPI, notifier notify.Notifier, cfg TrackerConfig) *TrackerRegistry {
	return &TrackerRegistry{
		api:      api,
		notifier: notifier,
		cfg:      cfg,
		trackers: make(map[string]*trackerEntry),
	}
}

// Acquire returns the running tracker for sess, starting one on first use.
// Every Acquire must be paired with a Release.
func (r *TrackerRegistry) Acquire(ctx context.Context, sess *models.Session) (*DriverTracker, error) {
	r.mu.Lock()
	if e, ok := r.trackers[sess.UserID]; ok {
		e.refs++
		r.mu.Unlock()
		return e.tracker, nil
	}
	r.mu.Unlock()

	t := NewDriverTracker(r.api, r.notifier, r.cfg, sess.UserID, sess.UpstreamToken)
	if err := t.Start(ctx); err != nil {
		return nil, err
	}

	r.mu.Lock()
	if e, ok := r.trackers[sess.UserID]; ok {
		// another dashboard won the race
		e.refs++
		r.mu.Unlock()
		t.Stop()
		return e.tracker, nil
	}
	r.trackers[sess.UserID] = &trackerEntry{tracker: t, refs: 1}
	r.mu.Unlock()
	return t, nil
}

func (r *TrackerRegistry) Release(userID string) {
	r.mu.Lock()
	e, ok := r.trackers[userID]
	if !ok {
		r.mu.Unlock()
		return
	}
	e.refs--
	if e.refs > 0 {
		r.mu.Unlock()
		return
	}
	delete(r.trackers, userID)
	r.mu.Unlock()

	e.tracker.Stop()
}

func (r *TrackerRegistry) Get(userID string) (*DriverTracker, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.trackers[userID]
	if !ok {
		return nil, false
	}
	return e.tracker, true
}

// StopUser tears down the user's tracker regardless of open dashboards. Used on logout.
func (r *TrackerRegistry) StopUser(userID string) {
	r.mu.Lock()
	e, ok := r.trackers[userID]
	delete(r.trackers, userID)
	r.mu.Unlock()

	if ok {
		e.tracker.Stop()
	}
}

func (r *TrackerRegistry) StopAll() {
	r.mu.Lock()
	entries := make([]*trackerEntry, 0, len(r.trackers))
	for id, e := range r.trackers {
		entries = append(entries, e)
		delete(r.trackers, id)
	}
	r.mu.Unlock()

	for _, e := range entries {
		e.tracker.Stop()
	}
}

// tracker returns the live tracker, or a loaded but idle one when no dashboard is open.
func (r *TrackerRegistry) tracker(ctx context.Context, sess *models.Session) (*DriverTracker, error) {
	if t, ok := r.Get(sess.UserID); ok {
		return t, nil
	}
	t := NewDriverTracker(r.api, r.notifier, r.cfg, sess.UserID, sess.UpstreamToken)
	if err := t.Load(ctx); err != nil {
		return nil, err
	}
	return t, nil
}

func (r *TrackerRegistry) Current(ctx context.Context, sess *models.Session) (models.Driver, error) {
	if t, ok := r.Get(sess.UserID); ok {
		return t.Snapshot(), nil
	}
	d, err := r.api.CurrentDriver(ctx, sess.UpstreamToken)
	if err != nil {
		return models.Driver{}, err
	}
	return *d, nil
}

func (r *TrackerRegistry) SetAvailability(ctx context.Context, sess *models.Session, available bool) (models.Driver, error) {
	t, err := r.tracker(ctx, sess)
	if err != nil {
		return models.Driver{}, err
	}
	return t.SetAvailability(ctx, available)
}

func (r *TrackerRegistry) AcceptDelivery(ctx context.Context, sess *models.Session, deliveryID string) (models.Driver, error) {
	t, err := r.tracker(ctx, sess)
	if err != nil {
		return models.Driver{}, err
	}
	return t.AcceptDelivery(ctx, deliveryID)
}

func (r *TrackerRegistry) CompleteDelivery(ctx context.Context, sess *models.Session, deliveryID string) (models.Driver, error) {
	t, err := r.tracker(ctx, sess)
	if err != nil {
		return models.Driver{}, err
	}
	return t.CompleteDelivery(ctx, deliveryID)
}
