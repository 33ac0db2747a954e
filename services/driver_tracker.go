package services

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/food-delivery-web/metrics"
	"github.com/yeremiapane/food-delivery-web/models"
	"github.com/yeremiapane/food-delivery-web/notify"
	"github.com/yeremiapane/food-delivery-web/utils"
)

// Driver notifications shown on the dashboard
const (
	MsgDeliveryAssigned = "New delivery assigned"
	MsgDeliveryCleared  = "Your current delivery was completed or reassigned"
	MsgNowAvailable     = "You are now available"
	MsgNowOffline       = "You are now offline"
)

// Browser geolocation error codes
const (
	GeoPermissionDenied      = 1
	GeoPositionUnavailable   = 2
	GeoTimeout               = 3
	DefaultLocationThreshold = 0.0001
)

// GeolocationMessage maps a browser geolocation error code to the toast shown to the driver.
func GeolocationMessage(code int) string {
	switch code {
	case GeoPermissionDenied:
		return "Location permission denied. Please enable location access."
	case GeoPositionUnavailable:
		return "Location information is unavailable."
	case GeoTimeout:
		return "Location request timed out."
	default:
		return "Unable to get your location."
	}
}

// ShouldPush reports whether next moved far enough from the last pushed point.
// Nothing pushed yet always pushes.
func ShouldPush(last *models.GeoPoint, next models.GeoPoint, threshold float64) bool {
	if last == nil {
		return true
	}
	return math.Abs(next.Latitude()-last.Latitude()) > threshold ||
		math.Abs(next.Longitude()-last.Longitude()) > threshold
}

// DriverAPI is the slice of the upstream client the tracker calls.
type DriverAPI interface {
	CurrentDriver(ctx context.Context, token string) (*models.Driver, error)
	UpdateDriverLocation(ctx context.Context, token string, p models.GeoPoint) error
	UpdateDriverAvailability(ctx context.Context, token string, available bool) error
	AcceptDelivery(ctx context.Context, token, deliveryID string) error
	CompleteDelivery(ctx context.Context, token, deliveryID string) error
}

type TrackerConfig struct {
	PollInterval time.Duration
	Threshold    float64
	CallTimeout  time.Duration
}

func (c TrackerConfig) withDefaults() TrackerConfig {
	if c.PollInterval <= 0 {
		c.PollInterval = 30 * time.Second
	}
	if c.Threshold <= 0 {
		c.Threshold = DefaultLocationThreshold
	}
	if c.CallTimeout <= 0 {
		c.CallTimeout = 15 * time.Second
	}
	return c
}

// DriverTracker mirrors one driver's upstream state for a connected dashboard. It runs
// a status poller and a location pusher; both start in Start and are joined in Stop.
type DriverTracker struct {
	api      DriverAPI
	notifier notify.Notifier
	cfg      TrackerConfig
	token    string
	userID   string

	mu         sync.Mutex
	driver     models.Driver
	lastPushed *models.GeoPoint

	positions chan models.GeoPoint
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	running   bool
}

func NewDriverTracker(api DriverAPI, notifier notify.Notifier, cfg TrackerConfig, userID, token string) *DriverTracker {
	return &DriverTracker{
		api:       api,
		notifier:  notifier,
		cfg:       cfg.withDefaults(),
		token:     token,
		userID:    userID,
		positions: make(chan models.GeoPoint, 16),
	}
}

func (t *DriverTracker) log() *logrus.Entry {
	return utils.InfoLogger.WithFields(logrus.Fields{"driver_user": t.userID})
}

// Load fetches the driver and replaces local state without emitting change toasts.
func (t *DriverTracker) Load(ctx context.Context) error {
	d, err := t.api.CurrentDriver(ctx, t.token)
	if err != nil {
		return fmt.Errorf("load driver: %w", err)
	}
	t.mu.Lock()
	t.driver = *d
	t.mu.Unlock()
	return nil
}

// Start loads the driver, tells the dashboard whether to watch its position and
// launches the poller and the location pusher.
func (t *DriverTracker) Start(ctx context.Context) error {
	if err := t.Load(ctx); err != nil {
		return err
	}

	t.mu.Lock()
	if t.running {
		t.mu.Unlock()
		return nil
	}
	t.running = true
	bg, cancel := context.WithCancel(context.Background())
	t.cancel = cancel
	t.mu.Unlock()

	t.publishState()

	t.wg.Add(2)
	go t.pollLoop(bg)
	go t.pushLoop(bg)
	metrics.TrackerStarted()
	t.log().Info("Driver tracker started")
	return nil
}

// Stop cancels both background tasks and waits for them to return.
func (t *DriverTracker) Stop() {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	t.running = false
	cancel := t.cancel
	t.mu.Unlock()

	cancel()
	t.wg.Wait()
	metrics.TrackerStopped()
	t.log().Info("Driver tracker stopped")
}

// Snapshot returns a copy of the local driver state.
func (t *DriverTracker) Snapshot() models.Driver {
	t.mu.Lock()
	defer t.mu.Unlock()
	d := t.driver
	if d.CurrentDelivery != nil {
		id := *d.CurrentDelivery
		d.CurrentDelivery = &id
	}
	if d.Location != nil {
		loc := *d.Location
		d.Location = &loc
	}
	return d
}

func (t *DriverTracker) pollLoop(ctx context.Context) {
	defer t.wg.Done()
	ticker := time.NewTicker(t.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			t.Poll(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// Poll fetches the driver once and announces what the server changed.
// Failures are logged and leave local state as it was.
func (t *DriverTracker) Poll(ctx context.Context) {
	callCtx, cancel := context.WithTimeout(ctx, t.cfg.CallTimeout)
	defer cancel()

	fresh, err := t.api.CurrentDriver(callCtx, t.token)
	if err != nil {
		if ctx.Err() == nil {
			utils.ErrorLogger.WithFields(logrus.Fields{"driver_user": t.userID}).
				Errorf("Error polling driver status: %v", err)
		}
		return
	}

	t.mu.Lock()
	prev := t.driver
	t.driver = *fresh
	if fresh.Location == nil {
		t.driver.Location = prev.Location
	}
	if fresh.IsAvailable && !prev.IsAvailable {
		t.lastPushed = nil
	}
	t.mu.Unlock()

	prevDelivery, nextDelivery := prev.CurrentDeliveryID(), fresh.CurrentDeliveryID()
	switch {
	case nextDelivery != "" && nextDelivery != prevDelivery:
		t.toast(models.ToastSuccess, MsgDeliveryAssigned)
	case prevDelivery != "" && nextDelivery == "":
		t.toast(models.ToastInfo, MsgDeliveryCleared)
	}

	if fresh.IsAvailable != prev.IsAvailable {
		if fresh.IsAvailable {
			t.toast(models.ToastInfo, MsgNowAvailable)
		} else {
			t.toast(models.ToastInfo, MsgNowOffline)
		}
		t.publishState()
	} else if nextDelivery != prevDelivery {
		t.publishDriver()
	}
}

// ReportPosition queues a device position for the pusher. When the queue is full the
// position is dropped; the next one supersedes it anyway.
func (t *DriverTracker) ReportPosition(lat, lon float64) {
	select {
	case t.positions <- models.NewGeoPoint(lat, lon):
	default:
		t.log().Warn("Position queue full, dropping update")
	}
}

// ReportPositionError shows the toast for a browser geolocation failure. It is not retried.
func (t *DriverTracker) ReportPositionError(code int) {
	t.toast(models.ToastError, GeolocationMessage(code))
}

func (t *DriverTracker) pushLoop(ctx context.Context) {
	defer t.wg.Done()
	for {
		select {
		case p := <-t.positions:
			t.PushLocation(ctx, p)
		case <-ctx.Done():
			return
		}
	}
}

// PushLocation sends p upstream when the driver is available and p moved past the
// threshold. It reports whether an upstream call was made.
func (t *DriverTracker) PushLocation(ctx context.Context, p models.GeoPoint) bool {
	t.mu.Lock()
	if !t.driver.IsAvailable || !ShouldPush(t.lastPushed, p, t.cfg.Threshold) {
		t.mu.Unlock()
		return false
	}
	t.mu.Unlock()

	callCtx, cancel := context.WithTimeout(ctx, t.cfg.CallTimeout)
	defer cancel()

	if err := t.api.UpdateDriverLocation(callCtx, t.token, p); err != nil {
		metrics.RecordLocationPush(false)
		utils.ErrorLogger.WithFields(logrus.Fields{"driver_user": t.userID}).
			Errorf("Error pushing location: %v", err)
		return true
	}
	metrics.RecordLocationPush(true)

	t.mu.Lock()
	pushed := p
	t.lastPushed = &pushed
	t.driver.Location = &pushed
	t.mu.Unlock()
	return true
}

// SetAvailability changes availability upstream, then locally.
func (t *DriverTracker) SetAvailability(ctx context.Context, available bool) (models.Driver, error) {
	if err := t.api.UpdateDriverAvailability(ctx, t.token, available); err != nil {
		return t.Snapshot(), fmt.Errorf("update availability: %w", err)
	}

	t.mu.Lock()
	changed := t.driver.IsAvailable != available
	t.driver.IsAvailable = available
	if available && changed {
		t.lastPushed = nil
	}
	t.mu.Unlock()

	if changed {
		t.publishState()
	}
	return t.Snapshot(), nil
}

// AcceptDelivery takes the delivery and marks the driver busy.
func (t *DriverTracker) AcceptDelivery(ctx context.Context, deliveryID string) (models.Driver, error) {
	if err := t.api.AcceptDelivery(ctx, t.token, deliveryID); err != nil {
		return t.Snapshot(), fmt.Errorf("accept delivery %s: %w", deliveryID, err)
	}

	t.mu.Lock()
	id := deliveryID
	t.driver.CurrentDelivery = &id
	t.driver.IsAvailable = false
	t.mu.Unlock()

	t.publishState()
	return t.Snapshot(), nil
}

// CompleteDelivery closes the delivery and frees the driver again.
func (t *DriverTracker) CompleteDelivery(ctx context.Context, deliveryID string) (models.Driver, error) {
	if err := t.api.CompleteDelivery(ctx, t.token, deliveryID); err != nil {
		return t.Snapshot(), fmt.Errorf("complete delivery %s: %w", deliveryID, err)
	}

	t.mu.Lock()
	t.driver.CurrentDelivery = nil
	wasAvailable := t.driver.IsAvailable
	t.driver.IsAvailable = true
	if !wasAvailable {
		t.lastPushed = nil
	}
	t.mu.Unlock()

	t.publishState()
	return t.Snapshot(), nil
}

func (t *DriverTracker) toast(kind models.ToastKind, msg string) {
	if t.notifier == nil {
		return
	}
	t.notifier.Toast(t.userID, kind, msg)
}

func (t *DriverTracker) publishDriver() {
	if t.notifier == nil {
		return
	}
	t.notifier.Notify(t.userID, notify.Message{Event: notify.EventDriverUpdate, Data: t.Snapshot()})
}

// publishState sends the driver and whether the dashboard should watch its position.
func (t *DriverTracker) publishState() {
	if t.notifier == nil {
		return
	}
	d := t.Snapshot()
	t.notifier.Notify(t.userID, notify.Message{Event: notify.EventDriverUpdate, Data: d})
	t.notifier.Notify(t.userID, notify.Message{
		Event: notify.EventGeolocationWatch,
		Data:  GeolocationWatch{Watch: d.IsAvailable},
	})
}

type GeolocationWatch struct {
	Watch bool `json:"watch"`
}
