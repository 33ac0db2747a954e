package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/food-delivery-web/models"
	"github.com/yeremiapane/food-delivery-web/notify"
)

func newLoadedTracker(t *testing.T, api *fakeDriverAPI, n *recordingNotifier) *DriverTracker {
	t.Helper()
	tr := NewDriverTracker(api, n, TrackerConfig{}, "u1", "token")
	require.NoError(t, tr.Load(context.Background()))
	return tr
}

func TestShouldPush(t *testing.T) {
	last := models.NewGeoPoint(6.9271, 79.8612)

	tests := []struct {
		name string
		last *models.GeoPoint
		next models.GeoPoint
		want bool
	}{
		{"first position", nil, models.NewGeoPoint(6.9271, 79.8612), true},
		{"identical", &last, models.NewGeoPoint(6.9271, 79.8612), false},
		{"below threshold both axes", &last, models.NewGeoPoint(6.92715, 79.86125), false},
		{"latitude moved", &last, models.NewGeoPoint(6.9275, 79.8612), true},
		{"longitude moved", &last, models.NewGeoPoint(6.9271, 79.8608), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldPush(tt.last, tt.next, DefaultLocationThreshold))
		})
	}
}

func TestGeolocationMessage(t *testing.T) {
	assert.Equal(t, "Location permission denied. Please enable location access.", GeolocationMessage(1))
	assert.Equal(t, "Location information is unavailable.", GeolocationMessage(2))
	assert.Equal(t, "Location request timed out.", GeolocationMessage(3))
	assert.Equal(t, "Unable to get your location.", GeolocationMessage(99))
}

func TestPushLocation_RespectsThresholdAndAvailability(t *testing.T) {
	api := &fakeDriverAPI{driver: models.Driver{ID: "d1", IsAvailable: true}}
	tr := newLoadedTracker(t, api, &recordingNotifier{})
	ctx := context.Background()

	assert.True(t, tr.PushLocation(ctx, models.NewGeoPoint(6.9271, 79.8612)))
	assert.False(t, tr.PushLocation(ctx, models.NewGeoPoint(6.92711, 79.86121)))
	assert.Equal(t, 1, api.pushCount())

	assert.True(t, tr.PushLocation(ctx, models.NewGeoPoint(6.9300, 79.8612)))
	assert.Equal(t, 2, api.pushCount())
	assert.InDelta(t, 6.9300, tr.Snapshot().Location.Latitude(), 1e-9)

	_, err := tr.SetAvailability(ctx, false)
	require.NoError(t, err)
	assert.False(t, tr.PushLocation(ctx, models.NewGeoPoint(7.2906, 80.6337)))
	assert.Equal(t, 2, api.pushCount())
}

func TestPushLocation_FailureDoesNotAdvanceLastPushed(t *testing.T) {
	api := &fakeDriverAPI{driver: models.Driver{IsAvailable: true}, actionErr: errors.New("timeout")}
	tr := newLoadedTracker(t, api, &recordingNotifier{})

	assert.True(t, tr.PushLocation(context.Background(), models.NewGeoPoint(6.9271, 79.8612)))
	api.mu.Lock()
	api.actionErr = nil
	api.mu.Unlock()
	assert.True(t, tr.PushLocation(context.Background(), models.NewGeoPoint(6.9271, 79.8612)))
	assert.Equal(t, 1, api.pushCount())
}

func TestPoll_AnnouncesServerChanges(t *testing.T) {
	api := &fakeDriverAPI{driver: models.Driver{ID: "d1", IsAvailable: true}}
	n := &recordingNotifier{}
	tr := newLoadedTracker(t, api, n)
	ctx := context.Background()

	api.setDriver(models.Driver{ID: "d1", IsAvailable: true, CurrentDelivery: strPtr("del-1")})
	tr.Poll(ctx)
	assert.Equal(t, []string{MsgDeliveryAssigned}, n.toasts())

	api.setDriver(models.Driver{ID: "d1", IsAvailable: true})
	tr.Poll(ctx)
	assert.Equal(t, []string{MsgDeliveryAssigned, MsgDeliveryCleared}, n.toasts())

	api.setDriver(models.Driver{ID: "d1", IsAvailable: false})
	tr.Poll(ctx)
	assert.Equal(t, MsgNowOffline, n.toasts()[2])

	watch := n.events(notify.EventGeolocationWatch)
	require.Len(t, watch, 1)
	assert.Equal(t, GeolocationWatch{Watch: false}, watch[0].Data)

	api.setDriver(models.Driver{ID: "d1", IsAvailable: true})
	tr.Poll(ctx)
	assert.Equal(t, MsgNowAvailable, n.toasts()[3])
}

func TestPoll_NoChangeNoToast(t *testing.T) {
	api := &fakeDriverAPI{driver: models.Driver{ID: "d1", IsAvailable: true, CurrentDelivery: strPtr("x")}}
	n := &recordingNotifier{}
	tr := newLoadedTracker(t, api, n)

	tr.Poll(context.Background())
	assert.Empty(t, n.toasts())
}

func TestPoll_FailureKeepsState(t *testing.T) {
	api := &fakeDriverAPI{driver: models.Driver{ID: "d1", IsAvailable: true}}
	n := &recordingNotifier{}
	tr := newLoadedTracker(t, api, n)

	api.mu.Lock()
	api.fetchErr = errors.New("502")
	api.mu.Unlock()
	tr.Poll(context.Background())

	assert.True(t, tr.Snapshot().IsAvailable)
	assert.Empty(t, n.toasts())
}

func TestAcceptAndCompleteDelivery(t *testing.T) {
	api := &fakeDriverAPI{driver: models.Driver{ID: "d1", IsAvailable: true}}
	n := &recordingNotifier{}
	tr := newLoadedTracker(t, api, n)
	ctx := context.Background()

	d, err := tr.AcceptDelivery(ctx, "del-7")
	require.NoError(t, err)
	assert.Equal(t, "del-7", d.CurrentDeliveryID())
	assert.False(t, d.IsAvailable)

	// the poller must not announce the driver's own action
	api.setDriver(models.Driver{ID: "d1", IsAvailable: false, CurrentDelivery: strPtr("del-7")})
	tr.Poll(ctx)
	assert.Empty(t, n.toasts())

	d, err = tr.CompleteDelivery(ctx, "del-7")
	require.NoError(t, err)
	assert.Equal(t, "", d.CurrentDeliveryID())
	assert.True(t, d.IsAvailable)

	assert.Equal(t, []string{"del-7"}, api.accepted)
	assert.Equal(t, []string{"del-7"}, api.completed)
}

func TestAcceptDelivery_FailureLeavesStateAlone(t *testing.T) {
	api := &fakeDriverAPI{driver: models.Driver{ID: "d1", IsAvailable: true}, actionErr: errors.New("conflict")}
	tr := newLoadedTracker(t, api, &recordingNotifier{})

	d, err := tr.AcceptDelivery(context.Background(), "del-7")
	assert.Error(t, err)
	assert.True(t, d.IsAvailable)
	assert.Equal(t, "", d.CurrentDeliveryID())
}

func TestReportPositionError(t *testing.T) {
	n := &recordingNotifier{}
	tr := NewDriverTracker(&fakeDriverAPI{}, n, TrackerConfig{}, "u1", "token")

	tr.ReportPositionError(GeoPermissionDenied)
	assert.Equal(t, []string{"Location permission denied. Please enable location access."}, n.toasts())
}

func TestTracker_StartStop(t *testing.T) {
	api := &fakeDriverAPI{driver: models.Driver{ID: "d1", IsAvailable: true}}
	n := &recordingNotifier{}
	tr := NewDriverTracker(api, n, TrackerConfig{PollInterval: 5 * time.Millisecond}, "u1", "token")

	require.NoError(t, tr.Start(context.Background()))
	watch := n.events(notify.EventGeolocationWatch)
	require.Len(t, watch, 1)
	assert.Equal(t, GeolocationWatch{Watch: true}, watch[0].Data)

	tr.ReportPosition(6.9271, 79.8612)
	assert.Eventually(t, func() bool { return api.pushCount() == 1 }, time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool {
		api.mu.Lock()
		defer api.mu.Unlock()
		return api.fetches >= 3
	}, time.Second, 5*time.Millisecond)

	tr.Stop()
	tr.Stop()
}

func TestTrackerRegistry_SharesTrackerPerUser(t *testing.T) {
	api := &fakeDriverAPI{driver: models.Driver{ID: "d1", IsAvailable: true}}
	reg := NewTrackerRegistry(api, &recordingNotifier{}, TrackerConfig{PollInterval: time.Hour})
	sess := &models.Session{UserID: "u1", UpstreamToken: "t"}
	ctx := context.Background()

	a, err := reg.Acquire(ctx, sess)
	require.NoError(t, err)
	b, err := reg.Acquire(ctx, sess)
	require.NoError(t, err)
	assert.Same(t, a, b)

	reg.Release("u1")
	_, ok := reg.Get("u1")
	assert.True(t, ok)

	reg.Release("u1")
	_, ok = reg.Get("u1")
	assert.False(t, ok)
}

func TestTrackerRegistry_ActionsWithoutDashboard(t *testing.T) {
	api := &fakeDriverAPI{driver: models.Driver{ID: "d1", IsAvailable: false}}
	reg := NewTrackerRegistry(api, &recordingNotifier{}, TrackerConfig{})
	sess := &models.Session{UserID: "u1", UpstreamToken: "t"}

	d, err := reg.SetAvailability(context.Background(), sess, true)
	require.NoError(t, err)
	assert.True(t, d.IsAvailable)
	assert.Equal(t, []bool{true}, api.availability)
}
