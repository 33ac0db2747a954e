package controllers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/yeremiapane/food-delivery-web/metrics"
	"github.com/yeremiapane/food-delivery-web/models"
	"github.com/yeremiapane/food-delivery-web/notify"
	"github.com/yeremiapane/food-delivery-web/services"
	"github.com/yeremiapane/food-delivery-web/utils"
)

// Client messages on the dashboard socket
const (
	MsgTypePosition      = "position"
	MsgTypePositionError = "position_error"

	maxClientMessage = 4096
)

type clientMessage struct {
	Type      string  `json:"type"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Code      int     `json:"code"`
}

type WSController struct {
	Hub      *notify.Hub
	Trackers *services.TrackerRegistry
	upgrader websocket.Upgrader
}

// NewWSController only accepts upgrades from allowedOrigin (or same-origin requests
// without an Origin header).
func NewWSController(hub *notify.Hub, trackers *services.TrackerRegistry, allowedOrigin string) *WSController {
	return &WSController{
		Hub:      hub,
		Trackers: trackers,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || origin == allowedOrigin
			},
		},
	}
}

// Handle is the dashboard socket. Drivers also get a tracker for as long as it is open.
func (wc *WSController) Handle(c *gin.Context) {
	sess := mustSession(c)

	var tracker *services.DriverTracker
	if sess.Role == models.RoleDelivery {
		t, err := wc.Trackers.Acquire(c.Request.Context(), sess)
		if err != nil {
			respondFailure(c, err)
			return
		}
		tracker = t
		defer wc.Trackers.Release(sess.UserID)
	}

	ws, err := wc.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.ErrorLogger.Errorf("Websocket upgrade failed: %v", err)
		return
	}

	wc.Hub.Register(ws, notify.Subscriber{UserID: sess.UserID, Role: sess.Role})
	metrics.SetOpenSockets(wc.Hub.Count())
	defer func() {
		wc.Hub.Unregister(ws)
		metrics.SetOpenSockets(wc.Hub.Count())
	}()

	ws.SetReadLimit(maxClientMessage)
	ws.SetReadDeadline(time.Now().Add(notify.PongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(notify.PongWait))
	})

	if tracker != nil {
		// the tracker announced its state before this socket was registered
		wc.Hub.Notify(sess.UserID, notify.Message{Event: notify.EventDriverUpdate, Data: tracker.Snapshot()})
		wc.Hub.Notify(sess.UserID, notify.Message{
			Event: notify.EventGeolocationWatch,
			Data:  services.GeolocationWatch{Watch: tracker.Snapshot().IsAvailable},
		})
	}

	for {
		_, raw, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				utils.ErrorLogger.Errorf("Websocket read error for user %s: %v", sess.UserID, err)
			}
			return
		}
		if tracker == nil {
			continue
		}

		var msg clientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			continue
		}

		switch msg.Type {
		case MsgTypePosition:
			tracker.ReportPosition(msg.Latitude, msg.Longitude)
		case MsgTypePositionError:
			tracker.ReportPositionError(msg.Code)
		}
	}
}
