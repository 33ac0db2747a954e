// Package session keeps the signed-in user on the server side. The browser holds
// an HTTP-only cookie with a signed session id; the upstream token never leaves here.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/food-delivery-web/apiclient"
	"github.com/yeremiapane/food-delivery-web/forms"
	"github.com/yeremiapane/food-delivery-web/models"
	"github.com/yeremiapane/food-delivery-web/utils"
)

const CookieName = "fd_session"

var ErrExpired = errors.New("session expired")

// AuthAPI is the slice of the upstream client the session needs.
type AuthAPI interface {
	Login(ctx context.Context, req apiclient.LoginRequest) (*apiclient.LoginResponse, error)
	Logout(ctx context.Context, token string) error
	MyRestaurant(ctx context.Context, token string) (*models.Restaurant, error)
	Profile(ctx context.Context, token string) (*models.User, error)
}

type EventKind string

const (
	EventLogin  EventKind = "login"
	EventLogout EventKind = "logout"
)

type Event struct {
	Kind EventKind
	User models.User
}

// State is what views read: who is signed in, if anyone.
type State struct {
	User          *models.User `json:"user"`
	Authenticated bool         `json:"authenticated"`
}

// Issued is a freshly created session together with its cookie value.
type Issued struct {
	Session *models.Session
	Token   string
}

type Service struct {
	store Store
	api   AuthAPI
	ttl   time.Duration
	now   func() time.Time

	mu     sync.Mutex
	nextID int
	subs   map[int]func(Event)
}

func NewService(store Store, api AuthAPI, ttl time.Duration) *Service {
	return &Service{
		store: store,
		api:   api,
		ttl:   ttl,
		now:   time.Now,
		subs:  make(map[int]func(Event)),
	}
}

func (s *Service) TTL() time.Duration { return s.ttl }

// Subscribe registers fn for login and logout events. The returned func removes it.
func (s *Service) Subscribe(fn func(Event)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Service) publish(e Event) {
	s.mu.Lock()
	fns := make([]func(Event), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(e)
	}
}

// Login validates the credentials locally, signs in upstream and opens a session.
// Validation or upstream failures come back in the Outcome with a nil Issued.
func (s *Service) Login(ctx context.Context, f *forms.Login) (*Issued, forms.Outcome) {
	var resp *apiclient.LoginResponse
	out := forms.Submit(ctx, f, func(ctx context.Context) error {
		var err error
		resp, err = s.api.Login(ctx, apiclient.LoginRequest{Email: f.Email, Password: f.Password})
		return err
	})
	if !out.OK() {
		return nil, out
	}

	now := s.now()
	sess := &models.Session{
		ID:            uuid.NewString(),
		UserID:        resp.User.ID,
		Name:          resp.User.Name,
		Email:         resp.User.Email,
		Role:          resp.User.Role,
		UpstreamToken: resp.Token,
		ExpiresAt:     now.Add(s.ttl),
		CreatedAt:     now,
	}

	if sess.Role == models.RoleRestaurant {
		r, err := s.api.MyRestaurant(ctx, resp.Token)
		if err != nil {
			// Registration may still be pending review; the back office shows that state.
			utils.ErrorLogger.WithFields(logrus.Fields{"user": sess.UserID}).
				Errorf("Error loading restaurant for session: %v", err)
		} else {
			sess.RestaurantID = r.ID
		}
	}

	if err := s.store.Create(ctx, sess); err != nil {
		out.Err = fmt.Errorf("store session: %w", err)
		out.Toast = forms.FallbackMessage
		return nil, out
	}

	token, err := utils.GenerateToken(sess.ID, string(sess.Role), s.ttl)
	if err != nil {
		out.Err = fmt.Errorf("sign session: %w", err)
		out.Toast = forms.FallbackMessage
		return nil, out
	}

	utils.InfoLogger.WithFields(logrus.Fields{"user": sess.UserID, "role": sess.Role}).Info("User signed in")
	s.publish(Event{Kind: EventLogin, User: sess.User()})
	return &Issued{Session: sess, Token: token}, out
}

// Authenticate resolves a cookie value to its live session.
func (s *Service) Authenticate(ctx context.Context, token string) (*models.Session, error) {
	claims, err := utils.ParseToken(token)
	if err != nil {
		return nil, err
	}

	sess, err := s.store.Get(ctx, claims.SessionID)
	if err != nil {
		return nil, err
	}
	if sess.Expired(s.now()) {
		if err := s.store.Delete(ctx, sess.ID); err != nil {
			utils.ErrorLogger.Errorf("Error deleting expired session %s: %v", sess.ID, err)
		}
		return nil, ErrExpired
	}
	return sess, nil
}

// Logout signs out upstream and drops the session. Upstream failures are logged only;
// the local session is gone either way.
func (s *Service) Logout(ctx context.Context, sess *models.Session) error {
	if err := s.api.Logout(ctx, sess.UpstreamToken); err != nil {
		utils.ErrorLogger.WithFields(logrus.Fields{"user": sess.UserID}).
			Errorf("Upstream logout failed: %v", err)
	}
	if err := s.store.Delete(ctx, sess.ID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	utils.InfoLogger.WithFields(logrus.Fields{"user": sess.UserID}).Info("User signed out")
	s.publish(Event{Kind: EventLogout, User: sess.User()})
	return nil
}

// Refresh reloads the user's profile upstream and stores a changed name or email.
// A token the upstream no longer accepts ends the session with ErrExpired; any other
// failure keeps the stored copy.
func (s *Service) Refresh(ctx context.Context, sess *models.Session) (*models.Session, error) {
	u, err := s.api.Profile(ctx, sess.UpstreamToken)
	if err != nil {
		if errors.Is(err, apiclient.ErrUnauthorized) {
			if err := s.store.Delete(ctx, sess.ID); err != nil {
				utils.ErrorLogger.Errorf("Error deleting revoked session %s: %v", sess.ID, err)
			}
			s.publish(Event{Kind: EventLogout, User: sess.User()})
			return nil, ErrExpired
		}
		utils.ErrorLogger.WithFields(logrus.Fields{"user": sess.UserID}).
			Errorf("Error refreshing profile: %v", err)
		return sess, nil
	}

	if u.Name == sess.Name && u.Email == sess.Email {
		return sess, nil
	}
	if err := s.store.UpdateProfile(ctx, sess.ID, u.Name, u.Email); err != nil {
		return sess, fmt.Errorf("update session profile: %w", err)
	}
	fresh := *sess
	fresh.Name, fresh.Email = u.Name, u.Email
	return &fresh, nil
}

type ctxKey struct{}

func WithSession(ctx context.Context, sess *models.Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, sess)
}

func FromContext(ctx context.Context) (*models.Session, bool) {
	sess, ok := ctx.Value(ctxKey{}).(*models.Session)
	return sess, ok && sess != nil
}

// Current reports the signed-in user carried by ctx.
func Current(ctx context.Context) State {
	sess, ok := FromContext(ctx)
	if !ok {
		return State{}
	}
	return StateOf(sess)
}

func StateOf(sess *models.Session) State {
	u := sess.User()
	return State{User: &u, Authenticated: true}
}
