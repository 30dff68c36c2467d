package session

import (
	"context"
	"sync"
	"time"

	"bloommarket/internal/domain/entity"
	"bloommarket/internal/infrastructure/location"
	"bloommarket/pkg/errors"
	"bloommarket/pkg/logger"
)

const DefaultPollInterval = 5 * time.Minute

type State int

const (
	Unauthenticated State = iota
	AwaitingLocation
	Ready
)

func (s State) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case AwaitingLocation:
		return "awaiting_location"
	case Ready:
		return "ready"
	}
	return "unknown"
}

// Identity is what the identity provider tells us about the signed-in user.
type Identity struct {
	UserID      string
	DisplayName string
	Email       string
	PhotoURL    string
}

// SessionCache persists the user record between runs. Load returns nil, nil
// when nothing is cached.
type SessionCache interface {
	Load(ctx context.Context, userID string) (*entity.User, error)
	Save(ctx context.Context, user *entity.User) error
	Delete(ctx context.Context, userID string) error
}

type Config struct {
	PollInterval time.Duration
}

// Session is the application state for one signed-in user. It owns the
// catalog and the location poll task.
type Session struct {
	catalog      *Catalog
	watcher      *location.Watcher
	cache        SessionCache
	pollInterval time.Duration

	mu         sync.RWMutex
	state      State
	user       *entity.User
	lastErr    location.ErrorKind
	refreshErr error
	changed    chan struct{}
	cancelPoll context.CancelFunc
	pollDone   chan struct{}
	watch      *location.WatchHandle
}

// NewSession wires a session. cache may be nil.
func NewSession(catalog *Catalog, watcher *location.Watcher, cache SessionCache, cfg Config) *Session {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	return &Session{
		catalog:      catalog,
		watcher:      watcher,
		cache:        cache,
		pollInterval: cfg.PollInterval,
		changed:      make(chan struct{}),
	}
}

// SignIn moves to AwaitingLocation and starts polling the location. A cached
// location from an earlier run is used to load the catalog right away.
func (s *Session) SignIn(ctx context.Context, id Identity) error {
	if id.UserID == "" {
		return errors.Unauthorized("Missing user id", nil)
	}

	s.mu.RLock()
	current := s.state
	s.mu.RUnlock()
	if current != Unauthenticated {
		s.SignOut(ctx)
	}

	now := time.Now()
	user := &entity.User{
		ID:        id.UserID,
		Email:     id.Email,
		Name:      id.DisplayName,
		PhotoURL:  id.PhotoURL,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if s.cache != nil {
		cached, err := s.cache.Load(ctx, id.UserID)
		if err != nil {
			logger.Warn("loading cached session for %s: %v", id.UserID, err)
		} else if cached != nil {
			user.CreatedAt = cached.CreatedAt
			user.Location = cached.Location
			user.LocationUpdatedAt = cached.LocationUpdatedAt
		}
	}

	s.catalog.SetUser(id.UserID)

	s.mu.Lock()
	s.user = user
	s.state = AwaitingLocation
	s.lastErr = 0
	s.refreshErr = nil
	s.notifyLocked()
	s.mu.Unlock()

	s.saveUser(ctx, user)

	if user.Location != nil {
		if err := s.catalog.Refresh(ctx, *user.Location); err != nil {
			logger.Warn("initial refresh from cached location failed: %v", err)
		} else {
			s.markReady()
		}
	}

	pollCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	done := make(chan struct{})

	s.mu.Lock()
	s.cancelPoll = cancel
	s.pollDone = done
	s.mu.Unlock()

	go s.poll(pollCtx, done)

	logger.Info("user %s signed in", id.UserID)
	return nil
}

// SignOut stops polling, clears the catalog and forgets the cached user.
func (s *Session) SignOut(ctx context.Context) {
	s.mu.Lock()
	if s.state == Unauthenticated {
		s.mu.Unlock()
		return
	}
	userID := s.user.ID
	cancel, done, watch := s.cancelPoll, s.pollDone, s.watch
	s.state = Unauthenticated
	s.user = nil
	s.lastErr = 0
	s.refreshErr = nil
	s.cancelPoll, s.pollDone, s.watch = nil, nil, nil
	s.notifyLocked()
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.watcher.Stop(watch)
	if done != nil {
		<-done
	}

	s.catalog.Clear()

	if s.cache != nil {
		if err := s.cache.Delete(ctx, userID); err != nil {
			logger.Warn("removing cached session for %s: %v", userID, err)
		}
	}
	logger.Info("user %s signed out", userID)
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// User returns a copy of the signed-in user, or nil.
func (s *Session) User() *entity.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	if s.user.Location != nil {
		loc := *s.user.Location
		u.Location = &loc
	}
	return &u
}

func (s *Session) Catalog() *Catalog {
	return s.catalog
}

// LastLocationError reports the most recent failed location cycle, if any.
func (s *Session) LastLocationError() (location.ErrorKind, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr, s.lastErr != 0
}

// Changes returns a channel closed at the next state or data change.
func (s *Session) Changes() <-chan struct{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.changed
}

// WaitReady blocks until the session is Ready, the latest location cycle
// or catalog load has failed, or ctx is done.
func (s *Session) WaitReady(ctx context.Context) error {
	for {
		s.mu.RLock()
		state, kind, refreshErr, ch := s.state, s.lastErr, s.refreshErr, s.changed
		s.mu.RUnlock()

		switch {
		case state == Ready:
			return nil
		case state == Unauthenticated:
			return errors.Unauthorized("Not signed in", nil)
		case kind != 0:
			return kind.AppError()
		case refreshErr != nil:
			return refreshErr
		}

		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Refresh reloads the catalog around the user's last known location.
func (s *Session) Refresh(ctx context.Context) error {
	user := s.User()
	if user == nil {
		return errors.Unauthorized("Not signed in", nil)
	}
	if user.Location == nil {
		return errors.LocationRequired()
	}
	if err := s.catalog.Refresh(ctx, *user.Location); err != nil {
		return err
	}
	s.markReady()
	return nil
}

func (s *Session) CreateListing(ctx context.Context, input ListingInput) (*entity.Plant, error) {
	user, id, err := s.current()
	if err != nil {
		return nil, err
	}
	plant, err := s.catalog.CreateListing(ctx, input, id, user.Location)
	if err == nil {
		s.notify()
	}
	return plant, err
}

func (s *Session) CreateCommunity(ctx context.Context, input CommunityInput) (*entity.Community, error) {
	user, id, err := s.current()
	if err != nil {
		return nil, err
	}
	community, err := s.catalog.CreateCommunity(ctx, input, id, user.Location)
	if err == nil {
		s.notify()
	}
	return community, err
}

func (s *Session) JoinCommunity(ctx context.Context, communityID string) error {
	_, id, err := s.current()
	if err != nil {
		return err
	}
	if err := s.catalog.JoinCommunity(ctx, communityID, id.UserID); err != nil {
		return err
	}
	s.notify()
	return nil
}

func (s *Session) LeaveCommunity(ctx context.Context, communityID string) error {
	_, id, err := s.current()
	if err != nil {
		return err
	}
	if err := s.catalog.LeaveCommunity(ctx, communityID, id.UserID); err != nil {
		return err
	}
	s.notify()
	return nil
}

func (s *Session) PlaceOrder(ctx context.Context, listingID string, method entity.PaymentMethod, address string) (*entity.Order, error) {
	_, id, err := s.current()
	if err != nil {
		return nil, err
	}
	order, err := s.catalog.PlaceOrder(ctx, id, listingID, method, address)
	if err == nil {
		s.notify()
	}
	return order, err
}

func (s *Session) current() (*entity.User, Identity, error) {
	user := s.User()
	if user == nil {
		return nil, Identity{}, errors.Unauthorized("Not signed in", nil)
	}
	return user, Identity{
		UserID:      user.ID,
		DisplayName: user.Name,
		Email:       user.Email,
		PhotoURL:    user.PhotoURL,
	}, nil
}

func (s *Session) poll(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	s.watchOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.watchOnce(ctx)
		}
	}
}

func (s *Session) watchOnce(ctx context.Context) {
	h := s.watcher.Start(ctx,
		func(c entity.Coordinate) { s.handleFix(ctx, c) },
		func(kind location.ErrorKind) { s.handleLocationError(ctx, kind) },
	)

	s.mu.Lock()
	if ctx.Err() == nil {
		s.watch = h
	}
	s.mu.Unlock()

	<-h.Done()
}

func (s *Session) handleFix(ctx context.Context, c entity.Coordinate) {
	s.mu.Lock()
	if s.state == Unauthenticated || ctx.Err() != nil {
		s.mu.Unlock()
		return
	}
	loc := c
	s.user.Location = &loc
	s.user.LocationUpdatedAt = time.Now()
	s.user.UpdatedAt = s.user.LocationUpdatedAt
	s.lastErr = 0
	user := *s.user
	s.mu.Unlock()

	s.saveUser(ctx, &user)

	err := s.catalog.UpdateLocation(ctx, c)
	if err != nil {
		logger.Warn("catalog update at %s failed: %v", c, err)
	}
	s.mu.Lock()
	if s.state != Unauthenticated {
		s.refreshErr = err
	}
	s.mu.Unlock()

	if s.catalog.Fetched() {
		s.markReady()
	} else {
		s.notify()
	}
}

func (s *Session) handleLocationError(ctx context.Context, kind location.ErrorKind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Unauthenticated || ctx.Err() != nil {
		return
	}
	logger.Warn("location unavailable for %s: %s", s.user.ID, kind)
	s.lastErr = kind
	s.notifyLocked()
}

func (s *Session) markReady() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Unauthenticated {
		return
	}
	s.state = Ready
	s.notifyLocked()
}

func (s *Session) notify() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifyLocked()
}

func (s *Session) notifyLocked() {
	close(s.changed)
	s.changed = make(chan struct{})
}

func (s *Session) saveUser(ctx context.Context, user *entity.User) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Save(ctx, user); err != nil {
		logger.Warn("caching session for %s: %v", user.ID, err)
	}
}
