// Package location resolves the device position one fix at a time.
package location

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"bloommarket/internal/domain/entity"
	"bloommarket/internal/domain/geo"
	apperrors "bloommarket/pkg/errors"
	"bloommarket/pkg/logger"
)

type ErrorKind int

const (
	PermissionDenied ErrorKind = iota + 1
	PositionUnavailable
	Timeout
	Unsupported
)

func (k ErrorKind) String() string {
	switch k {
	case PermissionDenied:
		return "permission denied"
	case PositionUnavailable:
		return "position unavailable"
	case Timeout:
		return "timeout"
	case Unsupported:
		return "unsupported"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// AppError maps the kind onto the shared error codes.
func (k ErrorKind) AppError() *apperrors.AppError {
	switch k {
	case PermissionDenied:
		return apperrors.New(apperrors.CodeLocationPermissionDenied, "Location permission denied", http.StatusForbidden, nil)
	case Timeout:
		return apperrors.New(apperrors.CodeLocationTimeout, "Timed out waiting for a location fix", http.StatusGatewayTimeout, nil)
	case Unsupported:
		return apperrors.New(apperrors.CodeLocationUnsupported, "Location is not supported on this device", http.StatusNotImplemented, nil)
	default:
		return apperrors.New(apperrors.CodeLocationUnavailable, "Current position is unavailable", http.StatusServiceUnavailable, nil)
	}
}

// Options are passed to the Source for every fix.
type Options struct {
	Timeout      time.Duration
	HighAccuracy bool
	// MaximumAge is how old a fix may be. Zero rejects cached fixes.
	MaximumAge time.Duration
}

func DefaultOptions() Options {
	return Options{
		Timeout:      10 * time.Second,
		HighAccuracy: true,
		MaximumAge:   0,
	}
}

// Fix is a single position reported by a Source. A zero Timestamp means the
// source does not report one and the fix is taken as fresh.
type Fix struct {
	Latitude  float64
	Longitude float64
	AccuracyM float64
	Timestamp time.Time
}

// Source is the platform capability that produces position fixes.
type Source interface {
	CurrentPosition(ctx context.Context, opts Options) (Fix, error)
}

// SourceError lets a Source say which kind of failure occurred.
type SourceError struct {
	Kind ErrorKind
	Err  error
}

func (e *SourceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("location %s: %v", e.Kind, e.Err)
	}
	return "location " + e.Kind.String()
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// ReverseGeocoder turns a position into a human readable label.
type ReverseGeocoder interface {
	Reverse(ctx context.Context, lat, lon float64) (string, error)
}

type Watcher struct {
	source   Source
	geocoder ReverseGeocoder
	opts     Options
	now      func() time.Time
}

// NewWatcher builds a watcher over source. A nil source is allowed and makes
// every cycle report Unsupported. geocoder may be nil.
func NewWatcher(source Source, opts Options, geocoder ReverseGeocoder) *Watcher {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultOptions().Timeout
	}
	return &Watcher{
		source:   source,
		geocoder: geocoder,
		opts:     opts,
		now:      time.Now,
	}
}

// WatchHandle identifies one watch cycle.
type WatchHandle struct {
	cancel context.CancelFunc
	done   chan struct{}

	mu      sync.Mutex
	stopped bool
	once    sync.Once
}

// Done is closed once the cycle has released its observation.
func (h *WatchHandle) Done() <-chan struct{} {
	return h.done
}

func (h *WatchHandle) stop() {
	h.once.Do(func() {
		h.mu.Lock()
		h.stopped = true
		h.mu.Unlock()
		h.cancel()
	})
}

// deliver runs fn unless the cycle was stopped. fn runs without the lock so a
// callback may call Stop on its own handle.
func (h *WatchHandle) deliver(fn func()) {
	h.mu.Lock()
	stopped := h.stopped
	h.mu.Unlock()
	if stopped {
		return
	}
	fn()
}

// Start begins a watch cycle. The first fix (or failure) resolves the cycle:
// onUpdate or onError is called at most once and the observation is released.
// Callbacks run on the watcher's goroutine and are skipped once Stop has
// been called.
func (w *Watcher) Start(
	ctx context.Context,
	onUpdate func(entity.Coordinate),
	onError func(ErrorKind),
) *WatchHandle {
	cycleCtx, cancel := context.WithCancel(ctx)
	h := &WatchHandle{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(h.done)
		defer h.stop()

		coord, kind := w.resolve(cycleCtx)
		if cycleCtx.Err() != nil {
			// stopped or parent cancelled; nobody is listening
			return
		}
		if kind != 0 {
			logger.Debug("location watch failed: %s", kind)
			if onError != nil {
				h.deliver(func() { onError(kind) })
			}
			return
		}
		if onUpdate != nil {
			h.deliver(func() { onUpdate(coord) })
		}
	}()

	return h
}

// Stop ends the cycle behind h. Calling it more than once, after the cycle has
// resolved, or with a nil handle is a no-op.
func (w *Watcher) Stop(h *WatchHandle) {
	if h == nil {
		return
	}
	h.stop()
}

func (w *Watcher) resolve(ctx context.Context) (entity.Coordinate, ErrorKind) {
	if w.source == nil {
		return entity.Coordinate{}, Unsupported
	}

	requestedAt := w.now()
	fixCtx, cancel := context.WithTimeout(ctx, w.opts.Timeout)
	defer cancel()

	fix, err := w.source.CurrentPosition(fixCtx, w.opts)
	if err != nil {
		return entity.Coordinate{}, classify(fixCtx, err)
	}

	if !fix.Timestamp.IsZero() && fix.Timestamp.Before(requestedAt.Add(-w.opts.MaximumAge)) {
		logger.Debug("rejecting cached fix from %s", fix.Timestamp.Format(time.RFC3339))
		return entity.Coordinate{}, PositionUnavailable
	}

	coord := entity.Coordinate{Latitude: fix.Latitude, Longitude: fix.Longitude}
	if err := geo.ValidateCoordinate(coord); err != nil {
		logger.Warn("location source returned %v", err)
		return entity.Coordinate{}, PositionUnavailable
	}

	coord.Address = w.label(fixCtx, coord)
	return coord, 0
}

func (w *Watcher) label(ctx context.Context, c entity.Coordinate) string {
	if w.geocoder == nil {
		return entity.FormatAddress(c.Latitude, c.Longitude)
	}

	address, err := w.geocoder.Reverse(ctx, c.Latitude, c.Longitude)
	if err != nil || address == "" {
		logger.Debug("reverse geocode failed, using coordinates: %v", err)
		return entity.FormatAddress(c.Latitude, c.Longitude)
	}
	return address
}

func classify(ctx context.Context, err error) ErrorKind {
	var se *SourceError
	if errors.As(err, &se) {
		return se.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return Timeout
	}
	return PositionUnavailable
}
