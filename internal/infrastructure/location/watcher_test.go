package location

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bloommarket/internal/domain/entity"
	apperrors "bloommarket/pkg/errors"
)

type fakeSource struct {
	fix   Fix
	err   error
	block bool
	calls int32
	opts  Options
}

func (f *fakeSource) CurrentPosition(ctx context.Context, opts Options) (Fix, error) {
	atomic.AddInt32(&f.calls, 1)
	f.opts = opts
	if f.block {
		<-ctx.Done()
		return Fix{}, ctx.Err()
	}
	return f.fix, f.err
}

type fakeGeocoder struct {
	label string
	err   error
}

func (g fakeGeocoder) Reverse(ctx context.Context, lat, lon float64) (string, error) {
	return g.label, g.err
}

type result struct {
	coord *entity.Coordinate
	kind  ErrorKind
}

func runCycle(t *testing.T, w *Watcher) result {
	t.Helper()

	out := make(chan result, 2)
	h := w.Start(context.Background(),
		func(c entity.Coordinate) { out <- result{coord: &c} },
		func(k ErrorKind) { out <- result{kind: k} },
	)

	select {
	case <-h.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("watch cycle did not finish")
	}

	require.Len(t, out, 1, "exactly one callback per cycle")
	return <-out
}

func TestWatcherDeliversFixWithCoordinateLabel(t *testing.T) {
	src := &fakeSource{fix: Fix{Latitude: 37.77493, Longitude: -122.41942}}
	w := NewWatcher(src, DefaultOptions(), nil)

	res := runCycle(t, w)
	require.NotNil(t, res.coord)
	assert.Equal(t, 37.77493, res.coord.Latitude)
	assert.Equal(t, "37.7749, -122.4194", res.coord.Address)

	assert.Equal(t, 10*time.Second, src.opts.Timeout)
	assert.True(t, src.opts.HighAccuracy)
	assert.Zero(t, src.opts.MaximumAge)
}

func TestWatcherUsesGeocoderLabel(t *testing.T) {
	src := &fakeSource{fix: Fix{Latitude: 1, Longitude: 2}}
	w := NewWatcher(src, DefaultOptions(), fakeGeocoder{label: "Market St, San Francisco"})

	res := runCycle(t, w)
	require.NotNil(t, res.coord)
	assert.Equal(t, "Market St, San Francisco", res.coord.Address)
}

func TestWatcherFallsBackWhenGeocoderFails(t *testing.T) {
	src := &fakeSource{fix: Fix{Latitude: 1, Longitude: 2}}
	w := NewWatcher(src, DefaultOptions(), fakeGeocoder{err: errors.New("boom")})

	res := runCycle(t, w)
	require.NotNil(t, res.coord)
	assert.Equal(t, "1.0000, 2.0000", res.coord.Address)
}

func TestWatcherErrorKinds(t *testing.T) {
	tests := []struct {
		name string
		src  Source
		want ErrorKind
	}{
		{"nil source", nil, Unsupported},
		{"permission denied", &fakeSource{err: &SourceError{Kind: PermissionDenied}}, PermissionDenied},
		{"generic failure", &fakeSource{err: errors.New("gps off")}, PositionUnavailable},
		{"invalid fix", &fakeSource{fix: Fix{Latitude: 95}}, PositionUnavailable},
		{"cached fix", &fakeSource{fix: Fix{Latitude: 1, Longitude: 1, Timestamp: time.Now().Add(-time.Hour)}}, PositionUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWatcher(tt.src, DefaultOptions(), nil)
			res := runCycle(t, w)
			assert.Nil(t, res.coord)
			assert.Equal(t, tt.want, res.kind)
		})
	}
}

func TestWatcherTimeout(t *testing.T) {
	src := &fakeSource{block: true}
	w := NewWatcher(src, Options{Timeout: 20 * time.Millisecond}, nil)

	res := runCycle(t, w)
	assert.Equal(t, Timeout, res.kind)
}

func TestWatcherStopIsIdempotentAndSuppressesCallbacks(t *testing.T) {
	src := &fakeSource{block: true}
	w := NewWatcher(src, DefaultOptions(), nil)

	var called int32
	h := w.Start(context.Background(),
		func(entity.Coordinate) { atomic.AddInt32(&called, 1) },
		func(ErrorKind) { atomic.AddInt32(&called, 1) },
	)

	w.Stop(h)
	w.Stop(h)
	w.Stop(nil)

	select {
	case <-h.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("stop did not release the cycle")
	}
	assert.Zero(t, atomic.LoadInt32(&called))
}

func TestWatcherStopAfterResolve(t *testing.T) {
	w := NewWatcher(&fakeSource{fix: Fix{Latitude: 1, Longitude: 1}}, DefaultOptions(), nil)
	h := w.Start(context.Background(), nil, nil)
	<-h.Done()

	assert.NotPanics(t, func() { w.Stop(h) })
}

func TestErrorKindAppError(t *testing.T) {
	assert.Equal(t, apperrors.CodeLocationPermissionDenied, PermissionDenied.AppError().Code)
	assert.Equal(t, apperrors.CodeLocationUnavailable, PositionUnavailable.AppError().Code)
	assert.Equal(t, apperrors.CodeLocationTimeout, Timeout.AppError().Code)
	assert.Equal(t, apperrors.CodeLocationUnsupported, Unsupported.AppError().Code)
}

func TestStaticSource(t *testing.T) {
	c := entity.NewCoordinate(10, 20)
	src := NewStaticSource(&c)
	w := NewWatcher(src, DefaultOptions(), nil)

	res := runCycle(t, w)
	require.NotNil(t, res.coord)
	assert.Equal(t, 20.0, res.coord.Longitude)

	src.Set(nil)
	res = runCycle(t, w)
	assert.Equal(t, PositionUnavailable, res.kind)
}

func TestIPSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"success","lat":52.52,"lon":13.405}`))
	}))
	defer srv.Close()

	fix, err := NewIPSource(srv.URL, srv.Client()).CurrentPosition(context.Background(), DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 52.52, fix.Latitude)
	assert.Equal(t, 13.405, fix.Longitude)
	assert.False(t, fix.Timestamp.IsZero())
}

func TestIPSourceForbiddenIsPermissionDenied(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := NewIPSource(srv.URL, srv.Client()).CurrentPosition(context.Background(), DefaultOptions())

	var se *SourceError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, PermissionDenied, se.Kind)
}

func TestIPSourceFailedLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"fail","message":"reserved range"}`))
	}))
	defer srv.Close()

	_, err := NewIPSource(srv.URL, srv.Client()).CurrentPosition(context.Background(), DefaultOptions())

	var se *SourceError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, PositionUnavailable, se.Kind)
}

func TestORSGeocoderReverse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/geocode/reverse", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("Authorization"))
		assert.Equal(t, "37.774900", r.URL.Query().Get("point.lat"))
		w.Write([]byte(`{"features":[{"properties":{"label":"Civic Center, San Francisco, CA"}}]}`))
	}))
	defer srv.Close()

	label, err := NewORSGeocoder("secret", srv.URL, srv.Client()).Reverse(context.Background(), 37.7749, -122.4194)
	require.NoError(t, err)
	assert.Equal(t, "Civic Center, San Francisco, CA", label)
}

func TestORSGeocoderNoResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"features":[]}`))
	}))
	defer srv.Close()

	_, err := NewORSGeocoder("secret", srv.URL, srv.Client()).Reverse(context.Background(), 0, 0)
	assert.Error(t, err)
}
