package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"bloommarket/internal/domain/entity"
	"bloommarket/internal/infrastructure/cache"
	"bloommarket/internal/infrastructure/firebase"
	"bloommarket/internal/infrastructure/location"
	"bloommarket/internal/infrastructure/marketplace"
	"bloommarket/internal/infrastructure/mockdata"
	"bloommarket/internal/session"
	"bloommarket/pkg/errors"
	"bloommarket/pkg/logger"
)

// app is one signed-in session plus the pieces that need closing.
type app struct {
	session *session.Session
	remote  *marketplace.Client
	closers []func()
}

func (a *app) Close(ctx context.Context) {
	a.session.SignOut(ctx)
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// openApp signs in and waits until the catalog has been loaded once.
func openApp(cmd *cobra.Command) (*app, error) {
	ctx := cmd.Context()
	a := &app{}

	var (
		data     session.DataService
		identity session.Identity
	)

	if useMock {
		data = mockdata.NewGenerator(mockSeed)
		identity = session.Identity{UserID: mockUser, DisplayName: "Demo Gardener"}
	} else {
		if email == "" || password == "" {
			return nil, errors.Unauthorized("Email and password are required without --mock", nil)
		}
		idp := firebase.NewIdentityClient(cfg.FirebaseApiKey, nil)
		if _, err := idp.SignInWithPassword(ctx, email, password); err != nil {
			return nil, err
		}
		a.closers = append(a.closers, idp.SignOut)

		id, _ := idp.Identity()
		identity = id
		a.remote = marketplace.NewClient(cfg.APIBaseURL, nil, idp, cfg.NearbyRadiusKm)
		data = a.remote
	}

	var sessionCache session.SessionCache
	if redisAddr != "" {
		client, err := cache.NewRedisClient(ctx, redisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.Warn("session cache disabled: %v", err)
		} else {
			sessionCache = cache.NewRedisSessionCache(client, 0)
			a.closers = append(a.closers, func() { client.Close() })
		}
	}

	watcher := location.NewWatcher(locationSource(cmd), location.Options{
		Timeout:      cfg.LocationTimeout,
		HighAccuracy: true,
	}, geocoder())

	catalog := session.NewCatalog(data, cfg.RefetchThresholdKm)
	a.session = session.NewSession(catalog, watcher, sessionCache, session.Config{
		PollInterval: cfg.LocationPollInterval,
	})

	if err := a.session.SignIn(ctx, identity); err != nil {
		return nil, err
	}

	waitCtx, cancel := context.WithTimeout(ctx, waitTimeout)
	defer cancel()
	if err := a.session.WaitReady(waitCtx); err != nil {
		a.Close(context.Background())
		return nil, err
	}

	a.pushLocation(ctx)
	return a, nil
}

// pushLocation stores the resolved location on the server profile.
func (a *app) pushLocation(ctx context.Context) {
	if a.remote == nil {
		return
	}
	ref := a.session.Catalog().Reference()
	if ref == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := a.remote.UpdateMyLocation(ctx, *ref); err != nil {
		logger.Warn("could not update profile location: %v", err)
	}
}

func locationSource(cmd *cobra.Command) location.Source {
	flags := cmd.Flags()
	if flags.Changed("lat") || flags.Changed("lon") {
		coord := entity.NewCoordinate(latitude, longitude)
		return location.NewStaticSource(&coord)
	}
	return location.NewIPSource(cfg.IPGeolocationURL, nil)
}

func geocoder() location.ReverseGeocoder {
	if cfg.ORSApiKey == "" {
		return nil
	}
	return location.NewORSGeocoder(cfg.ORSApiKey, "", nil)
}
