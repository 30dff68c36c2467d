package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"
)

const readinessTimeout = 5 * time.Second

// ConnectionTester is implemented by firebase.FirebaseAuthClient, the
// Firestore health check and the Cloud Storage client.
type ConnectionTester interface {
	TestConnection(ctx context.Context) error
}

// Dependency is a backing service the marketplace cannot serve without.
type Dependency struct {
	Name  string
	Check ConnectionTester
}

type HealthHandler struct {
	firebaseAuth ConnectionTester
	dependencies []Dependency
}

var healthHandler *HealthHandler

func NewHealthHandler(firebaseAuth ConnectionTester, dependencies ...Dependency) *HealthHandler {
	return &HealthHandler{
		firebaseAuth: firebaseAuth,
		dependencies: dependencies,
	}
}

func SetupHealthHandler(firebaseAuth ConnectionTester, dependencies ...Dependency) {
	healthHandler = NewHealthHandler(firebaseAuth, dependencies...)
}

func GetHealthHandler() *HealthHandler {
	return healthHandler
}

func (h *HealthHandler) CheckHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "Server is running",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (h *HealthHandler) CheckFirebaseHealth(c echo.Context) error {
	err := h.firebaseAuth.TestConnection(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"status": "Firebase Auth connection failed",
			"error":  err.Error(),
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status": "Firebase Auth connected successfully",
	})
}

type readiness struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// CheckReadiness runs every dependency check concurrently. Any failure turns
// the answer into 503 so load balancers stop routing nearby queries here.
func (h *HealthHandler) CheckReadiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), readinessTimeout)
	defer cancel()

	results := make([]error, len(h.dependencies))
	var g errgroup.Group
	for i, dep := range h.dependencies {
		i, dep := i, dep
		g.Go(func() error {
			results[i] = dep.Check.TestConnection(ctx)
			return nil
		})
	}
	g.Wait()

	body := readiness{Status: "ready", Checks: make(map[string]string, len(h.dependencies))}
	code := http.StatusOK
	for i, dep := range h.dependencies {
		if results[i] != nil {
			body.Checks[dep.Name] = results[i].Error()
			body.Status = "degraded"
			code = http.StatusServiceUnavailable
			continue
		}
		body.Checks[dep.Name] = "ok"
	}

	return c.JSON(code, body)
}
