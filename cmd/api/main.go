package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"google.golang.org/api/option"

	fbapp "firebase.google.com/go/v4"

	"bloommarket/internal/adapter/api"
	"bloommarket/internal/adapter/api/handler"
	apimiddleware "bloommarket/internal/adapter/api/middleware"
	"bloommarket/internal/adapter/api/router"
	"bloommarket/internal/adapter/repository"
	"bloommarket/internal/infrastructure/firebase"
	"bloommarket/internal/infrastructure/ratelimit"
	"bloommarket/internal/infrastructure/storage"
	"bloommarket/internal/usecase"
	"bloommarket/pkg/config"
	"bloommarket/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var opt option.ClientOption
	serviceAccountPath := ""

	// Service account JSON from the environment wins over a file on disk.
	serviceAccountJSON := os.Getenv("FIREBASE_SERVICE_ACCOUNT_JSON")
	if serviceAccountJSON != "" {
		logger.Info("Using Firebase service account from environment variable")
		opt = option.WithCredentialsJSON([]byte(serviceAccountJSON))
	} else {
		serviceAccountPath = os.Getenv("FIREBASE_SERVICE_ACCOUNT_PATH")
		if serviceAccountPath == "" {
			serviceAccountPath = "./firebase-adminsdk.json"
		}

		if _, err := os.Stat(serviceAccountPath); os.IsNotExist(err) {
			log.Fatalf("Service account file does not exist: %s", serviceAccountPath)
		}

		logger.Info("Using Firebase service account from file: %s", serviceAccountPath)
		opt = option.WithCredentialsFile(serviceAccountPath)
	}

	firebaseApp, err := fbapp.NewApp(ctx, &fbapp.Config{ProjectID: cfg.FirebaseProject}, opt)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}

	authClient, err := firebaseApp.Auth(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase Auth: %v", err)
	}

	firestoreClient, err := firestore.NewClient(ctx, cfg.FirebaseProject, opt)
	if err != nil {
		log.Fatalf("Failed to create Firestore client: %v", err)
	}
	defer firestoreClient.Close()

	storageClient, err := storage.NewCloudStorageClient(ctx, cfg.StorageBucket, serviceAccountPath)
	if err != nil {
		log.Fatalf("Failed to initialize Cloud Storage: %v", err)
	}
	defer storageClient.Close()

	userRepo := repository.NewFirestoreUserRepository(firestoreClient)
	plantRepo := repository.NewFirestorePlantRepository(firestoreClient)
	communityRepo := repository.NewFirestoreCommunityRepository(firestoreClient)
	orderRepo := repository.NewFirestoreOrderRepository(firestoreClient)

	var identity *firebase.IdentityClient
	if cfg.FirebaseApiKey != "" {
		identity = firebase.NewIdentityClient(cfg.FirebaseApiKey, nil)
	}
	firebaseAuthClient := firebase.NewFirebaseAuthClient(authClient, identity)

	userUseCase := usecase.NewUserUseCase(userRepo, firebaseAuthClient)
	plantUseCase := usecase.NewPlantUseCase(plantRepo, userUseCase, cfg.NearbyRadiusKm)
	communityUseCase := usecase.NewCommunityUseCase(communityRepo, userUseCase, cfg.NearbyRadiusKm)
	orderUseCase := usecase.NewOrderUseCase(orderRepo, plantRepo)
	uploadUseCase := usecase.NewUploadUseCase(storageClient)

	handler.Setup(plantUseCase, communityUseCase, orderUseCase, userUseCase, uploadUseCase)
	handler.SetupHealthHandler(firebaseAuthClient,
		handler.Dependency{Name: "firebaseAuth", Check: firebaseAuthClient},
		handler.Dependency{Name: "firestore", Check: repository.NewFirestoreHealth(firestoreClient)},
		handler.Dependency{Name: "storage", Check: storageClient},
	)
	handler.SetupDevTokenHandler(firebaseAuthClient, userUseCase)

	limiter := ratelimit.NewRateLimiter(cfg.RateLimitPerMinute)
	go apimiddleware.StartCleanup(ctx, limiter, time.Hour)

	e := echo.New()
	e.HideBanner = cfg.IsProduction()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(apimiddleware.RateLimit(limiter))

	e.Validator = api.NewValidator()

	authMiddleware := apimiddleware.NewAuthMiddleware(authClient)

	router.Setup(e, authMiddleware)
	router.SetupDevRouter(e, cfg.Environment)

	go func() {
		logger.Info("Starting server on port %s...", cfg.ServerPort)
		if err := e.Start(":" + cfg.ServerPort); err != nil {
			logger.Info("Server stopped: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed: %v", err)
	}
}
