package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bloodlink/internal/auth"
	"bloodlink/internal/cache"
	"bloodlink/internal/config"
	"bloodlink/internal/database"
	"bloodlink/internal/handlers"
	"bloodlink/internal/logging"
	"bloodlink/internal/repository"
	"bloodlink/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	cacheTTL        = 5 * time.Minute
	shutdownTimeout = 15 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// the logger depends on config, so fall back to stderr
		os.Stderr.WriteString("failed to load configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		os.Stderr.WriteString("failed to create logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server exited with error", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db, err := database.Open(ctx, cfg.DatabaseURL, logger.Named("db"), cfg.IsProduction())
	if err != nil {
		return err
	}
	defer database.Close(db)
	repos := repository.New(db)

	// Optional integrations
	var geocoder services.Geocoder
	if maps, err := services.NewMapsService(cfg.GoogleMapsAPIKey); err == nil {
		geocoder = maps
	} else {
		logger.Info("geocoding disabled", zap.Error(err))
	}

	var certificates services.CertificateUploader
	if cfg.CloudinaryCloudName != "" {
		cld, err := services.NewCertificateService(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
		if err != nil {
			return err
		}
		certificates = cld
	} else {
		logger.Info("certificate uploads disabled, CLOUDINARY_CLOUD_NAME not set")
	}

	var responseCache cache.Cache = cache.Noop{}
	if cfg.RedisURL != "" {
		rc, err := cache.NewRedisCache(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer rc.Close()
		responseCache = rc
	} else {
		logger.Info("response cache disabled, REDIS_URL not set")
	}

	var google *auth.GoogleProvider
	if cfg.GoogleSignInEnabled() {
		google = auth.NewGoogleProvider(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)
	}

	// Services
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTExpiry)
	email := services.NewEmailService(services.NewMailer(cfg.Email, logger.Named("mail")), cfg.BaseURL)
	hospitals := services.NewHospitalService(repos.Hospitals, repos.Appointments, geocoder, logger)

	if cfg.HospitalsFile != "" {
		seed, err := config.LoadHospitals(cfg.HospitalsFile)
		if err != nil {
			return err
		}
		n, err := hospitals.Seed(ctx, seed)
		if err != nil {
			return err
		}
		logger.Info("hospitals seeded", zap.Int("count", n), zap.String("file", cfg.HospitalsFile))
	}

	h := &handlers.Handler{
		Auth:             services.NewAuthService(repos.Admins, repos.Donors, tokens, email, logger),
		Donors:           services.NewDonorService(repos.Donors, logger),
		Search:           services.NewSearchService(repos.Donors, logger),
		Hospitals:        hospitals,
		Requests:         services.NewRequestService(repos.Requests, repos.Alerts, repos.Donors, repos.Hospitals, email, logger),
		Appointments:     services.NewAppointmentService(repos.Appointments, repos.Hospitals, repos.Donors, email, logger),
		Donations:        services.NewDonationService(repos.Donations, repos.Donors, repos.Hospitals, certificates, logger),
		Dashboard:        services.NewDashboardService(repos),
		Tokens:           tokens,
		Google:           google,
		Cache:            responseCache,
		CacheTTL:         cacheTTL,
		RevalidateSecret: cfg.RevalidateSecret,
		FrontendURL:      cfg.BaseURL,
		Logger:           logger,
	}

	// Initialize Gin router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := handlers.RegisterValidators(); err != nil {
		return err
	}

	router := gin.New()
	router.SetTrustedProxies([]string{"127.0.0.1"})
	router.Use(
		gin.Recovery(),
		logging.RequestIDMiddleware(),
		logging.RequestLogger(logger.Named("http")),
		cors.New(cors.Config{
			AllowOrigins:     cfg.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID", "X-Revalidate-Secret"},
			ExposeHeaders:    []string{"X-Request-ID", "X-Cache"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
	)
	h.Routes(router)

	// Background reminders
	reminders := services.NewReminderWorker(repos.Appointments, email, cfg.ReminderInterval, logger)
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		reminders.Run(ctx)
	}()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		stop()
		<-workerDone
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	<-workerDone
	return nil
}
