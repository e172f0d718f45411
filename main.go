package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/time/rate"

	"github.com/HSouheill/simstore_backend/config"
	"github.com/HSouheill/simstore_backend/middleware"
	"github.com/HSouheill/simstore_backend/repositories"
	"github.com/HSouheill/simstore_backend/routes"
	"github.com/HSouheill/simstore_backend/services"
	"github.com/HSouheill/simstore_backend/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	authLogger := log.New(os.Stdout, "[AUTH] ", log.LstdFlags)
	otpLogger := log.New(os.Stdout, "[OTP] ", log.LstdFlags)

	// Connect to database
	client, err := config.ConnectDB(cfg)
	if err != nil {
		log.Fatalf("MongoDB connection error: %v", err)
	}
	db := client.Database(cfg.DBName)

	var redisClient *redis.Client
	if cfg.OTPStore == "redis" {
		if redisClient, err = config.ConnectRedis(cfg); err != nil {
			log.Fatalf("Redis connection error: %v", err)
		}
	}

	challenges, resets := buildOTPStores(cfg, db, redisClient)

	credentials := services.NewCredentialService(repositories.NewUserRepository(db))
	otpService := services.NewOTPService(challenges, cfg.OTPLength, cfg.OTPTTL, otpLogger)
	tokenService := services.NewTokenService(cfg.JWTSecret, cfg.SessionTTL, cfg.ResetTokenTTL, resets)

	authService := services.NewAuthService(services.AuthServiceConfig{
		Credentials: credentials,
		OTP:         otpService,
		Tokens:      tokenService,
		Sender:      buildOTPSender(cfg, otpLogger),
		ExposeOTP:   cfg.ExposeOTP,
		Logger:      authLogger,
	})

	e := echo.New()
	e.HideBanner = true
	e.Validator = utils.NewValidator()

	rateLimiter := middleware.NewRateLimiter()
	// Authenticated OTP endpoints get the same treatment as the public ones
	rateLimiter.SetEndpointLimit("/users/verify-mobile/send", rate.Every(20*time.Second), 3)
	rateLimiter.SetEndpointLimit("/users/verify-mobile/confirm", rate.Every(2*time.Second), 5)

	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.BodyLimit("64K"))
	e.Use(middleware.GlobalCORS(cfg.CORSAllowedOrigins))
	e.Use(middleware.SecurityHeaders())
	e.Use(rateLimiter.RateLimit())

	routes.SetupRoutes(e, authService, authLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go runEvery(ctx, time.Hour, rateLimiter.Cleanup)
	if purger, ok := challenges.(*repositories.OTPRepository); ok {
		go runEvery(ctx, 5*time.Minute, func() {
			purgeCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			defer cancel()
			if n, err := purger.PurgeExpired(purgeCtx); err != nil {
				otpLogger.Printf("OTP cleanup failed: %v", err)
			} else if n > 0 {
				otpLogger.Printf("Cleaned up %d expired OTPs", n)
			}
		})
	}

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			e.Logger.Fatal(err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP shutdown error: %v", err)
	}
	if redisClient != nil {
		redisClient.Close()
	}
	if err := client.Disconnect(shutdownCtx); err != nil {
		log.Printf("MongoDB disconnect error: %v", err)
	}
}

func buildOTPStores(cfg *config.Config, db *mongo.Database, redisClient *redis.Client) (services.ChallengeStore, services.ResetTokenStore) {
	if cfg.OTPStore == "mongo" {
		return repositories.NewOTPRepository(db, cfg.OTPMaxAttempts), repositories.NewResetTokenRepository(db)
	}
	return repositories.NewRedisOTPRepository(redisClient, cfg.OTPMaxAttempts), repositories.NewRedisResetTokenRepository(redisClient)
}

func buildOTPSender(cfg *config.Config, logger *log.Logger) services.OTPSender {
	switch cfg.OTPChannel {
	case "email":
		return utils.NewEmailService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.FromEmail)
	case "log":
		return utils.LogSender{Logger: logger}
	default:
		return utils.NewSMSService(cfg.SMSUsername, cfg.SMSPassword, cfg.SMSSenderID, cfg.SMSAPIPath, logger)
	}
}

func runEvery(ctx context.Context, interval time.Duration, fn func()) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn()
		}
	}
}
