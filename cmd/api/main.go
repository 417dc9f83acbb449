package main

import (
	"expvar"
	"fmt"
	"log"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/9ssi7/exponent"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/joho/godotenv"
	"github.com/speps/go-hashids/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"rentora/internal/accesscontrol"
	"rentora/internal/auth"
	"rentora/internal/db"
	"rentora/internal/mailer"
	"rentora/internal/notifications"
	"rentora/internal/ratelimiter"
	"rentora/internal/store"
)

var version = "1.0.0"

func envDuration(key string, fallback time.Duration) time.Duration {
	if val, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
		fmt.Println("Invalid", key, "- defaulting to", fallback)
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if val, exists := os.LookupEnv(key); exists {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
		fmt.Println("Invalid", key, "- defaulting to", fallback)
	}
	return fallback
}

func loadRateLimiterConfig() ratelimiter.Config {
	enabled := false
	if val, exists := os.LookupEnv("RATE_LIMITER_ENABLED"); exists {
		if parsed, err := strconv.ParseBool(val); err == nil {
			enabled = parsed
		}
	}
	return ratelimiter.Config{
		RequestsPerTimeFrame: envInt("RATELIMITER_REQUESTS_COUNT", 200),
		TimeFrame:            5 * time.Second,
		Enabled:              enabled,
	}
}

// NewLogger creates the zap console logger used everywhere.
func NewLogger() (*zap.SugaredLogger, error) {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderCfg),
		zapcore.AddSync(os.Stdout),
		zapcore.InfoLevel,
	)

	return zap.New(core).Sugar(), nil
}

//	@title			Rentora API
//	@description	Property-rental management API: owners, tenants, brokers, runners, providers, support and admins.

//	@BasePath					/v1
//	@securityDefinitions.apikey	CookieAuth
//	@in							cookie
//	@name						auth-token

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfg := config{
		addr:        os.Getenv("ADDR"),
		env:         os.Getenv("ENV"),
		frontendURL: os.Getenv("FRONTEND_URL"),
		apiURL:      os.Getenv("EXTERNAL_URL"),
		db: dbConfig{
			addr:        os.Getenv("DB_ADDR"),
			maxConns:    int32(envInt("DB_MAX_CONNS", 30)),
			maxIdleTime: envDuration("DB_MAX_IDLE_TIME", 15*time.Minute),
		},
		mail: mailConfig{
			exp:       time.Hour * 24 * 3,
			fromEmail: os.Getenv("MAIL_FROM_EMAIL"),
			mailtrap: mailTrapConfig{
				apiKey: os.Getenv("MAILTRAP_API_KEY"),
			},
		},
		auth: authConfig{
			basic: basicConfig{
				user: os.Getenv("AUTH_BASIC_USER"),
				pass: os.Getenv("AUTH_BASIC_PASS"),
			},
			token: auth.TokenConfig{
				Secret:          os.Getenv("AUTH_TOKEN_SECRET"),
				RefreshSecret:   os.Getenv("AUTH_TOKEN_REFRESH_SECRET"),
				AccessTokenExp:  envDuration("AUTH_ACCESS_TOKEN_EXP", time.Hour),
				RefreshTokenExp: envDuration("AUTH_REFRESH_TOKEN_EXP", 7*24*time.Hour),
				Iss:             "rentora",
				Production:      os.Getenv("ENV") == "production",
			},
		},
		rateLimiter: loadRateLimiterConfig(),
	}

	logger, err := NewLogger()
	if err != nil {
		fmt.Println("Error creating logger:", err)
		return
	}
	defer logger.Sync()

	// Token secrets are validated here, once, so a misconfigured deployment
	// dies at startup instead of on the first login.
	authenticator, err := auth.NewJWTAuthenticator(cfg.auth.token)
	if err != nil {
		logger.Fatal(err)
	}

	database, err := db.New(cfg.db.addr, cfg.db.maxConns, cfg.db.maxIdleTime)
	if err != nil {
		logger.Fatal(err)
	}
	defer database.Close()
	logger.Info("database connection pool established")

	storage := store.NewStorage(database)

	registry := accesscontrol.NewRegistry(accesscontrol.Resolvers{
		Properties: storage.Properties.IsOwner,
		Contracts:  storage.Contracts.IsParticipant,
		Payments:   storage.Payments.IsParticipant,
		Tickets:    storage.Tickets.IsParticipant,
		Messages:   storage.Messages.IsParticipant,
		Reviews:    storage.Reviews.IsParticipant,
	})
	authorizer := accesscontrol.NewAuthorizer(authenticator, registry)

	cld, err := cloudinary.NewFromURL(os.Getenv("CLOUDINARY_URL"))
	if err != nil {
		logger.Fatal(err)
	}

	mailtrap, err := mailer.NewMailTrapClient(cfg.mail.mailtrap.apiKey, cfg.mail.fromEmail)
	if err != nil {
		logger.Fatal(err)
	}

	push := notifications.NewExpoAdapter(exponent.NewClient())

	rateLimiter := ratelimiter.NewFixedWindowLimiter(
		cfg.rateLimiter.RequestsPerTimeFrame,
		cfg.rateLimiter.TimeFrame,
	)

	// Payment reference codes: short, non-sequential, decodable.
	hd := hashids.NewData()
	hd.Salt = os.Getenv("PAYMENT_REF_SALT")
	hd.MinLength = 8
	payRefs, err := hashids.NewWithData(hd)
	if err != nil {
		logger.Fatal(err)
	}

	app := &application{
		config:        cfg,
		logger:        logger,
		store:         storage,
		cld:           cld,
		mailer:        mailtrap,
		authenticator: authenticator,
		authorizer:    authorizer,
		push:          push,
		rateLimiter:   rateLimiter,
		payRefs:       payRefs,
	}

	// Metrics at /v1/debug/vars
	expvar.NewString("version").Set(version)
	expvar.Publish("database", expvar.Func(func() any {
		s := database.Stat()
		return map[string]any{
			"total_conns":    s.TotalConns(),
			"idle_conns":     s.IdleConns(),
			"acquired_conns": s.AcquiredConns(),
		}
	}))
	expvar.Publish("goroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))

	mux := app.mount()

	logger.Fatal(app.run(mux))
}
