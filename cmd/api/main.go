package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"fratmap/internal/auth"
	"fratmap/internal/db"
	"fratmap/internal/persist"
	"fratmap/internal/ratelimiter"
	"fratmap/internal/sanitize"
	"fratmap/internal/seed"
	"fratmap/internal/store"
)

// LoadRateLimiterConfig retrieves rate limiter settings from environment variables
func LoadRateLimiterConfig() ratelimiter.Config {
	cfg := ratelimiter.Config{
		RequestsPerSecond: 2,
		Burst:             10,
		IdleWindow:        3 * time.Minute,
		Enabled:           false,
	}

	if val, exists := os.LookupEnv("RATELIMITER_RPS"); exists {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.RequestsPerSecond = parsed
		} else {
			fmt.Println("Invalid RATELIMITER_RPS, defaulting to", cfg.RequestsPerSecond)
		}
	}
	if val, exists := os.LookupEnv("RATELIMITER_BURST"); exists {
		if parsed, err := strconv.Atoi(val); err == nil {
			cfg.Burst = parsed
		} else {
			fmt.Println("Invalid RATELIMITER_BURST, defaulting to", cfg.Burst)
		}
	}
	if val, exists := os.LookupEnv("RATELIMITER_IDLE_WINDOW"); exists {
		if parsed, err := time.ParseDuration(val); err == nil {
			cfg.IdleWindow = parsed
		} else {
			fmt.Println("Invalid RATELIMITER_IDLE_WINDOW, defaulting to", cfg.IdleWindow)
		}
	}
	if val, exists := os.LookupEnv("RATELIMITER_ENABLED"); exists {
		if parsed, err := strconv.ParseBool(val); err == nil {
			cfg.Enabled = parsed
		} else {
			fmt.Println("Invalid RATELIMITER_ENABLED, defaulting to", cfg.Enabled)
		}
	}
	return cfg
}

// NewLogger creates a new zap logger with color.
func NewLogger() (*zap.SugaredLogger, error) {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder

	consoleEncoder := zapcore.NewConsoleEncoder(encoderCfg)
	level := zapcore.InfoLevel

	core := zapcore.NewCore(consoleEncoder, zapcore.NewMultiWriteSyncer(zapcore.AddSync(os.Stdout)), level)

	logger := zap.New(core)

	return logger.Sugar(), nil
}

var version = "1.0.0"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfg := config{
		addr:        os.Getenv("ADDR"),
		env:         os.Getenv("ENV"),
		frontendURL: os.Getenv("FRONTEND_URL"),
		seedFile:    os.Getenv("SEED_FILE"),
		db: dbConfig{
			addr:        os.Getenv("DB_ADDR"),
			maxConns:    25,
			maxIdleTime: "15m",
		},
		auth: authConfig{
			basic: basicConfig{
				user: os.Getenv("BASIC_AUTH_USER"),
				pass: os.Getenv("BASIC_AUTH_PASS"),
			},
			token: tokenConfig{
				secret:        os.Getenv("AUTH_TOKEN_SECRET"),
				refreshSecret: os.Getenv("AUTH_REFRESH_SECRET"),
				iss:           "fratmap",
			},
		},
		rateLimiter: LoadRateLimiterConfig(),
	}
	if cfg.addr == "" {
		cfg.addr = ":8080"
	}
	if val, exists := os.LookupEnv("DB_MAX_CONNS"); exists {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			log.Fatalf("Invalid value for DB_MAX_CONNS: %v", err)
		}
		cfg.db.maxConns = parsed
	}

	logger, err := NewLogger()
	if err != nil {
		log.Fatalf("could not build logger: %v", err)
	}
	defer logger.Sync()

	// The database is an optional side channel; without DB_ADDR the
	// service runs as a pure in-memory store.
	var persister store.Persister
	if cfg.db.addr != "" {
		pool, err := db.New(cfg.db.addr, int32(cfg.db.maxConns), cfg.db.maxIdleTime)
		if err != nil {
			logger.Fatalw("could not connect to database", "error", err)
		}
		defer pool.Close()
		persister = persist.NewPostgres(pool)
		logger.Infow("database side channel connected")
	} else {
		logger.Infow("no DB_ADDR set, running in-memory only")
	}

	st, err := store.NewStorage(logger, sanitize.New(), persister)
	if err != nil {
		logger.Fatalw("could not build storage", "error", err)
	}

	if cfg.seedFile != "" {
		fixture, err := seed.Load(cfg.seedFile)
		if err != nil {
			logger.Fatalw("could not load seed file", "path", cfg.seedFile, "error", err)
		}
		seed.Apply(context.Background(), fixture, st)
		logger.Infow("seed applied",
			"schools", len(fixture.Schools),
			"venues", len(fixture.Venues),
			"ratings", len(fixture.Ratings),
			"frat_ratings", len(fixture.FratRatings),
		)
	}

	rateLimiter := ratelimiter.NewTokenBucketLimiter(cfg.rateLimiter)

	jwtAuthenticator := auth.NewJWTAuthenticator(
		cfg.auth.token.secret,
		cfg.auth.token.refreshSecret,
		cfg.auth.token.iss,
		cfg.auth.token.iss,
	)

	app := &application{
		config:        cfg,
		logger:        logger,
		store:         st,
		propagator:    store.NewPropagator(st.Ratings, st.Venues, st.Schools),
		authenticator: jwtAuthenticator,
		rateLimiter:   rateLimiter,
	}

	expvar.NewString("version").Set(version)
	expvar.Publish("goroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))

	mux := app.mount()

	logger.Fatal(app.run(mux))
}
