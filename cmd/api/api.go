package main

import (
	"context"
	"errors"
	"expvar"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"fratmap/internal/auth"
	"fratmap/internal/ratelimiter"
	"fratmap/internal/store"
)

type application struct {
	config        config
	store         store.Storage
	propagator    *store.Propagator
	logger        *zap.SugaredLogger
	authenticator auth.Authenticator
	rateLimiter   *ratelimiter.TokenBucketLimiter
}

type config struct {
	addr        string
	env         string
	frontendURL string
	db          dbConfig
	seedFile    string
	auth        authConfig
	rateLimiter ratelimiter.Config
}

type authConfig struct {
	basic basicConfig
	token tokenConfig
}

type tokenConfig struct {
	secret        string
	refreshSecret string
	iss           string
}

type basicConfig struct {
	user string
	pass string
}

type dbConfig struct {
	addr        string
	maxConns    int
	maxIdleTime string
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Use(app.RateLimiterMiddleware)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Route("/v1", func(r chi.Router) {
		r.With(app.BasicAuthMiddleware()).Get("/health", app.healthCheckHandler)
		r.With(app.BasicAuthMiddleware()).Get("/debug/vars", expvar.Handler().ServeHTTP)

		r.Route("/authentication", func(r chi.Router) {
			r.With(app.BasicAuthMiddleware()).Post("/token", app.createTokenHandler)
			r.Post("/refresh", app.refreshTokenHandler)
		})

		r.Route("/schools", func(r chi.Router) {
			r.Get("/", app.listSchoolsHandler)
			r.Route("/{schoolID}", func(r chi.Router) {
				r.Get("/", app.getSchoolHandler)
				r.Get("/venues", app.listSchoolVenuesHandler)
				r.Get("/frats", app.getSchoolFratStatsHandler)
				r.Get("/frat-ratings", app.listSchoolFratRatingsHandler)
				r.With(app.AuthTokenMiddleware).Post("/frats/{fratName}/ratings", app.createFratRatingHandler)
			})
		})

		r.Route("/venues", func(r chi.Router) {
			r.With(app.AuthTokenMiddleware).Post("/", app.createVenueHandler)
			r.With(app.AuthTokenMiddleware, app.RequireAdmin).Get("/pending", app.listPendingVenuesHandler)

			r.Route("/{venueID}", func(r chi.Router) {
				r.Get("/", app.getVenueHandler)
				r.Get("/ratings", app.getVenueRatingsHandler)
				r.With(app.AuthTokenMiddleware).Post("/ratings", app.createVenueRatingHandler)
				r.With(app.AuthTokenMiddleware, app.RequireAdmin).Patch("/approve", app.approveVenueHandler)
				r.With(app.AuthTokenMiddleware, app.RequireAdmin).Delete("/", app.rejectVenueHandler)
			})
		})

		r.Route("/ratings", func(r chi.Router) {
			r.Get("/recent", app.listRecentRatingsHandler)
			r.With(app.AuthTokenMiddleware).Post("/{ratingID}/vote", app.voteRatingHandler)
		})

		r.Route("/frat-ratings", func(r chi.Router) {
			r.With(app.AuthTokenMiddleware).Post("/{ratingID}/vote", app.voteFratRatingHandler)
		})
	})
	return r
}

func (app *application) run(mux http.Handler) error {
	srv := &http.Server{
		Addr:         app.config.addr,
		Handler:      mux,
		WriteTimeout: time.Second * 30,
		ReadTimeout:  time.Second * 10,
		IdleTimeout:  time.Minute,
	}

	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		app.logger.Infow("signal caught", "signal", s.String())

		shutdown <- srv.Shutdown(ctx)
	}()

	app.logger.Infow("server has started", "addr", app.config.addr, "env", app.config.env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Infow("server has stopped", "addr", app.config.addr, "env", app.config.env)

	return nil
}
