package main

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/speps/go-hashids/v2"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	"rentora/docs"
	"rentora/internal/accesscontrol"
	"rentora/internal/auth"
	"rentora/internal/mailer"
	"rentora/internal/notifications"
	"rentora/internal/ratelimiter"
	"rentora/internal/store"
)

type application struct {
	config        config
	store         store.Storage
	logger        *zap.SugaredLogger
	cld           *cloudinary.Cloudinary
	mailer        mailer.Client
	authenticator *auth.JWTAuthenticator
	authorizer    *accesscontrol.Authorizer
	push          notifications.PushSender
	rateLimiter   ratelimiter.Limiter
	payRefs       *hashids.HashID
}

type config struct {
	addr        string
	db          dbConfig
	env         string
	apiURL      string
	mail        mailConfig
	frontendURL string
	auth        authConfig
	rateLimiter ratelimiter.Config
}

type authConfig struct {
	basic basicConfig
	token auth.TokenConfig
}

type basicConfig struct {
	user string
	pass string
}

type mailConfig struct {
	exp       time.Duration
	fromEmail string
	mailtrap  mailTrapConfig
}

type mailTrapConfig struct {
	apiKey string
}

type dbConfig struct {
	addr        string
	maxConns    int32
	maxIdleTime time.Duration
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(app.RateLimiterMiddleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{app.config.frontendURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true, // cookie transport
		MaxAge:           300,
	}))

	r.Use(middleware.Timeout(60 * time.Second))

	r.Route("/v1", func(r chi.Router) {
		r.With(app.BasicAuthMiddleware()).Get("/health", app.healthCheckHandler)
		r.With(app.BasicAuthMiddleware()).Get("/debug/vars", expvar.Handler().ServeHTTP)

		docsURL := fmt.Sprintf("%s/swagger/doc.json", app.config.addr)
		r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL(docsURL)))

		r.Route("/authentication", func(r chi.Router) {
			r.Post("/user", app.registerUserHandler)
			r.Put("/activate/{token}", app.activateUserHandler)
			r.Post("/token", app.loginHandler)
			r.Post("/refresh", app.refreshTokenHandler)
			r.Get("/session", app.sessionHandler)
			r.Post("/reset-password", app.requestResetPasswordHandler)
			r.Patch("/reset-password", app.resetPasswordHandler)
			r.With(app.AuthTokenMiddleware).Post("/logout", app.logoutHandler)
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", app.listUsersHandler)
			r.Post("/", app.createUserHandler)
			r.With(app.AuthTokenMiddleware).Post("/push-token", app.registerPushTokenHandler)
			r.Route("/{userID}", func(r chi.Router) {
				r.Get("/", app.getUserHandler)
				r.Put("/", app.updateUserHandler)
				r.Delete("/", app.deleteUserHandler)
			})
		})

		r.Route("/properties", func(r chi.Router) {
			r.Post("/", app.createPropertyHandler)
			r.Get("/", app.listPropertiesHandler)
			r.Route("/{propertyID}", func(r chi.Router) {
				r.Get("/", app.getPropertyHandler)
				r.Patch("/", app.updatePropertyHandler)
				r.Delete("/", app.deletePropertyHandler)
				r.Post("/photos", app.uploadPropertyPhotoHandler)
				r.Delete("/photos", app.deletePropertyPhotoHandler)
			})
		})

		r.Route("/contracts", func(r chi.Router) {
			r.Post("/", app.createContractHandler)
			r.Get("/", app.listContractsHandler)
			r.Route("/{contractID}", func(r chi.Router) {
				r.Get("/", app.getContractHandler)
				r.Patch("/", app.updateContractHandler)
				r.Delete("/", app.deleteContractHandler)
				r.Get("/payments", app.listContractPaymentsHandler)
			})
		})

		r.Route("/payments", func(r chi.Router) {
			r.Post("/", app.createPaymentHandler)
			r.Route("/{paymentID}", func(r chi.Router) {
				r.Get("/", app.getPaymentHandler)
				r.Patch("/", app.updatePaymentHandler)
				r.Delete("/", app.deletePaymentHandler)
			})
		})

		r.Route("/tickets", func(r chi.Router) {
			r.Post("/", app.createTicketHandler)
			r.Get("/", app.listTicketsHandler)
			r.Route("/{ticketID}", func(r chi.Router) {
				r.Get("/", app.getTicketHandler)
				r.Patch("/", app.updateTicketHandler)
				r.Delete("/", app.deleteTicketHandler)
			})
		})

		r.Route("/messages", func(r chi.Router) {
			r.Post("/", app.createMessageHandler)
			r.Get("/conversation/{userID}", app.listConversationHandler)
			r.Route("/{messageID}", func(r chi.Router) {
				r.Get("/", app.getMessageHandler)
				r.Delete("/", app.deleteMessageHandler)
			})
		})

		r.Route("/reviews", func(r chi.Router) {
			r.Post("/", app.createReviewHandler)
			r.Get("/user/{userID}", app.listUserReviewsHandler)
			r.Route("/{reviewID}", func(r chi.Router) {
				r.Get("/", app.getReviewHandler)
				r.Delete("/", app.deleteReviewHandler)
			})
		})

		r.Route("/settings", func(r chi.Router) {
			r.Get("/", app.listSettingsHandler)
			r.Route("/{key}", func(r chi.Router) {
				r.Get("/", app.getSettingHandler)
				r.Put("/", app.putSettingHandler)
				r.Delete("/", app.deleteSettingHandler)
			})
		})

		r.Get("/audit-logs", app.listAuditLogsHandler)
	})

	return r
}

func (app *application) run(mux http.Handler) error {
	docs.SwaggerInfo.Version = version
	docs.SwaggerInfo.Host = app.config.apiURL
	docs.SwaggerInfo.BasePath = "/v1"

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

	if err := <-shutdown; err != nil {
		return err
	}

	app.logger.Infow("server has stopped", "addr", app.config.addr, "env", app.config.env)

	return nil
}
