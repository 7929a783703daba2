// internal/web/server.go
//
// HTTP surface of the backend.
//
// Context
// -------
// One Server owns every dependency the handlers need; Routes() assembles
// the chi router.  Public endpoints (contact, newsletter signup/confirm,
// program listing) sit next to admin endpoints gated by requireAdmin,
// which accepts either the pre-shared operator token or a bearer token
// from the login flow.
package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/najeorg/naje-backend/internal/auth"
	"github.com/najeorg/naje-backend/internal/mailer"
	"github.com/najeorg/naje-backend/internal/program"
	"github.com/najeorg/naje-backend/internal/ratelimit"
	"github.com/najeorg/naje-backend/internal/requestinfo"
	"github.com/najeorg/naje-backend/internal/storage"
	"github.com/najeorg/naje-backend/internal/subscriber"
)

// Server bundles the handler dependencies.
type Server struct {
	db       *sqlx.DB
	authz    auth.Authorizer
	tokenTTL time.Duration

	programs *program.Service
	subs     *subscriber.Service

	mail      mailer.Sender // nil when unconfigured
	from      mailer.Address
	contactTo string // operator inbox
	logo      *mailer.Attachment

	limiter *ratelimit.Limiter
	store   *storage.Store // nil when no bucket is configured
	appURL  string
}

// Options carries the wiring for New; every nil-able field degrades the
// matching feature instead of failing startup.
type Options struct {
	DB         *sqlx.DB
	Authorizer auth.Authorizer
	TokenTTL   time.Duration
	Programs   *program.Service
	Subs       *subscriber.Service
	Mail       mailer.Sender
	From       mailer.Address
	ContactTo  string
	Logo       *mailer.Attachment
	Limiter    *ratelimit.Limiter
	Store      *storage.Store
	AppURL     string
}

// New builds a Server.
func New(o Options) *Server {
	ttl := o.TokenTTL
	if ttl <= 0 {
		ttl = 8 * time.Hour
	}
	return &Server{
		db:        o.DB,
		authz:     o.Authorizer,
		tokenTTL:  ttl,
		programs:  o.Programs,
		subs:      o.Subs,
		mail:      o.Mail,
		from:      o.From,
		contactTo: o.ContactTo,
		logo:      o.Logo,
		limiter:   o.Limiter,
		store:     o.Store,
		appURL:    o.AppURL,
	}
}

// Routes assembles the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(requestinfo.Enrich)
	r.Use(securityHeaders)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", s.handleLogin)
		r.Post("/contact", s.handleContact)

		r.Post("/newsletter", s.handleSubscribe)
		r.Get("/newsletter/confirm", s.handleConfirm)
		r.With(s.requireAdmin).Get("/newsletter", s.handleSubscriberList)

		r.Get("/programs", s.handleProgramList)
		r.Get("/programs/{id}", s.handleProgramGet)
		r.Group(func(r chi.Router) {
			r.Use(s.requireAdmin)
			r.Post("/programs", s.handleProgramCreate)
			r.Put("/programs/{id}", s.handleProgramUpdate)
			r.Delete("/programs/{id}", s.handleProgramDelete)

			r.Post("/media", s.handleMediaUpload)
			r.Delete("/media", s.handleMediaDelete)
		})
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
