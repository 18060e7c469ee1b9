// Package httpapi exposes the user and company services over HTTP/JSON.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/companyhub/internal/logging"
	"github.com/dmitrijs2005/companyhub/internal/server/config"
	"github.com/dmitrijs2005/companyhub/internal/server/models"
	"github.com/dmitrijs2005/companyhub/internal/server/services"
	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// UserService is the subset of services.UserService used by the handlers.
type UserService interface {
	Register(ctx context.Context, name, email, password string) (*models.User, *services.AccessToken, error)
	Login(ctx context.Context, email, password string) (*services.AccessToken, error)
	Logout(ctx context.Context, id services.Identity) error
	Authenticate(ctx context.Context, token string) (*services.Identity, error)
	Me(ctx context.Context, userID string) (*models.User, error)
}

// CompanyService is the subset of services.CompanyService used by the handlers.
type CompanyService interface {
	List(ctx context.Context, userID string) ([]*models.Company, error)
	Create(ctx context.Context, userID string, in services.CompanyInput) (*models.Company, error)
	Get(ctx context.Context, userID, companyID string) (*models.Company, error)
	Update(ctx context.Context, userID, companyID string, patch models.CompanyPatch) (*models.Company, error)
	Delete(ctx context.Context, userID, companyID string) error
	SetActive(ctx context.Context, userID, companyID string) (*models.Company, error)
	Current(ctx context.Context, userID string) (*models.Company, error)
}

// Pinger reports database reachability for /readyz.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Server struct {
	address         string
	logger          logging.Logger
	users           UserService
	companies       CompanyService
	db              Pinger
	debug           bool
	maxBodyBytes    int64
	shutdownTimeout time.Duration
	handler         http.Handler
}

func NewServer(cfg *config.Config, l logging.Logger, us UserService, cs CompanyService, db Pinger) *Server {
	s := &Server{
		address:         cfg.HTTPAddr,
		logger:          l.With("module", "http_server"),
		users:           us,
		companies:       cs,
		db:              db,
		debug:           cfg.Debug,
		maxBodyBytes:    cfg.MaxBodyBytes,
		shutdownTimeout: cfg.ShutdownTimeout,
	}
	s.handler = otelhttp.NewHandler(
		requestID(s.recoverer(s.logRequests(s.bodyLimit(s.routes())))),
		"companyhub",
	)
	return s
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.handleReadyz).Methods(http.MethodGet)

	s.mount(r.PathPrefix("/api").Subrouter())
	s.mount(r)

	return r
}

// mount registers the API routes on r. Everything except register and login
// sits behind the auth gate.
func (s *Server) mount(r *mux.Router) {
	r.HandleFunc("/register", s.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)

	p := r.NewRoute().Subrouter()
	p.Use(s.authenticate)

	p.HandleFunc("/logout", s.handleLogout).Methods(http.MethodPost)
	p.HandleFunc("/me", s.handleMe).Methods(http.MethodGet)

	p.HandleFunc("/companies", s.handleListCompanies).Methods(http.MethodGet)
	p.HandleFunc("/companies", s.handleCreateCompany).Methods(http.MethodPost)
	p.HandleFunc("/companies/current", s.handleCurrentCompany).Methods(http.MethodGet)
	p.HandleFunc("/companies/{id}", s.handleGetCompany).Methods(http.MethodGet)
	p.HandleFunc("/companies/{id}", s.handleUpdateCompany).Methods(http.MethodPut, http.MethodPatch)
	p.HandleFunc("/companies/{id}", s.handleDeleteCompany).Methods(http.MethodDelete)
	p.HandleFunc("/companies/{id}/set-active", s.handleSetActiveCompany).Methods(http.MethodPost)
}

// Run serves HTTP on the configured address until ctx is cancelled, then
// shuts down gracefully within the shutdown timeout.
func (s *Server) Run(ctx context.Context) error {

	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdownErr := make(chan error, 1)
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
		defer cancel()
		shutdownErr <- srv.Shutdown(sctx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return <-shutdownErr
}
