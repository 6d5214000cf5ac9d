package server

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"marketfront/auth"
	"marketfront/market"
)

// Server wires the storefront routes over the token manager and Market
// client.
type Server struct {
	router   *mux.Router
	sessions *Sessions
	manager  *auth.Manager
	market   *market.Client
	users    auth.UserStore
	logger   *zap.Logger
}

type Option func(*Server)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

func New(manager *auth.Manager, marketClient *market.Client, users auth.UserStore, sessions *Sessions, options ...Option) *Server {
	ret := &Server{
		sessions: sessions,
		manager:  manager,
		market:   marketClient,
		users:    users,
		logger:   zap.NewNop(),
	}
	for _, opt := range options {
		opt(ret)
	}
	ret.routes()
	return ret
}

func (s *Server) routes() {
	router := mux.NewRouter()
	router.Use(s.sessionMiddleware)

	router.HandleFunc("/login", s.handleShowLogin).Methods(http.MethodGet)
	router.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)
	router.HandleFunc("/logout", s.handleLogout).Methods(http.MethodPost)
	router.HandleFunc("/authorization", s.handleAuthorization).Methods(http.MethodGet)

	router.HandleFunc("/products", s.handleProducts).Methods(http.MethodGet)
	router.HandleFunc("/products", s.handlePublishProduct).Methods(http.MethodPost)
	router.HandleFunc("/products/{id}", s.handleProduct).Methods(http.MethodGet)
	router.HandleFunc("/products/{id}/purchase", s.handlePurchase).Methods(http.MethodPost)
	router.HandleFunc("/categories", s.handleCategories).Methods(http.MethodGet)
	router.HandleFunc("/categories/{id}/products", s.handleCategoryProducts).Methods(http.MethodGet)
	router.HandleFunc("/me", s.handleMe).Methods(http.MethodGet)
	router.HandleFunc("/me/purchases", s.handlePurchases).Methods(http.MethodGet)
	router.HandleFunc("/me/publications", s.handlePublications).Methods(http.MethodGet)

	s.router = router
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

type sessionContextKey struct{}

// sessionMiddleware attaches the session, its id (scoping the client-token
// cache) and, when logged in, the stored principal to the request context.
func (s *Server) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, fromCookie := s.sessions.Read(r)
		if !fromCookie {
			// persist fresh anonymous sessions so the client-token cache
			// survives across requests
			if err := s.sessions.Write(w, session); err != nil {
				s.logger.Error("failed to write session cookie", zap.Error(err))
			}
		}
		ctx := context.WithValue(r.Context(), sessionContextKey{}, session)
		ctx = auth.WithSessionID(ctx, session.ID)
		if session.ServiceID != "" {
			if principal, err := s.users.Lookup(ctx, session.ServiceID); err == nil {
				ctx = auth.WithPrincipal(ctx, principal)
			}
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionFrom(ctx context.Context) *Session {
	session, _ := ctx.Value(sessionContextKey{}).(*Session)
	return session
}
