package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/cbodonnell/fakegame/pkg/api/handlers"
	"github.com/cbodonnell/fakegame/pkg/api/middleware"
	"github.com/cbodonnell/fakegame/pkg/log"
	"github.com/cbodonnell/fakegame/pkg/repositories"
	"github.com/gorilla/mux"
)

type APIServer struct {
	server *http.Server
	tls    *TLSConfig
}

type TLSConfig struct {
	CertFile string
	KeyFile  string
}

type NewAPIServerOptions struct {
	Port       int
	TLS        *TLSConfig
	Reconciler handlers.Reconciler
	// Repository serves the ledger. Optional.
	Repository repositories.Repository
	// Events streams UI signals on /events. Optional.
	Events *EventHub
}

// NewAPIServer creates a new http.Server exposing the reconciler to developer tools
func NewAPIServer(opts NewAPIServerOptions) *APIServer {
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", opts.Port),
		Handler: NewHandler(opts),
	}
	return &APIServer{
		server: server,
		tls:    opts.TLS,
	}
}

// NewHandler registers the API routes. CORS wraps the router so preflight
// requests are answered for every route.
func NewHandler(opts NewAPIServerOptions) http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.NewLoggingMiddleware())

	r.HandleFunc("/gamedata", handlers.HandleGetGameData(opts.Reconciler)).Methods(http.MethodGet)
	r.HandleFunc("/products", handlers.HandleListProducts(opts.Reconciler)).Methods(http.MethodGet)
	r.HandleFunc("/slots", handlers.HandleListSlots(opts.Reconciler)).Methods(http.MethodGet)
	r.HandleFunc("/slots/{index:[0-9]+}/purchase", handlers.HandlePurchaseSlot(opts.Reconciler)).Methods(http.MethodPost)
	r.HandleFunc("/restore", handlers.HandleRestore(opts.Reconciler)).Methods(http.MethodPost)
	r.HandleFunc("/consume/{resource}", handlers.HandleConsume(opts.Reconciler)).Methods(http.MethodPost)
	r.HandleFunc("/reset", handlers.HandleReset(opts.Reconciler)).Methods(http.MethodPost)
	r.HandleFunc("/export", handlers.HandleExport(opts.Reconciler)).Methods(http.MethodGet)
	r.HandleFunc("/transactions", handlers.HandleListTransactions(opts.Repository)).Methods(http.MethodGet)
	if opts.Events != nil {
		r.HandleFunc("/events", opts.Events.HandleEvents).Methods(http.MethodGet)
	}
	return middleware.NewCORSMiddleware()(r)
}

// Start starts the APIServer
func (s *APIServer) Start() {
	var listenAndServe func() error
	if s.tls != nil {
		log.Info("API server listening on %s with TLS", s.server.Addr)
		listenAndServe = func() error {
			return s.server.ListenAndServeTLS(s.tls.CertFile, s.tls.KeyFile)
		}
	} else {
		log.Info("API server listening on %s", s.server.Addr)
		listenAndServe = s.server.ListenAndServe
	}
	if err := listenAndServe(); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			log.Info("API server closed")
			return
		}
		log.Error("API server error: %v", err)
	}
}

// Stop stops the APIServer
func (s *APIServer) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
