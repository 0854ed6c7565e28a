package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"msgboard/internal/config"
	"msgboard/internal/model"
	"msgboard/internal/storage"
)

// Publisher receives every successfully stored message.
type Publisher interface {
	Publish(msg model.Message)
}

// Handler holds application dependencies
type Handler struct {
	Store  storage.Store
	Config config.Config
	Logger *zap.Logger
	// Feed is optional; nil disables publishing.
	Feed Publisher
}

// New creates a new Handler with the given dependencies
func New(store storage.Store, cfg config.Config, logger *zap.Logger, feed Publisher) *Handler {
	return &Handler{
		Store:  store,
		Config: cfg,
		Logger: logger,
		Feed:   feed,
	}
}

// SetupRouter configures and returns the HTTP router
func (h *Handler) SetupRouter() *mux.Router {
	r := mux.NewRouter()
	r.Use(h.logRequests, h.withConn)

	r.HandleFunc("/", h.CreateMessage).Methods(http.MethodPost)
	r.HandleFunc("/", h.GetMessages).Methods(http.MethodGet)

	// Unmatched paths and methods both answer 404 and never touch storage.
	notFound := h.logRequests(http.HandlerFunc(routeNotFound))
	r.NotFoundHandler = notFound
	r.MethodNotAllowedHandler = notFound

	return r
}

func routeNotFound(w http.ResponseWriter, _ *http.Request) {
	writeEmpty(w, http.StatusNotFound)
}
