package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Server HTTP сервер для webhook Telegram и проверки живости
type Server struct {
	srv    *http.Server
	logger *zap.Logger
}

// NewServer вешает webhook на webhookPath (POST) и /healthz (GET)
func NewServer(listen, webhookPath string, webhook http.Handler, logger *zap.Logger) *Server {
	if webhookPath == "" {
		webhookPath = "/webhook"
	}

	r := mux.NewRouter()
	r.Handle(webhookPath, webhook).Methods(http.MethodPost)
	r.HandleFunc("/healthz", healthz).Methods(http.MethodGet)

	return &Server{
		srv: &http.Server{
			Addr:              listen,
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Handler корневой обработчик
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// Start слушает адрес до вызова Shutdown
func (s *Server) Start() error {
	s.logger.Info("Starting webhook server", zap.String("listen", s.srv.Addr))
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
