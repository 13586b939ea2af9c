// Package httpapi exposes attendance data over HTTP for browser clients that
// carry the dashboard session in the sessionToken cookie.
package httpapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"attendance-bot/internal/service"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

const (
	SessionCookie   = "sessionToken"
	shutdownTimeout = 5 * time.Second
)

type Server struct {
	attendanceService *service.AttendanceService
	logger            *logrus.Logger
	logWriter         *io.PipeWriter
	httpServer        *http.Server
}

func NewServer(addr string, attendanceService *service.AttendanceService) *Server {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	s := &Server{
		attendanceService: attendanceService,
		logger:            logger,
		logWriter:         logger.Writer(),
	}
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler собирает маршруты и оборачивает их логированием и восстановлением после паники
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", s.health).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/attendance", s.attendanceProxy).Methods(http.MethodGet)
	api.HandleFunc("/summary", s.summary).Methods(http.MethodGet)

	r.Handle("/dashboard", requireSession(http.HandlerFunc(s.dashboard))).Methods(http.MethodGet)
	r.HandleFunc("/", s.landing).Methods(http.MethodGet)

	logged := handlers.LoggingHandler(s.logWriter, r)
	return handlers.RecoveryHandler(
		handlers.RecoveryLogger(s.logger),
		handlers.PrintRecoveryStack(true),
	)(logged)
}

// Run обслуживает запросы до отмены контекста, затем плавно останавливает сервер
func (s *Server) Run(ctx context.Context) error {
	defer s.logWriter.Close()

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", s.httpServer.Addr).Info("HTTP server listening")
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info("HTTP server stopped")
	return nil
}
