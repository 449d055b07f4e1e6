package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/cesarabia/mangoro-hunter-sub004/internal/dispatch"
)

const defaultHTTPAddr = "127.0.0.1:8710"

// triggerServer exposes the notification trigger to sibling services. It is
// meant for loopback use; bind elsewhere only behind something that
// authenticates.
type triggerServer struct {
	srv *http.Server
	log zerolog.Logger
}

func newTriggerServer(addr string, coord *dispatch.Coordinator, log zerolog.Logger) *triggerServer {
	if strings.TrimSpace(addr) == "" {
		addr = defaultHTTPAddr
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("POST /v1/notify", func(w http.ResponseWriter, r *http.Request) {
		var ev dispatch.Event
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&ev); err != nil {
			http.Error(w, "bad request: "+err.Error(), http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(ev.Type) == "" {
			http.Error(w, "event type is required", http.StatusBadRequest)
			return
		}
		coord.Notify(ev)
		w.WriteHeader(http.StatusAccepted)
	})

	return &triggerServer{
		srv: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		log: log.With().Str("comp", "http").Logger(),
	}
}

func (s *triggerServer) Start() {
	go func() {
		s.log.Info().Str("addr", s.srv.Addr).Msg("trigger endpoint listening")
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error().Err(err).Msg("http server stopped")
		}
	}()
}

func (s *triggerServer) Stop(ctx context.Context) {
	_ = s.srv.Shutdown(ctx)
}
