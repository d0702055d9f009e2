// Package api exposes the method channel over HTTP, WebSocket and stdio.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/SwanFlutter/image-picker-master/internal/camera"
	"github.com/SwanFlutter/image-picker-master/internal/channel"
	"github.com/SwanFlutter/image-picker-master/internal/logger"
	"github.com/SwanFlutter/image-picker-master/internal/platform"
)

// DefaultHost is the listen address used when none is configured
const DefaultHost = "127.0.0.1"

// Server represents the HTTP bridge
type Server struct {
	router         *mux.Router
	bridge         Bridge
	allowedOrigins []string
	upgrader       websocket.Upgrader
	srv            *http.Server
}

// NewServer creates a new bridge server. Browser requests are refused
// unless their Origin is in allowedOrigins; "*" admits any origin.
// Clients that send no Origin header (the host app, curl, the CLI) are
// always served.
func NewServer(bridge Bridge, allowedOrigins ...string) *Server {
	s := &Server{
		router:         mux.NewRouter(),
		bridge:         bridge,
		allowedOrigins: allowedOrigins,
	}
	s.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return s.originAllowed(r.Header.Get("Origin"))
		},
	}

	s.setupRoutes()
	return s
}

// originAllowed reports whether a request carrying origin may be served.
// Same-host origins get no exemption: a rebinding DNS name would match.
func (s *Server) originAllowed(origin string) bool {
	if origin == "" {
		return true
	}
	origin = strings.TrimSuffix(origin, "/")
	for _, allowed := range s.allowedOrigins {
		if allowed == "*" || strings.EqualFold(strings.TrimSuffix(allowed, "/"), origin) {
			return true
		}
	}
	return false
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	// Method channel
	api.HandleFunc("/channels/{channel}", s.handleInvoke).Methods("POST")
	api.HandleFunc("/channels/{channel}/ws", s.handleChannelStream)

	// Camera
	api.HandleFunc("/camera/devices", s.handleDevices).Methods("GET")

	// Health check
	api.HandleFunc("/health", s.handleHealth).Methods("GET")
}

// Handler returns the routed handler with CORS applied
func (s *Server) Handler() http.Handler {
	return s.enableCORS(s.router)
}

// ListenAddr joins host and port, falling back to DefaultHost
func ListenAddr(host string, port int) string {
	if host = strings.TrimSpace(host); host == "" {
		host = DefaultHost
	}
	return net.JoinHostPort(host, strconv.Itoa(port))
}

// Start serves on host:port until Shutdown is called
func (s *Server) Start(host string, port int) error {
	addr := ListenAddr(host, port)
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.WithComponent("api").Info().Str("addr", addr).Msg("Starting bridge server")
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for active requests
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

// enableCORS rejects foreign origins and adds CORS headers for allowed ones
func (s *Server) enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if !s.originAllowed(origin) {
			logger.WithComponent("api").Warn().
				Str("origin", origin).
				Str("path", r.URL.Path).
				Str("remote", r.RemoteAddr).
				Msg("Rejected request from disallowed origin")
			writeJSON(w, http.StatusForbidden, channel.Failure(CodeForbiddenOrigin, "origin not allowed: "+origin, nil))
			return
		}
		if origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.WithComponent("api").Debug().Err(err).Msg("Failed to write response")
	}
}

// HTTP Handlers

func (s *Server) handleInvoke(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["channel"]
	if name != s.bridge.Channel() {
		writeJSON(w, http.StatusNotFound, channel.Failure(CodeUnknownChannel, "no plugin registered on channel "+name, nil))
		return
	}

	var call channel.MethodCall
	if err := json.NewDecoder(r.Body).Decode(&call); err != nil {
		writeJSON(w, http.StatusBadRequest, channel.Failure(CodeBadRequest, err.Error(), nil))
		return
	}
	if call.Method == "" {
		writeJSON(w, http.StatusBadRequest, channel.Failure(CodeBadRequest, "missing method", nil))
		return
	}

	resp, err := s.bridge.Invoke(r.Context(), call)
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, invokeFailure(err))
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleChannelStream(w http.ResponseWriter, r *http.Request) {
	log := logger.WithComponent("api")
	name := mux.Vars(r)["channel"]
	if name != s.bridge.Channel() {
		writeJSON(w, http.StatusNotFound, channel.Failure(CodeUnknownChannel, "no plugin registered on channel "+name, nil))
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("WebSocket upgrade error")
		return
	}
	defer conn.Close()
	log.Debug().Str("remote", r.RemoteAddr).Msg("Channel stream connected")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	for {
		var f Frame
		if err := conn.ReadJSON(&f); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug().Err(err).Msg("Channel stream closed")
			}
			var syntaxErr *json.SyntaxError
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
				conn.WriteJSON(Reply{Response: channel.Failure(CodeBadRequest, err.Error(), nil)})
				continue
			}
			return
		}
		if f.Channel == "" {
			f.Channel = name
		}
		if err := conn.WriteJSON(handleFrame(ctx, s.bridge, f)); err != nil {
			log.Debug().Err(err).Msg("WebSocket write error")
			return
		}
	}
}

func (s *Server) handleDevices(w http.ResponseWriter, r *http.Request) {
	devs, err := s.bridge.Devices(r.Context())
	if err != nil {
		var ce *camera.Error
		if errors.As(err, &ce) {
			writeJSON(w, http.StatusServiceUnavailable, channel.Failure(string(ce.Code), ce.Message(), nil))
			return
		}
		writeJSON(w, http.StatusInternalServerError, channel.Failure(channel.CodeInternal, err.Error(), nil))
		return
	}
	if devs == nil {
		devs = []camera.Device{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"backend": s.bridge.CameraBackend(),
		"devices": devs,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"version": platform.Build,
		"channel": s.bridge.Channel(),
		"camera":  s.bridge.CameraBackend(),
		"methods": s.bridge.Methods(),
	})
}
