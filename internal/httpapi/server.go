package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/shirtful/wareneingang/server/internal/wareneingang/decoder"
	"github.com/shirtful/wareneingang/server/internal/wareneingang/service"
	"github.com/shirtful/wareneingang/server/internal/wareneingang/types"
)

type Dependencies struct {
	Logger         *log.Logger
	Addr           string
	LoginService   *service.LoginService
	ScanService    *service.ScanService
	SessionService *service.SessionService
	Decoder        *decoder.Decoder
}

type Server struct {
	httpServer     *http.Server
	logger         *log.Logger
	mux            *http.ServeMux
	loginService   *service.LoginService
	scanService    *service.ScanService
	sessionService *service.SessionService

	// The decoder models one physical reader stream and is not safe for
	// concurrent use; readerMu serializes bridge requests onto it.
	readerMu sync.Mutex
	decoder  *decoder.Decoder
}

func NewServer(d Dependencies) *Server {
	mux := http.NewServeMux()

	s := &Server{
		logger:         d.Logger,
		mux:            mux,
		loginService:   d.LoginService,
		scanService:    d.ScanService,
		sessionService: d.SessionService,
		decoder:        d.Decoder,
	}

	mux.HandleFunc("POST /v1/login", s.handleLogin)
	mux.HandleFunc("POST /v1/scan", s.handleScan)
	mux.HandleFunc("POST /v1/session/end", s.handleSessionEnd)
	mux.HandleFunc("POST /v1/session/end_all", s.handleSessionEndAll)
	mux.HandleFunc("POST /v1/reader/symbols", s.handleReaderSymbols)
	mux.HandleFunc("GET /healthz", s.handleHealthz)

	handler := loggingMiddleware(d.Logger, mux)

	s.httpServer = &http.Server{
		Addr:              d.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req types.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := s.loginService.LoginByTag(r.Context(), req.Tag)
	if err != nil {
		if errors.Is(err, service.ErrInvalidTag) {
			writeError(w, http.StatusBadRequest, "invalid_tag", err.Error())
			return
		}
		s.logger.Printf("login error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	var req types.ScanRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := s.scanService.Save(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidSessionID):
			writeError(w, http.StatusBadRequest, "invalid_session_id", err.Error())
		case errors.Is(err, service.ErrInvalidPayload):
			writeError(w, http.StatusBadRequest, "invalid_payload", err.Error())
		case errors.Is(err, service.ErrSessionNotFound):
			writeError(w, http.StatusNotFound, "session_not_found", err.Error())
		case errors.Is(err, service.ErrSessionNotActive):
			writeError(w, http.StatusConflict, "session_not_active", err.Error())
		default:
			s.logger.Printf("scan error: %v", err)
			writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		}
		return
	}

	// Guard rejections (duplicates, processing, store errors) are 200s
	// with success=false; the shell translates statuses, not HTTP codes.
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSessionEnd(w http.ResponseWriter, r *http.Request) {
	var req types.SessionEndRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ended, err := s.sessionService.End(r.Context(), req.SessionID)
	if err != nil {
		if errors.Is(err, service.ErrInvalidSessionID) {
			writeError(w, http.StatusBadRequest, "invalid_session_id", err.Error())
			return
		}
		s.logger.Printf("session end error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		return
	}

	writeJSON(w, http.StatusOK, types.SessionEndResponse{
		OK:         true,
		Ended:      ended,
		ServerTime: time.Now().UTC().Format(time.RFC3339Nano),
	})
}

func (s *Server) handleSessionEndAll(w http.ResponseWriter, r *http.Request) {
	preImage, err := s.sessionService.EndAll(r.Context())
	if err != nil {
		s.logger.Printf("session end_all error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		return
	}

	writeJSON(w, http.StatusOK, types.SessionEndAllResponse{
		OK:         true,
		EndedCount: len(preImage),
		Sessions:   preImage,
		ServerTime: time.Now().UTC().Format(time.RFC3339Nano),
	})
}

func (s *Server) handleReaderSymbols(w http.ResponseWriter, r *http.Request) {
	var req types.ReaderSymbolsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.Symbols != "" {
		s.readerMu.Lock()
		s.decoder.FeedString(req.Symbols)
		s.readerMu.Unlock()
	}

	writeJSON(w, http.StatusOK, types.ReaderSymbolsResponse{
		OK:         true,
		ServerTime: time.Now().UTC().Format(time.RFC3339Nano),
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "invalid JSON body")
		return false
	}
	return true
}
