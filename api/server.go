package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	contractx "github.com/spinlab/coach/agent/contract"
	logx "github.com/spinlab/coach/pkg/logger"
	"github.com/spinlab/coach/pkg/metrics"
)

type Config struct {
	Addr         string        `default:":8080"`
	ReadTimeout  time.Duration `split_words:"true" default:"15s"`
	WriteTimeout time.Duration `split_words:"true" default:"120s"`
	IdleTimeout  time.Duration `split_words:"true" default:"60s"`
	CORSOrigin   string        `envconfig:"CORS_ORIGIN" default:"*"`
	MaxBodyBytes int64         `split_words:"true" default:"1048576"`
}

// ChatService runs one orchestrated turn for an authenticated user.
type ChatService interface {
	HandleChat(ctx context.Context, userID string, req contractx.ChatRequest) (contractx.ChatResponse, error)
}

type Server struct {
	cfg    Config
	chat   ChatService
	auth   contractx.Authenticator
	checks map[string]CheckFunc
}

func NewServer(cfg Config, chat ChatService, auth contractx.Authenticator, checks map[string]CheckFunc) http.Handler {
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 1 << 20
	}
	s := &Server{cfg: cfg, chat: chat, auth: auth, checks: checks}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/agent/chat", s.handleChat)
	mux.HandleFunc("GET /health", handleHealth)
	mux.HandleFunc("GET /ready", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())

	return chainMiddlewares(mux,
		withCORS(cfg.CORSOrigin),
		withLogging,
		withRecover,
		withCorrelationID,
	)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	ctx := r.Context()
	log := logx.From(ctx)

	token, ok := bearerToken(r.Header.Get("Authorization"))
	if !ok {
		metrics.RecordChat("unauthorized", started)
		writeError(w, http.StatusUnauthorized, "Token de autenticação ausente")
		return
	}

	userID, err := s.auth.Authenticate(ctx, token)
	if err != nil {
		if errors.Is(err, contractx.ErrUnauthorized) {
			metrics.RecordChat("unauthorized", started)
			writeError(w, http.StatusUnauthorized, "Token inválido ou expirado")
			return
		}
		log.Error().Err(err).Msg("authenticate request")
		metrics.RecordChat("error", started)
		internalError(w)
		return
	}

	var req contractx.ChatRequest
	body := http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		metrics.RecordChat("bad_request", started)
		badRequest(w, "Corpo da requisição inválido")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		metrics.RecordChat("bad_request", started)
		badRequest(w, "Mensagem é obrigatória")
		return
	}

	resp, err := s.chat.HandleChat(ctx, userID, req)
	if err != nil {
		status, msg := classify(err)
		if status == http.StatusInternalServerError {
			log.Error().Err(err).Str("user_id", userID).Msg("chat turn failed")
		} else {
			log.Warn().Err(err).Str("user_id", userID).Int("status", status).Msg("chat turn rejected")
		}
		metrics.RecordChat(statusLabel(status), started)
		writeError(w, status, msg)
		return
	}

	log.Info().
		Str("user_id", userID).
		Strs("tools_used", resp.ToolsUsed).
		Dur("took", time.Since(started)).
		Msg("chat turn completed")
	metrics.RecordChat("ok", started)
	writeJSON(w, http.StatusOK, resp)
}

// classify maps orchestrator errors to a status and a client-safe message.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, contractx.ErrUnauthorized):
		return http.StatusUnauthorized, "Não autorizado"
	case errors.Is(err, contractx.ErrNoTenant):
		return http.StatusBadRequest, "Usuário sem empresa associada"
	case errors.Is(err, contractx.ErrValidation):
		return http.StatusBadRequest, "Requisição inválida"
	default:
		return http.StatusInternalServerError, "Erro interno do servidor"
	}
}

func statusLabel(status int) string {
	switch status {
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusBadRequest:
		return "bad_request"
	default:
		return "error"
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeError(w, http.StatusBadRequest, msg)
}

func internalError(w http.ResponseWriter) {
	writeError(w, http.StatusInternalServerError, "Erro interno do servidor")
}
