// Package server exposes the chat assistant over a JSON HTTP API and
// serves the four-tab web UI.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/elwin56/MengMengShangAn-program/internal/agent"
	"github.com/elwin56/MengMengShangAn-program/internal/metrics"
	"github.com/elwin56/MengMengShangAn-program/internal/models"
	"github.com/elwin56/MengMengShangAn-program/internal/storage"
)

// Server routes chat requests to the per-persona sessions.
type Server struct {
	store     storage.Store
	sessions  map[models.AgentType]*agent.Session
	staticDir string
}

// New creates a Server over four pre-built persona sessions.
func New(store storage.Store, sessions map[models.AgentType]*agent.Session, staticDir string) *Server {
	return &Server{store: store, sessions: sessions, staticDir: staticDir}
}

// Handler builds the full route table: the JSON API, Prometheus
// metrics, and the static UI with an index.html fallback.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/agents", s.instrument(s.handleAgents))
	mux.HandleFunc("GET /api/conversations", s.instrument(s.handleConversations))
	mux.HandleFunc("POST /api/conversations/new", s.instrument(s.handleNewConversation))
	mux.HandleFunc("POST /api/conversations/load", s.instrument(s.handleLoadConversation))
	mux.HandleFunc("GET /api/history", s.instrument(s.handleHistory))
	mux.HandleFunc("POST /api/chat", s.instrument(s.handleChat))
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/", s.handleStatic)
	return mux
}

func (s *Server) instrument(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)
		metrics.HTTPRequests.WithLabelValues(r.URL.Path, strconv.Itoa(rec.status)).Inc()
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// session resolves the agent query/body value to a persona session.
func (s *Server) session(w http.ResponseWriter, agentType string) (*agent.Session, bool) {
	sess, ok := s.sessions[models.AgentType(agentType)]
	if !ok {
		writeError(w, http.StatusBadRequest, "未知的助手类型: "+agentType)
		return nil, false
	}
	return sess, true
}

type agentInfo struct {
	Type           string `json:"type"`
	DisplayName    string `json:"display_name"`
	Title          string `json:"title"`
	ConversationID string `json:"conversation_id"`
}

func (s *Server) handleAgents(w http.ResponseWriter, r *http.Request) {
	infos := make([]agentInfo, 0, len(agent.Personas()))
	for _, p := range agent.Personas() {
		sess := s.sessions[p.Type]
		if sess == nil {
			continue
		}
		infos = append(infos, agentInfo{
			Type:           string(p.Type),
			DisplayName:    p.DisplayName,
			Title:          p.Title,
			ConversationID: sess.ConversationID(),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"agents": infos})
}

type conversationEntry struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

func (s *Server) handleConversations(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r.URL.Query().Get("agent"))
	if !ok {
		return
	}

	list, err := sess.Conversations(r.Context())
	if err != nil {
		slog.Error("failed to list conversations", "error", err)
		writeError(w, http.StatusInternalServerError, "获取对话列表失败")
		return
	}

	entries := make([]conversationEntry, 0, len(list))
	for _, info := range list {
		entries = append(entries, conversationEntry{ID: info.ID, Label: info.Label()})
	}
	writeJSON(w, http.StatusOK, map[string]any{"conversations": entries})
}

func (s *Server) handleNewConversation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Agent string `json:"agent"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "请求格式错误")
		return
	}
	sess, ok := s.session(w, req.Agent)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"conversation_id": sess.NewConversation()})
}

func (s *Server) handleLoadConversation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Agent          string `json:"agent"`
		ConversationID string `json:"conversation_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "请求格式错误")
		return
	}
	sess, ok := s.session(w, req.Agent)
	if !ok {
		return
	}
	if err := sess.LoadConversation(r.Context(), req.ConversationID); err != nil {
		writeError(w, http.StatusNotFound, "对话不存在")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"conversation_id": req.ConversationID})
}

type turnEntry struct {
	Type      string `json:"type"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r.URL.Query().Get("agent"))
	if !ok {
		return
	}

	turns, err := sess.History(r.Context())
	if err != nil {
		slog.Error("failed to load history", "error", err)
		writeError(w, http.StatusInternalServerError, "获取历史记录失败")
		return
	}

	entries := make([]turnEntry, 0, len(turns))
	for _, turn := range turns {
		entries = append(entries, turnEntry{
			Type:      string(turn.Type),
			Content:   turn.Content,
			Timestamp: turn.Timestamp.Format("2006-01-02 15:04:05"),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"conversation_id": sess.ConversationID(),
		"turns":           entries,
	})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Agent   string `json:"agent"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "请求格式错误")
		return
	}
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "消息不能为空")
		return
	}
	sess, ok := s.session(w, req.Agent)
	if !ok {
		return
	}

	ctx := r.Context()
	if err := sess.SaveTurn(ctx, models.TurnUser, req.Message); err != nil {
		slog.Error("failed to save user turn", "error", err)
		writeError(w, http.StatusInternalServerError, "保存消息失败")
		return
	}

	reply := sess.SubmitTurn(ctx, req.Message)
	metrics.AgentTurns.WithLabelValues(req.Agent).Inc()

	if err := sess.SaveTurn(ctx, models.TurnAssistant, reply); err != nil {
		slog.Error("failed to save assistant turn", "error", err)
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"reply":           reply,
		"conversation_id": sess.ConversationID(),
	})
}

// handleStatic serves the chat UI, falling back to index.html for
// unknown paths.
func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		http.NotFound(w, r)
		return
	}

	urlPath := r.URL.Path
	if urlPath == "/" {
		urlPath = "/index.html"
	}

	filePath := filepath.Join(s.staticDir, filepath.Clean(urlPath))
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		http.ServeFile(w, r, filepath.Join(s.staticDir, "index.html"))
		return
	}
	http.ServeFile(w, r, filePath)
}
