// File: internal/infra/web/handlers.go
package web

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"resume-rewrite-service/internal/domain"
	"resume-rewrite-service/internal/infra/logging"
	"resume-rewrite-service/internal/infra/redis"
)

type initializeRequest struct {
	ResumeText     string `json:"resume_text"`
	Requirements   string `json:"requirements"`
	SourceLanguage string `json:"source_language"`
	TargetLanguage string `json:"target_language"`
}

func (s *Server) handleInitialize(w http.ResponseWriter, r *http.Request) {
	addr := clientAddr(r)

	if s.limiter != nil && s.cfg.RateLimit > 0 {
		ok, err := s.limiter.Allow(r.Context(), redis.ClientRouteKey(addr, "initialize"), s.cfg.RateLimit, s.cfg.RateLimitWindow)
		if err != nil {
			s.log.Warn().Err(err).Msg("rate limiter unavailable, letting request through")
		} else if !ok {
			writeError(w, http.StatusTooManyRequests, "请求过于频繁，请稍后再试")
			return
		}
	}

	var req initializeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "请求体不是有效的JSON")
		return
	}
	if strings.TrimSpace(req.ResumeText) == "" {
		writeError(w, http.StatusBadRequest, "缺少简历内容")
		return
	}
	if req.SourceLanguage == "" {
		req.SourceLanguage = "zh"
	}
	if req.TargetLanguage == "" {
		req.TargetLanguage = req.SourceLanguage
	}

	sess, err := s.sessions.Create(r.Context(), req.ResumeText, req.Requirements, req.SourceLanguage, req.TargetLanguage, addr)
	if err != nil {
		s.log.Error().Err(err).Msg("session create failed")
		writeError(w, http.StatusInternalServerError, "创建会话失败")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"session_id": sess.ID})
}

func (s *Server) handleModify(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("session_id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "缺少session_id参数")
		return
	}

	sess, err := s.modifyUC.Resolve(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, "会话不存在或已过期")
			return
		}
		s.log.Error().Err(err).Str("session_id", id).Msg("session lookup failed")
		writeError(w, http.StatusInternalServerError, "会话查询失败")
		return
	}

	sink, err := newSSEWriter(w)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "当前连接不支持流式响应")
		return
	}

	ctx := logging.WithTraceID(logging.WithSessID(r.Context(), sess.ID), uuid.NewString())
	if err := s.modifyUC.Run(ctx, sess, sink); err != nil {
		// client disconnects land here; the stream is already gone
		s.log.Debug().Err(err).Str("session_id", sess.ID).Msg("modify stream ended early")
	}
}

func (s *Server) handleLanguage(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, languageCatalog)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "The server is running",
		"version": "1.0.0",
	})
}

// languageCatalog maps language codes to their display names.
var languageCatalog = map[string]string{
	"zh": "中文", "en": "英文", "ja": "日语", "ko": "韩语",
	"fr": "法语", "de": "德语", "es": "西班牙语", "ru": "俄语",
	"ar": "阿拉伯语", "pt": "葡萄牙语", "it": "意大利语", "nl": "荷兰语",
	"sv": "瑞典语", "no": "挪威语", "da": "丹麦语", "fi": "芬兰语",
	"pl": "波兰语", "tr": "土耳其语", "hu": "匈牙利语", "cs": "捷克语",
	"ro": "罗马尼亚语", "bg": "保加利亚语", "el": "希腊语", "he": "希伯来语",
	"hi": "印地语", "id": "印尼语", "ms": "马来语",
}

func clientAddr(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i > 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"status": "error", "message": message})
}
