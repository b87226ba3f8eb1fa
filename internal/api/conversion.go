package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/ghostkyle24/bonusmarmitas/internal/capi"
	"github.com/ghostkyle24/bonusmarmitas/internal/dedup"
	"github.com/ghostkyle24/bonusmarmitas/internal/normalize"
	"github.com/ghostkyle24/bonusmarmitas/internal/pkg/httputil"
	"github.com/ghostkyle24/bonusmarmitas/internal/pkg/logger"
)

// User-facing rejection messages, kept in the landing page's language.
const (
	msgDuplicateIP    = "Você já realizou o cadastro. Apenas uma submissão por IP é permitida."
	msgDuplicateEmail = "Este email já foi cadastrado. Apenas um cadastro por pessoa é permitido."
	msgMissingFields  = "Campos obrigatórios não preenchidos"
	msgServerConfig   = "Configuração do servidor incompleta"
	msgForwardFailed  = "Erro ao enviar evento para Meta"
	msgSuccess        = "Evento enviado com sucesso"
)

type conversionResponse struct {
	Success        bool           `json:"success"`
	Message        string         `json:"message"`
	EventID        string         `json:"event_id"`
	EventsReceived int            `json:"events_received"`
	MetaResponse   *capi.Response `json:"meta_response,omitempty"`
}

type forwardErrorResponse struct {
	Error   string         `json:"error"`
	Code    int            `json:"code,omitempty"`
	Type    string         `json:"type,omitempty"`
	Details *capi.Response `json:"details,omitempty"`
}

// handleConversion runs the submission pipeline in strict order: config
// check, IP gate, validation, identity gate, normalization, forward,
// mark. Both gates run before any hashing of the full field set, and the
// dedup keys are consumed only after the downstream forward succeeds so a
// failed forward stays retryable.
func (s *Server) handleConversion(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Operator misconfiguration fails fast, before any PII is touched
	if s.cfg.Meta.AccessToken == "" {
		logger.Error("META_ACCESS_TOKEN not configured")
		httputil.Error(w, http.StatusInternalServerError, msgServerConfig)
		return
	}

	ip := clientIP(r)
	if s.keyUsed(ctx, dedup.IPKey(ip)) {
		logger.Info("submission rejected, duplicate ip", "ip", ip)
		httputil.BadRequest(w, msgDuplicateIP)
		return
	}

	var sub capi.Submission
	if !httputil.Decode(w, r, &sub) {
		return
	}
	if !sub.Valid() {
		httputil.BadRequest(w, msgMissingFields)
		return
	}

	// The identity gate keys on the canonicalized email digest, never
	// the raw address
	emailHash := normalize.HashField(sub.Email)
	if s.keyUsed(ctx, dedup.EmailKey(emailHash)) {
		logger.Info("submission rejected, duplicate email", "email", sub.Email)
		httputil.BadRequest(w, msgDuplicateEmail)
		return
	}

	ud := capi.BuildUserData(sub, capi.RequestContext{
		ClientIP:  ip,
		UserAgent: r.UserAgent(),
		FBP:       cookieValue(r, "_fbp"),
		FBC:       cookieValue(r, "_fbc"),
	})

	cd := capi.CustomData{
		Currency:        s.cfg.Conversion.Currency,
		Value:           s.cfg.Conversion.Value,
		ContentName:     s.cfg.Conversion.ContentName,
		ContentCategory: s.cfg.Conversion.ContentCategory,
	}

	evt := capi.NewPurchaseEvent(ud, cd, s.sourceURL(r))

	resp, err := s.forwarder.SendEvent(ctx, evt)
	if err != nil {
		// Keys stay unconsumed so the submitter can retry
		logger.Error("conversion forward failed", "event_id", evt.EventID, "error", err.Error())

		var apiErr *capi.APIError
		if errors.As(err, &apiErr) {
			httputil.JSON(w, http.StatusInternalServerError, forwardErrorResponse{
				Error:   apiErr.Message,
				Code:    apiErr.Code,
				Type:    apiErr.Type,
				Details: resp,
			})
			return
		}
		httputil.Error(w, http.StatusInternalServerError, msgForwardFailed)
		return
	}

	// Consume both dedup slots only now that the forward succeeded
	s.markUsed(ctx, dedup.IPKey(ip))
	s.markUsed(ctx, dedup.EmailKey(emailHash))

	logger.Info("conversion accepted", "event_id", evt.EventID, "ip", ip,
		"email", sub.Email, "events_received", resp.EventsReceived)

	httputil.OK(w, conversionResponse{
		Success:        true,
		Message:        msgSuccess,
		EventID:        evt.EventID,
		EventsReceived: resp.EventsReceived,
		MetaResponse:   resp,
	})
}

// keyUsed asks the gate, failing open on store errors: availability of
// the submission flow wins over strict dedup when the store is degraded.
func (s *Server) keyUsed(ctx context.Context, key string) bool {
	used, err := s.gate.IsUsed(ctx, key)
	if err != nil {
		logger.Warn("dedup check failed, allowing submission", "key_kind", keyKind(key), "error", err.Error())
		return false
	}
	return used
}

func (s *Server) markUsed(ctx context.Context, key string) {
	if err := s.gate.MarkUsed(ctx, key); err != nil {
		logger.Warn("dedup mark failed", "key_kind", keyKind(key), "error", err.Error())
	}
}

func keyKind(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return "unknown"
}

// clientIP resolves the submitter's address: first X-Forwarded-For hop,
// then X-Real-Ip, then the literal "unknown". RemoteAddr is deliberately
// not used; behind the platform proxy it is never the client.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx > 0 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}
	if xri := r.Header.Get("X-Real-Ip"); xri != "" {
		return xri
	}
	return "unknown"
}

func cookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}

// sourceURL picks the event_source_url: Origin, then Referer, then the
// configured fallback.
func (s *Server) sourceURL(r *http.Request) string {
	if origin := r.Header.Get("Origin"); origin != "" {
		return origin
	}
	if ref := r.Referer(); ref != "" {
		return ref
	}
	return s.cfg.Conversion.FallbackSourceURL
}
