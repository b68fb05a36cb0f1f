package webhook

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/subgate/pkg/logger"
)

// DefaultMaxBodyBytes bounds webhook bodies when no limit is configured.
const DefaultMaxBodyBytes int64 = 1 << 20

type handler struct {
	provider  Provider
	processor *Processor
	maxBytes  int64
	logger    *slog.Logger
}

// HandlerOption configures the webhook HTTP handler.
type HandlerOption func(*handler)

// WithMaxBodyBytes limits the request body size.
func WithMaxBodyBytes(n int64) HandlerOption {
	return func(h *handler) {
		if n > 0 {
			h.maxBytes = n
		}
	}
}

// WithHandlerLogger sets the logger. Defaults to a discard logger.
func WithHandlerLogger(log *slog.Logger) HandlerOption {
	return func(h *handler) {
		if log != nil {
			h.logger = log
		}
	}
}

// Handler returns an http.Handler for one provider's webhook endpoint. The
// signature is checked against the body bytes exactly as received.
func Handler(provider Provider, processor *Processor, opts ...HandlerOption) http.Handler {
	h := &handler{
		provider:  provider,
		processor: processor,
		maxBytes:  DefaultMaxBodyBytes,
		logger:    logger.Discard(),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.logger = h.logger.With(logger.Component("webhook"), logger.Provider(provider.Name()))
	return h
}

type response struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
	Error  string `json:"error,omitempty"`
}

func (h *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.fail(w, r, ErrPayloadTooLarge)
			return
		}
		h.fail(w, r, errors.Join(ErrMalformedPayload, err))
		return
	}

	ev, err := h.provider.Verify(ctx, body, r.Header.Get(h.provider.SignatureHeader()))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	ack, err := h.processor.Process(ctx, ev)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	res := response{Status: "applied"}
	if !ack.Applied {
		res = response{Status: "ignored", Reason: ack.Reason.String()}
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusCode(err)
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "webhook failed", logger.Error(err))
	} else {
		h.logger.WarnContext(r.Context(), "webhook rejected", logger.Error(err))
	}
	writeJSON(w, status, response{Status: "error", Error: http.StatusText(status)})
}

// StatusCode maps webhook errors to HTTP statuses.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrSignatureMismatch):
		return http.StatusUnauthorized
	case errors.Is(err, ErrPayloadTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrMalformedPayload):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
