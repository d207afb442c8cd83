package messaging

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dmartinel/turnosms/internal/observability/metrics"
	"github.com/dmartinel/turnosms/internal/store"
	"github.com/dmartinel/turnosms/internal/tenancy"
	"github.com/dmartinel/turnosms/pkg/logging"
)

// Dialogue is the conversation engine surface the webhook needs.
type Dialogue interface {
	HandleMessage(ctx context.Context, businessID uuid.UUID, phone, text string) error
}

// TenantResolver maps the webhook's To number to a business.
type TenantResolver interface {
	Resolve(ctx context.Context, toNumber string) (*store.Business, error)
}

// WebhookHandler receives Twilio SMS webhooks and feeds them to the
// dialogue engine. Twilio retries non-2xx responses, so only transport
// errors return them; dialogue failures are already answered with an
// apology and get a 200.
type WebhookHandler struct {
	dialogue  Dialogue
	tenants   TenantResolver
	authToken string
	publicURL string
	logger    *logging.Logger
	metrics   *metrics.MessagingMetrics
}

// NewWebhookHandler builds the handler. An empty authToken disables
// signature validation (local development only).
func NewWebhookHandler(dialogue Dialogue, tenants TenantResolver, authToken, publicURL string, m *metrics.MessagingMetrics, logger *logging.Logger) *WebhookHandler {
	if dialogue == nil {
		panic("messaging: dialogue is required")
	}
	if tenants == nil {
		panic("messaging: tenant resolver is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &WebhookHandler{
		dialogue:  dialogue,
		tenants:   tenants,
		authToken: authToken,
		publicURL: publicURL,
		logger:    logger,
		metrics:   m,
	}
}

func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	defer func() {
		h.metrics.ObserveWebhookLatency(time.Since(started).Seconds())
	}()

	if h.authToken != "" && !ValidateSignature(r, h.authToken, h.publicURL) {
		h.logger.Warn("webhook signature rejected", "remote", r.RemoteAddr)
		h.metrics.ObserveInbound("rejected")
		http.Error(w, "invalid signature", http.StatusForbidden)
		return
	}

	msg, err := ParseWebhook(r)
	if err != nil {
		h.logger.Warn("webhook parse failed", "error", err)
		h.metrics.ObserveInbound("malformed")
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	from := NormalizeE164(msg.From)
	if from == "" || msg.Body == "" {
		h.metrics.ObserveInbound("malformed")
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	business, err := h.tenants.Resolve(r.Context(), NormalizeE164(msg.To))
	if err != nil {
		h.logger.Error("tenant resolution failed", "to", msg.To, "error", err)
		h.metrics.ObserveInbound("unrouted")
		// 200 so Twilio does not redeliver a message we can never route.
		w.WriteHeader(http.StatusOK)
		return
	}

	ctx := tenancy.WithBusinessID(r.Context(), business.ID)
	if err := h.dialogue.HandleMessage(ctx, business.ID, from, msg.Body); err != nil {
		// The engine already apologized to the user.
		h.logger.Error("dialogue failed", "message_sid", msg.MessageSid, "error", err)
		h.metrics.ObserveInbound("failed")
		w.WriteHeader(http.StatusOK)
		return
	}

	h.metrics.ObserveInbound("accepted")
	w.WriteHeader(http.StatusOK)
}
