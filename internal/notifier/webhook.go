package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cuentaflix/cuentaflix/internal/logger"
)

// WebhookNotifier publica cada mensaje como JSON en un endpoint configurado
// (un bot de WhatsApp, un relay de email, etc.)
type WebhookNotifier struct {
	url    string
	client *http.Client
}

// NewWebhookNotifier crea el notificador webhook
func NewWebhookNotifier(url string, timeout time.Duration) *WebhookNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WebhookNotifier{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

type webhookEnvelope struct {
	Tipo    string      `json:"tipo"` // aviso_vencimiento / entrega_credencial
	Payload interface{} `json:"payload"`
}

// SendReminder envía un aviso de vencimiento
func (n *WebhookNotifier) SendReminder(ctx context.Context, r Reminder) error {
	return n.post(ctx, webhookEnvelope{Tipo: "aviso_vencimiento", Payload: r})
}

// DeliverCredential entrega una credencial
func (n *WebhookNotifier) DeliverCredential(ctx context.Context, d CredentialDelivery) error {
	return n.post(ctx, webhookEnvelope{Tipo: "entrega_credencial", Payload: d})
}

func (n *WebhookNotifier) post(ctx context.Context, envelope webhookEnvelope) error {
	body, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook respondió %d", resp.StatusCode)
	}
	logger.Debugw("notifier_webhook_sent", "tipo", envelope.Tipo, "status", resp.StatusCode)
	return nil
}
