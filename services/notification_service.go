package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/esports-arena/tournament-hub/models"
)

// Notifier отправляет письма через внешнюю notification-функцию.
// Контракт fire-and-forget: неудача логируется и никогда не откатывает
// запись, к которой письмо было привязано.
type Notifier interface {
	SendRegistrationConfirmation(ctx context.Context, reg *models.Registration, tournamentTitle string)
	SendStatusUpdate(ctx context.Context, reg *models.Registration, status models.RegistrationStatus)
}

type NotificationConfig struct {
	SendEmailURL    string
	StatusUpdateURL string
}

type httpNotifier struct {
	cfg    NotificationConfig
	client *http.Client
	logger *slog.Logger
}

func NewHTTPNotifier(cfg NotificationConfig, logger *slog.Logger) Notifier {
	return &httpNotifier{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}
}

func (n *httpNotifier) SendRegistrationConfirmation(ctx context.Context, reg *models.Registration, tournamentTitle string) {
	if n.cfg.SendEmailURL == "" {
		return
	}
	payload := map[string]interface{}{
		"email":      reg.ContactInfo.Email,
		"full_name":  reg.ContactInfo.FullName,
		"team_name":  reg.TeamName,
		"tournament": tournamentTitle,
	}
	n.post(ctx, n.cfg.SendEmailURL, payload, "registration confirmation")
}

func (n *httpNotifier) SendStatusUpdate(ctx context.Context, reg *models.Registration, status models.RegistrationStatus) {
	if n.cfg.StatusUpdateURL == "" {
		return
	}
	payload := map[string]interface{}{
		"email":        reg.ContactInfo.Email,
		"fullName":     reg.ContactInfo.FullName,
		"teamName":     reg.TeamName,
		"tournamentId": reg.TournamentID,
		"status":       status,
	}
	n.post(ctx, n.cfg.StatusUpdateURL, payload, "status update")
}

func (n *httpNotifier) post(ctx context.Context, url string, payload interface{}, kind string) {
	body, err := json.Marshal(payload)
	if err != nil {
		n.logger.Warn("failed to marshal notification payload",
			slog.String("kind", kind), slog.Any("error", err))
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		n.logger.Warn("failed to build notification request",
			slog.String("kind", kind), slog.Any("error", err))
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		n.logger.Warn("notification send failed",
			slog.String("kind", kind), slog.Any("error", err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		n.logger.Warn("notification endpoint returned error",
			slog.String("kind", kind),
			slog.String("status", fmt.Sprintf("%d", resp.StatusCode)))
	}
}
