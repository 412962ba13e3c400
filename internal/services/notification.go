package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/VL13N/FullStackNexus-sub005/internal/database"
	"github.com/VL13N/FullStackNexus-sub005/internal/models"
)

// NotificationService delivers triggered-alert batches to subscribed
// Telegram chats. It is a delivery channel behind the Broadcaster seam;
// failures are logged per chat and never bubble back into rule evaluation.
type NotificationService struct {
	db     *database.PostgresDB
	bot    *bot.Bot
	logger *logrus.Logger
}

// NewNotificationService creates a notification service. The Telegram bot is
// only initialized when a token is provided.
func NewNotificationService(db *database.PostgresDB, telegramBotToken string, logger *logrus.Logger) *NotificationService {
	if logger == nil {
		logger = logrus.New()
	}
	var telegramBot *bot.Bot
	if telegramBotToken != "" {
		telegramBot, _ = bot.New(telegramBotToken)
	}
	return &NotificationService{
		db:     db,
		bot:    telegramBot,
		logger: logger,
	}
}

// Publish implements Broadcaster for triggered-alert batches so the service
// can sit behind the same fan-out seam as the Redis publisher.
func (ns *NotificationService) Publish(ctx context.Context, channel string, payload interface{}) error {
	alerts, ok := payload.([]models.TriggeredAlert)
	if !ok || len(alerts) == 0 {
		return nil
	}
	return ns.NotifyTriggeredAlerts(ctx, alerts)
}

// NotifyTriggeredAlerts sends a formatted alert batch to every subscribed
// chat. Individual send failures are logged and skipped.
func (ns *NotificationService) NotifyTriggeredAlerts(ctx context.Context, alerts []models.TriggeredAlert) error {
	if ns.bot == nil {
		return fmt.Errorf("telegram bot not initialized")
	}

	chatIDs, err := ns.getSubscribedChats(ctx)
	if err != nil {
		return fmt.Errorf("failed to get subscribed chats: %w", err)
	}
	if len(chatIDs) == 0 {
		ns.logger.Debug("No subscribed chats for alert notifications")
		return nil
	}

	message := ns.formatAlertMessage(alerts)
	for _, chatID := range chatIDs {
		id, err := strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			ns.logger.WithField("chat_id", chatID).Warn("Invalid telegram chat ID")
			continue
		}
		_, err = ns.bot.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:    id,
			Text:      message,
			ParseMode: tgmodels.ParseModeMarkdown,
		})
		if err != nil {
			ns.logger.WithError(err).WithField("chat_id", chatID).Warn("Failed to send telegram alert")
			continue
		}
		if err := ns.logNotification(ctx, chatID, "telegram", "alert_triggered"); err != nil {
			ns.logger.WithError(err).Warn("Failed to log notification")
		}
	}

	ns.logger.WithFields(logrus.Fields{
		"alerts": len(alerts),
		"chats":  len(chatIDs),
	}).Info("Sent alert notifications")
	return nil
}

// formatAlertMessage creates a formatted message for a triggered-alert batch.
func (ns *NotificationService) formatAlertMessage(alerts []models.TriggeredAlert) string {
	if len(alerts) == 0 {
		return "No alerts triggered."
	}

	message := "🚨 *Prediction Alert!*\n\n"
	message += fmt.Sprintf("%d rule(s) triggered:\n\n", len(alerts))

	topAlerts := alerts
	if len(alerts) > 3 {
		topAlerts = alerts[:3]
	}

	for i, alert := range topAlerts {
		snap := alert.Snapshot
		change := decimal.NewFromFloat(snap.PredictedChangePercent)
		message += fmt.Sprintf("*%d. %s* (%s)\n", i+1, alert.RuleName, alert.Severity)
		message += fmt.Sprintf("📈 Predicted change: *%s%%*\n", change.Round(2).String())
		message += fmt.Sprintf("🎯 Confidence: *%.1f%%*\n", snap.Confidence*100)
		message += fmt.Sprintf("💲 Predicted price: $%.4f\n", snap.PredictedPrice)
		message += fmt.Sprintf("🧭 Direction: %s\n", snap.Direction)
		message += "\n"
	}

	if len(alerts) > 3 {
		message += fmt.Sprintf("...and %d more alerts\n\n", len(alerts)-3)
	}

	message += "Use /alerts to see all active alerts\n"
	message += "Use /stop to pause these notifications"
	return message
}

// getSubscribedChats returns the chat IDs with alert notifications enabled.
func (ns *NotificationService) getSubscribedChats(ctx context.Context) ([]string, error) {
	query := `
		SELECT telegram_chat_id
		FROM alert_subscribers
		WHERE telegram_chat_id IS NOT NULL
		  AND telegram_chat_id != ''
		  AND notifications_enabled = true
	`

	rows, err := ns.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query subscribers: %w", err)
	}
	defer rows.Close()

	var chatIDs []string
	for rows.Next() {
		var chatID string
		if err := rows.Scan(&chatID); err != nil {
			ns.logger.WithError(err).Warn("Failed to scan subscriber row")
			continue
		}
		chatIDs = append(chatIDs, chatID)
	}
	return chatIDs, nil
}

// logNotification records the delivery in the database.
func (ns *NotificationService) logNotification(ctx context.Context, chatID, notificationType, content string) error {
	query := `
		INSERT INTO alert_notifications (chat_id, notification_type, content, sent_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	now := time.Now()
	_, err := ns.db.Pool.Exec(ctx, query, chatID, notificationType, content, now, now)
	if err != nil {
		return fmt.Errorf("failed to log notification: %w", err)
	}
	return nil
}
