package notification

import (
	"context"
	"encoding/json"

	"github.com/vitemonmedoc/medoc/internal/model"
	"github.com/vitemonmedoc/medoc/pkg/logger"
	"github.com/vitemonmedoc/medoc/pkg/messaging"
)

// Watch relays notifications published by other terminals to local until ctx
// is cancelled. Undecodable payloads are skipped.
func Watch(ctx context.Context, broker messaging.Broker, channel string, local Sender, log *logger.Logger) error {
	if log == nil {
		log = logger.Nop()
	}
	msgs, err := broker.Subscribe(ctx, channel)
	if err != nil {
		return err
	}

	for payload := range msgs {
		var n model.Notification
		if err := json.Unmarshal(payload, &n); err != nil {
			log.Warn("skipping malformed notification", "error", err.Error())
			continue
		}
		if err := local.Send(ctx, &n); err != nil {
			log.Error(err, "failed to display notification")
		}
	}
	return ctx.Err()
}
