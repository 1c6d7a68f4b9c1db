package notification

import (
	"context"
	"fmt"
	"io"

	"gopkg.in/gomail.v2"

	"github.com/vitemonmedoc/medoc/internal/model"
	"github.com/vitemonmedoc/medoc/pkg/messaging"
)

// LocalSender prints the notification to the operator's terminal.
type LocalSender struct {
	out io.Writer
}

func NewLocalSender(out io.Writer) *LocalSender {
	return &LocalSender{out: out}
}

func (l *LocalSender) Send(_ context.Context, n *model.Notification) error {
	_, err := fmt.Fprintf(l.out, "[%s] %s\n", n.Title, n.Body)
	return err
}

// BrokerSender publishes the notification as JSON so other terminals can show it.
type BrokerSender struct {
	broker  messaging.Broker
	channel string
}

func NewBrokerSender(broker messaging.Broker, channel string) *BrokerSender {
	return &BrokerSender{broker: broker, channel: channel}
}

func (b *BrokerSender) Send(ctx context.Context, n *model.Notification) error {
	if err := b.broker.Publish(ctx, b.channel, n); err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}
	return nil
}

// Dialer is satisfied by *gomail.Dialer.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// MailSender e-mails the patient when their record carries an address.
type MailSender struct {
	dialer Dialer
	from   string
}

func NewMailSender(cfg SMTPConfig) *MailSender {
	return &MailSender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func NewMailSenderWithDialer(d Dialer, from string) *MailSender {
	return &MailSender{dialer: d, from: from}
}

func (m *MailSender) Send(_ context.Context, n *model.Notification) error {
	if n.Recipient == "" {
		return fmt.Errorf("e-mail notification has no recipient")
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", n.Recipient)
	msg.SetHeader("Subject", n.Title)
	msg.SetBody("text/plain", n.Body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send e-mail: %w", err)
	}
	return nil
}
