// Package notification announces newly scheduled appointments. Delivery is
// fire-and-forget: a failing channel is logged and never fails the form
// that triggered it.
package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vitemonmedoc/medoc/internal/model"
	"github.com/vitemonmedoc/medoc/pkg/logger"
)

const (
	ChannelLocal = "local"
	ChannelRedis = "redis"
	ChannelEmail = "email"

	AppointmentTitle = "Nouveau rendez-vous"

	appointmentLayout = "02/01/2006 15:04"
)

// Sender delivers a notification over one channel.
type Sender interface {
	Send(ctx context.Context, n *model.Notification) error
}

// Notifier is what the patient form calls when an appointment is confirmed.
type Notifier interface {
	AppointmentScheduled(ctx context.Context, patient *model.Patient, rdv time.Time)
}

// AppointmentBody renders the notification text in the clinic's local time.
func AppointmentBody(rdv time.Time) string {
	return "Votre rendez-vous est programmé pour le " + rdv.Local().Format(appointmentLayout)
}

type Service struct {
	senders  map[string]Sender
	channels []string
	log      *logger.Logger
	now      func() time.Time
}

// NewService dispatches to the senders named by channels, in order. Unknown
// channel names are rejected up front.
func NewService(senders map[string]Sender, channels []string, log *logger.Logger) (*Service, error) {
	if log == nil {
		log = logger.Nop()
	}
	for _, ch := range channels {
		if _, ok := senders[ch]; !ok {
			return nil, fmt.Errorf("unsupported channel: %s", ch)
		}
	}
	return &Service{
		senders:  senders,
		channels: channels,
		log:      log.WithComponent("notification"),
		now:      time.Now,
	}, nil
}

func (s *Service) AppointmentScheduled(ctx context.Context, patient *model.Patient, rdv time.Time) {
	var (
		patientID int64
		mail      string
	)
	if patient != nil {
		patientID = patient.ID
		if patient.Mail != nil {
			mail = *patient.Mail
		}
	}

	for _, ch := range s.channels {
		n := &model.Notification{
			Channel:   ch,
			Title:     AppointmentTitle,
			Body:      AppointmentBody(rdv),
			PatientID: patientID,
			Status:    model.NotificationStatusPending,
			CreatedAt: s.now(),
		}
		if ch == ChannelEmail {
			if mail == "" {
				s.log.Debug("no patient e-mail, skipping", "patient_id", patientID)
				continue
			}
			n.Recipient = mail
		}
		_ = s.Send(ctx, n)
	}
}

// Send delivers n over its channel and records the outcome on n.Status.
func (s *Service) Send(ctx context.Context, n *model.Notification) error {
	if n.Title == "" || n.Body == "" {
		return errors.New("notification needs a title and a body")
	}
	sender, ok := s.senders[n.Channel]
	if !ok {
		return fmt.Errorf("unsupported channel: %s", n.Channel)
	}

	if err := sender.Send(ctx, n); err != nil {
		n.Status = model.NotificationStatusFailed
		s.log.Error(err, "notification failed", "channel", n.Channel, "patient_id", n.PatientID)
		return err
	}
	n.Status = model.NotificationStatusSent
	s.log.Debug("notification sent", "channel", n.Channel, "patient_id", n.PatientID)
	return nil
}
