package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/vitemonmedoc/medoc/internal/model"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []model.Notification
	err  error
}

func (r *recordingSender) Send(_ context.Context, n *model.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, *n)
	return r.err
}

type fakeDialer struct {
	msgs []*gomail.Message
	err  error
}

func (f *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	f.msgs = append(f.msgs, m...)
	return f.err
}

type fakeBroker struct {
	published []interface{}
	channel   string
	feed      chan []byte
}

func (f *fakeBroker) Publish(_ context.Context, channel string, message interface{}) error {
	f.channel = channel
	f.published = append(f.published, message)
	return nil
}

func (f *fakeBroker) Subscribe(_ context.Context, _ string) (<-chan []byte, error) {
	return f.feed, nil
}

func (f *fakeBroker) Close() error { return nil }

func TestAppointmentBody(t *testing.T) {
	rdv := time.Date(2025, 3, 7, 14, 30, 0, 0, time.Local)
	assert.Equal(t, "Votre rendez-vous est programmé pour le 07/03/2025 14:30", AppointmentBody(rdv))
}

func TestNewServiceRejectsUnknownChannel(t *testing.T) {
	_, err := NewService(map[string]Sender{ChannelLocal: &recordingSender{}}, []string{"sms"}, nil)
	assert.Error(t, err)
}

func TestAppointmentScheduledFansOut(t *testing.T) {
	local := &recordingSender{}
	mail := &recordingSender{}
	svc, err := NewService(map[string]Sender{ChannelLocal: local, ChannelEmail: mail}, []string{ChannelLocal, ChannelEmail}, nil)
	require.NoError(t, err)

	addr := "lea@example.fr"
	patient := &model.Patient{Base: model.Base{ID: 5}, Mail: &addr}
	rdv := time.Date(2025, 3, 7, 14, 30, 0, 0, time.Local)
	svc.AppointmentScheduled(context.Background(), patient, rdv)

	require.Len(t, local.sent, 1)
	assert.Equal(t, AppointmentTitle, local.sent[0].Title)
	assert.Equal(t, int64(5), local.sent[0].PatientID)
	require.Len(t, mail.sent, 1)
	assert.Equal(t, addr, mail.sent[0].Recipient)
}

func TestAppointmentScheduledSkipsEmailWithoutAddress(t *testing.T) {
	mail := &recordingSender{}
	svc, err := NewService(map[string]Sender{ChannelEmail: mail}, []string{ChannelEmail}, nil)
	require.NoError(t, err)

	svc.AppointmentScheduled(context.Background(), &model.Patient{}, time.Now())
	assert.Empty(t, mail.sent)
}

func TestSendRecordsStatus(t *testing.T) {
	failing := &recordingSender{err: errors.New("smtp down")}
	svc, err := NewService(map[string]Sender{ChannelEmail: failing}, nil, nil)
	require.NoError(t, err)

	n := &model.Notification{Channel: ChannelEmail, Title: "t", Body: "b", Recipient: "x@y.z"}
	assert.Error(t, svc.Send(context.Background(), n))
	assert.Equal(t, model.NotificationStatusFailed, n.Status)

	n = &model.Notification{Channel: "pigeon", Title: "t", Body: "b"}
	assert.Error(t, svc.Send(context.Background(), n))
}

func TestLocalSender(t *testing.T) {
	var buf bytes.Buffer
	err := NewLocalSender(&buf).Send(context.Background(), &model.Notification{Title: AppointmentTitle, Body: "corps"})
	require.NoError(t, err)
	assert.Equal(t, "[Nouveau rendez-vous] corps\n", buf.String())
}

func TestMailSender(t *testing.T) {
	d := &fakeDialer{}
	m := NewMailSenderWithDialer(d, "clinique@example.fr")

	err := m.Send(context.Background(), &model.Notification{Title: AppointmentTitle, Body: "corps", Recipient: "lea@example.fr"})
	require.NoError(t, err)
	require.Len(t, d.msgs, 1)
	assert.Equal(t, []string{"lea@example.fr"}, d.msgs[0].GetHeader("To"))
	assert.Equal(t, []string{AppointmentTitle}, d.msgs[0].GetHeader("Subject"))

	assert.Error(t, m.Send(context.Background(), &model.Notification{Title: "t", Body: "b"}))
}

func TestBrokerSender(t *testing.T) {
	b := &fakeBroker{}
	n := &model.Notification{Title: AppointmentTitle, Body: "corps"}
	require.NoError(t, NewBrokerSender(b, "medoc:notifications").Send(context.Background(), n))
	assert.Equal(t, "medoc:notifications", b.channel)
	assert.Len(t, b.published, 1)
}

func TestWatchRelaysUntilClosed(t *testing.T) {
	feed := make(chan []byte, 2)
	payload, err := json.Marshal(model.Notification{Title: AppointmentTitle, Body: "corps"})
	require.NoError(t, err)
	feed <- []byte("not json")
	feed <- payload
	close(feed)

	local := &recordingSender{}
	err = Watch(context.Background(), &fakeBroker{feed: feed}, "ch", local, nil)
	require.NoError(t, err)
	require.Len(t, local.sent, 1)
	assert.Equal(t, "corps", local.sent[0].Body)
}
