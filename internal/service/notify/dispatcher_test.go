package notify

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Temutjin2k/niva/internal/domain/models"
	"github.com/Temutjin2k/niva/internal/domain/types"
	"github.com/Temutjin2k/niva/pkg/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []models.OutboundMessage
	fail map[string]error
}

func (f *fakeSender) Send(_ context.Context, msg models.OutboundMessage) (models.SendResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.fail[msg.To]; ok {
		return models.SendResult{}, err
	}
	f.sent = append(f.sent, msg)
	return models.SendResult{MessageID: "SM" + msg.To, To: msg.To, Status: "queued"}, nil
}

type fakeDeliveries struct {
	rows []*models.Delivery
}

func (f *fakeDeliveries) Create(_ context.Context, d *models.Delivery) error {
	f.rows = append(f.rows, d)
	return nil
}

type fakeStatus struct{}

func (fakeStatus) FetchStatus(_ context.Context, id string) (*models.MessageStatus, error) {
	return &models.MessageStatus{SID: id, Status: "delivered"}, nil
}

func newDispatcher(senders map[types.Channel]Sender, deliveries DeliveryRepo) *Dispatcher {
	return NewDispatcher(senders, map[types.Channel]StatusFetcher{types.ChannelSMS: fakeStatus{}}, deliveries, NewTemplates("Niva"), 0,
		logger.New(io.Discard, "test", logger.LevelError))
}

func TestDispatcher_Configured(t *testing.T) {
	d := newDispatcher(map[types.Channel]Sender{types.ChannelSMS: &fakeSender{}}, nil)

	assert.Equal(t, map[types.Channel]bool{
		types.ChannelSMS:      true,
		types.ChannelWhatsApp: false,
		types.ChannelEmail:    false,
	}, d.Configured())
}

func TestDispatcher_Send(t *testing.T) {
	sms := &fakeSender{}
	log := &fakeDeliveries{}
	d := newDispatcher(map[types.Channel]Sender{types.ChannelSMS: sms}, log)

	res, err := d.Send(context.Background(), SendRequest{Channel: types.ChannelSMS, Message: "hi", Type: types.MessageEmergency}, "555-000-1111")
	require.NoError(t, err)
	assert.Equal(t, "+15550001111", res.To)
	assert.Equal(t, "SM+15550001111", res.MessageID)

	require.Len(t, sms.sent, 1)
	assert.Contains(t, sms.sent[0].Body, "EMERGENCY ALERT")

	require.Len(t, log.rows, 1)
	assert.Equal(t, "queued", log.rows[0].Status)
	assert.Equal(t, types.ChannelSMS, log.rows[0].Channel)

	_, err = d.Send(context.Background(), SendRequest{Channel: types.ChannelWhatsApp, Message: "hi"}, "555")
	assert.ErrorIs(t, err, types.ErrChannelNotConfigured)
}

func TestDispatcher_SendBulk_PartialFailure(t *testing.T) {
	sms := &fakeSender{fail: map[string]error{"+15550000002": errors.New("invalid number")}}
	log := &fakeDeliveries{}
	d := newDispatcher(map[types.Channel]Sender{types.ChannelSMS: sms}, log)

	report, err := d.SendBulk(context.Background(), SendRequest{Channel: types.ChannelSMS, Message: "hi"}, []models.Recipient{
		{Name: "A", Phone: "5550000001"},
		{Name: "B", Phone: "5550000002"},
		{Name: "C"},
		{Name: "D", Phone: "+77000000000"},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, report.Sent)
	assert.Equal(t, 2, report.Failed)
	assert.Equal(t, "A", report.Results[0].Contact)
	assert.True(t, report.Results[0].Success)
	assert.Equal(t, "D", report.Results[1].Contact)

	assert.Equal(t, "B", report.Errors[0].Contact)
	assert.Equal(t, "invalid number", report.Errors[0].Error)
	assert.Equal(t, "No phone number provided", report.Errors[1].Error)

	// the recipient without an address is never attempted
	require.Len(t, log.rows, 3)
	assert.Equal(t, "failed", log.rows[1].Status)
}

func TestDispatcher_SendBulk_Email(t *testing.T) {
	email := &fakeSender{}
	d := newDispatcher(map[types.Channel]Sender{types.ChannelEmail: email}, nil)

	report, err := d.SendBulk(context.Background(), SendRequest{Channel: types.ChannelEmail, Subject: "Hello", Message: "hi"}, []models.Recipient{
		{Name: "Mom", Email: "mom@example.com"},
		{Name: "Dad"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Sent)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, "No email address provided", report.Errors[0].Error)

	require.Len(t, email.sent, 1)
	assert.Equal(t, "Dear Mom,\n\nhi", email.sent[0].Body)
	assert.Equal(t, "Hello", email.sent[0].Subject)
	assert.Contains(t, email.sent[0].HTML, "Dear Mom,")
}

func TestDispatcher_SendBulk_Cancelled(t *testing.T) {
	sms := &fakeSender{}
	d := newDispatcher(map[types.Channel]Sender{types.ChannelSMS: sms}, nil)
	d.pause = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	report, err := d.SendBulk(ctx, SendRequest{Channel: types.ChannelSMS, Message: "hi"}, []models.Recipient{
		{Name: "A", Phone: "+1"},
		{Name: "B", Phone: "+2"},
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, report.Sent)
	assert.Len(t, sms.sent, 1)
}

func TestDispatcher_Dispatch(t *testing.T) {
	sms, wa, email := &fakeSender{}, &fakeSender{}, &fakeSender{}
	d := newDispatcher(map[types.Channel]Sender{
		types.ChannelSMS:      sms,
		types.ChannelWhatsApp: wa,
		types.ChannelEmail:    email,
	}, nil)

	report := d.Dispatch(context.Background(), models.AlertRequest{
		ID:        uuid.New(),
		Kind:      types.AlertEmergency,
		SessionID: uuid.New(),
		UserID:    uuid.New(),
		UserName:  "Dana",
		Recipients: []models.Recipient{
			{Name: "Mom", Phone: "+1111", Email: "mom@example.com"},
			{Name: "Friend", Phone: "+2222"},
		},
		CreatedAt: time.Now(),
	})

	assert.Equal(t, 5, report.Sent)
	assert.Equal(t, 0, report.Failed)
	assert.Len(t, sms.sent, 2)
	assert.Len(t, wa.sent, 2)
	require.Len(t, email.sent, 1)

	assert.Equal(t, "whatsapp:+1111", wa.sent[0].To)
	assert.Equal(t, 1, strings.Count(wa.sent[0].Body, "EMERGENCY ALERT"))
	assert.Equal(t, 1, strings.Count(sms.sent[0].Body, "EMERGENCY ALERT"))
	assert.True(t, strings.HasPrefix(sms.sent[0].Body, "🚨 NIVA EMERGENCY ALERT 🚨"))
	assert.Equal(t, "🚨 EMERGENCY ALERT - Dana may need help", email.sent[0].Subject)
}

func TestDispatcher_Dispatch_OnlyConfigured(t *testing.T) {
	sms := &fakeSender{}
	d := newDispatcher(map[types.Channel]Sender{types.ChannelSMS: sms}, nil)

	report := d.Dispatch(context.Background(), models.AlertRequest{
		Kind:       types.AlertGentleCheckIn,
		Recipients: []models.Recipient{{Name: "Mom", Phone: "+1111", Email: "mom@example.com"}},
	})

	assert.Equal(t, 1, report.Sent)
	require.Len(t, sms.sent, 1)
	assert.NotContains(t, sms.sent[0].Body, "EMERGENCY")
}

func TestDispatcher_Status(t *testing.T) {
	d := newDispatcher(nil, nil)

	st, err := d.Status(context.Background(), types.ChannelSMS, "SM1")
	require.NoError(t, err)
	assert.Equal(t, "delivered", st.Status)

	_, err = d.Status(context.Background(), types.ChannelEmail, "x")
	assert.ErrorIs(t, err, types.ErrChannelNotConfigured)
}

func TestLogSender(t *testing.T) {
	s := NewLogSender(logger.New(io.Discard, "test", logger.LevelError))

	res, err := s.Send(context.Background(), models.OutboundMessage{Channel: types.ChannelWhatsApp, To: "whatsapp:+1"})
	require.NoError(t, err)
	assert.Equal(t, "simulated", res.Status)
	assert.Equal(t, "whatsapp:+1", res.To)
	assert.Contains(t, res.MessageID, "WHATSAPP_")
}
