package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Temutjin2k/niva/internal/domain/models"
	"github.com/Temutjin2k/niva/internal/domain/types"
	"github.com/Temutjin2k/niva/internal/service/auth"
	"github.com/Temutjin2k/niva/internal/service/companion"
	"github.com/Temutjin2k/niva/internal/service/notify"
	"github.com/Temutjin2k/niva/pkg/logger"
	wrap "github.com/Temutjin2k/niva/pkg/logger/wrapper"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() logger.Logger {
	return logger.New(io.Discard, "test", logger.LevelError)
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func request(method, target, body string, user *models.User) *http.Request {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, bytes.NewBufferString(body))
	}
	if user != nil {
		r = r.WithContext(models.WithUser(r.Context(), user))
	}
	return r
}

func TestGetCode(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{types.ErrSessionNotFound, http.StatusNotFound},
		{types.ErrNoActiveSession, http.StatusNotFound},
		{types.ErrForbidden, http.StatusForbidden},
		{types.ErrSessionAlreadyActive, http.StatusConflict},
		{types.ErrEmailTaken, http.StatusConflict},
		{types.ErrChannelNotConfigured, http.StatusServiceUnavailable},
		{types.ErrNoPrompt, http.StatusBadRequest},
		{types.ErrInvalidDuration, http.StatusUnprocessableEntity},
		{auth.ErrInvalidCredentials, http.StatusUnauthorized},
		{fmt.Errorf("op: %w", types.ErrContactNotFound), http.StatusNotFound},
		{wrap.Error(context.Background(), types.ErrRouteNotFound), http.StatusNotFound},
		{io.ErrUnexpectedEOF, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, GetCode(tc.err), tc.err.Error())
	}
}

type fakeSessions struct {
	startErr  error
	answerErr error
	started   companion.StartRequest
	pinged    *models.Location
	filters   models.Filters
}

func (f *fakeSessions) snapshot(userID uuid.UUID) *models.SessionSnapshot {
	return &models.SessionSnapshot{
		Session: &models.Session{ID: uuid.New(), UserID: userID, Status: types.SessionActive, Prompt: types.PromptNone},
		Now:     time.Now(),
	}
}

func (f *fakeSessions) Start(_ context.Context, userID uuid.UUID, req companion.StartRequest) (*models.SessionSnapshot, error) {
	f.started = req
	if f.startErr != nil {
		return nil, f.startErr
	}
	return f.snapshot(userID), nil
}

func (f *fakeSessions) Active(_ context.Context, userID uuid.UUID) (*models.SessionSnapshot, error) {
	return nil, types.ErrNoActiveSession
}

func (f *fakeSessions) Status(_ context.Context, userID, _ uuid.UUID) (*models.SessionSnapshot, error) {
	return f.snapshot(userID), f.answerErr
}

func (f *fakeSessions) CheckIn(_ context.Context, userID, _ uuid.UUID) (*models.SessionSnapshot, error) {
	if f.answerErr != nil {
		return nil, f.answerErr
	}
	return f.snapshot(userID), nil
}

func (f *fakeSessions) ConfirmSafe(ctx context.Context, userID, id uuid.UUID) (*models.SessionSnapshot, error) {
	return f.CheckIn(ctx, userID, id)
}

func (f *fakeSessions) Ping(_ context.Context, userID, _ uuid.UUID, loc *models.Location) (*models.SessionSnapshot, error) {
	f.pinged = loc
	return f.snapshot(userID), nil
}

func (f *fakeSessions) UpdateLocation(_ context.Context, userID, _ uuid.UUID, loc models.Location) (*models.SessionSnapshot, error) {
	f.pinged = &loc
	return f.snapshot(userID), nil
}

func (f *fakeSessions) End(ctx context.Context, userID, id uuid.UUID) (*models.SessionSnapshot, error) {
	return f.CheckIn(ctx, userID, id)
}

func (f *fakeSessions) Events(_ context.Context, _, _ uuid.UUID, filters models.Filters) ([]models.SessionEventRecord, models.Metadata, error) {
	f.filters = filters
	return nil, models.CalculateMetadata(0, filters.Page, filters.PageSize), nil
}

func TestSession_StartRequiresUser(t *testing.T) {
	h := NewSession(&fakeSessions{}, testLogger())

	rec := httptest.NewRecorder()
	h.Start(rec, request(http.MethodPost, "/sessions", `{}`, models.AnonymousUser()))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSession_Start(t *testing.T) {
	svc := &fakeSessions{}
	h := NewSession(svc, testLogger())
	user := &models.User{ID: uuid.New(), Role: types.UserRoleUser}

	rec := httptest.NewRecorder()
	h.Start(rec, request(http.MethodPost, "/sessions", `{"duration":45,"location":{"latitude":43.2,"longitude":76.9}}`, user))

	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, svc.started.Duration)
	assert.Equal(t, 45, *svc.started.Duration)
	require.NotNil(t, svc.started.Location)
	assert.Equal(t, 43.2, svc.started.Location.Latitude)

	body := decode(t, rec)
	assert.Contains(t, body, "session")
}

func TestSession_StartErrors(t *testing.T) {
	user := &models.User{ID: uuid.New(), Role: types.UserRoleUser}

	t.Run("already active", func(t *testing.T) {
		h := NewSession(&fakeSessions{startErr: types.ErrSessionAlreadyActive}, testLogger())
		rec := httptest.NewRecorder()
		h.Start(rec, request(http.MethodPost, "/sessions", `{}`, user))
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("bad location", func(t *testing.T) {
		h := NewSession(&fakeSessions{}, testLogger())
		rec := httptest.NewRecorder()
		h.Start(rec, request(http.MethodPost, "/sessions", `{"location":{"latitude":120,"longitude":0}}`, user))
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, decode(t, rec)["error"], "latitude")
	})

	t.Run("unknown field", func(t *testing.T) {
		h := NewSession(&fakeSessions{}, testLogger())
		rec := httptest.NewRecorder()
		h.Start(rec, request(http.MethodPost, "/sessions", `{"minutes":5}`, user))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestSession_CheckIn(t *testing.T) {
	user := &models.User{ID: uuid.New(), Role: types.UserRoleUser}

	t.Run("invalid id", func(t *testing.T) {
		h := NewSession(&fakeSessions{}, testLogger())
		r := request(http.MethodPost, "/sessions/x/check-in", "", user)
		r.SetPathValue("session_id", "x")
		rec := httptest.NewRecorder()
		h.CheckIn(rec, r)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("no prompt", func(t *testing.T) {
		h := NewSession(&fakeSessions{answerErr: types.ErrNoPrompt}, testLogger())
		id := uuid.New()
		r := request(http.MethodPost, "/sessions/"+id.String()+"/check-in", "", user)
		r.SetPathValue("session_id", id.String())
		rec := httptest.NewRecorder()
		h.CheckIn(rec, r)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("ok", func(t *testing.T) {
		h := NewSession(&fakeSessions{}, testLogger())
		id := uuid.New()
		r := request(http.MethodPost, "/sessions/"+id.String()+"/check-in", "", user)
		r.SetPathValue("session_id", id.String())
		rec := httptest.NewRecorder()
		h.CheckIn(rec, r)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestSession_PingWithoutBody(t *testing.T) {
	svc := &fakeSessions{}
	h := NewSession(svc, testLogger())
	user := &models.User{ID: uuid.New(), Role: types.UserRoleUser}
	id := uuid.New()

	r := request(http.MethodPost, "/sessions/"+id.String()+"/ping", "", user)
	r.SetPathValue("session_id", id.String())
	rec := httptest.NewRecorder()
	h.Ping(rec, r)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, svc.pinged)
}

func TestSession_EventsFilters(t *testing.T) {
	user := &models.User{ID: uuid.New(), Role: types.UserRoleUser}
	id := uuid.New()

	t.Run("defaults", func(t *testing.T) {
		svc := &fakeSessions{}
		h := NewSession(svc, testLogger())
		r := request(http.MethodGet, "/sessions/"+id.String()+"/events", "", user)
		r.SetPathValue("session_id", id.String())
		rec := httptest.NewRecorder()
		h.Events(rec, r)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 1, svc.filters.Page)
		assert.Equal(t, 20, svc.filters.PageSize)
		assert.Equal(t, "created_at", svc.filters.SortColumn())
		assert.Equal(t, []any{}, decode(t, rec)["events"])
	})

	t.Run("invalid", func(t *testing.T) {
		h := NewSession(&fakeSessions{}, testLogger())
		r := request(http.MethodGet, "/sessions/"+id.String()+"/events?page_size=1000&sort=name", "", user)
		r.SetPathValue("session_id", id.String())
		rec := httptest.NewRecorder()
		h.Events(rec, r)

		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		errs, ok := decode(t, rec)["error"].(map[string]any)
		require.True(t, ok)
		assert.Contains(t, errs, "page_size")
		assert.Contains(t, errs, "sort")
	})
}

type fakeContacts struct {
	created *models.TrustedContact
}

func (f *fakeContacts) Create(_ context.Context, c *models.TrustedContact) error {
	c.ID = uuid.New()
	f.created = c
	return nil
}

func (f *fakeContacts) Update(_ context.Context, c *models.TrustedContact) error {
	return types.ErrContactNotFound
}

func (f *fakeContacts) List(context.Context, uuid.UUID) ([]models.TrustedContact, error) {
	return nil, nil
}

func (f *fakeContacts) Delete(context.Context, uuid.UUID, uuid.UUID) error {
	return nil
}

func TestContacts(t *testing.T) {
	user := &models.User{ID: uuid.New(), Role: types.UserRoleUser}

	t.Run("validation", func(t *testing.T) {
		h := NewContacts(&fakeContacts{}, testLogger())
		rec := httptest.NewRecorder()
		h.Create(rec, request(http.MethodPost, "/contacts", `{"name":"","phone":"12"}`, user))

		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		errs := decode(t, rec)["error"].(map[string]any)
		assert.Contains(t, errs, "name")
		assert.Contains(t, errs, "phone")
	})

	t.Run("create", func(t *testing.T) {
		svc := &fakeContacts{}
		h := NewContacts(svc, testLogger())
		rec := httptest.NewRecorder()
		h.Create(rec, request(http.MethodPost, "/contacts", `{"name":"Mom","phone":"+15551234567","email":"mom@example.com"}`, user))

		require.Equal(t, http.StatusCreated, rec.Code)
		require.NotNil(t, svc.created)
		assert.Equal(t, user.ID, svc.created.UserID)
	})

	t.Run("list is never null", func(t *testing.T) {
		h := NewContacts(&fakeContacts{}, testLogger())
		rec := httptest.NewRecorder()
		h.List(rec, request(http.MethodGet, "/contacts", "", user))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []any{}, decode(t, rec)["contacts"])
	})

	t.Run("update missing", func(t *testing.T) {
		h := NewContacts(&fakeContacts{}, testLogger())
		id := uuid.New()
		r := request(http.MethodPut, "/contacts/"+id.String(), `{"name":"Mom","phone":"+15551234567"}`, user)
		r.SetPathValue("contact_id", id.String())
		rec := httptest.NewRecorder()
		h.Update(rec, r)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

type fakeNotify struct {
	configured map[types.Channel]bool
	sent       []notify.SendRequest
	bulk       []models.Recipient
	statusErr  error
}

func (f *fakeNotify) Send(_ context.Context, req notify.SendRequest, to string) (models.SendResult, error) {
	if !f.configured[req.Channel] {
		return models.SendResult{}, types.ErrChannelNotConfigured
	}
	f.sent = append(f.sent, req)
	return models.SendResult{MessageID: "SM1", To: to, Status: "queued"}, nil
}

func (f *fakeNotify) SendBulk(_ context.Context, req notify.SendRequest, recipients []models.Recipient) (models.DeliveryReport, error) {
	f.bulk = recipients
	report := models.DeliveryReport{Results: []models.DeliveryResult{}, Errors: []models.DeliveryError{}}
	report.AddResult(models.DeliveryResult{Contact: recipients[0].Name, Channel: req.Channel, MessageID: "SM1"})
	for _, r := range recipients[1:] {
		report.AddError(models.DeliveryError{Contact: r.Name, Channel: req.Channel, Error: "No phone number provided"})
	}
	return report, nil
}

func (f *fakeNotify) Status(_ context.Context, _ types.Channel, id string) (*models.MessageStatus, error) {
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	return &models.MessageStatus{SID: id, Status: "delivered"}, nil
}

func (f *fakeNotify) Configured() map[types.Channel]bool {
	return f.configured
}

func TestNotification_Send(t *testing.T) {
	svc := &fakeNotify{configured: map[types.Channel]bool{types.ChannelSMS: true}}
	h := NewNotification(svc, testLogger())

	t.Run("missing fields", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.SendSMS(rec, request(http.MethodPost, "/api/sms/send", `{"message":"hi"}`, nil))

		require.Equal(t, http.StatusBadRequest, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, "Phone number and message are required", body["error"])
	})

	t.Run("emergency", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.SendSMS(rec, request(http.MethodPost, "/api/sms/send", `{"to":"5551234567","message":"help","type":"emergency"}`, nil))

		require.Equal(t, http.StatusOK, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, "SM1", body["messageId"])
		require.Len(t, svc.sent, 1)
		assert.Equal(t, types.MessageEmergency, svc.sent[0].Type)
	})

	t.Run("not configured", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.SendWhatsApp(rec, request(http.MethodPost, "/api/whatsapp/send", `{"to":"5551234567","message":"hi"}`, nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("email needs subject", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.SendEmail(rec, request(http.MethodPost, "/api/email/send", `{"to":"a@example.com","message":"hi"}`, nil))

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Email address, subject, and message are required", decode(t, rec)["error"])
	})
}

func TestNotification_SendBulk(t *testing.T) {
	svc := &fakeNotify{configured: map[types.Channel]bool{types.ChannelSMS: true}}
	h := NewNotification(svc, testLogger())

	rec := httptest.NewRecorder()
	h.SendBulkSMS(rec, request(http.MethodPost, "/api/sms/send-bulk",
		`{"message":"hi","contacts":[{"name":"A","phone":"+15550000001"},{"name":"B"}]}`, nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.EqualValues(t, 1, body["sent"])
	assert.EqualValues(t, 1, body["failed"])
	assert.Len(t, svc.bulk, 2)

	rec = httptest.NewRecorder()
	h.SendBulkSMS(rec, request(http.MethodPost, "/api/sms/send-bulk", `{"message":"hi","contacts":[]}`, nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNotification_Status(t *testing.T) {
	svc := &fakeNotify{configured: map[types.Channel]bool{types.ChannelSMS: true}}
	h := NewNotification(svc, testLogger())

	r := request(http.MethodGet, "/api/sms/status/SM1", "", nil)
	r.SetPathValue("message_id", "SM1")
	rec := httptest.NewRecorder()
	h.SMSStatus(rec, r)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "delivered", decode(t, rec)["status"])

	svc.statusErr = types.ErrMessageNotFound
	rec = httptest.NewRecorder()
	h.SMSStatus(rec, r)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNotification_APIStatus(t *testing.T) {
	svc := &fakeNotify{configured: map[types.Channel]bool{types.ChannelSMS: true, types.ChannelWhatsApp: false, types.ChannelEmail: false}}
	h := NewNotification(svc, testLogger())

	rec := httptest.NewRecorder()
	h.APIStatus(rec, request(http.MethodGet, "/api/status", "", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	services := decode(t, rec)["services"].(map[string]any)
	assert.Equal(t, true, services["sms"])
	assert.Equal(t, false, services["email"])
}

func TestHealthCheck(t *testing.T) {
	h := NewHealth("notification-service", testLogger())

	rec := httptest.NewRecorder()
	h.HealthCheck(rec, request(http.MethodGet, "/health", "", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "1.0.0", body["version"])
}
