package notify

import (
	"strings"
	"testing"
	"time"

	"github.com/Temutjin2k/niva/internal/domain/models"
	"github.com/Temutjin2k/niva/internal/domain/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatPhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"+77011234567", "+77011234567"},
		{"(555) 123-4567", "+15551234567"},
		{" 555.123.4567 ", "+15551234567"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatPhone(tt.in), tt.in)
	}

	assert.Equal(t, "whatsapp:+15551234567", FormatWhatsApp("555-123-4567"))
	assert.Equal(t, "whatsapp:+4420", FormatWhatsApp("whatsapp:+4420"))
}

func TestTemplates_Brand(t *testing.T) {
	assert.Equal(t, "Niva", NewTemplates("").Brand)
	assert.Equal(t, "Guard", NewTemplates("Guard").Brand)
}

func TestTemplates_LocationUpdate(t *testing.T) {
	tmpl := NewTemplates("Niva")
	at := time.Date(2025, 3, 1, 18, 30, 0, 0, time.UTC)
	eta := 12

	msg := tmpl.LocationUpdate("Aigerim", models.Location{Latitude: 43.25, Longitude: 76.95, Address: "Abay Ave"}, at, "Home", &eta)

	assert.Contains(t, msg, "Aigerim is sharing their location")
	assert.Contains(t, msg, "https://maps.google.com/?q=43.25,76.95")
	assert.Contains(t, msg, "Near: Abay Ave")
	assert.Contains(t, msg, "Route: Home")
	assert.Contains(t, msg, "ETA: 12 minutes remaining")
	assert.Contains(t, msg, "Mar 1, 2025 6:30 PM UTC")

	plain := tmpl.LocationUpdate("", models.Location{}, at, "", nil)
	assert.Contains(t, plain, models.DefaultUserName)
	assert.NotContains(t, plain, "Route:")
}

func TestTemplates_Render(t *testing.T) {
	tmpl := NewTemplates("Niva")
	at := time.Now()

	subject, body := tmpl.Render(models.AlertRequest{Kind: types.AlertGentleCheckIn, UserName: "Dana", RouteName: "Gym", CreatedAt: at})
	assert.Equal(t, "Niva Gentle Check-in", subject)
	assert.Contains(t, body, "Dana hasn't responded")
	assert.Contains(t, body, `"Gym" route`)

	subject, body = tmpl.Render(models.AlertRequest{Kind: types.AlertEmergency, UserName: "Dana", CreatedAt: at})
	assert.Equal(t, "Dana may need help", subject)
	assert.Contains(t, body, "NIVA EMERGENCY ALERT")
	assert.Contains(t, body, "LAST KNOWN LOCATION: unavailable")
}

func TestTemplates_Wrappers(t *testing.T) {
	tmpl := NewTemplates("Niva")

	assert.Equal(t, "hi", tmpl.SMSBody("hi", types.MessageNormal))
	assert.True(t, strings.HasPrefix(tmpl.SMSBody("hi", types.MessageEmergency), "🚨 EMERGENCY ALERT 🚨\n\nhi"))
	assert.Equal(t, "🚨 *EMERGENCY ALERT* 🚨\n\nhi\n\n_This is an automated emergency message from Niva._", tmpl.WhatsAppBody("hi", types.MessageEmergency))
	assert.Equal(t, "🚨 EMERGENCY ALERT - Help", tmpl.EmailSubject("Help", types.MessageEmergency))

	alert := tmpl.Emergency("Dana", nil, time.Now())
	assert.Equal(t, alert, tmpl.SMSBody(alert, types.MessageEmergency))
	assert.Equal(t, alert, tmpl.WhatsAppBody(alert, types.MessageEmergency))
	assert.Equal(t, "Help", tmpl.EmailSubject("Help", types.MessageNormal))
	assert.Equal(t, "Dear Mom,\n\nhi", tmpl.EmailText("hi", "Mom"))
}

func TestTemplates_EmailHTML(t *testing.T) {
	tmpl := NewTemplates("Niva")

	html, err := tmpl.EmailHTML("line one\n<b>two</b>", "Mom", types.MessageEmergency)
	require.NoError(t, err)
	assert.Contains(t, html, "#dc2626")
	assert.Contains(t, html, "Dear Mom,")
	assert.Contains(t, html, "line one<br>&lt;b&gt;two&lt;/b&gt;")

	html, err = tmpl.EmailHTML("hello", "", types.MessageNormal)
	require.NoError(t, err)
	assert.Contains(t, html, "#3b82f6")
	assert.NotContains(t, html, "Dear")
}
