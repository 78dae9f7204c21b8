package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"regexp"
	"strings"
	"time"

	"github.com/Temutjin2k/niva/internal/domain/models"
	"github.com/Temutjin2k/niva/internal/domain/types"
)

const timeLayout = "Jan 2, 2006 3:04 PM MST"

// Templates renders the texts sent to trusted contacts.
type Templates struct {
	Brand string
}

func NewTemplates(brand string) Templates {
	if brand == "" {
		brand = "Niva"
	}
	return Templates{Brand: brand}
}

func userName(name string) string {
	if strings.TrimSpace(name) == "" {
		return models.DefaultUserName
	}
	return name
}

// LocationUpdate is sent on every ping.
func (t Templates) LocationUpdate(name string, loc models.Location, at time.Time, routeName string, eta *int) string {
	name = userName(name)

	var route string
	if routeName != "" {
		route = fmt.Sprintf("\n🗺️ Route: %s", routeName)
		if eta != nil {
			route += fmt.Sprintf("\n⏱️ ETA: %d minutes remaining", *eta)
		}
	}

	var address string
	if loc.Address != "" {
		address = fmt.Sprintf("\n🏠 Near: %s", loc.Address)
	}

	return fmt.Sprintf(`🛡️ %[1]s Location Update

Hi! %[2]s is sharing their location with you.

📍 Current Location: %[3]s%[4]s
🕐 Time: %[5]s%[6]s

This is an automated safety check-in. %[2]s wanted you to know where they are.

Reply "SAFE" if you want to confirm you received this.

Stay safe! 💝

---
Sent via %[1]s Safety App`, t.Brand, name, loc.MapsLink(), address, at.Format(timeLayout), route)
}

// GentleCheckIn is sent when a check-in prompt goes unanswered.
func (t Templates) GentleCheckIn(name, routeName string) string {
	name = userName(name)

	var route string
	if routeName != "" {
		route = fmt.Sprintf("\n\nThey were on their %q route.", routeName)
	}

	return fmt.Sprintf(`🛡️ %[1]s Gentle Check-in

Hi! This is a gentle check-in from %[1]s.

%[2]s hasn't responded to their safety check-in in a while. This might just mean they're busy, but we wanted to let you know.%[3]s

You might want to reach out and say hello! 💝

This is an automated message from %[1]s safety app.`, t.Brand, name, route)
}

// Emergency is sent when the safety check goes unanswered.
func (t Templates) Emergency(name string, loc *models.Location, at time.Time) string {
	name = userName(name)

	where := "unavailable"
	if loc != nil {
		where = loc.MapsLink()
		if loc.Address != "" {
			where += " (" + loc.Address + ")"
		}
	}

	return fmt.Sprintf(`🚨 %[1]s EMERGENCY ALERT 🚨

%[2]s may need immediate assistance!

📍 LAST KNOWN LOCATION: %[3]s
🕐 Time: %[4]s

Please check on them immediately or contact emergency services if needed.

This is an automated emergency alert from %[5]s safety app.`, strings.ToUpper(t.Brand), name, where, at.Format(timeLayout), t.Brand)
}

// Render picks the template of an alert request.
func (t Templates) Render(alert models.AlertRequest) (subject, body string) {
	switch alert.Kind {
	case types.AlertLocationUpdate:
		var loc models.Location
		if alert.Location != nil {
			loc = *alert.Location
		}
		return t.Brand + " Location Update", t.LocationUpdate(alert.UserName, loc, alert.CreatedAt, alert.RouteName, alert.ETAMinutes)
	case types.AlertGentleCheckIn:
		return t.Brand + " Gentle Check-in", t.GentleCheckIn(alert.UserName, alert.RouteName)
	default:
		return userName(alert.UserName) + " may need help", t.Emergency(alert.UserName, alert.Location, alert.CreatedAt)
	}
}

// hasBanner reports whether a rendered alert already opens with its own emergency heading.
func hasBanner(message string) bool {
	return strings.Contains(message, "EMERGENCY ALERT")
}

// SMSBody adds the emergency banner to SMS texts that do not carry one.
func (t Templates) SMSBody(message string, typ types.MessageType) string {
	if typ != types.MessageEmergency || hasBanner(message) {
		return message
	}
	return fmt.Sprintf("🚨 EMERGENCY ALERT 🚨\n\n%s\n\nThis is an automated emergency message from %s.", message, t.Brand)
}

// WhatsAppBody adds the emergency banner using WhatsApp markup.
func (t Templates) WhatsAppBody(message string, typ types.MessageType) string {
	if typ != types.MessageEmergency || hasBanner(message) {
		return message
	}
	return fmt.Sprintf("🚨 *EMERGENCY ALERT* 🚨\n\n%s\n\n_This is an automated emergency message from %s._", message, t.Brand)
}

func (t Templates) EmailSubject(subject string, typ types.MessageType) string {
	if typ != types.MessageEmergency {
		return subject
	}
	return "🚨 EMERGENCY ALERT - " + subject
}

// EmailText is the plain-text part; bulk emails greet the contact by name.
func (t Templates) EmailText(message, name string) string {
	if name == "" {
		return message
	}
	return fmt.Sprintf("Dear %s,\n\n%s", name, message)
}

var emailHTML = template.Must(template.New("email").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
{{- if .Emergency}}
  <div style="background-color: #dc2626; color: white; padding: 20px; text-align: center; border-radius: 8px 8px 0 0;">
    <h1 style="margin: 0; font-size: 24px;">🚨 EMERGENCY ALERT 🚨</h1>
  </div>
  <div style="background-color: #fef2f2; border: 2px solid #dc2626; padding: 20px; border-radius: 0 0 8px 8px;">
{{- else}}
  <div style="background-color: #3b82f6; color: white; padding: 20px; text-align: center; border-radius: 8px 8px 0 0;">
    <h1 style="margin: 0; font-size: 24px;">🛡️ {{.Brand}}</h1>
  </div>
  <div style="background-color: #f8fafc; border: 2px solid #3b82f6; padding: 20px; border-radius: 0 0 8px 8px;">
{{- end}}
{{- if .Name}}
    <p style="color: #1f2937; margin: 0 0 10px 0;">Dear {{.Name}},</p>
{{- end}}
    <div style="color: #1f2937; line-height: 1.6;">
{{- range $i, $line := .Lines}}{{if $i}}<br>{{end}}{{$line}}{{end -}}
    </div>
{{- if .Emergency}}
    <hr style="margin: 20px 0; border: none; border-top: 1px solid #dc2626;">
    <p style="color: #6b7280; font-size: 14px; margin: 0;">This is an automated emergency message from {{.Brand}}.</p>
{{- end}}
  </div>
</div>`))

// EmailHTML renders the HTML part with the normal or the emergency styling.
func (t Templates) EmailHTML(message, name string, typ types.MessageType) (string, error) {
	var buf bytes.Buffer
	err := emailHTML.Execute(&buf, map[string]any{
		"Brand":     t.Brand,
		"Name":      name,
		"Emergency": typ == types.MessageEmergency,
		"Lines":     strings.Split(message, "\n"),
	})
	if err != nil {
		return "", fmt.Errorf("render email: %w", err)
	}
	return buf.String(), nil
}

var nonDigits = regexp.MustCompile(`\D`)

// FormatPhone keeps numbers that start with '+', otherwise strips everything
// but digits and assumes the +1 country code.
func FormatPhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if strings.HasPrefix(phone, "+") {
		return phone
	}
	return "+1" + nonDigits.ReplaceAllString(phone, "")
}

// FormatWhatsApp returns the Twilio WhatsApp address of a phone number.
func FormatWhatsApp(phone string) string {
	phone = strings.TrimSpace(phone)
	if strings.HasPrefix(phone, "whatsapp:") {
		return phone
	}
	return "whatsapp:" + FormatPhone(phone)
}
