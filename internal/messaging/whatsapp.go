package messaging

import (
	"context"
	"log"
	"strings"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"nidaan-triage/pkg"
)

// Sender delivers a report body to a phone number over a messaging channel.
type Sender interface {
	SendReport(ctx context.Context, phoneNumber, body string) pkg.SendOutcome
}

// WhatsAppSender sends messages through the Twilio WhatsApp channel.  A
// sender constructed without credentials stays usable and reports a
// not-configured outcome on every call.
type WhatsAppSender struct {
	client *twilio.RestClient
	from   string
}

// NewWhatsAppSender constructs the adapter.  Missing credentials disable the
// feature rather than failing construction.
func NewWhatsAppSender(accountSID, authToken, whatsappNumber string) *WhatsAppSender {
	if accountSID == "" || authToken == "" || whatsappNumber == "" {
		log.Println("messaging: Twilio credentials not found - WhatsApp feature disabled")
		return &WhatsAppSender{}
	}
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &WhatsAppSender{client: client, from: whatsappNumber}
}

// Enabled reports whether the provider client was initialized.
func (w *WhatsAppSender) Enabled() bool { return w.client != nil }

// SendReport delivers body to phoneNumber via WhatsApp.  Provider rejections
// are normalized into a failure outcome; no provider error escapes.
func (w *WhatsAppSender) SendReport(ctx context.Context, phoneNumber, body string) pkg.SendOutcome {
	if !w.Enabled() {
		return pkg.SendOutcome{
			Success: false,
			Status:  pkg.SendStatusNotConfigured,
			Error:   "WhatsApp feature not configured",
		}
	}

	to := "whatsapp:+" + NormalizePhone(phoneNumber)

	params := &twilioApi.CreateMessageParams{}
	params.SetFrom(w.from)
	params.SetTo(to)
	params.SetBody(body)

	msg, err := w.client.Api.CreateMessage(params)
	if err != nil {
		log.Printf("messaging: Twilio send failed: %v", err)
		return pkg.SendOutcome{
			Success: false,
			Status:  pkg.SendStatusFailed,
			Error:   err.Error(),
		}
	}

	sid := ""
	if msg.Sid != nil {
		sid = *msg.Sid
	}
	return pkg.SendOutcome{
		Success:   true,
		Status:    pkg.SendStatusSent,
		MessageID: sid,
	}
}

// NormalizePhone strips non-digits and prefixes the Indian country code when
// the number is a bare 10-digit local number.
func NormalizePhone(phoneNumber string) string {
	var b strings.Builder
	for _, r := range phoneNumber {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) == 10 && !strings.HasPrefix(digits, "91") {
		digits = "91" + digits
	}
	return digits
}

// FormatReport wraps a triage report in the WhatsApp message template.
func FormatReport(report string) string {
	return "🏥 *NIDAAN-AI Medical Report*\n\n" +
		report +
		"\n\n━━━━━━━━━━━━━━━━━━━━━━━\n" +
		"⚕️ AI-generated report. Consult a healthcare professional.\n" +
		"📱 Emergency: Call 108\n"
}
