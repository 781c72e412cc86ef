// Package mailer sends transactional email through SendGrid. With no API key
// configured it degrades to logging, which keeps local development working
// without credentials.
package mailer

import (
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/darccuir/storefront-api/models"
)

func qty(n int) decimal.Decimal { return decimal.NewFromInt(int64(n)) }

type Mailer struct {
	apiKey string
	from   string
	brand  string
	log    *logrus.Logger
}

func New(apiKey, from string, log *logrus.Logger) *Mailer {
	if log == nil {
		log = logrus.New()
	}
	return &Mailer{apiKey: apiKey, from: from, brand: "Darccuir & Yatay", log: log}
}

// Send delivers one plain-text email. Failures are returned, not logged;
// callers in request paths decide whether mail is best-effort.
func (m *Mailer) Send(to, subject, body string) error {
	if m.apiKey == "" {
		m.log.WithFields(logrus.Fields{"to": to, "subject": subject}).
			Info("sendgrid key not configured, skipping mail")
		return nil
	}

	from := mail.NewEmail(m.brand, m.from)
	message := mail.NewSingleEmail(from, subject, mail.NewEmail("", to), body,
		fmt.Sprintf("<pre>%s</pre>", body))

	resp, err := sendgrid.NewSendClient(m.apiKey).Send(message)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid send failed: status=%d body=%s", resp.StatusCode, resp.Body)
	}
	return nil
}

func (m *Mailer) SendWelcome(to, name string) error {
	body := fmt.Sprintf("Hola %s,\n\nTu cuenta fue creada con éxito. ¡Gracias por sumarte!\n", name)
	return m.Send(to, "Bienvenido a Darccuir & Yatay", body)
}

func (m *Mailer) SendOrderConfirmation(to string, order models.Order) error {
	body := fmt.Sprintf("Recibimos tu pedido %s.\n\n", order.Number)
	for _, item := range order.Items {
		line := fmt.Sprintf("  %dx %s", item.Quantity, item.Name)
		if item.VariantColor != "" {
			line += fmt.Sprintf(" (%s)", item.VariantColor)
		}
		body += line + fmt.Sprintf(" - $%s\n", item.UnitPrice.Mul(qty(item.Quantity)).StringFixed(2))
	}
	body += fmt.Sprintf("\nTotal: $%s\n", order.Total.StringFixed(2))
	return m.Send(to, fmt.Sprintf("Confirmación de pedido %s", order.Number), body)
}
