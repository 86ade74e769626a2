package mail

import (
	"fmt"
	"html"
	"log"
	"net/smtp"
	"strings"

	"github.com/nibiaa/TenantDesk/internal/pkg/env"
)

// SMTPMailer sends emails via SMTP
func SendMail(to string, subject string, body string) error {
	host := env.GetEnv("SMTP_HOST", "")
	port := env.GetEnv("SMTP_PORT", "")
	username := env.GetEnv("SMTP_USERNAME", "")
	password := env.GetEnv("SMTP_PASSWORD", "")
	sender := env.GetEnv("SMTP_SENDER", "")

	if sender == "" {
		sender = fmt.Sprintf("no-reply@%s", "localhost")
		log.Printf("SMTP_SENDER not set, using default sender: %s", sender)
	}

	var auth smtp.Auth
	if username != "" && password != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}

	addr := fmt.Sprintf("%s:%s", host, port)

	msg := []byte(
		fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n", sender, to, subject) +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/html; charset=UTF-8\r\n\r\n" +
			body,
	)

	err := smtp.SendMail(addr, auth, sender, []string{to}, msg)
	if err != nil {
		log.Printf("SMTP send error: %v", err)
	} else {
		log.Printf("Email sent to %s via %s", to, addr)
	}
	return err
}

// ProvisionNotification is the summary mail sent to the technical manager
// after a tenant was created.
type ProvisionNotification struct {
	TenantTitle    string
	TenantID       string
	Usecase        string
	Plan           string
	AdminEmail     string
	ActivationLink string
	Tasks          []string
}

// SendProvisionNotification renders and sends the post-provisioning summary.
func SendProvisionNotification(to string, n ProvisionNotification) error {
	subject := fmt.Sprintf("New tenant provisioned: %s", n.TenantTitle)

	var b strings.Builder
	b.WriteString(fmt.Sprintf("<h2>Tenant %s is ready</h2>", html.EscapeString(n.TenantTitle)))
	b.WriteString("<table>")
	writeRow := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(fmt.Sprintf("<tr><td><b>%s</b></td><td>%s</td></tr>", label, html.EscapeString(value)))
	}
	writeRow("Tenant ID", n.TenantID)
	writeRow("Usecase", n.Usecase)
	writeRow("Plan", n.Plan)
	writeRow("Admin account", n.AdminEmail)
	b.WriteString("</table>")

	if n.ActivationLink != "" {
		b.WriteString(fmt.Sprintf(`<p>Activation link: <a href="%s">%s</a></p>`,
			html.EscapeString(n.ActivationLink), html.EscapeString(n.ActivationLink)))
	}

	if len(n.Tasks) > 0 {
		b.WriteString("<h3>Onboarding tasks</h3><ul>")
		for _, task := range n.Tasks {
			b.WriteString(fmt.Sprintf("<li>%s</li>", html.EscapeString(task)))
		}
		b.WriteString("</ul>")
	}

	return SendMail(to, subject, b.String())
}
