package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/tahachak1/e-biblio/internal/otp/domain"
)

// Mailer delivers one-time codes over SMTP. With no credentials configured it
// reports Configured() == false and the caller runs in sandbox mode.
type Mailer struct {
	host       string
	port       int
	user       string
	pass       string
	from       string
	ttlMinutes int
}

func NewMailer(host string, port int, user, pass, from string, ttlMinutes int) *Mailer {
	if from == "" {
		from = user
	}
	return &Mailer{host: host, port: port, user: user, pass: pass, from: from, ttlMinutes: ttlMinutes}
}

func (m *Mailer) Configured() bool {
	return m.user != "" && m.pass != ""
}

func (m *Mailer) SendCode(ctx context.Context, to, code string, purpose domain.Purpose) error {
	return m.send(ctx, to, subjectFor(purpose), m.body(code))
}

func subjectFor(purpose domain.Purpose) string {
	switch purpose {
	case domain.PurposeRegister:
		return "Votre code de vérification e-Biblio"
	case domain.PurposeLogin:
		return "Votre code de connexion e-Biblio"
	case domain.PurposePasswordReset:
		return "Votre code de réinitialisation e-Biblio"
	}
	return "Votre code e-Biblio"
}

func (m *Mailer) body(code string) string {
	return fmt.Sprintf(`<div style="font-family:sans-serif;max-width:520px;margin:0 auto;">
  <h2>e-Biblio</h2>
  <p>Bonjour,</p>
  <p>Voici votre code de vérification&nbsp;:</p>
  <p style="font-size:24px;font-weight:700;letter-spacing:4px;">%s</p>
  <p>Il est valable pendant %d minutes.</p>
  <p style="color:#6b7280;font-size:13px;">Si vous n'êtes pas à l'origine de cette demande, ignorez cet email.</p>
</div>`, code, m.ttlMinutes)
}

// send delivers one HTML message, honouring the context deadline for the dial.
func (m *Mailer) send(ctx context.Context, to, subject, htmlBody string) error {
	var sb strings.Builder
	sb.WriteString("From: " + m.from + "\r\n")
	sb.WriteString("To: " + to + "\r\n")
	sb.WriteString("Subject: " + encodeRFC2047(subject) + "\r\n")
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(htmlBody)

	dialer := &net.Dialer{}
	if deadline, ok := ctx.Deadline(); ok {
		dialer.Deadline = deadline
	}
	addr := net.JoinHostPort(m.host, strconv.Itoa(m.port))
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("smtp dial: %w", err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	c, err := smtp.NewClient(conn, m.host)
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.Hello("localhost"); err != nil {
		return err
	}

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: m.host}); err != nil {
			return err
		}
	}

	if m.user != "" {
		if ok, _ := c.Extension("AUTH"); ok {
			auth := smtp.PlainAuth("", m.user, m.pass, m.host)
			if err := c.Auth(auth); err != nil {
				return err
			}
		}
	}

	if err := c.Mail(m.from); err != nil {
		return err
	}
	if err := c.Rcpt(to); err != nil {
		return err
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write([]byte(sb.String())); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	return c.Quit()
}

// encodeRFC2047 Q-encodes a Subject header so accented characters survive.
func encodeRFC2047(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == ' ':
			b.WriteByte('_')
		case (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9'):
			b.WriteByte(c)
		default:
			fmt.Fprintf(&b, "=%02X", c)
		}
	}
	return fmt.Sprintf("=?UTF-8?Q?%s?=", b.String())
}
