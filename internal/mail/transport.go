package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/meta-portal/meta-service/internal/fault"
)

// Message is the rendered content handed to a transport.
type Message struct {
	FromEmail string
	FromName  string
	ToEmail   string
	ToName    string

	Subject string
	Text    string
	HTML    string

	TrackingID string
}

// Transport delivers one message. Implementations report transient failures
// as *fault.DeliveryError so the retry state machine can pick them up.
type Transport interface {
	Send(ctx context.Context, msg *Message) error
}

// SMTPConfig configures the SMTP transport.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	UseTLS   bool
	// Timeout bounds the dial and the whole exchange. A timeout counts as a
	// transient failure and feeds the retry path.
	Timeout time.Duration
}

// SMTPTransport sends mail over a plain SMTP session with STARTTLS.
type SMTPTransport struct {
	cfg SMTPConfig
}

// NewSMTPTransport returns a transport for the given server settings.
func NewSMTPTransport(cfg SMTPConfig) *SMTPTransport {
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &SMTPTransport{cfg: cfg}
}

// Send delivers msg, wrapping every transport-level failure as transient.
func (t *SMTPTransport) Send(ctx context.Context, msg *Message) error {
	if err := t.send(ctx, msg); err != nil {
		return &fault.DeliveryError{Recipient: msg.ToEmail, Err: err}
	}
	return nil
}

func (t *SMTPTransport) send(ctx context.Context, msg *Message) error {
	addr := fmt.Sprintf("%s:%d", t.cfg.Host, t.cfg.Port)

	conn, err := net.DialTimeout("tcp", addr, t.cfg.Timeout)
	if err != nil {
		return err
	}

	deadline := time.Now().Add(t.cfg.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		conn.Close()
		return err
	}

	client, err := smtp.NewClient(conn, t.cfg.Host)
	if err != nil {
		conn.Close()
		return err
	}
	defer client.Close()

	if t.cfg.UseTLS {
		if err := client.StartTLS(&tls.Config{ServerName: t.cfg.Host}); err != nil {
			return err
		}
	}

	if t.cfg.Username != "" && t.cfg.Password != "" {
		auth := smtp.PlainAuth("", t.cfg.Username, t.cfg.Password, t.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return err
		}
	}

	if err := client.Mail(msg.FromEmail); err != nil {
		return err
	}
	if err := client.Rcpt(msg.ToEmail); err != nil {
		return err
	}

	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write([]byte(encodeMessage(msg))); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	return client.Quit()
}

// encodeMessage renders the MIME wire format: multipart/alternative when both
// bodies are present, a single part otherwise.
func encodeMessage(msg *Message) string {
	var b strings.Builder

	writeAddr := func(header, name, email string) {
		if name != "" {
			fmt.Fprintf(&b, "%s: %s <%s>\r\n", header, mime.QEncoding.Encode("utf-8", name), email)
		} else {
			fmt.Fprintf(&b, "%s: %s\r\n", header, email)
		}
	}
	writeAddr("From", msg.FromName, msg.FromEmail)
	writeAddr("To", msg.ToName, msg.ToEmail)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	if msg.TrackingID != "" {
		fmt.Fprintf(&b, "X-Tracking-ID: %s\r\n", msg.TrackingID)
	}
	b.WriteString("MIME-Version: 1.0\r\n")

	switch {
	case msg.Text != "" && msg.HTML != "":
		const boundary = "meta-portal-alt"
		fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", boundary)
		fmt.Fprintf(&b, "--%s\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n", boundary, msg.Text)
		fmt.Fprintf(&b, "--%s\r\nContent-Type: text/html; charset=utf-8\r\n\r\n%s\r\n", boundary, msg.HTML)
		fmt.Fprintf(&b, "--%s--\r\n", boundary)
	case msg.HTML != "":
		fmt.Fprintf(&b, "Content-Type: text/html; charset=utf-8\r\n\r\n%s\r\n", msg.HTML)
	default:
		fmt.Fprintf(&b, "Content-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n", msg.Text)
	}

	return b.String()
}
