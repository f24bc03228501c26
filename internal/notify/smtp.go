package notify

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"mime/multipart"
	"net"
	"net/smtp"
	"net/textproto"
	"strconv"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

// SMTPConfig holds connection settings for the mail provider.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	// From is the sender address. Falls back to Username when empty.
	From string
	// FromName is the display name on outgoing mail.
	FromName string
}

// SMTPMailer delivers messages over SMTP with STARTTLS. The context
// deadline bounds the whole exchange, including the dial.
type SMTPMailer struct {
	cfg SMTPConfig
}

var _ Mailer = (*SMTPMailer)(nil)

// NewSMTPMailer creates an SMTPMailer.
func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	return &SMTPMailer{cfg: cfg}
}

// Send delivers one message and returns its Message-ID.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) (string, error) {
	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return "", errors.Wrap(err, "dial smtp")
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	} else {
		_ = conn.SetDeadline(time.Now().Add(30 * time.Second))
	}

	c, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		conn.Close()
		return "", errors.Wrap(err, "smtp handshake")
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: m.cfg.Host}); err != nil {
			return "", errors.Wrap(err, "starttls")
		}
	}
	if m.cfg.Username != "" {
		auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
		if ok, _ := c.Extension("AUTH"); ok {
			if err := c.Auth(auth); err != nil {
				return "", errors.Wrap(err, "smtp auth")
			}
		}
	}

	messageID := fmt.Sprintf("<%s@%s>", uuid.New().String(), m.cfg.Host)
	body, err := m.buildMessage(msg, messageID)
	if err != nil {
		return "", err
	}

	if err := c.Mail(m.cfg.From); err != nil {
		return "", errors.Wrap(err, "smtp mail from")
	}
	if err := c.Rcpt(msg.To); err != nil {
		return "", errors.Wrap(err, "smtp rcpt to")
	}
	w, err := c.Data()
	if err != nil {
		return "", errors.Wrap(err, "smtp data")
	}
	if _, err := w.Write(body); err != nil {
		return "", errors.Wrap(err, "write message")
	}
	if err := w.Close(); err != nil {
		return "", errors.Wrap(err, "close message")
	}
	if err := c.Quit(); err != nil {
		return "", errors.Wrap(err, "smtp quit")
	}

	return messageID, nil
}

// buildMessage assembles a multipart/alternative message carrying both the
// text and HTML renderings.
func (m *SMTPMailer) buildMessage(msg Message, messageID string) ([]byte, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	from := m.cfg.From
	if m.cfg.FromName != "" {
		from = fmt.Sprintf("%q <%s>", m.cfg.FromName, m.cfg.From)
	}

	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", msg.To)
	fmt.Fprintf(&buf, "Subject: %s\r\n", msg.Subject)
	fmt.Fprintf(&buf, "Message-ID: %s\r\n", messageID)
	fmt.Fprintf(&buf, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	fmt.Fprintf(&buf, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/alternative; boundary=%q\r\n", mw.Boundary())
	fmt.Fprintf(&buf, "\r\n")

	// Plain text first, HTML last: clients prefer the last part they support.
	text, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"text/plain; charset=UTF-8"},
	})
	if err != nil {
		return nil, errors.Wrap(err, "create text part")
	}
	if _, err := text.Write([]byte(msg.Text)); err != nil {
		return nil, errors.Wrap(err, "write text part")
	}

	html, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"text/html; charset=UTF-8"},
	})
	if err != nil {
		return nil, errors.Wrap(err, "create html part")
	}
	if _, err := html.Write([]byte(msg.HTML)); err != nil {
		return nil, errors.Wrap(err, "write html part")
	}

	if err := mw.Close(); err != nil {
		return nil, errors.Wrap(err, "close multipart")
	}
	return buf.Bytes(), nil
}
