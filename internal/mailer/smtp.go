package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"spendtrack/internal/logger"
)

const (
	dialTimeout = 8 * time.Second
	sendTimeout = 15 * time.Second
)

// SMTPDispatcher sends mail over SMTP with STARTTLS and PLAIN auth.
type SMTPDispatcher struct {
	host     string
	port     string
	username string
	password string
	from     string
	fromName string
}

// NewSMTPDispatcher creates an SMTPDispatcher for the given server and sender.
func NewSMTPDispatcher(host, port, username, password, from, fromName string) *SMTPDispatcher {
	return &SMTPDispatcher{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		fromName: fromName,
	}
}

// Send delivers a MIME HTML message to a single recipient.
func (d *SMTPDispatcher) Send(ctx context.Context, to, subject, htmlBody, textBody string) error {
	fromHeader := fmt.Sprintf("%s <%s>", d.fromName, d.from)

	msg := strings.Join([]string{
		fmt.Sprintf("From: %s", fromHeader),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		`Content-Type: text/html; charset="UTF-8"`,
		"",
		htmlBody,
	}, "\r\n")
	_ = textBody // the HTML part carries the full content

	logger.Get().Infow("mail sending", "to", to, "via", d.addr())

	if err := d.send(ctx, to, []byte(msg)); err != nil {
		return err
	}

	logger.Get().Infow("mail sent", "to", to)
	return nil
}

func (d *SMTPDispatcher) addr() string {
	return net.JoinHostPort(d.host, d.port)
}

func (d *SMTPDispatcher) send(ctx context.Context, to string, msg []byte) error {
	dialer := &net.Dialer{Timeout: dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", d.addr())
	if err != nil {
		return err
	}
	// Overall deadline so a stalled server cannot hang the connection.
	deadline := time.Now().Add(sendTimeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	_ = conn.SetDeadline(deadline)

	c, err := smtp.NewClient(conn, d.host)
	if err != nil {
		return err
	}
	defer func() { _ = c.Quit() }()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: d.host}); err != nil {
			return err
		}
	}

	if d.username != "" {
		auth := smtp.PlainAuth("", d.username, d.password, d.host)
		if err := c.Auth(auth); err != nil {
			return err
		}
	}

	if err := c.Mail(d.from); err != nil {
		return err
	}
	if err := c.Rcpt(to); err != nil {
		return err
	}

	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	return w.Close()
}
