// Package email formats broker notifications and sends them over SMTP.
package email

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"net/url"
	"strings"
	"time"

	"github.com/adway7103/broker-demo/internal/lead"
	"github.com/adway7103/broker-demo/internal/property"
)

// SMTPConfig holds SMTP connection settings.
type SMTPConfig struct {
	Host string
	Port string
	User string
	Pass string
	From string
}

// IsConfigured returns true if SMTP settings are present.
func (c SMTPConfig) IsConfigured() bool {
	return c.Host != "" && c.From != ""
}

// FormatLeadEmail builds the subject and plain-text body announcing a new
// lead to the broker.
func FormatLeadEmail(l *lead.Lead, baseURL string) (string, string) {
	subject := headerValue(fmt.Sprintf("New lead: %s", l.DisplayName()))

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "A new enquiry came in through the property search.\n\n")
	fmt.Fprintf(&buf, "Phone: %s\n", l.PhoneNumber)

	rows := []struct {
		label string
		value *string
	}{
		{"Name", l.Name},
		{"Email", l.Email},
		{"Looking to", listingLabel(l.ListingType)},
		{"Budget", l.Budget},
		{"Property types", l.PropertyType},
		{"Localities", l.Locality},
		{"Furnishing", furnishingLabels(l.Furnishing)},
	}
	for _, row := range rows {
		if row.value != nil && *row.value != "" {
			fmt.Fprintf(&buf, "%s: %s\n", row.label, *row.value)
		}
	}

	if !l.CreatedAt.IsZero() {
		fmt.Fprintf(&buf, "Received: %s\n", l.CreatedAt.Format("02 Jan 2006 15:04 MST"))
	}

	if baseURL != "" {
		fmt.Fprintf(&buf, "\nView all leads: %s/admin/leads?search=%s\n", strings.TrimRight(baseURL, "/"), url.QueryEscape(l.PhoneNumber))
	}

	return subject, buf.String()
}

func listingLabel(v *string) *string {
	if v == nil {
		return nil
	}
	switch property.ListingType(*v) {
	case property.ListingRent:
		s := "Rent"
		return &s
	case property.ListingBuy:
		s := "Buy"
		return &s
	}
	return v
}

// furnishingLabels turns "FULLY_FURNISHED, UNFURNISHED" into display labels.
func furnishingLabels(v *string) *string {
	if v == nil {
		return nil
	}
	parts := strings.Split(*v, ",")
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if f, ok := property.ParseFurnishing(p); ok {
			p = f.Label()
		}
		parts[i] = p
	}
	s := strings.Join(parts, ", ")
	return &s
}

// DefaultTimeout bounds one SMTP delivery when the caller's context has no
// deadline.
const DefaultTimeout = 30 * time.Second

// LeadNotifier emails the broker whenever a lead is created.
type LeadNotifier struct {
	SMTP    SMTPConfig
	To      []string
	BaseURL string

	send func(ctx context.Context, cfg SMTPConfig, to []string, subject, body string) error
}

// NewLeadNotifier returns a notifier, or nil when SMTP or the recipient is
// not configured.
func NewLeadNotifier(cfg SMTPConfig, to, baseURL string) *LeadNotifier {
	if !cfg.IsConfigured() || strings.TrimSpace(to) == "" {
		return nil
	}
	var rcpts []string
	for _, addr := range strings.Split(to, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			rcpts = append(rcpts, addr)
		}
	}
	return &LeadNotifier{SMTP: cfg, To: rcpts, BaseURL: baseURL, send: Send}
}

// NotifyLead sends the new-lead email.
func (n *LeadNotifier) NotifyLead(ctx context.Context, l *lead.Lead) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	subject, body := FormatLeadEmail(l, n.BaseURL)
	send := n.send
	if send == nil {
		send = Send
	}
	return send(ctx, n.SMTP, n.To, subject, body)
}

// headerValue flattens CR and LF so a value cannot start a new header.
func headerValue(s string) string {
	return strings.Join(strings.FieldsFunc(s, func(r rune) bool {
		return r == '\r' || r == '\n'
	}), " ")
}

// Send sends an email via SMTP.
// Supports both port 465 (implicit TLS) and port 587 (STARTTLS).
// The whole exchange is bounded by ctx, or by DefaultTimeout when ctx has
// no deadline.
func Send(ctx context.Context, cfg SMTPConfig, to []string, subject, body string) error {
	if !cfg.IsConfigured() {
		return fmt.Errorf("SMTP not configured")
	}

	rcpts := make([]string, len(to))
	for i, addr := range to {
		rcpts[i] = headerValue(addr)
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nDate: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s",
		headerValue(cfg.From),
		strings.Join(rcpts, ", "),
		headerValue(subject),
		time.Now().Format(time.RFC1123Z),
		body,
	)

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultTimeout)
		defer cancel()
	}

	conn, err := dial(ctx, cfg)
	if err != nil {
		return err
	}
	// Deadline covers reads and writes; closing on cancel unblocks them early.
	deadline, _ := ctx.Deadline()
	if err := conn.SetDeadline(deadline); err != nil {
		_ = conn.Close()
		return fmt.Errorf("setting deadline: %w", err)
	}
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	if err := deliver(conn, cfg, rcpts, msg); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("sending email: %w", ctxErr)
		}
		return err
	}
	return nil
}

// dial connects to the server, over TLS directly for port 465 (SMTPS).
func dial(ctx context.Context, cfg SMTPConfig) (net.Conn, error) {
	addr := net.JoinHostPort(cfg.Host, cfg.Port)
	if cfg.Port == "465" {
		d := &tls.Dialer{Config: &tls.Config{ServerName: cfg.Host}}
		conn, err := d.DialContext(ctx, "tcp", addr)
		if err != nil {
			return nil, fmt.Errorf("TLS dial: %w", err)
		}
		return conn, nil
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}
	return conn, nil
}

// deliver runs the SMTP session on conn, upgrading with STARTTLS when the
// server offers it.
func deliver(conn net.Conn, cfg SMTPConfig, to []string, msg string) (err error) {
	c, err := smtp.NewClient(conn, cfg.Host)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("creating SMTP client: %w", err)
	}
	defer func() {
		if err != nil {
			_ = c.Close()
			return
		}
		if quitErr := c.Quit(); quitErr != nil {
			err = fmt.Errorf("quit: %w", quitErr)
		}
	}()

	if _, isTLS := conn.(*tls.Conn); !isTLS {
		if ok, _ := c.Extension("STARTTLS"); ok {
			if err := c.StartTLS(&tls.Config{ServerName: cfg.Host}); err != nil {
				return fmt.Errorf("starttls: %w", err)
			}
		}
	}

	if cfg.User != "" {
		auth := smtp.PlainAuth("", cfg.User, cfg.Pass, cfg.Host)
		if err := c.Auth(auth); err != nil {
			return fmt.Errorf("auth: %w", err)
		}
	}

	if err := c.Mail(cfg.From); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	for _, rcpt := range to {
		if err := c.Rcpt(rcpt); err != nil {
			return fmt.Errorf("rcpt to %s: %w", rcpt, err)
		}
	}

	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}
	if _, err := w.Write([]byte(msg)); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close data: %w", err)
	}

	return nil
}
