package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"time"

	"github.com/entrhq/resybot/pkg/config"
	"github.com/entrhq/resybot/pkg/logging"
)

// ImplicitTLSPort is the submission port that expects TLS from the first byte.
const ImplicitTLSPort = 465

const defaultDialTimeout = 30 * time.Second

// SMTPNotifier sends notifications through an SMTP relay.
type SMTPNotifier struct {
	host     string
	port     int
	username string
	password string
	from     string
	to       []string
	logger   *logging.Logger

	// tlsConfig is used for both implicit TLS and STARTTLS
	tlsConfig *tls.Config
	now       func() time.Time
}

// NewSMTPNotifier creates a notifier from the notify section of the config.
// The sender address doubles as the SMTP username.
func NewSMTPNotifier(cfg config.NotifyConfig, logger *logging.Logger) *SMTPNotifier {
	return &SMTPNotifier{
		host:      cfg.SMTPHost,
		port:      cfg.SMTPPort,
		username:  cfg.SenderEmail,
		password:  cfg.SenderPassword,
		from:      cfg.SenderEmail,
		to:        append([]string(nil), cfg.Recipients...),
		logger:    logger,
		tlsConfig: &tls.Config{ServerName: cfg.SMTPHost, MinVersion: tls.VersionTLS12},
		now:       time.Now,
	}
}

// Notify delivers msg to every recipient in a single transaction.
func (n *SMTPNotifier) Notify(ctx context.Context, msg Message) error {
	if len(n.to) == 0 {
		return fmt.Errorf("no recipients configured")
	}

	client, conn, err := n.dial(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	// Bound the whole conversation, not only the dial.
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	if err := client.Hello("localhost"); err != nil {
		return fmt.Errorf("smtp hello failed: %w", err)
	}

	if n.port != ImplicitTLSPort {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(n.tlsConfig); err != nil {
				return fmt.Errorf("smtp starttls failed: %w", err)
			}
		}
	}

	if ok, _ := client.Extension("AUTH"); ok && n.username != "" {
		auth := smtp.PlainAuth("", n.username, n.password, n.host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth failed: %w", err)
		}
	}

	if err := client.Mail(n.from); err != nil {
		return fmt.Errorf("smtp MAIL FROM failed: %w", err)
	}
	for _, rcpt := range n.to {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("smtp RCPT TO %s failed: %w", rcpt, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp DATA failed: %w", err)
	}
	if _, err := w.Write(Render(n.from, n.to, msg, n.now())); err != nil {
		w.Close()
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp message rejected: %w", err)
	}

	if err := client.Quit(); err != nil && n.logger != nil {
		n.logger.Warnf("smtp QUIT failed after delivery: %v", err)
	}

	if n.logger != nil {
		n.logger.Infof("Sent %s notification %q to %d recipient(s)", msg.Kind, msg.Subject, len(n.to))
	}
	return nil
}

func (n *SMTPNotifier) addr() string {
	return net.JoinHostPort(n.host, strconv.Itoa(n.port))
}

// dial opens the connection, wrapping it in TLS on the implicit TLS port.
func (n *SMTPNotifier) dial(ctx context.Context) (*smtp.Client, net.Conn, error) {
	var (
		conn net.Conn
		err  error
	)

	netDialer := &net.Dialer{Timeout: defaultDialTimeout}
	if n.port == ImplicitTLSPort {
		tlsDialer := &tls.Dialer{NetDialer: netDialer, Config: n.tlsConfig}
		conn, err = tlsDialer.DialContext(ctx, "tcp", n.addr())
	} else {
		conn, err = netDialer.DialContext(ctx, "tcp", n.addr())
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to smtp server %s: %w", n.addr(), err)
	}

	client, err := smtp.NewClient(conn, n.host)
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("failed to start smtp session: %w", err)
	}
	return client, conn, nil
}
