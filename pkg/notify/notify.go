// Package notify delivers run outcome emails.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"strings"
	"time"

	"github.com/entrhq/resybot/pkg/logging"
)

// Kind classifies a notification.
type Kind string

const (
	KindSuccess Kind = "success"
	KindDryRun  Kind = "dry_run"
	KindTimeout Kind = "timeout"
	KindFailure Kind = "failure"
)

// Message is a plain-text notification.
type Message struct {
	Kind    Kind
	Subject string
	Body    string
}

// Notifier sends a message to the configured recipients.
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

// Disabled records messages in the run log instead of sending them.
type Disabled struct {
	Logger *logging.Logger
}

// Notify logs the message subject and drops it.
func (d Disabled) Notify(_ context.Context, msg Message) error {
	if d.Logger != nil {
		d.Logger.Infof("Notifications disabled, not sending %s message: %s", msg.Kind, msg.Subject)
	}
	return nil
}

// Render produces an RFC 5322 message with CRLF line endings.
// Non-ASCII subjects (emoji included) are RFC 2047 encoded.
func Render(from string, to []string, msg Message, now time.Time) []byte {
	var buf bytes.Buffer

	header := func(key, value string) {
		fmt.Fprintf(&buf, "%s: %s\r\n", key, value)
	}

	header("From", from)
	header("To", strings.Join(to, ", "))
	header("Subject", mime.QEncoding.Encode("utf-8", msg.Subject))
	header("Date", now.Format(time.RFC1123Z))
	header("MIME-Version", "1.0")
	header("Content-Type", "text/plain; charset=UTF-8")
	header("Content-Transfer-Encoding", "8bit")
	buf.WriteString("\r\n")

	body := strings.ReplaceAll(msg.Body, "\r\n", "\n")
	for _, line := range strings.Split(body, "\n") {
		buf.WriteString(line)
		buf.WriteString("\r\n")
	}

	return buf.Bytes()
}
