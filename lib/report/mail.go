package report

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"
	"os"
	"strings"

	"github.com/jordan-wright/email"
	"go.opentelemetry.io/otel/codes"
)

type MailerConfig struct {
	Server   string
	Port     int
	From     string
	Password string
	To       []string
}

func (c MailerConfig) Enabled() bool {
	return c.Server != "" && len(c.To) > 0
}

// Mailer sends the rendered report to a fixed list of recipients.
type Mailer struct {
	config MailerConfig
}

var ErrMailDisabled = errors.New("report mailing is not configured")

func NewMailer(config MailerConfig) (Mailer, error) {
	if !config.Enabled() {
		return Mailer{}, ErrMailDisabled
	}
	if config.Port == 0 {
		config.Port = 25
	}
	return Mailer{config: config}, nil
}

func subject(name string, s Summary) string {
	result := "PASS"
	if !s.Ok() {
		result = "FAIL"
	}
	return fmt.Sprintf("[%s] %s: %d passed, %d failed, %d skipped", result, name, s.Passed, s.Failed, s.Skipped)
}

// Send mails the summary table as text and the html report as the html
// body, files are attached as they are.
func (m Mailer) Send(ctx context.Context, r *Report, htmlPath string, attachments ...string) error {
	ctx, span := tracer.Start(ctx, "Mailer.Send")
	defer span.End()

	results := r.Results()
	mail := email.NewEmail()
	mail.From = fmt.Sprintf("E2E Reports <%s>", m.config.From)
	mail.To = m.config.To
	mail.Subject = subject(r.Name, Summarize(results))

	var text strings.Builder
	WriteSummary(&text, results, false)
	mail.Text = []byte(text.String())

	if htmlPath != "" {
		body, err := os.ReadFile(htmlPath)
		if err != nil {
			span.RecordError(err)
			return fmt.Errorf("read html report: %w", err)
		}
		mail.HTML = body
	}
	for _, path := range attachments {
		_, err := mail.AttachFile(path)
		if err != nil {
			span.RecordError(err)
			return fmt.Errorf("attach %s: %w", path, err)
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", m.config.Server, m.config.Port)
	err := mail.Send(addr, smtp.PlainAuth("", m.config.From, m.config.Password, m.config.Server))
	if err != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
		err = mail.Send(addr, nil)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to send email")
		return err
	}
	return nil
}
