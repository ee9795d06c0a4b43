// Package mail delivers QR passes over SMTP.
package mail

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"html/template"
	"os"
	"path/filepath"

	gomail "github.com/wneessen/go-mail"

	"qrpass/internal/config"
	"qrpass/internal/ports/output"
	"qrpass/pkg/passid"
)

var _ output.Notifier = (*Notifier)(nil)

const (
	// ContentID links the inline image to the HTML body.
	ContentID = "qrcode"
	// contentIDHeader is ContentID in the bracketed msg-id form mail clients resolve cid: against.
	contentIDHeader = "<" + ContentID + ">"

	submissionPort = 587
	smtpsPort      = 465
)

var bodyTemplate = template.Must(template.New("body").Parse(`<p>{{.Greeting}}</p>
<p>{{.Intro}}</p>
<p>{{.LinkLabel}} <a href="{{.ScanURL}}">{{.ScanURL}}</a></p>
<p><img src="cid:qrcode" alt="{{.ID}}"></p>
<p>{{.Instructions}}</p>
<p><small>{{.AttachmentNote}}</small></p>
`))

type bodyData struct {
	Greeting       string
	Intro          template.HTML
	LinkLabel      string
	ScanURL        string
	ID             string
	Instructions   string
	AttachmentNote string
}

// Notifier sends one e-mail per participant, opening a fresh SMTP
// connection for every message.
type Notifier struct {
	smtp        config.SMTPConfig
	from        string
	eventName   string
	locale      string
	baseScanURL string
	translator  output.Translator

	send func(ctx context.Context, msg *gomail.Msg) error
}

// NewNotifier creates a Notifier from the run configuration.
func NewNotifier(cfg *config.Config, translator output.Translator) *Notifier {
	n := &Notifier{
		smtp:        cfg.SMTP,
		from:        cfg.EmailFrom,
		eventName:   cfg.EventName,
		locale:      cfg.Locale,
		baseScanURL: cfg.BaseScanURL,
		translator:  translator,
	}
	n.send = n.dialAndSend
	return n
}

// Send e-mails the QR pass at qrPath to a single recipient.
func (n *Notifier) Send(ctx context.Context, toEmail, toName, id, qrPath string) error {
	msg, err := n.BuildMessage(toEmail, toName, id, qrPath)
	if err != nil {
		return err
	}
	if err := n.send(ctx, msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", toEmail, err)
	}
	return nil
}

// Subject renders the subject line for id.
func (n *Notifier) Subject(id string) string {
	return n.translator.T(n.locale, "mail_subject", map[string]any{"Event": n.eventName, "ID": id})
}

// RenderBody renders the HTML body. The scan link is the QR payload.
func (n *Notifier) RenderBody(toName, id string) (string, error) {
	data := bodyData{
		Greeting: n.translator.T(n.locale, "mail_greeting", map[string]any{"Name": toName}),
		Intro: template.HTML(n.translator.T(n.locale, "mail_intro", map[string]any{
			"Event": html.EscapeString(n.eventName),
			"ID":    html.EscapeString(id),
		})),
		LinkLabel:      n.translator.T(n.locale, "mail_link", nil),
		ScanURL:        passid.ScanURL(n.baseScanURL, id),
		ID:             id,
		Instructions:   n.translator.T(n.locale, "mail_instructions", nil),
		AttachmentNote: n.translator.T(n.locale, "mail_attachment_note", nil),
	}

	var buf bytes.Buffer
	if err := bodyTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render mail body: %w", err)
	}
	return buf.String(), nil
}

// BuildMessage composes the multipart message: HTML body, the QR image
// inline under ContentID, and the same image again as an attachment.
func (n *Notifier) BuildMessage(toEmail, toName, id, qrPath string) (*gomail.Msg, error) {
	if _, err := os.Stat(qrPath); err != nil {
		return nil, fmt.Errorf("qr image: %w", err)
	}

	msg := gomail.NewMsg()
	if err := msg.From(n.from); err != nil {
		return nil, fmt.Errorf("set from %q: %w", n.from, err)
	}
	if err := msg.To(toEmail); err != nil {
		return nil, fmt.Errorf("set recipient %q: %w", toEmail, err)
	}
	msg.Subject(n.Subject(id))

	body, err := n.RenderBody(toName, id)
	if err != nil {
		return nil, err
	}
	msg.SetBodyString(gomail.TypeTextHTML, body)

	name := filepath.Base(qrPath)
	msg.EmbedFile(qrPath, gomail.WithFileName(name), gomail.WithFileContentID(contentIDHeader))
	msg.AttachFile(qrPath, gomail.WithFileName(name))
	return msg, nil
}

func (n *Notifier) dialAndSend(ctx context.Context, msg *gomail.Msg) error {
	client, err := gomail.NewClient(n.smtp.Host, n.clientOptions()...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	// DialAndSend closes the connection whatever the outcome.
	return client.DialAndSendWithContext(ctx, msg)
}

func (n *Notifier) clientOptions() []gomail.Option {
	opts := []gomail.Option{
		gomail.WithPort(n.smtp.Port),
		gomail.WithTimeout(n.smtp.Timeout),
		gomail.WithSMTPAuth(authFor(n.smtp.Port)),
		gomail.WithUsername(n.smtp.User),
		gomail.WithPassword(n.smtp.Pass),
	}
	switch n.smtp.Port {
	case submissionPort:
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSMandatory))
	case smtpsPort:
		opts = append(opts, gomail.WithSSL())
	default:
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSOpportunistic))
	}
	return opts
}

// authFor picks the SMTP AUTH mechanism for port. PLAIN is only sent over a
// connection that is TLS from the first byte or upgraded by mandatory
// STARTTLS. Elsewhere the server may not offer STARTTLS, so the mechanism is
// negotiated and go-mail restricts it to challenge-response ones
// (SCRAM, CRAM-MD5) on a plaintext link.
func authFor(port int) gomail.SMTPAuthType {
	switch port {
	case submissionPort, smtpsPort:
		return gomail.SMTPAuthPlain
	default:
		return gomail.SMTPAuthAutoDiscover
	}
}
