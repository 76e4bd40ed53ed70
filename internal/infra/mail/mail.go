// Package mail implements the outbound notification transport.
//
// In draft mode a message is written as an .eml file to the drafts
// directory and never leaves the process; the SMTP server is not even
// dialed. This is what test mode routes all sends through.
package mail

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	gomail "github.com/wneessen/go-mail"
)

// Config holds SMTP and draft settings.
type Config struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`

	// DraftsDir receives .eml files for drafted messages.
	DraftsDir string `yaml:"drafts_dir"`

	// DraftOnly forces every send onto the draft path.
	DraftOnly bool `yaml:"-"`
}

// Message is one outbound notification.
type Message struct {
	To      []string
	Subject string
	Body    string
	HTML    bool
	// Draft guarantees no externally visible delivery.
	Draft bool
}

// Mailer sends notifications over SMTP or writes them as drafts.
type Mailer struct {
	cfg Config
}

// NewMailer creates a mailer. No connection is made until Send.
func NewMailer(cfg Config) *Mailer {
	if cfg.DraftsDir == "" {
		cfg.DraftsDir = "drafts"
	}
	return &Mailer{cfg: cfg}
}

// Send delivers the message, or drafts it when msg.Draft or the
// configuration demands it.
func (m *Mailer) Send(ctx context.Context, msg Message) error {
	em, err := m.build(msg)
	if err != nil {
		return err
	}

	if msg.Draft || m.cfg.DraftOnly {
		return m.draft(em)
	}

	client, err := gomail.NewClient(m.cfg.Host,
		gomail.WithPort(m.cfg.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(m.cfg.Username),
		gomail.WithPassword(m.cfg.Password),
	)
	if err != nil {
		return fmt.Errorf("failed to create mail client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, em); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}
	return nil
}

func (m *Mailer) build(msg Message) (*gomail.Msg, error) {
	em := gomail.NewMsg()
	if err := em.From(m.cfg.From); err != nil {
		return nil, fmt.Errorf("invalid sender address %q: %w", m.cfg.From, err)
	}
	if err := em.To(msg.To...); err != nil {
		return nil, fmt.Errorf("invalid recipient address: %w", err)
	}
	em.Subject(msg.Subject)

	contentType := gomail.TypeTextPlain
	if msg.HTML {
		contentType = gomail.TypeTextHTML
	}
	em.SetBodyString(contentType, msg.Body)
	return em, nil
}

func (m *Mailer) draft(em *gomail.Msg) error {
	if err := os.MkdirAll(m.cfg.DraftsDir, 0o755); err != nil {
		return fmt.Errorf("failed to create drafts dir: %w", err)
	}

	name := fmt.Sprintf("draft-%d.eml", time.Now().UnixNano())
	path := filepath.Join(m.cfg.DraftsDir, name)
	if err := em.WriteToFile(path); err != nil {
		return fmt.Errorf("failed to write draft: %w", err)
	}
	return nil
}
