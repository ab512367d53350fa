// Package mailer delivers confirmation codes to users.
package mailer

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net/mail"
	"net/url"
	"os"

	"github.com/dajohi/goemail"
	"github.com/dmitrijs2005/yamdb/internal/logging"
)

const (
	codeSubject  = "YaMDB signup confirmation code"
	codeTemplate = "Your confirmation code: %s\n"
)

// Sender delivers a confirmation code to an e-mail address.
type Sender interface {
	SendCode(ctx context.Context, address, code string) error
}

// transport is the part of *goemail.SMTP used here.
type transport interface {
	Send(msg *goemail.Message) error
}

// SMTPSender sends codes through an SMTPS server.
type SMTPSender struct {
	smtp        transport
	mailName    string
	mailAddress string
}

func (s *SMTPSender) SendCode(_ context.Context, address, code string) error {
	msg := goemail.NewMessage(s.mailAddress, codeSubject, fmt.Sprintf(codeTemplate, code))
	msg.SetName(s.mailName)
	msg.AddTo(address)

	if err := s.smtp.Send(msg); err != nil {
		return fmt.Errorf("send code to %s: %w", address, err)
	}
	return nil
}

// LogSender writes codes to the log instead of mailing them. It is used
// when SMTP is not configured (local development).
type LogSender struct {
	logger logging.Logger
}

func NewLogSender(l logging.Logger) *LogSender {
	return &LogSender{logger: l.With("module", "mailer")}
}

func (s *LogSender) SendCode(ctx context.Context, address, code string) error {
	s.logger.Info(ctx, "confirmation code (mail disabled)", "address", address, "code", code)
	return nil
}

// Config holds SMTP settings. An empty Host, User or Password disables mail.
type Config struct {
	Host        string
	User        string
	Password    string
	FromAddress string
	CertPath    string
	SkipVerify  bool
}

// New returns an SMTPSender, or a LogSender when mail is disabled.
func New(cfg Config, l logging.Logger) (Sender, error) {
	if cfg.Host == "" || cfg.User == "" || cfg.Password == "" {
		l.Info(context.Background(), "mail disabled, codes will be logged")
		return NewLogSender(l), nil
	}

	u, err := url.Parse(fmt.Sprintf("smtps://%v:%v@%v", url.PathEscape(cfg.User), url.PathEscape(cfg.Password), cfg.Host))
	if err != nil {
		return nil, fmt.Errorf("parse smtp host: %w", err)
	}

	a, err := mail.ParseAddress(cfg.FromAddress)
	if err != nil {
		return nil, fmt.Errorf("parse from address: %w", err)
	}

	tlsConfig := &tls.Config{InsecureSkipVerify: cfg.SkipVerify}
	if !cfg.SkipVerify && cfg.CertPath != "" {
		cert, err := os.ReadFile(cfg.CertPath)
		if err != nil {
			return nil, err
		}
		pool, err := x509.SystemCertPool()
		if err != nil {
			pool = x509.NewCertPool()
		}
		pool.AppendCertsFromPEM(cert)
		tlsConfig.RootCAs = pool
	}

	smtp, err := goemail.NewSMTP(u.String(), tlsConfig)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}

	l.Info(context.Background(), "mail enabled", "host", cfg.Host, "from", a.Address)
	return &SMTPSender{smtp: smtp, mailName: a.Name, mailAddress: a.Address}, nil
}
