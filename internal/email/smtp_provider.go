package email

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

// SMTPConfig holds SMTP server settings.
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
	BaseURL   string
}

// SMTPProvider implements Provider over gomail.
type SMTPProvider struct {
	config    SMTPConfig
	templates *TemplateManager
	dialer    *gomail.Dialer
}

func NewSMTPProvider(config SMTPConfig) (*SMTPProvider, error) {
	if config.Host == "" {
		return nil, fmt.Errorf("SMTP host is required")
	}
	if config.Port <= 0 || config.Port > 65535 {
		return nil, fmt.Errorf("invalid SMTP port: %d", config.Port)
	}

	return &SMTPProvider{
		config:    config,
		templates: NewTemplateManager(),
		dialer:    gomail.NewDialer(config.Host, config.Port, config.Username, config.Password),
	}, nil
}

func (p *SMTPProvider) Send(email *Email) error {
	if len(email.To) == 0 {
		return fmt.Errorf("no recipients specified")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(p.config.FromEmail, p.config.FromName))
	m.SetHeader("To", email.To...)
	m.SetHeader("Subject", email.Subject)

	if email.HTMLBody != "" {
		m.SetBody("text/html", email.HTMLBody)
		if email.Body != "" {
			m.AddAlternative("text/plain", email.Body)
		}
	} else {
		m.SetBody("text/plain", email.Body)
	}

	return p.dialer.DialAndSend(m)
}

func (p *SMTPProvider) SendTemplate(to []string, subject, templateName string, data TemplateData) error {
	htmlBody, err := p.templates.Render(templateName, data)
	if err != nil {
		return fmt.Errorf("failed to render template: %w", err)
	}

	return p.Send(&Email{
		To:       to,
		Subject:  subject,
		HTMLBody: htmlBody,
	})
}

func (p *SMTPProvider) SendReviewApproved(to, profileName, serviceTitle string, rating int, comment string) error {
	data := TemplateData{
		ProfileName:  profileName,
		ServiceTitle: serviceTitle,
		Rating:       rating,
		Comment:      comment,
		ActionURL:    p.config.BaseURL + "/dashboard/reviews",
		ActionText:   "View your reviews",
	}
	return p.SendTemplate([]string{to}, "You have a new review", "review_approved", data)
}

func (p *SMTPProvider) SendReviewReceived(to, profileName string, rating int) error {
	data := TemplateData{
		ProfileName: profileName,
		Rating:      rating,
		ActionURL:   p.config.BaseURL + "/admin/reviews",
		ActionText:  "Open moderation queue",
	}
	return p.SendTemplate([]string{to}, "Review pending moderation", "review_received", data)
}

func (p *SMTPProvider) Close() error {
	return nil
}
