package email

import (
	"sync"

	"skillmarket_backend/internal/logger"
)

// MockProvider logs instead of sending. Used when SMTP is not configured
// and in tests.
type MockProvider struct {
	mu   sync.Mutex
	Sent []*Email
}

func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (m *MockProvider) Send(email *Email) error {
	m.mu.Lock()
	m.Sent = append(m.Sent, email)
	m.mu.Unlock()
	logger.Debug("mock email sent", "to", email.To, "subject", email.Subject)
	return nil
}

func (m *MockProvider) SendTemplate(to []string, subject, templateName string, data TemplateData) error {
	return m.Send(&Email{To: to, Subject: subject, Body: templateName})
}

func (m *MockProvider) SendReviewApproved(to, profileName, serviceTitle string, rating int, comment string) error {
	return m.SendTemplate([]string{to}, "You have a new review", "review_approved", TemplateData{
		ProfileName:  profileName,
		ServiceTitle: serviceTitle,
		Rating:       rating,
		Comment:      comment,
	})
}

func (m *MockProvider) SendReviewReceived(to, profileName string, rating int) error {
	return m.SendTemplate([]string{to}, "Review pending moderation", "review_received", TemplateData{
		ProfileName: profileName,
		Rating:      rating,
	})
}

func (m *MockProvider) Close() error {
	return nil
}

// SentCount returns how many messages were recorded.
func (m *MockProvider) SentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Sent)
}
