package email

// Email is a single outbound message.
type Email struct {
	To       []string
	Subject  string
	Body     string
	HTMLBody string
}

// TemplateData carries the fields the HTML templates render.
type TemplateData struct {
	UserName     string
	Subject      string
	Message      string
	ProfileName  string
	ServiceTitle string
	Rating       int
	Comment      string
	ActionURL    string
	ActionText   string
}

// Provider sends transactional email. The review workflow treats it as
// best-effort: failures are logged, never propagated to the caller.
type Provider interface {
	Send(email *Email) error
	SendTemplate(to []string, subject, templateName string, data TemplateData) error

	// SendReviewApproved notifies the reviewed party that a new review is live.
	SendReviewApproved(to, profileName, serviceTitle string, rating int, comment string) error

	// SendReviewReceived notifies moderators that a review awaits a decision.
	SendReviewReceived(to, profileName string, rating int) error

	Close() error
}
