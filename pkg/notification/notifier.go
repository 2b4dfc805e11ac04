package notification

// NoticeType identifies a kind of notice (e.g. "invitation").
type NoticeType string

// NotificationSystem identifies a delivery channel (e.g. email).
type NotificationSystem string

const (
	EmailSystem NotificationSystem = "email"

	InvitationNotice NoticeType = "invitation"
)

// NotificationData carries the recipient and template values for one send.
type NotificationData struct {
	To      string            // Recipient identifier (e.g., email address)
	Subject string            // Optional override for the template subject
	Body    string            // The content or message to send
	Data    map[string]string // Values substituted into the template
}

// NoticeTemplate holds the renderable bodies for a notice.
type NoticeTemplate struct {
	Subject string
	Text    string
	Html    string
}

type Notifier interface {
	Send(noticeType NoticeType, notification NotificationData, template NoticeTemplate) error
}
