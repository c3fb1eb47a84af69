package email

// Email sends a notification with both plain text and HTML parts.
type Email interface {
	Send(subject, text, html string, recipients []string) error
}
