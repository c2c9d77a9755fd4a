package mailer

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Template names a set of embedded templates ("reset_password", "welcome");
// Data supplies their fields. Raw Subject/Text/HTML may be used instead.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
}
