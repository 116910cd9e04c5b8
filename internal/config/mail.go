package config

// MailConfig holds the Postmark credentials and sender identity used for
// verification emails.  Tokens may be empty in development; the consumer
// then logs the message instead of sending it.
type MailConfig struct {
	ServerToken  string
	AccountToken string
	SenderEmail  string
	SenderName   string
}

// LoadMailConfig reads environment variables to build a MailConfig.
func LoadMailConfig() MailConfig {
	return MailConfig{
		ServerToken:  getenv("POSTMARK_SERVER_TOKEN", ""),
		AccountToken: getenv("POSTMARK_ACCOUNT_TOKEN", ""),
		SenderEmail:  getenv("MAIL_FROM", "noreply@contacts-api.local"),
		SenderName:   getenv("MAIL_FROM_NAME", "Contacts API"),
	}
}
