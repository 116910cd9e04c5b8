// Package queue defines message payloads exchanged over the message broker
// and the background consumer that turns them into outbound email.
package queue

// EmailRequestedEvent is published when a verification email should be sent:
// on signup and on an explicit re-request.  It carries everything the
// consumer needs to render and address the message without touching the
// primary database.
type EmailRequestedEvent struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Token    string `json:"token"`
	BaseURL  string `json:"base_url"`
}
