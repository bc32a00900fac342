// Package email defines the outbound mail interface the application depends
// on, decoupling run logic from the concrete transport.
package email

import "context"

// Sender delivers one message to one recipient. htmlBody may be empty, in
// which case a plain-text message is sent. Returns the message id assigned
// to the outgoing mail.
type Sender interface {
	Send(ctx context.Context, to, subject, plainText, htmlBody string) (string, error)
}
