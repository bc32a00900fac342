// Package email sends notifications through Gmail: an OAuth2 refresh-token
// exchange for an access token, then SMTP with XOAUTH2.
package email

import (
	"context"
	"crypto/rand"
	"crypto/tls"
	"encoding/hex"
	"fmt"
	"net"
	"net/smtp"
	"time"

	"bin_collection_notifier/internal/infra/secrets"

	"golang.org/x/oauth2"
)

const (
	smtpHost       = "smtp.gmail.com"
	smtpAddr       = "smtp.gmail.com:587"
	googleTokenURL = "https://oauth2.googleapis.com/token"
)

// Secret names the sender needs from the credential provider.
var credentialNames = []string{"GMAIL_CLIENT_ID", "GMAIL_CLIENT_SECRET", "GMAIL_REFRESH_TOKEN"}

// GmailSender implements the domain email.Sender interface. The token source
// caches access tokens and refreshes them as they expire.
type GmailSender struct {
	sender string
	tokens oauth2.TokenSource
}

// NewGmailSender fetches OAuth credentials from the provider and prepares a
// refreshing token source. No network traffic happens until the first Send.
func NewGmailSender(ctx context.Context, sender string, provider secrets.Provider) (*GmailSender, error) {
	creds, err := provider.Fetch(ctx, credentialNames)
	if err != nil {
		return nil, fmt.Errorf("fetching gmail credentials: %w", err)
	}
	conf := &oauth2.Config{
		ClientID:     creds["GMAIL_CLIENT_ID"],
		ClientSecret: creds["GMAIL_CLIENT_SECRET"],
		Endpoint:     oauth2.Endpoint{TokenURL: googleTokenURL},
	}
	tokens := conf.TokenSource(ctx, &oauth2.Token{RefreshToken: creds["GMAIL_REFRESH_TOKEN"]})
	return &GmailSender{sender: sender, tokens: tokens}, nil
}

// Send delivers one message and returns its Message-ID.
func (g *GmailSender) Send(ctx context.Context, to, subject, plainText, htmlBody string) (string, error) {
	tok, err := g.tokens.Token()
	if err != nil {
		return "", fmt.Errorf("refreshing access token: %w", err)
	}

	messageID := newMessageID()
	raw, err := BuildMIME(g.sender, to, subject, messageID, plainText, htmlBody, time.Now())
	if err != nil {
		return "", fmt.Errorf("building message: %w", err)
	}

	if err := g.submit(ctx, to, raw, tok.AccessToken); err != nil {
		return "", err
	}
	return messageID, nil
}

func (g *GmailSender) submit(ctx context.Context, to string, raw []byte, accessToken string) error {
	dialer := &net.Dialer{}
	conn, err := dialer.DialContext(ctx, "tcp", smtpAddr)
	if err != nil {
		return fmt.Errorf("dialing smtp: %w", err)
	}
	client, err := smtp.NewClient(conn, smtpHost)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer client.Quit()

	if err := client.StartTLS(&tls.Config{ServerName: smtpHost}); err != nil {
		return fmt.Errorf("starttls: %w", err)
	}
	if err := client.Auth(xoauth2Auth{user: g.sender, token: accessToken}); err != nil {
		return fmt.Errorf("xoauth2 auth: %w", err)
	}
	if err := client.Mail(g.sender); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("rcpt to: %w", err)
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}
	if _, err := w.Write(raw); err != nil {
		return fmt.Errorf("writing message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finishing message: %w", err)
	}
	return nil
}

// xoauth2Auth implements the SASL XOAUTH2 mechanism Gmail expects.
type xoauth2Auth struct {
	user  string
	token string
}

func (a xoauth2Auth) Start(_ *smtp.ServerInfo) (string, []byte, error) {
	resp := fmt.Sprintf("user=%s\x01auth=Bearer %s\x01\x01", a.user, a.token)
	return "XOAUTH2", []byte(resp), nil
}

func (a xoauth2Auth) Next(fromServer []byte, more bool) ([]byte, error) {
	if more {
		// The server sends a JSON error blob on failure; an empty reply
		// makes it finish with the definitive SMTP error.
		return []byte(""), nil
	}
	return nil, nil
}

func newMessageID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return fmt.Sprintf("<%d.%s@%s>", time.Now().UnixNano(), hex.EncodeToString(b), smtpHost)
}
