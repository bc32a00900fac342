package email

import (
	"bytes"
	"fmt"
	"mime"
	"mime/multipart"
	"net/textproto"
	"time"
)

// BuildMIME assembles the raw RFC 5322 message. With an HTML body present it
// produces multipart/alternative (plain part first, per convention); without
// one, a plain text/plain message. Subjects are Q-encoded so UTF-8 survives
// the header.
func BuildMIME(from, to, subject, messageID, plainText, htmlBody string, date time.Time) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", to)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	fmt.Fprintf(&buf, "Message-ID: %s\r\n", messageID)
	fmt.Fprintf(&buf, "Date: %s\r\n", date.Format(time.RFC1123Z))
	buf.WriteString("MIME-Version: 1.0\r\n")

	if htmlBody == "" {
		buf.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
		buf.WriteString("\r\n")
		buf.WriteString(plainText)
		buf.WriteString("\r\n")
		return buf.Bytes(), nil
	}

	mw := multipart.NewWriter(&buf)
	fmt.Fprintf(&buf, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", mw.Boundary())

	plainHeader := textproto.MIMEHeader{}
	plainHeader.Set("Content-Type", "text/plain; charset=\"utf-8\"")
	pw, err := mw.CreatePart(plainHeader)
	if err != nil {
		return nil, fmt.Errorf("creating text part: %w", err)
	}
	if _, err := pw.Write([]byte(plainText)); err != nil {
		return nil, fmt.Errorf("writing text part: %w", err)
	}

	htmlHeader := textproto.MIMEHeader{}
	htmlHeader.Set("Content-Type", "text/html; charset=\"utf-8\"")
	hw, err := mw.CreatePart(htmlHeader)
	if err != nil {
		return nil, fmt.Errorf("creating html part: %w", err)
	}
	if _, err := hw.Write([]byte(htmlBody)); err != nil {
		return nil, fmt.Errorf("writing html part: %w", err)
	}

	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("closing multipart body: %w", err)
	}
	return buf.Bytes(), nil
}
