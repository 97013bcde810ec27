package notifier

import (
	"context"
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmailRequestValidate(t *testing.T) {
	assert.Error(t, EmailRequest{}.Validate())
	assert.Error(t, EmailRequest{To: "a@b.co", Subject: "hi\r\nBcc: x@y.z"}.Validate())
	assert.NoError(t, EmailRequest{To: "a@b.co", Subject: "hi"}.Validate())
}

func TestLoggerServiceReportsNotImplemented(t *testing.T) {
	err := NewLoggerService(nil).SendEmail(context.Background(), EmailRequest{To: "a@b.co"})
	assert.ErrorIs(t, err, ErrNotImplemented)
}

func TestSMTPServiceSend(t *testing.T) {
	svc, err := NewSMTPService(SMTPOptions{Host: "mail.local", From: "no-reply@bakehub.local"})
	require.NoError(t, err)

	var gotAddr string
	var gotTo []string
	var gotMsg []byte
	svc.send = func(addr string, _ smtp.Auth, _ string, to []string, msg []byte) error {
		gotAddr, gotTo, gotMsg = addr, to, msg
		return nil
	}
	err = svc.SendEmail(context.Background(), EmailRequest{To: "baker@example.com", ReplyTo: "ann@example.com", Subject: "New inquiry", Body: "Hello"})
	require.NoError(t, err)
	assert.Equal(t, "mail.local:587", gotAddr)
	assert.Equal(t, []string{"baker@example.com"}, gotTo)
	assert.Contains(t, string(gotMsg), "Reply-To: ann@example.com\r\n")
	assert.Contains(t, string(gotMsg), "Subject: New inquiry\r\n")
	assert.True(t, len(gotMsg) > 5 && string(gotMsg[len(gotMsg)-5:]) == "Hello")

	_, err = NewSMTPService(SMTPOptions{})
	assert.Error(t, err)
}
