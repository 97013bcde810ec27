package notifier

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"time"
)

// SMTPOptions configures the SMTP transport.
type SMTPOptions struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPService sends mail through a relay with optional PLAIN auth.
type SMTPService struct {
	opts SMTPOptions
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPService 创建 SMTP 通知服务。
func NewSMTPService(opts SMTPOptions) (*SMTPService, error) {
	if opts.Host == "" {
		return nil, fmt.Errorf("smtp host is required / SMTP 主机不能为空")
	}
	if opts.From == "" {
		return nil, fmt.Errorf("smtp from address is required / 发件人不能为空")
	}
	if opts.Port == 0 {
		opts.Port = 587
	}
	return &SMTPService{opts: opts, send: smtp.SendMail}, nil
}

func (s *SMTPService) SendEmail(ctx context.Context, req EmailRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	var auth smtp.Auth
	if s.opts.Username != "" {
		auth = smtp.PlainAuth("", s.opts.Username, s.opts.Password, s.opts.Host)
	}
	addr := net.JoinHostPort(s.opts.Host, strconv.Itoa(s.opts.Port))
	if err := s.send(addr, auth, s.opts.From, []string{req.To}, s.message(req)); err != nil {
		return fmt.Errorf("smtp send to %s: %w", req.To, err)
	}
	return nil
}

func (s *SMTPService) message(req EmailRequest) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s\r\n", s.opts.From)
	fmt.Fprintf(&buf, "To: %s\r\n", req.To)
	if req.ReplyTo != "" {
		fmt.Fprintf(&buf, "Reply-To: %s\r\n", req.ReplyTo)
	}
	fmt.Fprintf(&buf, "Subject: %s\r\n", req.Subject)
	fmt.Fprintf(&buf, "Date: %s\r\n", time.Now().UTC().Format(time.RFC1123Z))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	buf.WriteString(req.Body)
	return buf.Bytes()
}
