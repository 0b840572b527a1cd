package mailer

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"mime/multipart"
	"net/smtp"
	"net/textproto"
	"strings"

	"copier-backend/internal/config"
)

// Mailer sends invoice emails with PDF attachments over SMTP
type Mailer struct {
	host string
	port int
	from string
	auth smtp.Auth
}

func New(cfg *config.Config) *Mailer {
	var auth smtp.Auth
	if cfg.SMTP.Username != "" {
		auth = smtp.PlainAuth("", cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.Host)
	}
	return &Mailer{
		host: cfg.SMTP.Host,
		port: cfg.SMTP.Port,
		from: cfg.SMTP.FromEmail,
		auth: auth,
	}
}

// SendInvoice emails a rendered invoice to the given recipients
func (m *Mailer) SendInvoice(to []string, invoiceNo string, body string, pdf []byte) error {
	if m.host == "" {
		return fmt.Errorf("smtp host not configured")
	}

	var msg bytes.Buffer
	w := multipart.NewWriter(&msg)

	headers := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: Invoice %s\r\nMIME-Version: 1.0\r\nContent-Type: multipart/mixed; boundary=%s\r\n\r\n",
		m.from, strings.Join(to, ", "), invoiceNo, w.Boundary())

	text, err := w.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"text/plain; charset=utf-8"},
	})
	if err != nil {
		return err
	}
	if _, err := text.Write([]byte(body)); err != nil {
		return err
	}

	attachment, err := w.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {"application/pdf"},
		"Content-Transfer-Encoding": {"base64"},
		"Content-Disposition":       {fmt.Sprintf(`attachment; filename="%s.pdf"`, invoiceNo)},
	})
	if err != nil {
		return err
	}
	encoded := base64.StdEncoding.EncodeToString(pdf)
	for len(encoded) > 0 {
		n := 76
		if n > len(encoded) {
			n = len(encoded)
		}
		if _, err := attachment.Write([]byte(encoded[:n] + "\r\n")); err != nil {
			return err
		}
		encoded = encoded[n:]
	}
	if err := w.Close(); err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", m.host, m.port)
	return smtp.SendMail(addr, m.auth, m.from, to, append([]byte(headers), msg.Bytes()...))
}
