package email

import (
	"crypto/rand"
	"crypto/tls"
	"fmt"
	"math/big"
	"net/smtp"
	"strconv"

	"github.com/rs/zerolog"
)

// EmailService defines the interface for workflow email notifications
type EmailService interface {
	SendVerificationEmail(toEmail, toName, token string) error
	SendSubmissionEmail(toEmail, toName, thesisTitle string) error
	SendFeedbackEmail(toEmail, toName, thesisTitle, advisorName string) error
	SendStatusChangeEmail(toEmail, toName, thesisTitle, newStatus string) error
}

// SMTPConfig holds configuration for the SMTP server
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromName  string
	FromEmail string
	UseTLS    bool
	BaseURL   string // base URL for links in email bodies
}

type emailServiceImpl struct {
	config SMTPConfig
	logger zerolog.Logger
}

// NewEmailService creates a new EmailService
func NewEmailService(config SMTPConfig, logger zerolog.Logger) EmailService {
	return &emailServiceImpl{config: config, logger: logger}
}

// configured reports whether SMTP credentials are present. Without them the
// mails are logged instead of sent, which keeps local development working.
func (s *emailServiceImpl) configured() bool {
	return s.config.Username != "" && s.config.Password != ""
}

// SendVerificationEmail sends an email with a verification link and token
func (s *emailServiceImpl) SendVerificationEmail(toEmail, toName, token string) error {
	verificationURL := fmt.Sprintf("%s/api/v1/auth/verify-email?token=%s", s.config.BaseURL, token)
	if !s.configured() {
		s.logger.Warn().
			Str("toEmail", toEmail).
			Str("verificationURL", verificationURL).
			Msg("SMTP credentials not configured - verification email not sent")
		return nil
	}

	subject := "Verify your email address"
	body := fmt.Sprintf(`
		<html><body>
		<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
			<p>Hello %s,</p>
			<p>To complete your registration, please verify your email address:</p>
			<p><a href="%s">Verify email</a></p>
			<p>Alternatively, use this verification code: <strong>%s</strong></p>
			<p>The link and code expire in 24 hours.</p>
		</div>
		</body></html>`, toName, verificationURL, token)

	return s.sendHTMLEmail(toEmail, subject, body)
}

// SendSubmissionEmail confirms to a student that their thesis was submitted
func (s *emailServiceImpl) SendSubmissionEmail(toEmail, toName, thesisTitle string) error {
	if !s.configured() {
		s.logger.Warn().Str("toEmail", toEmail).Str("thesis", thesisTitle).
			Msg("SMTP credentials not configured - submission email not sent")
		return nil
	}

	subject := "Thesis submitted for review"
	body := fmt.Sprintf(`
		<html><body>
		<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
			<p>Hello %s,</p>
			<p>Your thesis "%s" has been submitted and is awaiting review.
			You will be notified when your advisor provides feedback.</p>
		</div>
		</body></html>`, toName, thesisTitle)

	return s.sendHTMLEmail(toEmail, subject, body)
}

// SendFeedbackEmail tells a student that new feedback arrived
func (s *emailServiceImpl) SendFeedbackEmail(toEmail, toName, thesisTitle, advisorName string) error {
	if !s.configured() {
		s.logger.Warn().Str("toEmail", toEmail).Str("thesis", thesisTitle).
			Msg("SMTP credentials not configured - feedback email not sent")
		return nil
	}

	subject := "New feedback on your thesis"
	body := fmt.Sprintf(`
		<html><body>
		<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
			<p>Hello %s,</p>
			<p>%s has provided feedback on your thesis "%s".
			Log in to read the review.</p>
		</div>
		</body></html>`, toName, advisorName, thesisTitle)

	return s.sendHTMLEmail(toEmail, subject, body)
}

// SendStatusChangeEmail tells a student their thesis moved to a new status
func (s *emailServiceImpl) SendStatusChangeEmail(toEmail, toName, thesisTitle, newStatus string) error {
	if !s.configured() {
		s.logger.Warn().Str("toEmail", toEmail).Str("status", newStatus).
			Msg("SMTP credentials not configured - status change email not sent")
		return nil
	}

	subject := fmt.Sprintf("Thesis status changed to %s", newStatus)
	body := fmt.Sprintf(`
		<html><body>
		<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
			<p>Hello %s,</p>
			<p>The status of your thesis "%s" is now <strong>%s</strong>.</p>
		</div>
		</body></html>`, toName, thesisTitle, newStatus)

	return s.sendHTMLEmail(toEmail, subject, body)
}

// sendHTMLEmail delivers an HTML mail over SMTP, with or without TLS
func (s *emailServiceImpl) sendHTMLEmail(toEmail, subject, htmlBody string) error {
	auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)

	headers := map[string]string{
		"From":         fmt.Sprintf("%s <%s>", s.config.FromName, s.config.FromEmail),
		"To":           toEmail,
		"Subject":      subject,
		"MIME-Version": "1.0",
		"Content-Type": "text/html; charset=UTF-8",
	}
	message := ""
	for key, value := range headers {
		message += fmt.Sprintf("%s: %s\r\n", key, value)
	}
	message += "\r\n" + htmlBody

	serverAddress := s.config.Host + ":" + strconv.Itoa(s.config.Port)

	if !s.config.UseTLS {
		err := smtp.SendMail(serverAddress, auth, s.config.FromEmail, []string{toEmail}, []byte(message))
		if err != nil {
			s.logger.Error().Err(err).Str("server", serverAddress).Msg("Failed to send email")
			return fmt.Errorf("failed to send email: %w", err)
		}
		return nil
	}

	tlsConfig := &tls.Config{
		ServerName: s.config.Host,
	}
	conn, err := tls.Dial("tcp", serverAddress, tlsConfig)
	if err != nil {
		s.logger.Error().Err(err).Str("server", serverAddress).Msg("Failed to connect to SMTP server")
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.config.Host)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer client.Quit()

	if err = client.Auth(auth); err != nil {
		s.logger.Error().Err(err).Msg("SMTP authentication failed")
		return fmt.Errorf("SMTP authentication failed: %w", err)
	}
	if err = client.Mail(s.config.FromEmail); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err = client.Rcpt(toEmail); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}
	if _, err = w.Write([]byte(message)); err != nil {
		return fmt.Errorf("failed to write email message: %w", err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}
	return nil
}

// GenerateVerificationToken generates a random token for email verification
func GenerateVerificationToken() (string, error) {
	const chars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	result := make([]byte, 32)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(chars))))
		if err != nil {
			return "", fmt.Errorf("secure random generation failed: %w", err)
		}
		result[i] = chars[n.Int64()]
	}
	return string(result), nil
}
