package mailer

import (
	"fmt"
	"log"
	"strings"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendWelcome(toEmail, fullName string) error
	SendApplicationStatus(toEmail, fullName, status, notes string) error
	SendDocumentReady(toEmail, fullName, caseNumber string) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	senderName  string
	clientURL   string
}

// NewEmailService returns a logging no-op sender when host is empty.
func NewEmailService(host string, port int, username, password, senderEmail, senderName, clientURL string) IEmailService {
	if host == "" {
		return &noopEmailService{}
	}
	return &emailService{
		dialer:      gomail.NewDialer(host, port, username, password),
		senderEmail: senderEmail,
		senderName:  senderName,
		clientURL:   strings.TrimRight(clientURL, "/"),
	}
}

func (s *emailService) send(toEmail, subject, body string) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.senderEmail, s.senderName)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		log.Printf("[MAILER ERROR] Failed to send %q to %s: %v", subject, toEmail, err)
		return err
	}
	log.Printf("[MAILER] %q sent to %s", subject, toEmail)
	return nil
}

func (s *emailService) SendWelcome(toEmail, fullName string) error {
	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Thanks %s, we have your application</h2>
			<p>Our team reviews every application within two business days.</p>
			<p>We will email you as soon as a decision is made. In the meantime keep your invoices,
			variations and correspondence with the client together.</p>
		</div>
	`, fullName)
	return s.send(toEmail, "We received your application", body)
}

func (s *emailService) SendApplicationStatus(toEmail, fullName, status, notes string) error {
	var headline, next string
	switch status {
	case "approved":
		headline = "Your application has been approved"
		next = fmt.Sprintf(`<a href="%s/register" style="background-color: #007BFF; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px; display: inline-block;">Create your account</a>`, s.clientURL)
	default:
		headline = "Update on your application"
		next = "<p>Unfortunately we can't take on this matter right now.</p>"
	}

	reviewNotes := ""
	if notes != "" {
		reviewNotes = fmt.Sprintf("<p><strong>Reviewer notes:</strong> %s</p>", notes)
	}

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>%s</h2>
			<p>Hi %s,</p>
			%s
			%s
		</div>
	`, headline, fullName, reviewNotes, next)
	return s.send(toEmail, headline, body)
}

func (s *emailService) SendDocumentReady(toEmail, fullName, caseNumber string) error {
	link := fmt.Sprintf("%s/cases", s.clientURL)
	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Your strategy pack is ready</h2>
			<p>Hi %s, the strategy pack for case %s is ready to download.</p>
			<a href="%s">%s</a>
		</div>
	`, fullName, caseNumber, link, link)
	return s.send(toEmail, "Strategy pack ready: "+caseNumber, body)
}

type noopEmailService struct{}

func (noopEmailService) SendWelcome(toEmail, _ string) error {
	log.Printf("[MAILER] SMTP not configured, skipping welcome email to %s", toEmail)
	return nil
}

func (noopEmailService) SendApplicationStatus(toEmail, _, status, _ string) error {
	log.Printf("[MAILER] SMTP not configured, skipping %s status email to %s", status, toEmail)
	return nil
}

func (noopEmailService) SendDocumentReady(toEmail, _, caseNumber string) error {
	log.Printf("[MAILER] SMTP not configured, skipping document ready email for %s to %s", caseNumber, toEmail)
	return nil
}
