package mailer

import (
	"fmt"
	"strings"

	"gopkg.in/gomail.v2"
)

// IEmailService dispatches sales-handoff leads to the manager inbox.
// When SMTP is not configured the service does not fail: it returns a
// dry-run preview of the message instead, for the UI to show.
type IEmailService interface {
	SendLead(subject, body string) (sent bool, info string)
	ManagerEmail() string
}

type emailService struct {
	dialer       *gomail.Dialer
	configured   bool
	senderEmail  string
	managerEmail string
}

func NewEmailService(host string, port int, username, password, senderEmail, managerEmail string) IEmailService {
	configured := host != "" && port != 0 && username != "" && password != ""

	var d *gomail.Dialer
	if configured {
		d = gomail.NewDialer(host, port, username, password)
	}
	if senderEmail == "" {
		senderEmail = "no-reply@local.invalid"
	}

	return &emailService{
		dialer:       d,
		configured:   configured,
		senderEmail:  senderEmail,
		managerEmail: managerEmail,
	}
}

func (s *emailService) ManagerEmail() string {
	return s.managerEmail
}

func (s *emailService) SendLead(subject, body string) (bool, string) {
	if !s.configured {
		preview := fmt.Sprintf(
			"=== EMAIL PREVIEW (DRY RUN) ===\nTo: %s\nFrom: %s\nSubject: %s\n\n%s\n=== END PREVIEW ===",
			s.managerEmail, s.senderEmail, subject, body,
		)
		return false, preview
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", s.managerEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return false, fmt.Sprintf("send_error: %v", err)
	}
	return true, "sent"
}

// BuildLeadSubject is the standardized subject line for manager handoff.
func BuildLeadSubject(productRef, userName string) string {
	safeProduct := strings.TrimSpace(productRef)
	if safeProduct == "" {
		safeProduct = "Product"
	}
	safeUser := strings.TrimSpace(userName)
	if safeUser == "" {
		safeUser = "Prospect"
	}
	return fmt.Sprintf("Lead: %s - Price/Discount Inquiry from %s", safeProduct, safeUser)
}

// LeadDetails carries everything the manager needs to follow up.
type LeadDetails struct {
	UserName    string
	UserEmail   string
	UserPhone   string
	ProductRef  string
	Summary     string
	BestTime    string
	QuotedPrice string
}

// BuildLeadBody renders a succinct, actionable plaintext handoff note.
func BuildLeadBody(d LeadDetails) string {
	var sb strings.Builder
	sb.WriteString("New sales lead from the product assistant.\n\n")
	fmt.Fprintf(&sb, "Prospect: %s\n", d.UserName)
	fmt.Fprintf(&sb, "Email:    %s\n", d.UserEmail)
	fmt.Fprintf(&sb, "Phone:    %s\n", d.UserPhone)
	fmt.Fprintf(&sb, "Product:  %s\n", d.ProductRef)
	if d.QuotedPrice != "" {
		fmt.Fprintf(&sb, "Quoted:   %s\n", d.QuotedPrice)
	}
	if d.BestTime != "" {
		fmt.Fprintf(&sb, "Best time to call: %s\n", d.BestTime)
	}
	sb.WriteString("\nConversation summary:\n")
	sb.WriteString(strings.TrimSpace(d.Summary))
	sb.WriteString("\n")
	return sb.String()
}
