package services

import (
	"context"
	"fmt"
	"html"
	"strings"

	"provider-subscription-api/internal/config"
	"provider-subscription-api/pkg/logging"

	brevo "github.com/getbrevo/brevo-go/lib"
)

// EmailSender sends one transactional email.
type EmailSender interface {
	SendEmail(ctx context.Context, msg EmailMessage) error
}

// EmailMessage is a rendered transactional email.
type EmailMessage struct {
	ToEmail     string
	ToName      string
	Subject     string
	HTMLContent string
	TextContent string
}

// brevoSender sends through the Brevo transactional email API.
type brevoSender struct {
	client    *brevo.APIClient
	fromEmail string
	fromName  string
}

func (s *brevoSender) SendEmail(ctx context.Context, msg EmailMessage) error {
	email := brevo.SendSmtpEmail{
		Sender: &brevo.SendSmtpEmailSender{
			Name:  s.fromName,
			Email: s.fromEmail,
		},
		To: []brevo.SendSmtpEmailTo{
			{Email: msg.ToEmail, Name: msg.ToName},
		},
		Subject:     msg.Subject,
		HtmlContent: msg.HTMLContent,
		TextContent: msg.TextContent,
	}

	_, resp, err := s.client.TransactionalEmailsApi.SendTransacEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if resp != nil && resp.StatusCode >= 300 {
		return fmt.Errorf("brevo API error: status %d", resp.StatusCode)
	}
	return nil
}

// BrevoService renders subscription emails and sends them through Brevo
type BrevoService struct {
	sender      EmailSender
	adminEmail  string
	serviceName string
}

// NewBrevoService creates a new Brevo service instance. Without an API key it sends nothing.
func NewBrevoService(cfg *config.Config) *BrevoService {
	svc := &BrevoService{
		adminEmail:  cfg.AdminNotifyEmail,
		serviceName: cfg.ServiceName,
	}
	if cfg.BrevoAPIKey == "" || cfg.BrevoFromEmail == "" {
		logging.Infof("Brevo not configured, subscription emails disabled")
		return svc
	}

	brevoCfg := brevo.NewConfiguration()
	brevoCfg.AddDefaultHeader("api-key", cfg.BrevoAPIKey)
	svc.sender = &brevoSender{
		client:    brevo.NewAPIClient(brevoCfg),
		fromEmail: cfg.BrevoFromEmail,
		fromName:  cfg.BrevoFromName,
	}
	return svc
}

// NewBrevoServiceWithSender builds the service around a custom sender.
func NewBrevoServiceWithSender(sender EmailSender, adminEmail, serviceName string) *BrevoService {
	return &BrevoService{sender: sender, adminEmail: adminEmail, serviceName: serviceName}
}

func (s *BrevoService) Name() string {
	return "email"
}

// Notify emails the provider about admin actions and the admin about renewal requests.
func (s *BrevoService) Notify(ctx context.Context, n Notification) error {
	if s.sender == nil {
		return nil
	}

	msg, ok := s.render(n)
	if !ok {
		return nil
	}
	return s.sender.SendEmail(ctx, msg)
}

func (s *BrevoService) render(n Notification) (EmailMessage, bool) {
	var subject string
	var lines []string

	to, toName := n.Email, n.BusinessName

	switch n.Event {
	case EventSubscriptionApproved:
		subject = fmt.Sprintf("Your listing on %s is approved", s.serviceName)
		lines = []string{
			fmt.Sprintf("Hello %s,", n.BusinessName),
			fmt.Sprintf("Your account has been approved. Your free trial runs for %d days.", n.View.DaysRemaining),
			"Your offers are now visible to customers.",
		}
	case EventSubscriptionPaymentVerified:
		subject = fmt.Sprintf("Payment confirmed - %s plan", n.View.Plan)
		lines = []string{
			fmt.Sprintf("Hello %s,", n.BusinessName),
			fmt.Sprintf("We confirmed your payment for the %s plan.", n.View.Plan),
			fmt.Sprintf("Your subscription is active for %d days.", n.View.DaysRemaining),
		}
	case EventSubscriptionDeactivated:
		subject = fmt.Sprintf("Your listing on %s was suspended", s.serviceName)
		lines = []string{
			fmt.Sprintf("Hello %s,", n.BusinessName),
			"Your account has been deactivated and your offers are hidden.",
			"Contact us if you believe this is a mistake.",
		}
	case EventSubscriptionReactivated:
		subject = fmt.Sprintf("Your listing on %s was reactivated", s.serviceName)
		lines = []string{
			fmt.Sprintf("Hello %s,", n.BusinessName),
			fmt.Sprintf("Your account has been reactivated. Current status: %s.", n.View.Status),
		}
	case EventSubscriptionRenewalRequest:
		if s.adminEmail == "" {
			return EmailMessage{}, false
		}
		to, toName = s.adminEmail, s.serviceName
		subject = fmt.Sprintf("Renewal request from %s", n.BusinessName)
		lines = []string{
			fmt.Sprintf("Provider %s (%s) requested the %s plan.", n.BusinessName, n.ProviderID, n.RequestPlan),
			fmt.Sprintf("Current status: %s, days remaining: %d.", n.View.Status, n.View.DaysRemaining),
		}
		if n.Notes != "" {
			lines = append(lines, "Message: "+n.Notes)
		}
	default:
		return EmailMessage{}, false
	}

	if to == "" {
		return EmailMessage{}, false
	}

	var htmlBody strings.Builder
	htmlBody.WriteString(`<!DOCTYPE html><html><head><meta charset="UTF-8"></head>`)
	htmlBody.WriteString(`<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">`)
	for _, line := range lines {
		htmlBody.WriteString("<p>" + html.EscapeString(line) + "</p>")
	}
	htmlBody.WriteString(`<p style="color: #999; font-size: 12px;">` + html.EscapeString(s.serviceName) + `</p></body></html>`)

	return EmailMessage{
		ToEmail:     to,
		ToName:      toName,
		Subject:     subject,
		HTMLContent: htmlBody.String(),
		TextContent: strings.Join(lines, "\n\n"),
	}, true
}
