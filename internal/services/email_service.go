package services

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"

	"github.com/resend/resend-go/v2"

	"github.com/crediplus/crediplus-api/internal/config"
	"github.com/crediplus/crediplus-api/internal/models"
	"github.com/crediplus/crediplus-api/internal/repository"
	"github.com/crediplus/crediplus-api/pkg/logger"
)

//go:embed templates/email/*.html
var emailTemplates embed.FS

const appURL = "https://app.crediplus.app"

type EmailService struct {
	config       *config.Config
	userRepo     repository.UserRepository
	resendClient *resend.Client
}

func NewEmailService(cfg *config.Config, userRepo repository.UserRepository) *EmailService {
	client := resend.NewClient(cfg.ResendAPIKey)
	return &EmailService{
		config:       cfg,
		userRepo:     userRepo,
		resendClient: client,
	}
}

func (s *EmailService) SendSettlementApprovedEmail(ctx context.Context, request *models.SettlementRequest) error {
	user, err := s.clientUser(ctx, request)
	if err != nil || user == nil {
		return err
	}

	data := struct {
		Name           string
		AccountNumber  string
		SettlementDate string
		TotalAmount    string
		AppURL         string
	}{
		Name:           user.FullName,
		AccountNumber:  request.AccountNumber,
		SettlementDate: request.SettlementDate.Format("02/01/2006"),
		TotalAmount:    fmt.Sprintf("%.2f", request.TotalSettlementAmount),
		AppURL:         appURL,
	}

	return s.send(user.Email, "Demande de remboursement approuvée", "settlement_approved.html", data)
}

func (s *EmailService) SendSettlementRejectedEmail(ctx context.Context, request *models.SettlementRequest) error {
	user, err := s.clientUser(ctx, request)
	if err != nil || user == nil {
		return err
	}

	reason := ""
	if request.RejectionReason != nil {
		reason = *request.RejectionReason
	}

	data := struct {
		Name          string
		AccountNumber string
		Reason        string
		AppURL        string
	}{
		Name:          user.FullName,
		AccountNumber: request.AccountNumber,
		Reason:        reason,
		AppURL:        appURL,
	}

	return s.send(user.Email, "Demande de remboursement rejetée", "settlement_rejected.html", data)
}

func (s *EmailService) SendSettlementCompletedEmail(ctx context.Context, request *models.SettlementRequest, payment *models.Payment) error {
	user, err := s.clientUser(ctx, request)
	if err != nil || user == nil {
		return err
	}

	data := struct {
		Name            string
		AccountNumber   string
		PaymentNumber   string
		PaymentDate     string
		TotalAmount     string
		InterestSavings string
		AppURL          string
	}{
		Name:            user.FullName,
		AccountNumber:   request.AccountNumber,
		PaymentNumber:   payment.PaymentNumber,
		PaymentDate:     payment.PaymentDate.Format("02/01/2006"),
		TotalAmount:     fmt.Sprintf("%.2f", payment.Amount),
		InterestSavings: fmt.Sprintf("%.2f", request.InterestSavings),
		AppURL:          appURL,
	}

	return s.send(user.Email, "Remboursement anticipé effectué", "settlement_completed.html", data)
}

// clientUser resolves the client user behind a settlement request's loan.
// Loans without a linked user produce no email, which is not an error.
func (s *EmailService) clientUser(ctx context.Context, request *models.SettlementRequest) (*models.User, error) {
	if request.Loan.ID == 0 || request.Loan.ClientUserID == nil {
		return nil, nil
	}
	return s.userRepo.FindByID(ctx, *request.Loan.ClientUserID)
}

func (s *EmailService) send(to, subject, templateName string, data interface{}) error {
	body, err := s.renderTemplate(templateName, data)
	if err != nil {
		return err
	}

	params := &resend.SendEmailRequest{
		From:    s.config.FromEmail,
		To:      []string{to},
		Subject: subject,
		Html:    body,
	}
	if _, err := s.resendClient.Emails.Send(params); err != nil {
		logger.Error(fmt.Sprintf("Failed to send email to %s: %v", to, err))
		return err
	}

	logger.Info(fmt.Sprintf("📧 [Email Sent] To: %s | Subject: %s", to, subject))
	return nil
}

func (s *EmailService) renderTemplate(name string, data interface{}) (string, error) {
	tmpl, err := template.ParseFS(emailTemplates, "templates/email/"+name)
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}

	return buf.String(), nil
}
