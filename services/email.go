package services

import (
	"fmt"
	"strconv"

	"gopkg.in/gomail.v2"

	"institution-module/config"
	"institution-module/logger"
	"institution-module/models"
)

// SendAdminCredentialsEmail delivers first-login credentials to a newly
// created administrator via SMTP. Callers treat failure as non-fatal.
func SendAdminCredentialsEmail(user *models.User, institutionName string) error {
	from := config.AppConfig.EmailFrom
	if from == "" {
		from = config.AppConfig.SMTPUser
	}
	if from == "" {
		return fmt.Errorf("email sender not configured (set EMAIL_FROM or SMTP_USER)")
	}
	if config.AppConfig.SMTPUser == "" || config.AppConfig.SMTPPass == "" {
		return fmt.Errorf("smtp credentials not configured (set SMTP_USER and SMTP_PASS)")
	}

	body := fmt.Sprintf(
		"<p>Hörmətli %s %s,</p>"+
			"<p>%s üçün administrator hesabınız yaradıldı.</p>"+
			"<p>İstifadəçi adı: <b>%s</b><br>İlkin şifrə: <b>%s</b></p>"+
			"<p>İlk girişdən sonra şifrənizi dəyişin.</p>",
		user.FirstName, user.LastName, institutionName, user.Username, user.InitialPassword)

	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", user.Email)
	m.SetHeader("Subject", "Administrator hesabı yaradıldı")
	m.SetBody("text/html", body)

	port := 587
	if v, err := strconv.Atoi(config.AppConfig.SMTPPort); err == nil {
		port = v
	}

	d := gomail.NewDialer(config.AppConfig.SMTPHost, port, config.AppConfig.SMTPUser, config.AppConfig.SMTPPass)
	if err := d.DialAndSend(m); err != nil {
		logger.Error("failed to send credentials email to %s: %v", user.Email, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	logger.Info("credentials email sent to %s", user.Email)
	return nil
}

// CredentialSenderFromConfig returns the hook the import pipeline calls for
// every created administrator, or nil when credential mails are disabled
func CredentialSenderFromConfig() func(user *models.User, institutionName string) {
	if !config.AppConfig.SendCredentialEmails {
		return nil
	}
	return func(user *models.User, institutionName string) {
		if err := SendAdminCredentialsEmail(user, institutionName); err != nil {
			logger.Warn("credentials email for %s not delivered: %v", user.Email, err)
		}
	}
}
