package utils

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/gomail.v2"
)

// EmailConfig holds email configuration
type EmailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func loadEmailConfig() EmailConfig {
	port := 587
	if p, err := strconv.Atoi(os.Getenv("SMTP_PORT")); err == nil && p > 0 {
		port = p
	}
	return EmailConfig{
		Host:     os.Getenv("SMTP_HOST"),
		Port:     port,
		Username: os.Getenv("SMTP_USERNAME"),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     os.Getenv("SMTP_FROM"),
	}
}

// SendPaymentConfirmation emails the shopper after their payment has been
// reconciled as successful. Callers treat failures as best-effort: the order
// is already paid, a lost email must never fail the reconciliation.
func SendPaymentConfirmation(to, orderID string, amount float64, currency string) error {
	config := loadEmailConfig()
	if config.Host == "" || to == "" {
		return fmt.Errorf("email not configured or recipient missing")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", config.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Your ZemCart payment was received")

	body := fmt.Sprintf(`
		<h2>Payment received</h2>
		<p>We have confirmed your payment of <b>%.0f %s</b> for order <b>%s</b>.</p>
		<p>Your order is now being prepared. You can follow its progress from your account.</p>
		<p>Thank you for shopping with ZemCart!</p>
	`, amount, currency, orderID)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(config.Host, config.Port, config.Username, config.Password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %v", err)
	}

	return nil
}
