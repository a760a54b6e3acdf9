// Package email delivers transactional mail: verification codes and price
// alerts.
package email

import (
	"context"
	"fmt"
	"log/slog"
)

type Service interface {
	SendMail(ctx context.Context, mail Mail) error
}

type Mail struct {
	To      string
	Subject string
	// Body is HTML; PlainText, when set, is sent as the text alternative.
	Body      []byte
	PlainText string
}

// LogService writes mail to the logger instead of sending it. It stands in
// when no provider is configured.
type LogService struct {
	Logger *slog.Logger
}

func (s LogService) SendMail(ctx context.Context, mail Mail) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "mail not sent, no provider configured",
		"to", mail.To,
		"subject", mail.Subject,
		"text", mail.PlainText,
	)
	return nil
}

// VerificationMail builds the sign-up code message.
func VerificationMail(to, code string) Mail {
	return Mail{
		To:      to,
		Subject: "Your verification code",
		Body: fmt.Appendf(nil,
			`<p>Your verification code is <strong>%s</strong>.</p><p>It expires in 30 minutes.</p>`, code),
		PlainText: fmt.Sprintf("Your verification code is %s. It expires in 30 minutes.", code),
	}
}

// PriceAlertMail tells to that a listing reached their target price.
func PriceAlertMail(to, title string, price, target float64) Mail {
	return Mail{
		To:      to,
		Subject: "Price alert: " + title,
		Body: fmt.Appendf(nil,
			`<p><strong>%s</strong> is now listed at %.2f, at or below your target of %.2f.</p>`,
			title, price, target),
		PlainText: fmt.Sprintf("%s is now listed at %.2f, at or below your target of %.2f.", title, price, target),
	}
}
