package mailer

import (
	"fmt"
	"time"

	"github.com/servilocal/listing-service/internal/config"
	"gopkg.in/gomail.v2"
)

type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

func New(cfg *config.SMTPConfig) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.From, cfg.Password),
		from:   cfg.From,
	}
}

func (m *Mailer) SendPromotionActivated(toEmail, listingName string, until time.Time) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", toEmail)
	msg.SetHeader("Subject", "Your listing is now featured")
	msg.SetBody("text/plain", promotionActivatedBody(listingName, until))
	return m.dialer.DialAndSend(msg)
}

func promotionActivatedBody(listingName string, until time.Time) string {
	return fmt.Sprintf(
		"Your listing %q is now featured and will stay promoted until %s.",
		listingName,
		until.Format("2 January 2006"),
	)
}
