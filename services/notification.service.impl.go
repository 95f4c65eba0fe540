package services

import (
	"booking-service/config"
	"bytes"
	"fmt"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

type NotificationServiceImpl struct {
	config *config.Config
	logger *logrus.Logger
}

func NewNotificationServiceImpl(cfg *config.Config, logger *logrus.Logger) NotificationService {
	return &NotificationServiceImpl{config: cfg, logger: logger}
}

func (s *NotificationServiceImpl) SendBookingConfirmation(data *BookingConfirmationEmail) error {
	var body bytes.Buffer
	body.WriteString(fmt.Sprintf("Hello %s,\n\n", data.GuestName))
	body.WriteString(fmt.Sprintf("Your booking at %s is confirmed.\n\n", data.PropertyName))
	body.WriteString(fmt.Sprintf("Confirmation code: %s\n", data.ConfirmationCode))
	body.WriteString(fmt.Sprintf("Check-in: %s\nCheck-out: %s\n", data.CheckIn, data.CheckOut))
	body.WriteString(fmt.Sprintf("Total: %.2f %s\n", data.TotalAmount, data.Currency))

	m := gomail.NewMessage()
	m.SetHeader("From", s.config.EmailFrom)
	m.SetHeader("To", data.Email)
	m.SetHeader("Subject", "Booking confirmation "+data.ConfirmationCode)
	m.SetBody("text/plain", body.String())

	d := gomail.NewDialer(s.config.SMTPHost, s.config.SMTPPort, s.config.SMTPUser, s.config.SMTPPass)

	err := d.DialAndSend(m)
	if err != nil {
		s.logger.WithFields(logrus.Fields{"path": "services/notification"}).Error("Could not send email: ", err)
		return err
	}
	return nil
}
