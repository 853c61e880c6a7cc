package mailer

import (
	"fmt"
	"time"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendAppointmentConfirmation(toEmail, patientName, professionalName string, startAt time.Time) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	senderName  string
}

func NewEmailService(host string, port int, username, password, senderEmail, senderName string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)

	return &emailService{
		dialer:      d,
		senderEmail: senderEmail,
		senderName:  senderName,
	}
}

func (s *emailService) SendAppointmentConfirmation(toEmail, patientName, professionalName string, startAt time.Time) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.senderEmail, s.senderName)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "Your appointment is confirmed")

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Appointment confirmed</h2>
			<p>Hi %s,</p>
			<p>Your appointment with <strong>%s</strong> is confirmed for:</p>
			<h3>%s</h3>
			<p>If you can't make it, please contact us to reschedule.</p>
		</div>
	`, patientName, professionalName, startAt.Format("Monday, January 2 2006 at 15:04"))

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send confirmation to %s: %w", toEmail, err)
	}
	return nil
}
