package notify

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/gomail.v2"
)

// EmailSender delivers invite and pub-request emails over SMTP.
type EmailSender struct {
	dialer  *gomail.Dialer
	from    string
	baseURL string
}

// NewEmailSenderFromEnv builds a sender from SMTP_* env vars. Missing config
// is an error the caller can log and continue without email.
func NewEmailSenderFromEnv() (*EmailSender, error) {
	host := strings.TrimSpace(os.Getenv("SMTP_HOST"))
	user := strings.TrimSpace(os.Getenv("SMTP_USER"))
	pass := os.Getenv("SMTP_PASSWORD")
	if host == "" || user == "" {
		return nil, errors.New("missing required SMTP env: SMTP_HOST, SMTP_USER")
	}
	port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil || port <= 0 {
		port = 587
	}

	from := strings.TrimSpace(os.Getenv("SMTP_FROM"))
	if from == "" {
		from = user
	}

	return &EmailSender{
		dialer:  gomail.NewDialer(host, port, user, pass),
		from:    from,
		baseURL: AppBaseURL(),
	}, nil
}

// AppBaseURL is the web origin used in email links and push deep links.
func AppBaseURL() string {
	if url := strings.TrimSpace(os.Getenv("APP_BASE_URL")); url != "" {
		return strings.TrimRight(url, "/")
	}
	return "https://pub.jakeunsted.uk"
}

func (e *EmailSender) SendPubRequestEmail(to, groupName, requesterName string) error {
	message := gomail.NewMessage()
	message.SetHeader("From", e.from)
	message.SetHeader("To", to)
	message.SetHeader("Subject", fmt.Sprintf("%s asks: pub? 🍺", requesterName))
	message.SetBody("text/html", fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; max-width: 600px; margin: auto; padding: 20px;">
			<h2 style="text-align: center;">Pub?</h2>
			<p>%s wants to go to the pub with %s.</p>
			<p>You have 12 hours to answer before the round is off.</p>
			<p style="text-align: center;"><a href="%s" style="display: inline-block; padding: 10px 20px; background-color: #f59e0b; color: #fff; text-decoration: none; border-radius: 5px;">Answer now</a></p>
		</div>
	`, requesterName, groupName, e.baseURL))
	return e.dialer.DialAndSend(message)
}

func (e *EmailSender) SendInviteEmail(to, token, groupName, inviterName string) error {
	inviteURL := fmt.Sprintf("%s/invite/%s", e.baseURL, token)

	message := gomail.NewMessage()
	message.SetHeader("From", e.from)
	message.SetHeader("To", to)
	message.SetHeader("Subject", fmt.Sprintf("%s invited you to %s on Pub?", inviterName, groupName))
	message.SetBody("text/html", fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; max-width: 600px; margin: auto; padding: 20px;">
			<h2 style="text-align: center;">You're invited</h2>
			<p>%s invited you to join <strong>%s</strong> on Pub?, the app for sorting out impromptu pub trips.</p>
			<p style="text-align: center;"><a href="%s" style="display: inline-block; padding: 10px 20px; background-color: #28a745; color: #fff; text-decoration: none; border-radius: 5px;">Accept invite</a></p>
			<p>The invite expires in 7 days.</p>
		</div>
	`, inviterName, groupName, inviteURL))
	return e.dialer.DialAndSend(message)
}
