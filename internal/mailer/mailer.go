package mailer

import (
	"fmt"

	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog/log"

	"folderr-backend/internal/config"
)

// Mailer sends transactional email for transfers and shares.
type Mailer struct {
	client      *resend.Client
	from        string
	frontEndURL string
}

func New(cfg *config.Config) *Mailer {
	return &Mailer{
		client:      resend.NewClient(cfg.Email.APIKey),
		from:        cfg.Email.FromAddress,
		frontEndURL: cfg.Folders.FrontEndURL,
	}
}

func (m *Mailer) send(to, subject, text string) error {
	params := &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{to},
		Subject: subject,
		Text:    text,
	}
	sent, err := m.client.Emails.Send(params)
	if err != nil {
		return err
	}
	log.Info().Str("to", to).Str("email_id", sent.Id).Msg("email sent")
	return nil
}

// SendFolderTransfer invites the target to claim a transferred folder.
func (m *Mailer) SendFolderTransfer(toEmail, fromEmail string, folderID uint) error {
	body := fmt.Sprintf(
		"%s transferred a folder to you.\n\nClaim it here: %s/claim-folder/%d/\n",
		fromEmail, m.frontEndURL, folderID)
	return m.send(toEmail, "Claim your folder", body)
}

// SendShareNotice tells the receiver a folder was shared with them.
func (m *Mailer) SendShareNotice(toEmail, senderEmail, folderTitle string) error {
	body := fmt.Sprintf(
		"%s shared the folder %q with you.\n\nOpen Folderr: %s\n",
		senderEmail, folderTitle, m.frontEndURL)
	return m.send(toEmail, "A folder was shared with you", body)
}
