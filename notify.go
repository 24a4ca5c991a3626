package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/senpro-it/quicksight-provisioner/mailer"
	"github.com/senpro-it/quicksight-provisioner/models"
)

type sender interface {
	Send(to string, subject string, body string, attachments ...mailer.Attachment) error
}

// Notifier mails workflow results. A nil Notifier does nothing.
type Notifier struct {
	sender sender
	to     string
}

func NewNotifier(config MailConfig) *Notifier {
	if config.To == "" {
		return nil
	}
	return &Notifier{
		sender: &mailer.Mailer{
			Host:     config.Host,
			Port:     config.Port,
			Username: config.Username,
			Password: config.Password,
			From:     config.From,
		},
		to: config.To,
	}
}

func (n *Notifier) DashboardCreated(dashboard *models.Dashboard) {
	if n == nil || dashboard == nil {
		return
	}
	body := fmt.Sprintf(
		"Dashboard %q (%s) was created in account %s, region %s.\n\n%s\n",
		dashboard.Name, dashboard.ID, dashboard.Target.AccountID, dashboard.Target.Region, dashboard.URL,
	)
	if err := n.sender.Send(n.to, "Dashboard created: "+dashboard.Name, body); err != nil {
		logger.Warn("Could not send notification", "err", err)
	}
}

func (n *Notifier) TemplateSaved(templateID string, path string) {
	if n == nil {
		return
	}
	f, err := os.Open(path)
	if err != nil {
		logger.Warn("Could not attach saved template", "path", path, "err", err)
		return
	}
	defer f.Close()

	body := fmt.Sprintf("Template %s was saved to %s.\n", templateID, path)
	if err := n.sender.Send(n.to, "Template saved: "+templateID, body, mailer.Attachment{Name: filepath.Base(path), Content: f}); err != nil {
		logger.Warn("Could not send notification", "err", err)
	}
}
