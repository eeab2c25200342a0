// Package marketing runs the bulk email campaign flow that sits next to the
// billing engine: select active users, personalize content, deliver through
// the bulk mailer and record per-recipient logs.
package marketing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fortifyapp/fortify/app/models"
	"github.com/fortifyapp/fortify/app/repository"
	"github.com/fortifyapp/fortify/internal/pkg/mail"
	"github.com/google/uuid"
)

// ErrNoRecipients means the user selection matched nobody.
var ErrNoRecipients = errors.New("no recipients match the campaign filters")

// CampaignInput describes one campaign run.
type CampaignInput struct {
	Subject string
	Content string
	Tags    []string // optional segment filter
}

// CampaignResult summarizes a finished run.
type CampaignResult struct {
	Campaign   *models.EmailCampaign
	Recipients []mail.RecipientResult
}

// Stats is the aggregate view returned next to the campaign list.
type Stats struct {
	TotalUsers     int64 `json:"total_users"`
	ActiveUsers    int64 `json:"active_users"`
	TotalCampaigns int64 `json:"total_campaigns"`
}

// Service coordinates campaign persistence and delivery.
type Service struct {
	users     repository.UserRepository
	campaigns repository.CampaignRepository
	mailer    mail.BulkMailer
}

// NewService creates a marketing service from injected collaborators.
func NewService(users repository.UserRepository, campaigns repository.CampaignRepository, mailer mail.BulkMailer) *Service {
	return &Service{users: users, campaigns: campaigns, mailer: mailer}
}

// SendCampaign creates a campaign record, delivers the personalized message
// to every selected user and records one send log per recipient.
func (s *Service) SendCampaign(ctx context.Context, in CampaignInput) (*CampaignResult, error) {
	_ = ctx
	subject := strings.TrimSpace(in.Subject)
	content := strings.TrimSpace(in.Content)
	if subject == "" || content == "" {
		return nil, errors.New("subject and content are required")
	}

	recipients, err := s.users.ListActive(in.Tags)
	if err != nil {
		return nil, err
	}
	if len(recipients) == 0 {
		return nil, ErrNoRecipients
	}

	campaign := &models.EmailCampaign{
		PublicID:        uuid.NewString(),
		Title:           fmt.Sprintf("Campaign - %s", subject),
		Subject:         subject,
		Content:         content,
		Status:          models.CampaignStatusSending,
		TotalRecipients: len(recipients),
	}
	if err := s.campaigns.Create(campaign); err != nil {
		return nil, err
	}

	results := make([]mail.RecipientResult, 0, len(recipients))
	sent, failed := 0, 0

	for _, user := range recipients {
		html := personalize(content, user.Name, user.Email)
		batch := s.mailer.SendBulkEmail([]string{user.Email}, subject, html)
		if len(batch) == 0 {
			continue
		}
		result := batch[0]
		results = append(results, result)

		logEntry := &models.EmailSendLog{
			CampaignID: campaign.ID,
			UserID:     user.ID,
			Email:      user.Email,
			Status:     "sent",
		}
		if result.Sent {
			sent++
		} else {
			failed++
			logEntry.Status = "failed"
			logEntry.Error = result.Error
		}
		if err := s.campaigns.CreateSendLog(logEntry); err != nil {
			return nil, err
		}
	}

	campaign.TotalSent = sent
	campaign.TotalFailed = failed
	campaign.Status = models.CampaignStatusCompleted
	if sent == 0 {
		campaign.Status = models.CampaignStatusFailed
	}
	if err := s.campaigns.Update(campaign); err != nil {
		return nil, err
	}

	return &CampaignResult{Campaign: campaign, Recipients: results}, nil
}

// GetCampaign returns a single campaign together with its per-recipient
// send log.
func (s *Service) GetCampaign(ctx context.Context, publicID string) (*models.EmailCampaign, []models.EmailSendLog, error) {
	_ = ctx
	campaign, err := s.campaigns.GetByPublicID(publicID)
	if err != nil {
		return nil, nil, err
	}
	logs, err := s.campaigns.ListSendLogs(campaign.ID)
	if err != nil {
		return nil, nil, err
	}
	return campaign, logs, nil
}

// ListCampaigns returns all campaigns, newest first, plus aggregate stats.
func (s *Service) ListCampaigns(ctx context.Context) ([]models.EmailCampaign, *Stats, error) {
	_ = ctx
	campaigns, err := s.campaigns.List()
	if err != nil {
		return nil, nil, err
	}

	totalUsers, err := s.users.Count()
	if err != nil {
		return nil, nil, err
	}
	activeUsers, err := s.users.CountActive()
	if err != nil {
		return nil, nil, err
	}
	totalCampaigns, err := s.campaigns.Count()
	if err != nil {
		return nil, nil, err
	}

	return campaigns, &Stats{
		TotalUsers:     totalUsers,
		ActiveUsers:    activeUsers,
		TotalCampaigns: totalCampaigns,
	}, nil
}

// personalize substitutes the {name} and {email} placeholders the campaign
// editor supports.
func personalize(content, name, email string) string {
	out := strings.ReplaceAll(content, "{name}", name)
	return strings.ReplaceAll(out, "{email}", email)
}
