// Package notify turns domain events into in-app notifications and queued emails.
package notify

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2/log"

	"github.com/celumarket/celumarket/app/models"
	"github.com/celumarket/celumarket/app/repository"
	"github.com/celumarket/celumarket/internal/pkg/jobqueue"
	"github.com/celumarket/celumarket/internal/pkg/mail"
	"github.com/celumarket/celumarket/internal/pkg/messaging"
	"github.com/celumarket/celumarket/internal/pkg/moderation"
)

const messageExcerptLength = 200

// EmailQueue schedules templated emails.
type EmailQueue interface {
	EnqueueEmail(ctx context.Context, tpl mail.Template, to string, data mail.Data) (*jobqueue.Job, error)
}

// Service records a notification row for the affected user and, when an email
// queue is configured, schedules the matching email. Every failure is logged
// and swallowed.
type Service struct {
	notifications repository.NotificationRepository
	users         repository.UserRepository
	emails        EmailQueue
}

var (
	_ moderation.Notifier       = (*Service)(nil)
	_ messaging.MessageNotifier = (*Service)(nil)
)

func NewService(repos *repository.Repositories, emails EmailQueue) *Service {
	return &Service{
		notifications: repos.Notification,
		users:         repos.User,
		emails:        emails,
	}
}

func (s *Service) ListingModerated(ctx context.Context, listing *models.Listing, action moderation.ListingAction) {
	owner := s.resolveUser(listing.UserID, &listing.User)
	if owner == nil {
		return
	}

	title := listing.Device.DisplayName()
	if title == "" {
		title = fmt.Sprintf("#%d", listing.ID)
	}
	data := mail.Data{Name: owner.Name, Title: title, EntityID: listing.ID}

	var content string
	var tpl mail.Template
	switch action {
	case moderation.ListingApprove:
		content = fmt.Sprintf("Your listing %s was approved.", title)
		tpl = mail.TemplateListingApproved
	case moderation.ListingReject:
		if listing.RejectionReason != nil {
			data.Reason = *listing.RejectionReason
		}
		content = fmt.Sprintf("Your listing %s was rejected: %s", title, data.Reason)
		tpl = mail.TemplateListingRejected
	case moderation.ListingFeature:
		content = fmt.Sprintf("Your listing %s is now featured.", title)
		tpl = mail.TemplateListingFeatured
	case moderation.ListingUnfeature:
		content = fmt.Sprintf("Your listing %s is no longer featured.", title)
	case moderation.ListingDelete:
		content = fmt.Sprintf("Your listing %s was removed.", title)
		tpl = mail.TemplateListingDeleted
	default:
		return
	}

	s.record(owner.ID, models.NotificationListingModerated, content, listing.ID)
	s.email(ctx, tpl, owner.Email, data)
}

func (s *Service) ReportModerated(ctx context.Context, report *models.TechnicalReport, action moderation.ReportAction) {
	owner := s.resolveUser(report.UserID, &report.User)
	if owner == nil {
		return
	}

	data := mail.Data{Name: owner.Name, Title: report.ReportNumber, EntityID: report.ID}

	var content string
	var tpl mail.Template
	switch action {
	case moderation.ReportValidate:
		content = fmt.Sprintf("Technical report %s was validated.", report.ReportNumber)
		tpl = mail.TemplateReportValidated
	case moderation.ReportInvalidate:
		if report.InvalidationReason != nil {
			data.Reason = *report.InvalidationReason
		}
		content = fmt.Sprintf("Technical report %s was invalidated: %s", report.ReportNumber, data.Reason)
		tpl = mail.TemplateReportInvalidated
	case moderation.ReportDelete:
		content = fmt.Sprintf("Technical report %s was removed.", report.ReportNumber)
		tpl = mail.TemplateReportDeleted
	default:
		return
	}

	s.record(owner.ID, models.NotificationReportModerated, content, report.ID)
	s.email(ctx, tpl, owner.Email, data)
}

func (s *Service) AccountChanged(ctx context.Context, user *models.User, action moderation.UserAction) {
	data := mail.Data{Name: user.Name, Status: user.Status, Role: user.Role, EntityID: user.ID}

	var content string
	tpl := mail.TemplateAccountUpdated
	switch action {
	case moderation.UserBan:
		content = "Your account has been suspended."
		tpl = mail.TemplateAccountBanned
	case moderation.UserActivate:
		content = "Your account has been activated."
	case moderation.UserChangeRole:
		content = fmt.Sprintf("Your role is now %s.", user.Role)
	case moderation.UserUpdate:
		content = fmt.Sprintf("An administrator updated your account (status %s, role %s).", user.Status, user.Role)
	default:
		return
	}

	s.record(user.ID, models.NotificationAccount, content, user.ID)
	s.email(ctx, tpl, user.Email, data)
}

func (s *Service) MessageSent(ctx context.Context, conversation *models.Conversation, message *models.Message) {
	receiver := s.resolveUser(message.ReceiverID, nil)
	if receiver == nil {
		return
	}

	senderName := "Someone"
	if sender := s.resolveUser(message.SenderID, nil); sender != nil {
		senderName = sender.Name
	}

	title := fmt.Sprintf("#%d", conversation.ListingID)
	if conversation.Listing != nil {
		if name := conversation.Listing.Device.DisplayName(); name != "" {
			title = name
		}
	}

	s.record(receiver.ID, models.NotificationMessage, fmt.Sprintf("New message from %s", senderName), conversation.ID)
	s.email(ctx, mail.TemplateNewMessage, receiver.Email, mail.Data{
		Name:     receiver.Name,
		Title:    title,
		Sender:   senderName,
		Body:     excerpt(message.Content, messageExcerptLength),
		EntityID: conversation.ID,
	})
}

// Welcome schedules the welcome email for a newly registered user.
func (s *Service) Welcome(ctx context.Context, user *models.User) {
	s.email(ctx, mail.TemplateWelcome, user.Email, mail.Data{Name: user.Name, EntityID: user.ID})
}

// resolveUser prefers the preloaded association and falls back to a lookup.
func (s *Service) resolveUser(id uint, preloaded *models.User) *models.User {
	if preloaded != nil && preloaded.ID == id && preloaded.Email != "" {
		return preloaded
	}
	if id == 0 {
		return nil
	}
	user, err := s.users.GetByID(id)
	if err != nil {
		log.Errorf("[Notify] failed to load user %d: %v", id, err)
		return nil
	}
	return user
}

func (s *Service) record(userID uint, kind, content string, referenceID uint) {
	if err := s.notifications.Create(models.NewNotification(userID, kind, content, referenceID)); err != nil {
		log.Errorf("[Notify] failed to store %s notification for user %d: %v", kind, userID, err)
	}
}

func (s *Service) email(ctx context.Context, tpl mail.Template, to string, data mail.Data) {
	if s.emails == nil || tpl == "" || to == "" {
		return
	}
	if _, err := s.emails.EnqueueEmail(ctx, tpl, to, data); err != nil {
		log.Errorf("[Notify] failed to enqueue %s email to %s: %v", tpl, to, err)
	}
}

func excerpt(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}
