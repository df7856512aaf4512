package service

import (
	"fmt"
	"log"
	"time"

	"go-procurement-ws/internal/model"
	"go-procurement-ws/internal/repository"
	"go-procurement-ws/pkg/mailer"

	"github.com/google/uuid"
)

// Pusher is the real-time delivery channel. Publishing to an offline user
// is a no-op with no acknowledgement.
type Pusher interface {
	Publish(userID uuid.UUID, payload interface{})
}

// Event is a notification to be delivered to one user across the three
// channels: persisted record, real-time push, and (optionally) email.
type Event struct {
	Type     model.NotificationType
	Title    string
	Message  string
	Metadata model.Metadata
	Email    bool   // send an email copy
	EmailTo  string // recipient address, resolved by the caller
}

type NotificationService interface {
	// Notify persists the notification (source of truth), then pushes and
	// emails best-effort. Only the persistence failure propagates.
	Notify(userID uuid.UUID, event Event) error

	// NotifyStakeholders broadcasts a request event to every manager and
	// senior manager of the requester's department (primary or via role
	// grant) plus every system admin, minus the requester, deduplicated.
	// Users in skipEmail get the persisted+push channels but no email.
	NotifyStakeholders(req *model.PurchaseRequest, requester *model.User, event Event, skipEmail map[uuid.UUID]bool)
}

type notificationService struct {
	notificationRepo repository.NotificationRepository
	userRepo         repository.UserRepository
	pusher           Pusher
	mail             mailer.Mailer
}

func NewNotificationService(
	notificationRepo repository.NotificationRepository,
	userRepo repository.UserRepository,
	pusher Pusher,
	mail mailer.Mailer,
) NotificationService {
	return &notificationService{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		pusher:           pusher,
		mail:             mail,
	}
}

func (s *notificationService) Notify(userID uuid.UUID, event Event) error {
	notification := &model.Notification{
		UserID:   userID,
		Type:     event.Type,
		Title:    event.Title,
		Message:  event.Message,
		Metadata: event.Metadata,
	}

	// 1. Persisted record is the source of truth; its failure propagates.
	if err := s.notificationRepo.Create(notification); err != nil {
		return fmt.Errorf("persist notification: %w", err)
	}

	// 2. Real-time push, best effort.
	s.pusher.Publish(userID, map[string]interface{}{
		"type":         "notification",
		"notification": notification,
	})

	// 3. Email copy, best effort.
	if event.Email {
		s.sendEmail(userID, event)
	}

	return nil
}

func (s *notificationService) sendEmail(userID uuid.UUID, event Event) {
	to := event.EmailTo
	if to == "" {
		user, err := s.userRepo.FindByID(userID)
		if err != nil {
			log.Printf("notification: resolve email for user %s: %v", userID, err)
			return
		}
		to = user.Email
	}
	if to == "" {
		return
	}

	html := fmt.Sprintf("<h2>%s</h2><p>%s</p>", event.Title, event.Message)
	if result := s.mail.Send(to, event.Title, html, event.Message); !result.Sent {
		log.Printf("notification: email to %s not sent: %s", to, result.Error)
	}
}

func (s *notificationService) NotifyStakeholders(req *model.PurchaseRequest, requester *model.User, event Event, skipEmail map[uuid.UUID]bool) {
	recipients := s.stakeholders(requester)

	for _, recipient := range recipients {
		perUser := event
		perUser.EmailTo = recipient.Email
		if skipEmail[recipient.ID] {
			perUser.Email = false
		}
		if perUser.Metadata == nil {
			perUser.Metadata = model.Metadata{}
		}
		perUser.Metadata["request_id"] = req.ID.String()

		if err := s.Notify(recipient.ID, perUser); err != nil {
			log.Printf("notification: stakeholder %s: %v", recipient.ID, err)
		}
	}
}

// stakeholders resolves the broadcast audience for a requester's department:
// primary and grant-holding managers/senior managers, plus all system
// admins, minus the requester, deduplicated by user id.
func (s *notificationService) stakeholders(requester *model.User) []model.User {
	seen := map[uuid.UUID]bool{requester.ID: true}
	var recipients []model.User

	if requester.DepartmentID != nil {
		approvers, err := s.userRepo.FindDepartmentApprovers(*requester.DepartmentID)
		if err != nil {
			log.Printf("notification: department approvers: %v", err)
		}
		for _, u := range approvers {
			if !seen[u.ID] {
				seen[u.ID] = true
				recipients = append(recipients, u)
			}
		}
	}

	admins, err := s.userRepo.FindByRole(model.RoleSystemAdmin)
	if err != nil {
		log.Printf("notification: system admins: %v", err)
	}
	for _, u := range admins {
		if !seen[u.ID] {
			seen[u.ID] = true
			recipients = append(recipients, u)
		}
	}

	return recipients
}

// requestMetadata builds the standard correlation payload for request events.
func requestMetadata(req *model.PurchaseRequest) model.Metadata {
	meta := model.Metadata{
		"request_id":   req.ID.String(),
		"requester_id": req.RequesterID.String(),
		"amount":       req.TotalAmount.String(),
		"submitted_at": time.Now().UTC().Format(time.RFC3339),
	}
	if req.SupplierID != nil {
		meta["supplier_id"] = req.SupplierID.String()
	}
	return meta
}
