package models

import "time"

// NotificationType is a closed set. Unknown types are rejected at the
// boundary rather than silently accepted.
type NotificationType string

const (
	NotifyProjectInvitation NotificationType = "project_invitation"
	NotifyProposalReceived  NotificationType = "proposal_received"
	NotifyProposalAccepted  NotificationType = "proposal_accepted"
	NotifyProposalRejected  NotificationType = "proposal_rejected"
	NotifyProjectAwarded    NotificationType = "project_awarded"
	NotifyProjectCancelled  NotificationType = "project_cancelled"
	NotifyProjectExpiring   NotificationType = "project_expiring"
	NotifyMessageReceived   NotificationType = "message_received"
)

func ValidNotificationType(t NotificationType) bool {
	switch t {
	case NotifyProjectInvitation, NotifyProposalReceived, NotifyProposalAccepted,
		NotifyProposalRejected, NotifyProjectAwarded, NotifyProjectCancelled,
		NotifyProjectExpiring, NotifyMessageReceived:
		return true
	default:
		return false
	}
}

type NotificationStatus string

const (
	NotificationUnread NotificationStatus = "unread"
	NotificationRead   NotificationStatus = "read"
)

type NotificationData struct {
	ProjectId  string `json:"projectId,omitempty"`
	ProposalId string `json:"proposalId,omitempty"`
	SenderId   string `json:"senderId,omitempty"`
}

type Notification struct {
	Id        string             `json:"id"`
	Recipient string             `json:"recipient"`
	Type      NotificationType   `json:"type"`
	Title     string             `json:"title"`
	Message   string             `json:"message"`
	Data      NotificationData   `json:"data"`
	Status    NotificationStatus `json:"status"`
	ReadAt    *time.Time         `json:"readAt,omitempty"`
	CreatedAt time.Time          `json:"createdAt"`
}
