package models

import (
	"fmt"
	"time"
)

type ProjectStatus string

const (
	ProjectDraft      ProjectStatus = "draft"
	ProjectActive     ProjectStatus = "active"
	ProjectInReview   ProjectStatus = "in-review"
	ProjectAwarded    ProjectStatus = "awarded"
	ProjectInProgress ProjectStatus = "in-progress"
	ProjectCompleted  ProjectStatus = "completed"
	ProjectCancelled  ProjectStatus = "cancelled"
	ProjectExpired    ProjectStatus = "expired"
)

func ValidProjectStatus(s ProjectStatus) bool {
	switch s {
	case ProjectDraft, ProjectActive, ProjectInReview, ProjectAwarded,
		ProjectInProgress, ProjectCompleted, ProjectCancelled, ProjectExpired:
		return true
	default:
		return false
	}
}

// Terminal reports whether the status ends the project lifecycle.
// Projects are never deleted, they are archived via a terminal status.
func (s ProjectStatus) Terminal() bool {
	return s == ProjectCompleted || s == ProjectCancelled || s == ProjectExpired
}

type Visibility string

const (
	VisibilityPublic     Visibility = "public"
	VisibilityInviteOnly Visibility = "invite-only"
	VisibilityPrivate    Visibility = "private"
)

func ValidVisibility(v Visibility) bool {
	switch v {
	case VisibilityPublic, VisibilityInviteOnly, VisibilityPrivate:
		return true
	default:
		return false
	}
}

type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationDeclined InvitationStatus = "declined"
)

type Invitation struct {
	Vendor    string           `json:"vendor"`
	InvitedAt time.Time        `json:"invitedAt"`
	Status    InvitationStatus `json:"status"`
}

type Quantity struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

type DeliveryWindow struct {
	Location      string     `json:"location"`
	PreferredDate *time.Time `json:"preferredDate,omitempty"`
	LatestDate    *time.Time `json:"latestDate,omitempty"`
}

type Budget struct {
	Min       *float64 `json:"min,omitempty"`
	Max       *float64 `json:"max,omitempty"`
	Currency  string   `json:"currency"`
	PriceType string   `json:"priceType,omitempty"`
}

// HistoryEntry is one element of the append-only audit trail. Entries are
// never edited in place once appended.
type HistoryEntry struct {
	Action  string         `json:"action"`
	Actor   string         `json:"actor,omitempty"`
	At      time.Time      `json:"at"`
	Changes map[string]any `json:"changes,omitempty"`
}

type Award struct {
	Vendor        string    `json:"vendor"`
	Proposal      string    `json:"proposal"`
	AwardedAt     time.Time `json:"awardedAt"`
	ContractValue float64   `json:"contractValue"`
}

type Analytics struct {
	ViewCount     int      `json:"viewCount"`
	UniqueViewers []string `json:"uniqueViewers,omitempty"`
}

type Project struct {
	Id             string         `json:"id"`
	Buyer          string         `json:"buyer"`
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	Category       string         `json:"category"`
	Quantity       Quantity       `json:"quantity"`
	Delivery       DeliveryWindow `json:"delivery"`
	Budget         Budget         `json:"budget"`
	Visibility     Visibility     `json:"visibility"`
	Status         ProjectStatus  `json:"status"`
	Deadline       time.Time      `json:"deadline"`
	PublishedAt    *time.Time     `json:"publishedAt,omitempty"`
	CompletedAt    *time.Time     `json:"completedAt,omitempty"`
	InvitedVendors []Invitation   `json:"invitedVendors,omitempty"`
	Proposals      []string       `json:"proposals,omitempty"`
	ProposalCount  int            `json:"proposalCount"`
	AwardedTo      *Award         `json:"awardedTo,omitempty"`
	Analytics      Analytics      `json:"analytics"`
	Tags           []string       `json:"tags,omitempty"`
	History        []HistoryEntry `json:"history,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"-"`
}

// Validate checks creation-time invariants. The deadline must be strictly in
// the future and the budget range must be ordered when both bounds are set.
func (p Project) Validate(now time.Time) error {
	if p.Title == "" {
		return fmt.Errorf("%w: project title is required", ErrValidation)
	}
	if p.Description == "" {
		return fmt.Errorf("%w: project description is required", ErrValidation)
	}
	if p.Buyer == "" {
		return fmt.Errorf("%w: project buyer is required", ErrValidation)
	}
	if !p.Deadline.After(now) {
		return fmt.Errorf("%w: deadline must be in the future", ErrValidation)
	}
	if p.Budget.Min != nil && p.Budget.Max != nil && *p.Budget.Max < *p.Budget.Min {
		return fmt.Errorf("%w: maximum budget must not be below minimum", ErrValidation)
	}
	if p.Visibility != "" && !ValidVisibility(p.Visibility) {
		return fmt.Errorf("%w: unknown visibility %q", ErrValidation, p.Visibility)
	}
	if p.Quantity.Value < 0 {
		return fmt.Errorf("%w: quantity must not be negative", ErrValidation)
	}
	return nil
}
