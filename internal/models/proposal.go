package models

import (
	"fmt"
	"time"
)

type ProposalStatus string

const (
	ProposalDraft               ProposalStatus = "draft"
	ProposalSubmitted           ProposalStatus = "submitted"
	ProposalUnderReview         ProposalStatus = "under-review"
	ProposalClarificationNeeded ProposalStatus = "clarification-needed"
	ProposalRevised             ProposalStatus = "revised"
	ProposalShortlisted         ProposalStatus = "shortlisted"
	ProposalAccepted            ProposalStatus = "accepted"
	ProposalRejected            ProposalStatus = "rejected"
	ProposalWithdrawn           ProposalStatus = "withdrawn"
)

func ValidProposalStatus(s ProposalStatus) bool {
	switch s {
	case ProposalDraft, ProposalSubmitted, ProposalUnderReview, ProposalClarificationNeeded,
		ProposalRevised, ProposalShortlisted, ProposalAccepted, ProposalRejected, ProposalWithdrawn:
		return true
	default:
		return false
	}
}

func (s ProposalStatus) Terminal() bool {
	return s == ProposalAccepted || s == ProposalRejected || s == ProposalWithdrawn
}

// Awardable reports whether a proposal in this status may be accepted or
// rejected by the buyer.
func (s ProposalStatus) Awardable() bool {
	switch s {
	case ProposalSubmitted, ProposalUnderReview, ProposalShortlisted, ProposalClarificationNeeded:
		return true
	default:
		return false
	}
}

type PriceBreakdown struct {
	Product   float64 `json:"product,omitempty"`
	Packaging float64 `json:"packaging,omitempty"`
	Shipping  float64 `json:"shipping,omitempty"`
	Taxes     float64 `json:"taxes,omitempty"`
	Other     float64 `json:"other,omitempty"`
}

type ProposalPricing struct {
	UnitPrice     float64        `json:"unitPrice"`
	TotalPrice    float64        `json:"totalPrice"`
	Currency      string         `json:"currency"`
	Breakdown     PriceBreakdown `json:"breakdown"`
	PriceValidity *time.Time     `json:"priceValidity,omitempty"`
	PaymentTerms  string         `json:"paymentTerms"`
}

type ProposalDelivery struct {
	LeadTimeDays   int    `json:"leadTimeDays"`
	ShippingMethod string `json:"shippingMethod,omitempty"`
	Incoterm       string `json:"incoterm,omitempty"`
}

type Scores struct {
	Price    int `json:"price"`
	Quality  int `json:"quality"`
	Delivery int `json:"delivery"`
	Vendor   int `json:"vendor"`
	Overall  int `json:"overall"`
}

type Evaluation struct {
	Scores      Scores     `json:"scores"`
	Notes       string     `json:"notes,omitempty"`
	EvaluatedBy string     `json:"evaluatedBy,omitempty"`
	EvaluatedAt *time.Time `json:"evaluatedAt,omitempty"`
}

// NegotiationEntry is one element of the append-only, versioned negotiation
// history. Version numbers increase monotonically per proposal.
type NegotiationEntry struct {
	Version   int            `json:"version"`
	Changes   map[string]any `json:"changes,omitempty"`
	ChangedAt time.Time      `json:"changedAt"`
	Reason    string         `json:"reason,omitempty"`
}

type Message struct {
	Sender     string    `json:"sender"`
	SenderRole Role      `json:"senderRole"`
	Text       string    `json:"text"`
	SentAt     time.Time `json:"sentAt"`
}

type Proposal struct {
	Id                 string             `json:"id"`
	ProjectId          string             `json:"projectId"`
	Vendor             string             `json:"vendor"`
	Pricing            ProposalPricing    `json:"pricing"`
	Delivery           ProposalDelivery   `json:"delivery"`
	CoverLetter        string             `json:"coverLetter"`
	Evaluation         Evaluation         `json:"evaluation"`
	NegotiationHistory []NegotiationEntry `json:"negotiationHistory,omitempty"`
	Messages           []Message          `json:"messages,omitempty"`
	Status             ProposalStatus     `json:"status"`
	SubmittedAt        *time.Time         `json:"submittedAt,omitempty"`
	ExpiresAt          *time.Time         `json:"expiresAt,omitempty"`
	CreatedAt          time.Time          `json:"createdAt"`
	UpdatedAt          time.Time          `json:"-"`
}

func (p Proposal) Validate() error {
	if p.ProjectId == "" {
		return fmt.Errorf("%w: proposal must reference a project", ErrValidation)
	}
	if p.Vendor == "" {
		return fmt.Errorf("%w: proposal must reference a vendor", ErrValidation)
	}
	if p.Pricing.UnitPrice < 0 {
		return fmt.Errorf("%w: unit price must not be negative", ErrValidation)
	}
	if p.Pricing.TotalPrice < 0 {
		return fmt.Errorf("%w: total price must not be negative", ErrValidation)
	}
	return nil
}
