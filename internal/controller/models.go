package controller

import (
	"encoding/json"
	"fmt"
	"time"

	"sourcing/internal/catalog"
	"sourcing/internal/models"
)

// New project request

type NewProjectReq struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Category    string                `json:"category"`
	Quantity    models.Quantity       `json:"quantity"`
	Delivery    models.DeliveryWindow `json:"delivery"`
	Budget      models.Budget         `json:"budget"`
	Visibility  models.Visibility     `json:"visibility"`
	Deadline    time.Time             `json:"deadline"`
	Tags        []string              `json:"tags"`
}

func ParseNewProjectReq(data []byte) (*NewProjectReq, error) {
	req := &NewProjectReq{}

	err := json.Unmarshal(data, req)
	if err != nil {
		return nil, err
	}

	if req.Visibility != "" && !models.ValidVisibility(req.Visibility) {
		return nil, fmt.Errorf("invalid visibility supplied: %s, should be one of: %s, %s, %s",
			req.Visibility, models.VisibilityPublic, models.VisibilityInviteOnly, models.VisibilityPrivate)
	}
	if err = checkLengthLimit(req.Title, "title", 200); err != nil {
		return nil, err
	}
	if err = checkLengthLimit(req.Description, "description", 5000); err != nil {
		return nil, err
	}

	return req, nil
}

// Invite vendor request

type InviteVendorReq struct {
	Vendor string `json:"vendor"`
}

func ParseInviteVendorReq(data []byte) (*InviteVendorReq, error) {
	req := &InviteVendorReq{}

	err := json.Unmarshal(data, req)
	if err != nil {
		return nil, err
	}
	if len(req.Vendor) == 0 {
		return nil, fmt.Errorf("empty vendor supplied")
	}

	return req, nil
}

// New proposal request

type NewProposalReq struct {
	ProjectId   string                  `json:"projectId"`
	Pricing     models.ProposalPricing  `json:"pricing"`
	Delivery    models.ProposalDelivery `json:"delivery"`
	CoverLetter string                  `json:"coverLetter"`
}

func ParseNewProposalReq(data []byte) (*NewProposalReq, error) {
	req := &NewProposalReq{}

	err := json.Unmarshal(data, req)
	if err != nil {
		return nil, err
	}

	if len(req.ProjectId) == 0 {
		return nil, fmt.Errorf("empty projectId supplied")
	}
	if err = checkLengthLimit(req.CoverLetter, "coverLetter", 5000); err != nil {
		return nil, err
	}

	return req, nil
}

// Edit proposal request

type EditProposalReq struct {
	Pricing     *models.ProposalPricing  `json:"pricing"`
	Delivery    *models.ProposalDelivery `json:"delivery"`
	CoverLetter *string                  `json:"coverLetter"`
	Reason      string                   `json:"reason"`
}

func ParseEditProposalReq(data []byte) (*EditProposalReq, error) {
	req := &EditProposalReq{}

	err := json.Unmarshal(data, req)
	if err != nil {
		return nil, err
	}

	if req.Pricing == nil && req.Delivery == nil && req.CoverLetter == nil {
		return nil, fmt.Errorf("no editable fields supplied")
	}
	if req.CoverLetter != nil {
		if err = checkLengthLimit(*req.CoverLetter, "coverLetter", 5000); err != nil {
			return nil, err
		}
	}

	return req, nil
}

// Evaluation request

type EvaluationReq struct {
	Scores models.Scores `json:"scores"`
	Notes  string        `json:"notes"`
}

func ParseEvaluationReq(data []byte) (*EvaluationReq, error) {
	req := &EvaluationReq{}

	err := json.Unmarshal(data, req)
	if err != nil {
		return nil, err
	}
	if err = checkLengthLimit(req.Notes, "notes", 2000); err != nil {
		return nil, err
	}

	return req, nil
}

// Message request

type MessageReq struct {
	Text string `json:"text"`
}

func ParseMessageReq(data []byte) (*MessageReq, error) {
	req := &MessageReq{}

	err := json.Unmarshal(data, req)
	if err != nil {
		return nil, err
	}

	if len(req.Text) == 0 {
		return nil, fmt.Errorf("empty message text supplied")
	}
	if err = checkLengthLimit(req.Text, "text", 2000); err != nil {
		return nil, err
	}

	return req, nil
}

// New product request

type NewProductReq struct {
	Name         string                `json:"name"`
	Category     string                `json:"category"`
	Pricing      models.ProductPricing `json:"pricing"`
	Availability models.Availability   `json:"availability"`
}

func ParseNewProductReq(data []byte) (*NewProductReq, error) {
	req := &NewProductReq{}

	err := json.Unmarshal(data, req)
	if err != nil {
		return nil, err
	}
	if err = checkLengthLimit(req.Name, "name", 200); err != nil {
		return nil, err
	}

	return req, nil
}

// Inventory update request

type InventoryReq struct {
	Quantity  float64             `json:"quantity"`
	Operation catalog.InventoryOp `json:"operation"`
}

func ParseInventoryReq(data []byte) (*InventoryReq, error) {
	req := &InventoryReq{}

	err := json.Unmarshal(data, req)
	if err != nil {
		return nil, err
	}

	if req.Operation != catalog.OpAdd && req.Operation != catalog.OpSubtract {
		return nil, fmt.Errorf("invalid operation supplied: %s, should be one of: %s, %s",
			req.Operation, catalog.OpAdd, catalog.OpSubtract)
	}

	return req, nil
}

// New user request

type NewUserReq struct {
	Id          string      `json:"id"`
	CompanyName string      `json:"companyName"`
	Email       string      `json:"email"`
	Country     string      `json:"country"`
	Role        models.Role `json:"role"`
	IsVerified  bool        `json:"isVerified"`
}

func ParseNewUserReq(data []byte) (*NewUserReq, error) {
	req := &NewUserReq{}

	err := json.Unmarshal(data, req)
	if err != nil {
		return nil, err
	}

	if !models.ValidRole(req.Role) {
		return nil, fmt.Errorf("invalid role supplied: %s, should be one of: %s, %s",
			req.Role, models.RoleBuyer, models.RoleVendor)
	}
	if err = checkLengthLimit(req.CompanyName, "companyName", 200); err != nil {
		return nil, err
	}

	return req, nil
}

// Service

func checkLengthLimit(str, fieldName string, limit int) error {
	if len(str) > limit {
		return fmt.Errorf("field '%s' exceeds length limit: %d / %d", fieldName, len(str), limit)
	}
	return nil
}
