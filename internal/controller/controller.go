package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"sourcing/internal/catalog"
	"sourcing/internal/models"
	"sourcing/internal/service"
	"sourcing/internal/store"
)

type Service interface {
	CreateProject(ctx context.Context, id service.Identity, p models.Project) (models.Project, error)
	GetProject(ctx context.Context, id service.Identity, projectId string) (models.Project, error)
	ListProjects(ctx context.Context, id service.Identity, f store.ProjectFilter) ([]models.Project, error)
	PublishProject(ctx context.Context, id service.Identity, projectId string) (models.Project, error)
	AwardProject(ctx context.Context, id service.Identity, projectId, proposalId string) (models.Project, error)
	CancelProject(ctx context.Context, id service.Identity, projectId string) (models.Project, error)
	StartProject(ctx context.Context, id service.Identity, projectId string) (models.Project, error)
	CompleteProject(ctx context.Context, id service.Identity, projectId string) (models.Project, error)
	InviteVendor(ctx context.Context, id service.Identity, projectId, vendorId string) (models.Project, error)
	RespondInvitation(ctx context.Context, id service.Identity, projectId string, accept bool) (models.Project, error)

	CreateProposal(ctx context.Context, id service.Identity, prop models.Proposal) (models.Proposal, error)
	GetProposal(ctx context.Context, id service.Identity, proposalId string) (models.Proposal, error)
	ListProposals(ctx context.Context, id service.Identity, f store.ProposalFilter) ([]models.Proposal, error)
	SubmitProposal(ctx context.Context, id service.Identity, proposalId string) (models.Proposal, error)
	WithdrawProposal(ctx context.Context, id service.Identity, proposalId string) (models.Proposal, error)
	EditProposal(ctx context.Context, id service.Identity, proposalId string, edit service.ProposalEdit) (models.Proposal, error)
	ReviewProposal(ctx context.Context, id service.Identity, proposalId string, to models.ProposalStatus) (models.Proposal, error)
	EvaluateProposal(ctx context.Context, id service.Identity, proposalId string, scores models.Scores, notes string) (models.Proposal, error)
	TopProposals(ctx context.Context, id service.Identity, projectId string, limit int) ([]models.Proposal, error)
	AddProposalMessage(ctx context.Context, id service.Identity, proposalId, text string) (models.Proposal, error)

	CreateProduct(ctx context.Context, id service.Identity, p models.Product) (models.Product, error)
	GetProduct(ctx context.Context, productId string) (models.Product, error)
	QuoteProductPrice(ctx context.Context, productId string, quantity float64) (service.Quote, error)
	UpdateInventory(ctx context.Context, id service.Identity, productId string, quantity float64, op catalog.InventoryOp) (models.Product, error)

	CreateUser(ctx context.Context, u models.User) (models.User, error)
	Notifications(ctx context.Context, id service.Identity, unreadOnly bool) ([]models.Notification, error)
	MarkNotificationRead(ctx context.Context, id service.Identity, notificationId string) error
}

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// GET /api/ping
func (c *Controller) Ping(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "ok")
}

//// Projects

// POST /api/projects
func (c *Controller) NewProject(w http.ResponseWriter, r *http.Request) {
	id, ok := c.identity(w, r)
	if !ok {
		return
	}

	data, err := c.readBody(r.Body)
	if err != nil {
		c.errorResponse(w, http.StatusInternalServerError, "could not read request body")
		return
	}
	req, err := ParseNewProjectReq(data)
	if err != nil {
		c.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	project, err := c.service.CreateProject(r.Context(), id, models.Project{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Quantity:    req.Quantity,
		Delivery:    req.Delivery,
		Budget:      req.Budget,
		Visibility:  req.Visibility,
		Deadline:    req.Deadline,
		Tags:        req.Tags,
	})
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, project)
}

// GET /api/projects
func (c *Controller) GetProjects(w http.ResponseWriter, r *http.Request) {
	id, ok := c.identity(w, r)
	if !ok {
		return
	}
	query := r.URL.Query()

	limit, err := c.getQueryInt(query, "limit")
	if err != nil {
		c.errorResponse(w, http.StatusBadRequest, "invalid value of 'limit' query parameter: "+query.Get("limit"))
		return
	}
	offset, err := c.getQueryInt(query, "offset")
	if err != nil {
		c.errorResponse(w, http.StatusBadRequest, "invalid value of 'offset' query parameter: "+query.Get("offset"))
		return
	}

	f := store.ProjectFilter{
		Buyer:    query.Get("buyer"),
		Category: query.Get("category"),
		Limit:    limit,
		Offset:   offset,
	}
	if str := query.Get("status"); str != "" {
		status := models.ProjectStatus(str)
		if !models.ValidProjectStatus(status) {
			c.errorResponse(w, http.StatusBadRequest, "invalid project status supplied: "+str)
			return
		}
		f.Status = status
	}

	projects, err := c.service.ListProjects(r.Context(), id, f)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, projects)
}

// GET /api/projects/{projectId}
func (c *Controller) GetProject(w http.ResponseWriter, r *http.Request) {
	id, ok := c.identity(w, r)
	if !ok {
		return
	}
	projectId := r.PathValue("projectId")
	if len(projectId) == 0 {
		c.errorResponse(w, http.StatusBadRequest, "empty projectId supplied")
		return
	}

	project, err := c.service.GetProject(r.Context(), id, projectId)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, project)
}

// PUT /api/projects/{projectId}/publish
func (c *Controller) PublishProject(w http.ResponseWriter, r *http.Request) {
	c.projectTransition(w, r, c.service.PublishProject)
}

// PUT /api/projects/{projectId}/cancel
func (c *Controller) CancelProject(w http.ResponseWriter, r *http.Request) {
	c.projectTransition(w, r, c.service.CancelProject)
}

// PUT /api/projects/{projectId}/start
func (c *Controller) StartProject(w http.ResponseWriter, r *http.Request) {
	c.projectTransition(w, r, c.service.StartProject)
}

// PUT /api/projects/{projectId}/complete
func (c *Controller) CompleteProject(w http.ResponseWriter, r *http.Request) {
	c.projectTransition(w, r, c.service.CompleteProject)
}

func (c *Controller) projectTransition(w http.ResponseWriter, r *http.Request, op func(context.Context, service.Identity, string) (models.Project, error)) {
	id, ok := c.identity(w, r)
	if !ok {
		return
	}
	projectId := r.PathValue("projectId")
	if len(projectId) == 0 {
		c.errorResponse(w, http.StatusBadRequest, "empty projectId supplied")
		return
	}

	project, err := op(r.Context(), id, projectId)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, project)
}

// PUT /api/projects/{projectId}/award/{proposalId}
func (c *Controller) AwardProject(w http.ResponseWriter, r *http.Request) {
	id, ok := c.identity(w, r)
	if !ok {
		return
	}
	projectId := r.PathValue("projectId")
	if len(projectId) == 0 {
		c.errorResponse(w, http.StatusBadRequest, "empty projectId supplied")
		return
	}
	proposalId := r.PathValue("proposalId")
	if len(proposalId) == 0 {
		c.errorResponse(w, http.StatusBadRequest, "empty proposalId supplied")
		return
	}

	project, err := c.service.AwardProject(r.Context(), id, projectId, proposalId)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, project)
}

// POST /api/projects/{projectId}/invitations
func (c *Controller) InviteVendor(w http.ResponseWriter, r *http.Request) {
	id, ok := c.identity(w, r)
	if !ok {
		return
	}
	projectId := r.PathValue("projectId")
	if len(projectId) == 0 {
		c.errorResponse(w, http.StatusBadRequest, "empty projectId supplied")
		return
	}

	data, err := c.readBody(r.Body)
	if err != nil {
		c.errorResponse(w, http.StatusInternalServerError, "could not read request body")
		return
	}
	req, err := ParseInviteVendorReq(data)
	if err != nil {
		c.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	project, err := c.service.InviteVendor(r.Context(), id, projectId, req.Vendor)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, project)
}

// PUT /api/projects/{projectId}/invitations/respond
func (c *Controller) RespondInvitation(w http.ResponseWriter, r *http.Request) {
	id, ok := c.identity(w, r)
	if !ok {
		return
	}
	projectId := r.PathValue("projectId")
	if len(projectId) == 0 {
		c.errorResponse(w, http.StatusBadRequest, "empty projectId supplied")
		return
	}

	accept := r.URL.Query().Get("accept")
	if accept != "true" && accept != "false" {
		c.errorResponse(w, http.StatusBadRequest, "query parameter 'accept' must be true or false")
		return
	}

	project, err := c.service.RespondInvitation(r.Context(), id, projectId, accept == "true")
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, project)
}

// GET /api/projects/{projectId}/proposals/top
func (c *Controller) TopProposals(w http.ResponseWriter, r *http.Request) {
	id, ok := c.identity(w, r)
	if !ok {
		return
	}
	projectId := r.PathValue("projectId")
	if len(projectId) == 0 {
		c.errorResponse(w, http.StatusBadRequest, "empty projectId supplied")
		return
	}
	limit, err := c.getQueryInt(r.URL.Query(), "limit")
	if err != nil {
		c.errorResponse(w, http.StatusBadRequest, "invalid value of 'limit' query parameter: "+r.URL.Query().Get("limit"))
		return
	}

	proposals, err := c.service.TopProposals(r.Context(), id, projectId, limit)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, proposals)
}

//// Proposals

// POST /api/proposals
func (c *Controller) NewProposal(w http.ResponseWriter, r *http.Request) {
	id, ok := c.identity(w, r)
	if !ok {
		return
	}

	data, err := c.readBody(r.Body)
	if err != nil {
		c.errorResponse(w, http.StatusInternalServerError, "could not read request body")
		return
	}
	req, err := ParseNewProposalReq(data)
	if err != nil {
		c.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	proposal, err := c.service.CreateProposal(r.Context(), id, models.Proposal{
		ProjectId:   req.ProjectId,
		Pricing:     req.Pricing,
		Delivery:    req.Delivery,
		CoverLetter: req.CoverLetter,
	})
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, proposal)
}

// GET /api/proposals
func (c *Controller) GetProposals(w http.ResponseWriter, r *http.Request) {
	id, ok := c.identity(w, r)
	if !ok {
		return
	}
	query := r.URL.Query()

	limit, err := c.getQueryInt(query, "limit")
	if err != nil {
		c.errorResponse(w, http.StatusBadRequest, "invalid value of 'limit' query parameter: "+query.Get("limit"))
		return
	}
	offset, err := c.getQueryInt(query, "offset")
	if err != nil {
		c.errorResponse(w, http.StatusBadRequest, "invalid value of 'offset' query parameter: "+query.Get("offset"))
		return
	}

	proposals, err := c.service.ListProposals(r.Context(), id, store.ProposalFilter{
		ProjectId: query.Get("projectId"),
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, proposals)
}

// GET /api/proposals/{proposalId}
func (c *Controller) GetProposal(w http.ResponseWriter, r *http.Request) {
	c.proposalTransition(w, r, c.service.GetProposal)
}

// PUT /api/proposals/{proposalId}/submit
func (c *Controller) SubmitProposal(w http.ResponseWriter, r *http.Request) {
	c.proposalTransition(w, r, c.service.SubmitProposal)
}

// PUT /api/proposals/{proposalId}/withdraw
func (c *Controller) WithdrawProposal(w http.ResponseWriter, r *http.Request) {
	c.proposalTransition(w, r, c.service.WithdrawProposal)
}

func (c *Controller) proposalTransition(w http.ResponseWriter, r *http.Request, op func(context.Context, service.Identity, string) (models.Proposal, error)) {
	id, ok := c.identity(w, r)
	if !ok {
		return
	}
	proposalId := r.PathValue("proposalId")
	if len(proposalId) == 0 {
		c.errorResponse(w, http.StatusBadRequest, "empty proposalId supplied")
		return
	}

	proposal, err := op(r.Context(), id, proposalId)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, proposal)
}

// PATCH /api/proposals/{proposalId}
func (c *Controller) EditProposal(w http.ResponseWriter, r *http.Request) {
	id, ok := c.identity(w, r)
	if !ok {
		return
	}
	proposalId := r.PathValue("proposalId")
	if len(proposalId) == 0 {
		c.errorResponse(w, http.StatusBadRequest, "empty proposalId supplied")
		return
	}

	data, err := c.readBody(r.Body)
	if err != nil {
		c.errorResponse(w, http.StatusInternalServerError, "could not read request body")
		return
	}
	req, err := ParseEditProposalReq(data)
	if err != nil {
		c.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	proposal, err := c.service.EditProposal(r.Context(), id, proposalId, service.ProposalEdit{
		Pricing:     req.Pricing,
		Delivery:    req.Delivery,
		CoverLetter: req.CoverLetter,
		Reason:      req.Reason,
	})
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, proposal)
}

// PUT /api/proposals/{proposalId}/status
func (c *Controller) ReviewProposal(w http.ResponseWriter, r *http.Request) {
	id, ok := c.identity(w, r)
	if !ok {
		return
	}
	proposalId := r.PathValue("proposalId")
	if len(proposalId) == 0 {
		c.errorResponse(w, http.StatusBadRequest, "empty proposalId supplied")
		return
	}

	status := models.ProposalStatus(r.URL.Query().Get("status"))
	if !models.ValidProposalStatus(status) {
		c.errorResponse(w, http.StatusBadRequest, "empty or invalid status supplied")
		return
	}

	proposal, err := c.service.ReviewProposal(r.Context(), id, proposalId, status)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, proposal)
}

// PUT /api/proposals/{proposalId}/evaluation
func (c *Controller) EvaluateProposal(w http.ResponseWriter, r *http.Request) {
	id, ok := c.identity(w, r)
	if !ok {
		return
	}
	proposalId := r.PathValue("proposalId")
	if len(proposalId) == 0 {
		c.errorResponse(w, http.StatusBadRequest, "empty proposalId supplied")
		return
	}

	data, err := c.readBody(r.Body)
	if err != nil {
		c.errorResponse(w, http.StatusInternalServerError, "could not read request body")
		return
	}
	req, err := ParseEvaluationReq(data)
	if err != nil {
		c.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	proposal, err := c.service.EvaluateProposal(r.Context(), id, proposalId, req.Scores, req.Notes)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, proposal)
}

// POST /api/proposals/{proposalId}/messages
func (c *Controller) AddProposalMessage(w http.ResponseWriter, r *http.Request) {
	id, ok := c.identity(w, r)
	if !ok {
		return
	}
	proposalId := r.PathValue("proposalId")
	if len(proposalId) == 0 {
		c.errorResponse(w, http.StatusBadRequest, "empty proposalId supplied")
		return
	}

	data, err := c.readBody(r.Body)
	if err != nil {
		c.errorResponse(w, http.StatusInternalServerError, "could not read request body")
		return
	}
	req, err := ParseMessageReq(data)
	if err != nil {
		c.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	proposal, err := c.service.AddProposalMessage(r.Context(), id, proposalId, req.Text)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, proposal)
}

//// Products

// POST /api/products
func (c *Controller) NewProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := c.identity(w, r)
	if !ok {
		return
	}

	data, err := c.readBody(r.Body)
	if err != nil {
		c.errorResponse(w, http.StatusInternalServerError, "could not read request body")
		return
	}
	req, err := ParseNewProductReq(data)
	if err != nil {
		c.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	product, err := c.service.CreateProduct(r.Context(), id, models.Product{
		Name:         req.Name,
		Category:     req.Category,
		Pricing:      req.Pricing,
		Availability: req.Availability,
	})
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, product)
}

// GET /api/products/{productId}
func (c *Controller) GetProduct(w http.ResponseWriter, r *http.Request) {
	productId := r.PathValue("productId")
	if len(productId) == 0 {
		c.errorResponse(w, http.StatusBadRequest, "empty productId supplied")
		return
	}

	product, err := c.service.GetProduct(r.Context(), productId)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, product)
}

// GET /api/products/{productId}/quote
func (c *Controller) QuoteProduct(w http.ResponseWriter, r *http.Request) {
	productId := r.PathValue("productId")
	if len(productId) == 0 {
		c.errorResponse(w, http.StatusBadRequest, "empty productId supplied")
		return
	}

	quantityStr := r.URL.Query().Get("quantity")
	quantity, err := strconv.ParseFloat(quantityStr, 64)
	if err != nil {
		c.errorResponse(w, http.StatusBadRequest, "invalid value of 'quantity' query parameter: "+quantityStr)
		return
	}

	quote, err := c.service.QuoteProductPrice(r.Context(), productId, quantity)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, quote)
}

// PUT /api/products/{productId}/inventory
func (c *Controller) UpdateInventory(w http.ResponseWriter, r *http.Request) {
	id, ok := c.identity(w, r)
	if !ok {
		return
	}
	productId := r.PathValue("productId")
	if len(productId) == 0 {
		c.errorResponse(w, http.StatusBadRequest, "empty productId supplied")
		return
	}

	data, err := c.readBody(r.Body)
	if err != nil {
		c.errorResponse(w, http.StatusInternalServerError, "could not read request body")
		return
	}
	req, err := ParseInventoryReq(data)
	if err != nil {
		c.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	product, err := c.service.UpdateInventory(r.Context(), id, productId, req.Quantity, req.Operation)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, product)
}

//// Users and notifications

// POST /api/users
func (c *Controller) NewUser(w http.ResponseWriter, r *http.Request) {
	data, err := c.readBody(r.Body)
	if err != nil {
		c.errorResponse(w, http.StatusInternalServerError, "could not read request body")
		return
	}
	req, err := ParseNewUserReq(data)
	if err != nil {
		c.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := c.service.CreateUser(r.Context(), models.User{
		Id:          req.Id,
		CompanyName: req.CompanyName,
		Email:       req.Email,
		Country:     req.Country,
		Role:        req.Role,
		IsVerified:  req.IsVerified,
	})
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, user)
}

// GET /api/notifications
func (c *Controller) GetNotifications(w http.ResponseWriter, r *http.Request) {
	id, ok := c.identity(w, r)
	if !ok {
		return
	}
	unreadOnly := r.URL.Query().Get("unread") == "true"

	notifications, err := c.service.Notifications(r.Context(), id, unreadOnly)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, notifications)
}

// PUT /api/notifications/{notificationId}/read
func (c *Controller) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	id, ok := c.identity(w, r)
	if !ok {
		return
	}
	notificationId := r.PathValue("notificationId")
	if len(notificationId) == 0 {
		c.errorResponse(w, http.StatusBadRequest, "empty notificationId supplied")
		return
	}

	if err := c.service.MarkNotificationRead(r.Context(), id, notificationId); err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "ok")
}

// Service

type ErrorResponse struct {
	Reason string `json:"reason"`
}

// identity resolves the acting user from the X-User-Id and X-User-Role
// headers. Authentication itself is out of scope; the headers are trusted.
func (c *Controller) identity(w http.ResponseWriter, r *http.Request) (service.Identity, bool) {
	userId := r.Header.Get("X-User-Id")
	if len(userId) == 0 {
		c.errorResponse(w, http.StatusUnauthorized, "missing X-User-Id header")
		return service.Identity{}, false
	}
	role := models.Role(r.Header.Get("X-User-Role"))
	if !models.ValidRole(role) {
		c.errorResponse(w, http.StatusUnauthorized, "missing or invalid X-User-Role header")
		return service.Identity{}, false
	}
	return service.Identity{UserId: userId, Role: role}, true
}

func (c *Controller) getQueryInt(query url.Values, key string) (int, error) {
	strs, ok := query[key]
	if ok && len(strs) > 0 {
		return strconv.Atoi(strs[0])
	}
	return 0, nil
}

func (c *Controller) errorResponse(w http.ResponseWriter, status int, text string) {
	w.WriteHeader(status)

	data, err := json.Marshal(ErrorResponse{Reason: text})
	if err != nil {
		log.Printf("controller.Controller.errorResponse: %s", err)
		return
	}

	_, err = w.Write(data)
	if err != nil {
		log.Printf("controller.Controller.errorResponse: %s", err)
		return
	}
}

func (c *Controller) serviceErrorResponse(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		c.errorResponse(w, http.StatusNotFound, "requested entity does not exist")
	case errors.Is(err, models.ErrPermissionDenied):
		c.errorResponse(w, http.StatusForbidden, "user has no permission for requested action")
	case errors.Is(err, models.ErrInvalidTransition):
		c.errorResponse(w, http.StatusConflict, "requested state change is not permitted from the current status")
	case errors.Is(err, models.ErrDuplicateProposal):
		c.errorResponse(w, http.StatusConflict, "vendor already holds a proposal for this project")
	case errors.Is(err, models.ErrConflict):
		c.errorResponse(w, http.StatusConflict, "concurrent update detected, retry the request")
	case errors.Is(err, models.ErrValidation):
		c.errorResponse(w, http.StatusBadRequest, err.Error())
	default:
		log.Println("controller:", err)
		c.errorResponse(w, http.StatusInternalServerError, "internal server error")
	}
}

func (c *Controller) marshalResponse(w http.ResponseWriter, data any) {
	d, err := json.Marshal(data)
	if err != nil {
		c.errorResponse(w, http.StatusInternalServerError, "could not marshal response data")
		return
	}

	_, err = w.Write(d)
	if err != nil {
		c.errorResponse(w, http.StatusInternalServerError, "could not write response data")
		return
	}
}

func (c *Controller) readBody(src io.ReadCloser) ([]byte, error) {
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}
	src.Close()
	return data, nil
}
