package router

import (
	"net/http"

	"sourcing/internal/controller"
	"sourcing/internal/metrics"
)

func NewRouter(c *controller.Controller) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/ping", c.Ping)

	mux.HandleFunc("POST /api/projects", c.NewProject)
	mux.HandleFunc("GET /api/projects", c.GetProjects)
	mux.HandleFunc("GET /api/projects/{projectId}", c.GetProject)
	mux.HandleFunc("PUT /api/projects/{projectId}/publish", c.PublishProject)
	mux.HandleFunc("PUT /api/projects/{projectId}/cancel", c.CancelProject)
	mux.HandleFunc("PUT /api/projects/{projectId}/start", c.StartProject)
	mux.HandleFunc("PUT /api/projects/{projectId}/complete", c.CompleteProject)
	mux.HandleFunc("PUT /api/projects/{projectId}/award/{proposalId}", c.AwardProject)
	mux.HandleFunc("POST /api/projects/{projectId}/invitations", c.InviteVendor)
	mux.HandleFunc("PUT /api/projects/{projectId}/invitations/respond", c.RespondInvitation)
	mux.HandleFunc("GET /api/projects/{projectId}/proposals/top", c.TopProposals)

	mux.HandleFunc("POST /api/proposals", c.NewProposal)
	mux.HandleFunc("GET /api/proposals", c.GetProposals)
	mux.HandleFunc("GET /api/proposals/{proposalId}", c.GetProposal)
	mux.HandleFunc("PATCH /api/proposals/{proposalId}", c.EditProposal)
	mux.HandleFunc("PUT /api/proposals/{proposalId}/submit", c.SubmitProposal)
	mux.HandleFunc("PUT /api/proposals/{proposalId}/withdraw", c.WithdrawProposal)
	mux.HandleFunc("PUT /api/proposals/{proposalId}/status", c.ReviewProposal)
	mux.HandleFunc("PUT /api/proposals/{proposalId}/evaluation", c.EvaluateProposal)
	mux.HandleFunc("POST /api/proposals/{proposalId}/messages", c.AddProposalMessage)

	mux.HandleFunc("POST /api/products", c.NewProduct)
	mux.HandleFunc("GET /api/products/{productId}", c.GetProduct)
	mux.HandleFunc("GET /api/products/{productId}/quote", c.QuoteProduct)
	mux.HandleFunc("PUT /api/products/{productId}/inventory", c.UpdateInventory)

	mux.HandleFunc("POST /api/users", c.NewUser)
	mux.HandleFunc("GET /api/notifications", c.GetNotifications)
	mux.HandleFunc("PUT /api/notifications/{notificationId}/read", c.MarkNotificationRead)

	mux.Handle("GET /metrics", metrics.Handler())

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("page not found"))
	})

	return mux
}
