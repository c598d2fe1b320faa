// Package syncer propagates entity mutations to the derived systems: the
// search index and the notification feed. Mutations commit to the store
// first; derived updates run asynchronously with at-least-once semantics, so
// every consumer here must tolerate duplicates. A failed task is logged and
// counted, never retried into the write path of the source mutation.
package syncer

import (
	"context"
	"log"
	"sync"
	"time"

	"sourcing/internal/metrics"
	"sourcing/internal/models"
	"sourcing/internal/notify"
	"sourcing/internal/search"
	"sourcing/internal/store"
)

const taskTimeout = 10 * time.Second

type task struct {
	kind string
	run  func(ctx context.Context) error
}

// Syncer queues synchronization tasks and works them off on a single
// background goroutine, preserving enqueue order per process.
type Syncer struct {
	store    store.Store
	index    search.Index
	notifier *notify.Service

	tasks chan task
	wg    sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

func New(s store.Store, index search.Index, notifier *notify.Service, queueSize int) *Syncer {
	if queueSize <= 0 {
		queueSize = 64
	}
	return &Syncer{
		store:    s,
		index:    index,
		notifier: notifier,
		tasks:    make(chan task, queueSize),
	}
}

// Start launches the worker goroutine.
func (s *Syncer) Start() {
	s.wg.Add(1)
	go s.work()
}

// Close stops accepting tasks, drains the queue, and waits for the worker.
func (s *Syncer) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.tasks)
	s.mu.Unlock()

	s.wg.Wait()
}

func (s *Syncer) work() {
	defer s.wg.Done()
	for t := range s.tasks {
		ctx, cancel := context.WithTimeout(context.Background(), taskTimeout)
		if err := t.run(ctx); err != nil {
			log.Printf("syncer: %s task failed: %v", t.kind, err)
			metrics.SyncTask(t.kind, "error")
		} else {
			metrics.SyncTask(t.kind, "ok")
		}
		cancel()
	}
}

func (s *Syncer) enqueue(kind string, run func(ctx context.Context) error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		log.Printf("syncer: dropped %s task, syncer closed", kind)
		metrics.SyncTask(kind, "dropped")
		return
	}
	s.tasks <- task{kind: kind, run: run}
}

// ProjectMutated reindexes the project and emits the notifications its status
// change implies. before is nil on creation.
func (s *Syncer) ProjectMutated(before *models.Project, after models.Project) {
	s.enqueue("project_index", func(ctx context.Context) error {
		return s.index.Upsert(ctx, search.ProjectsIndex, after.Id, search.NewProjectDoc(after))
	})

	if before != nil && before.Status == after.Status {
		return
	}

	switch after.Status {
	case models.ProjectActive:
		s.notifyInvited(after)
	case models.ProjectAwarded:
		s.notifyAwarded(after)
	case models.ProjectCancelled:
		s.notifyCancelled(after)
	}
}

func (s *Syncer) notifyInvited(p models.Project) {
	for _, inv := range p.InvitedVendors {
		vendor := inv.Vendor
		s.enqueue("notify", func(ctx context.Context) error {
			return s.notifier.Notify(ctx, vendor, models.NotifyProjectInvitation,
				notify.InvitationMessage(p), models.NotificationData{ProjectId: p.Id})
		})
	}
}

func (s *Syncer) notifyAwarded(p models.Project) {
	if p.AwardedTo == nil {
		return
	}
	award := *p.AwardedTo
	s.enqueue("notify", func(ctx context.Context) error {
		return s.notifier.Notify(ctx, award.Vendor, models.NotifyProjectAwarded,
			notify.ProjectAwardedMessage(p),
			models.NotificationData{ProjectId: p.Id, ProposalId: award.Proposal})
	})
}

func (s *Syncer) notifyCancelled(p models.Project) {
	s.enqueue("notify", func(ctx context.Context) error {
		proposals, err := s.store.Proposals(ctx, store.ProposalFilter{ProjectId: p.Id})
		if err != nil {
			return err
		}
		recipients := make([]string, 0, len(proposals))
		for _, prop := range proposals {
			if prop.Status.Terminal() {
				continue
			}
			recipients = append(recipients, prop.Vendor)
		}
		return s.notifier.NotifyMultiple(ctx, recipients, models.NotifyProjectCancelled,
			notify.ProjectCancelledMessage(p), models.NotificationData{ProjectId: p.Id})
	})
}

// VendorInvited notifies a single vendor invited after publication. Bulk
// invitation notifications for the publish transition go through
// ProjectMutated instead.
func (s *Syncer) VendorInvited(p models.Project, vendor string) {
	s.enqueue("notify", func(ctx context.Context) error {
		return s.notifier.Notify(ctx, vendor, models.NotifyProjectInvitation,
			notify.InvitationMessage(p), models.NotificationData{ProjectId: p.Id})
	})
}

// ProposalMutated emits the notifications a proposal status change implies.
// before is nil on creation. Proposals are not indexed.
func (s *Syncer) ProposalMutated(project models.Project, before *models.Proposal, after models.Proposal) {
	if before != nil && before.Status == after.Status {
		return
	}

	switch after.Status {
	case models.ProposalSubmitted:
		s.enqueue("notify", func(ctx context.Context) error {
			return s.notifier.Notify(ctx, project.Buyer, models.NotifyProposalReceived,
				notify.ProposalReceivedMessage(project),
				models.NotificationData{ProjectId: project.Id, ProposalId: after.Id, SenderId: after.Vendor})
		})
	case models.ProposalAccepted:
		s.enqueue("notify", func(ctx context.Context) error {
			return s.notifier.Notify(ctx, after.Vendor, models.NotifyProposalAccepted,
				notify.ProposalAcceptedMessage(project),
				models.NotificationData{ProjectId: project.Id, ProposalId: after.Id})
		})
	case models.ProposalRejected:
		s.enqueue("notify", func(ctx context.Context) error {
			return s.notifier.Notify(ctx, after.Vendor, models.NotifyProposalRejected,
				notify.ProposalRejectedMessage(project),
				models.NotificationData{ProjectId: project.Id, ProposalId: after.Id})
		})
	}
}

// ProposalMessage notifies the counterparty about a new thread message.
func (s *Syncer) ProposalMessage(project models.Project, proposal models.Proposal, sender, recipient string) {
	s.enqueue("notify", func(ctx context.Context) error {
		return s.notifier.Notify(ctx, recipient, models.NotifyMessageReceived,
			notify.MessageReceivedMessage(project),
			models.NotificationData{ProjectId: project.Id, ProposalId: proposal.Id, SenderId: sender})
	})
}

// VendorMutated reindexes the supplier projection. Non-vendor accounts are
// ignored.
func (s *Syncer) VendorMutated(u models.User) {
	doc := search.NewSupplierDoc(u)
	if doc == nil {
		return
	}
	s.enqueue("supplier_index", func(ctx context.Context) error {
		return s.index.Upsert(ctx, search.SuppliersIndex, u.Id, doc)
	})
}

// ProjectExpiring warns the buyer that the proposal window closes soon.
func (s *Syncer) ProjectExpiring(p models.Project) {
	s.enqueue("notify", func(ctx context.Context) error {
		return s.notifier.Notify(ctx, p.Buyer, models.NotifyProjectExpiring,
			notify.ProjectExpiringMessage(p), models.NotificationData{ProjectId: p.Id})
	})
}
