package workflow_test

// In-memory collaborators for lifecycle tests. The store keeps copies on
// write and returns copies on read, so assertions always observe persisted
// state rather than the pointer the service mutated.

import (
	"context"
	"errors"
	"fmt"
	"time"

	"jobsearch/board-service/internal/workflow"
)

type memStore struct {
	offers map[string]*workflow.Offer
	apps   map[string]*workflow.Application
	nextID int
}

func newMemStore() *memStore {
	return &memStore{
		offers: make(map[string]*workflow.Offer),
		apps:   make(map[string]*workflow.Application),
	}
}

func (m *memStore) genID() string {
	m.nextID++
	return fmt.Sprintf("id-%d", m.nextID)
}

func copyOffer(o *workflow.Offer) *workflow.Offer {
	c := *o
	return &c
}

func copyApplication(a *workflow.Application) *workflow.Application {
	c := *a
	c.Offer = nil
	return &c
}

// ── workflow.Store: offers ─────────────────────────────────────────────────

func (m *memStore) GetOffer(ctx context.Context, id string) (*workflow.Offer, error) {
	o, ok := m.offers[id]
	if !ok {
		return nil, workflow.ErrNotFound
	}
	return copyOffer(o), nil
}

func (m *memStore) CreateOffer(ctx context.Context, o *workflow.Offer) error {
	o.ID = m.genID()
	m.offers[o.ID] = copyOffer(o)
	return nil
}

func (m *memStore) UpdateOffer(ctx context.Context, o *workflow.Offer) error {
	if _, ok := m.offers[o.ID]; !ok {
		return workflow.ErrNotFound
	}
	m.offers[o.ID] = copyOffer(o)
	return nil
}

func (m *memStore) DeleteOffer(ctx context.Context, id string) error {
	if _, ok := m.offers[id]; !ok {
		return workflow.ErrNotFound
	}
	delete(m.offers, id)
	for appID, a := range m.apps {
		if a.OfferID == id {
			delete(m.apps, appID)
		}
	}
	return nil
}

func (m *memStore) ListOffersByOwner(ctx context.Context, ownerID string) ([]workflow.Offer, error) {
	var out []workflow.Offer
	for _, o := range m.offers {
		if o.OwnerID == ownerID {
			out = append(out, *copyOffer(o))
		}
	}
	return out, nil
}

func (m *memStore) ListDueOffers(ctx context.Context, now time.Time) ([]workflow.Offer, error) {
	var out []workflow.Offer
	for _, o := range m.offers {
		if o.Status == workflow.OfferPublished && o.Deadline.Before(now) {
			out = append(out, *copyOffer(o))
		}
	}
	return out, nil
}

func (m *memStore) MarkOfferExpired(ctx context.Context, id string, now time.Time) (bool, error) {
	o, ok := m.offers[id]
	if !ok || o.Status != workflow.OfferPublished || !o.Deadline.Before(now) {
		return false, nil
	}
	o.Status = workflow.OfferExpired
	return true, nil
}

// ── workflow.Store: applications ───────────────────────────────────────────

func (m *memStore) GetApplication(ctx context.Context, id string) (*workflow.Application, error) {
	a, ok := m.apps[id]
	if !ok {
		return nil, workflow.ErrNotFound
	}
	c := copyApplication(a)
	if o, ok := m.offers[a.OfferID]; ok {
		c.Offer = copyOffer(o)
	}
	return c, nil
}

func (m *memStore) CreateApplication(ctx context.Context, a *workflow.Application) (bool, error) {
	for _, existing := range m.apps {
		if existing.OfferID == a.OfferID && existing.ApplicantID == a.ApplicantID {
			return false, nil
		}
	}
	a.ID = m.genID()
	m.apps[a.ID] = copyApplication(a)
	return true, nil
}

func (m *memStore) UpdateApplication(ctx context.Context, a *workflow.Application) error {
	if _, ok := m.apps[a.ID]; !ok {
		return workflow.ErrNotFound
	}
	m.apps[a.ID] = copyApplication(a)
	return nil
}

func (m *memStore) HasApplied(ctx context.Context, offerID, applicantID string) (bool, error) {
	for _, a := range m.apps {
		if a.OfferID == offerID && a.ApplicantID == applicantID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) ListApplicationsByApplicant(ctx context.Context, applicantID string) ([]workflow.Application, error) {
	var out []workflow.Application
	for _, a := range m.apps {
		if a.ApplicantID == applicantID {
			c := copyApplication(a)
			if o, ok := m.offers[a.OfferID]; ok {
				c.Offer = copyOffer(o)
			}
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *memStore) ListApplicationsForOffer(ctx context.Context, offerID string) ([]workflow.Application, error) {
	var out []workflow.Application
	for _, a := range m.apps {
		if a.OfferID == offerID {
			out = append(out, *copyApplication(a))
		}
	}
	return out, nil
}

// ── workflow.AuditTrail recorder ───────────────────────────────────────────

type auditRecorder struct {
	entries []workflow.AuditEntry
}

func (r *auditRecorder) Append(ctx context.Context, actorID, actionType, entityID, entityType, description string, at time.Time) error {
	r.entries = append(r.entries, workflow.AuditEntry{
		ActorID:     actorID,
		ActionType:  actionType,
		EntityID:    entityID,
		EntityType:  entityType,
		Description: description,
		CreatedAt:   at,
	})
	return nil
}

// ── workflow.Notifier recorder ─────────────────────────────────────────────

type notification struct {
	userID  string
	message string
	linkURL string
}

type notifyRecorder struct {
	sent []notification
	fail bool // when true, every dispatch reports an error
}

func (r *notifyRecorder) CreateNotification(ctx context.Context, userID, message, linkURL string) error {
	if r.fail {
		return errors.New("dispatcher unavailable")
	}
	r.sent = append(r.sent, notification{userID: userID, message: message, linkURL: linkURL})
	return nil
}

// ── Fixture helpers ────────────────────────────────────────────────────────

func newTestService() (*workflow.Service, *memStore, *auditRecorder, *notifyRecorder) {
	st := newMemStore()
	au := &auditRecorder{}
	no := &notifyRecorder{}
	return workflow.NewService(st, au, no), st, au, no
}

func seedOffer(st *memStore, ownerID string, status workflow.OfferStatus, deadline time.Time) *workflow.Offer {
	o := &workflow.Offer{
		Title:    "Backend Developer",
		Company:  "Acme",
		Location: "Warsaw",
		Status:   status,
		OwnerID:  ownerID,
		PostedAt: time.Now().UTC().Add(-24 * time.Hour),
		Deadline: deadline,
	}
	o.ID = st.genID()
	st.offers[o.ID] = o
	return o
}

func seedApplication(st *memStore, offerID, applicantID string, status workflow.ApplicationStatus, lastUpdated *time.Time) *workflow.Application {
	a := &workflow.Application{
		OfferID:           offerID,
		ApplicantID:       applicantID,
		Status:            status,
		AppliedAt:         time.Now().UTC().Add(-time.Hour),
		StatusLastUpdated: lastUpdated,
	}
	a.ID = st.genID()
	st.apps[a.ID] = a
	return a
}
