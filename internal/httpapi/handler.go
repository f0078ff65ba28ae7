// Package httpapi implements the HTTP surface over the workflow gateway.
//
// All routes expect an x-user-id header (and optional comma-separated
// x-user-roles) forwarded by the front gateway after authentication.
//
// Routes:
//
//	POST   /offers                        → submit a new offer
//	GET    /offers/{id}                   → fetch one offer
//	PUT    /offers/{id}                   → edit an offer
//	DELETE /offers/{id}                   → delete an offer
//	POST   /offers/{id}/approve           → moderator: publish
//	POST   /offers/{id}/reject            → moderator: decline
//	POST   /offers/{id}/extend            → revive an expired offer
//	POST   /offers/{id}/apply             → apply for an offer
//	GET    /offers/{id}/applications      → owner/moderator: list applicants
//	GET    /my/offers                     → caller's offers
//	GET    /my/applications               → caller's applications
//	POST   /applications/{id}/status      → employer decision on an application
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"jobsearch/board-service/internal/workflow"
)

// Handler holds the workflow gateway.
type Handler struct {
	gw *workflow.Gateway
}

// NewHandler returns a configured Handler.
func NewHandler(gw *workflow.Gateway) *Handler {
	return &Handler{gw: gw}
}

// RegisterRoutes mounts all board-service routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/offers", h.handleOffers)
	mux.HandleFunc("/offers/", h.handleOfferAction)
	mux.HandleFunc("/my/offers", h.handleMyOffers)
	mux.HandleFunc("/my/applications", h.handleMyApplications)
	mux.HandleFunc("/applications/", h.handleApplicationAction)
}

// ─── Response types ───────────────────────────────────────────────────────────

// offerResponse is the JSON shape returned to clients. statusLabel is the
// human display name, resolved here at the presentation boundary.
type offerResponse struct {
	workflow.Offer
	StatusLabel string `json:"statusLabel"`
}

func toOfferResponse(o *workflow.Offer) offerResponse {
	return offerResponse{Offer: *o, StatusLabel: o.Status.DisplayName()}
}

type applicationResponse struct {
	workflow.Application
	StatusLabel string `json:"statusLabel"`
}

func toApplicationResponse(a *workflow.Application) applicationResponse {
	return applicationResponse{Application: *a, StatusLabel: a.Status.DisplayName()}
}

// ─── Identity ────────────────────────────────────────────────────────────────

// actorFrom builds the workflow Actor from the forwarded identity headers.
func actorFrom(r *http.Request) workflow.Actor {
	actor := workflow.Actor{ID: r.Header.Get("x-user-id")}
	if raw := r.Header.Get("x-user-roles"); raw != "" {
		for _, role := range strings.Split(raw, ",") {
			if role = strings.TrimSpace(role); role != "" {
				actor.Roles = append(actor.Roles, role)
			}
		}
	}
	return actor
}

// ─── Route dispatch ───────────────────────────────────────────────────────────

// handleOffers handles POST /offers.
func (h *Handler) handleOffers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.submitOffer(w, r)
}

// handleOfferAction handles /offers/{id} and /offers/{id}/{action}.
func (h *Handler) handleOfferAction(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")

	switch {
	case len(parts) == 2:
		offerID := parts[1]
		switch r.Method {
		case http.MethodGet:
			h.getOffer(w, r, offerID)
		case http.MethodPut:
			h.editOffer(w, r, offerID)
		case http.MethodDelete:
			h.deleteOffer(w, r, offerID)
		default:
			jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		}

	case len(parts) == 3:
		offerID, action := parts[1], parts[2]
		if action == "applications" {
			if r.Method != http.MethodGet {
				jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
				return
			}
			h.listOfferApplications(w, r, offerID)
			return
		}
		if r.Method != http.MethodPost {
			jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		switch action {
		case "approve":
			h.approveOffer(w, r, offerID)
		case "reject":
			h.rejectOffer(w, r, offerID)
		case "extend":
			h.extendOffer(w, r, offerID)
		case "apply":
			h.applyForOffer(w, r, offerID)
		default:
			jsonError(w, fmt.Sprintf("unknown action %q", action), http.StatusNotFound)
		}

	default:
		jsonError(w, "invalid path", http.StatusNotFound)
	}
}

// handleApplicationAction handles POST /applications/{id}/status.
func (h *Handler) handleApplicationAction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) != 3 || parts[2] != "status" {
		jsonError(w, "invalid path", http.StatusNotFound)
		return
	}
	h.changeApplicationStatus(w, r, parts[1])
}

// ─── Offer handlers ──────────────────────────────────────────────────────────

func (h *Handler) submitOffer(w http.ResponseWriter, r *http.Request) {
	var offer workflow.Offer
	if err := json.NewDecoder(r.Body).Decode(&offer); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	created, err := h.gw.SubmitOffer(r.Context(), actorFrom(r), &offer)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	jsonOK(w, toOfferResponse(created))
}

func (h *Handler) getOffer(w http.ResponseWriter, r *http.Request, offerID string) {
	offer, err := h.gw.GetOffer(r.Context(), offerID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	jsonOK(w, toOfferResponse(offer))
}

func (h *Handler) editOffer(w http.ResponseWriter, r *http.Request, offerID string) {
	var offer workflow.Offer
	if err := json.NewDecoder(r.Body).Decode(&offer); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	offer.ID = offerID

	updated, err := h.gw.EditOffer(r.Context(), actorFrom(r), &offer)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	jsonOK(w, toOfferResponse(updated))
}

func (h *Handler) deleteOffer(w http.ResponseWriter, r *http.Request, offerID string) {
	if err := h.gw.DeleteOffer(r.Context(), actorFrom(r), offerID); err != nil {
		writeDomainError(w, err)
		return
	}
	jsonOK(w, map[string]string{"deleted": offerID})
}

func (h *Handler) approveOffer(w http.ResponseWriter, r *http.Request, offerID string) {
	offer, err := h.gw.ApproveOffer(r.Context(), actorFrom(r), offerID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	jsonOK(w, toOfferResponse(offer))
}

func (h *Handler) rejectOffer(w http.ResponseWriter, r *http.Request, offerID string) {
	offer, err := h.gw.RejectOffer(r.Context(), actorFrom(r), offerID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	jsonOK(w, toOfferResponse(offer))
}

func (h *Handler) extendOffer(w http.ResponseWriter, r *http.Request, offerID string) {
	var body struct {
		Days int `json:"days"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Days == 0 {
		jsonError(w, "body must contain days", http.StatusBadRequest)
		return
	}

	offer, err := h.gw.ExtendOffer(r.Context(), actorFrom(r), offerID, body.Days)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	jsonOK(w, toOfferResponse(offer))
}

func (h *Handler) listOfferApplications(w http.ResponseWriter, r *http.Request, offerID string) {
	apps, err := h.gw.ApplicationsForOffer(r.Context(), actorFrom(r), offerID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]applicationResponse, 0, len(apps))
	for i := range apps {
		out = append(out, toApplicationResponse(&apps[i]))
	}
	jsonOK(w, out)
}

func (h *Handler) handleMyOffers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	offers, err := h.gw.MyOffers(r.Context(), actorFrom(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]offerResponse, 0, len(offers))
	for i := range offers {
		out = append(out, toOfferResponse(&offers[i]))
	}
	jsonOK(w, out)
}

// ─── Application handlers ────────────────────────────────────────────────────

func (h *Handler) applyForOffer(w http.ResponseWriter, r *http.Request, offerID string) {
	applied, err := h.gw.ApplyForOffer(r.Context(), actorFrom(r), offerID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	jsonOK(w, map[string]bool{"applied": applied})
}

func (h *Handler) handleMyApplications(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	apps, err := h.gw.MyApplications(r.Context(), actorFrom(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]applicationResponse, 0, len(apps))
	for i := range apps {
		out = append(out, toApplicationResponse(&apps[i]))
	}
	jsonOK(w, out)
}

func (h *Handler) changeApplicationStatus(w http.ResponseWriter, r *http.Request, appID string) {
	var body struct {
		NewStatus       string  `json:"newStatus"`
		EmployerPhone   *string `json:"employerPhone"`
		RejectionReason *string `json:"rejectionReason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.NewStatus == "" {
		jsonError(w, "body must contain newStatus", http.StatusBadRequest)
		return
	}

	newStatus, err := workflow.ParseApplicationStatus(body.NewStatus)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	app, err := h.gw.ChangeApplicationStatus(r.Context(), actorFrom(r), appID,
		newStatus, body.EmployerPhone, body.RejectionReason)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	jsonOK(w, toApplicationResponse(app))
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// writeDomainError maps workflow errors to HTTP statuses, mirroring how the
// domain taxonomy is defined: cooldown failures carry the remaining minutes
// so clients can render "try again in N minutes".
func writeDomainError(w http.ResponseWriter, err error) {
	var ve *workflow.ValidationError
	var ce *workflow.CooldownError
	switch {
	case errors.As(err, &ve):
		jsonError(w, ve.Msg, http.StatusBadRequest)
	case errors.As(err, &ce):
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"error":             ce.Error(),
			"retryAfterMinutes": ce.MinutesLeft,
		})
	case errors.Is(err, workflow.ErrAuthenticationRequired):
		jsonError(w, "authentication required", http.StatusUnauthorized)
	case errors.Is(err, workflow.ErrPermissionDenied):
		jsonError(w, "not allowed", http.StatusForbidden)
	case errors.Is(err, workflow.ErrNotFound):
		jsonError(w, "not found", http.StatusNotFound)
	case errors.Is(err, workflow.ErrInvalidTransition):
		jsonError(w, "invalid state transition", http.StatusConflict)
	default:
		jsonError(w, "internal server error", http.StatusInternalServerError)
	}
}

func jsonOK(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
