package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/ignite/newsletter/internal/domain"
	"github.com/ignite/newsletter/internal/pkg/httputil"
	"github.com/ignite/newsletter/internal/pkg/logger"
	"github.com/ignite/newsletter/internal/postmark"
	"github.com/ignite/newsletter/internal/subscriptions"
)

// Handlers holds the collaborators for all HTTP handlers.
type Handlers struct {
	store       *subscriptions.Store
	emailClient *postmark.Client
	baseURL     string
}

// NewHandlers creates the handler set.
func NewHandlers(store *subscriptions.Store, emailClient *postmark.Client, baseURL string) *Handlers {
	return &Handlers{
		store:       store,
		emailClient: emailClient,
		baseURL:     baseURL,
	}
}

// HealthCheck handles GET /health_check.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// Subscribe handles POST /subscriptions: validate the form, persist the
// pending subscriber and a confirmation token in one transaction, then
// send the confirmation email. A send failure leaves the subscriber
// pending with a valid token; only a fresh signup retries delivery.
func (h *Handlers) Subscribe(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httputil.BadRequest(w, "malformed form body")
		return
	}

	newSub, err := domain.ParseNewSubscriber(r.PostFormValue("name"), r.PostFormValue("email"))
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	token, err := subscriptions.GenerateToken()
	if err != nil {
		httputil.InternalError(w, err)
		return
	}

	subscriberID, err := h.store.CreatePendingWithToken(r.Context(), newSub, token)
	if errors.Is(err, subscriptions.ErrConflict) {
		httputil.Conflict(w, "email is already subscribed")
		return
	}
	if err != nil {
		httputil.InternalError(w, err)
		return
	}

	subject, htmlBody, textBody := confirmationEmail(h.baseURL, token)
	if err := h.emailClient.SendConfirmation(r.Context(), newSub.Email, subject, htmlBody, textBody); err != nil {
		// Post-commit failure: the pending row and token stay valid.
		httputil.InternalError(w, err)
		return
	}

	logger.Info("new subscriber pending confirmation",
		"subscriber_id", subscriberID,
		"email", newSub.Email.String(),
	)
	httputil.OK(w)
}

// ConfirmSubscription handles GET /subscriptions/confirm: resolve the
// token and transition the subscriber to confirmed.
func (h *Handlers) ConfirmSubscription(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("subscription_token")
	if token == "" {
		httputil.BadRequest(w, "subscription_token is required")
		return
	}

	subscriberID, found, err := h.store.FindSubscriberIDByToken(r.Context(), token)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	if !found {
		httputil.Unauthorized(w, "unknown subscription token")
		return
	}

	if err := h.store.MarkConfirmed(r.Context(), subscriberID); err != nil {
		httputil.InternalError(w, err)
		return
	}

	logger.Info("subscriber confirmed", "subscriber_id", subscriberID)
	httputil.OK(w)
}

// confirmationEmail builds the subject and bodies for the confirmation
// message, embedding the tokenized link.
func confirmationEmail(baseURL, token string) (subject, htmlBody, textBody string) {
	link := fmt.Sprintf("%s/subscriptions/confirm?subscription_token=%s", baseURL, token)
	subject = "Welcome to our newsletter!"
	htmlBody = fmt.Sprintf(
		"Welcome to our newsletter!<br />Click <a href=\"%s\">here</a> to confirm your subscription.",
		link,
	)
	textBody = fmt.Sprintf(
		"Welcome to our newsletter!\nVisit %s to confirm your subscription.",
		link,
	)
	return subject, htmlBody, textBody
}
