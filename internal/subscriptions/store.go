// Package subscriptions provides persistence for the subscriber lifecycle:
// pending intake, confirmation tokens, and the pending→confirmed transition.
package subscriptions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/ignite/newsletter/internal/domain"
)

// ErrConflict is returned when an email address already has a record.
// Maps to 409 at the HTTP edge.
var ErrConflict = errors.New("email already subscribed")

// uniqueViolation is the Postgres error code for a unique constraint hit.
const uniqueViolation = "23505"

// Store provides database operations for subscribers and their
// confirmation tokens. All operations run against the shared pool; the
// pool's lifecycle is owned by the caller.
type Store struct {
	db *sql.DB
}

// NewStore creates a subscriber store.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// querier is satisfied by *sql.DB and *sql.Tx so the same statements can
// run standalone or inside a transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// InsertPending stores a new subscriber with status pending_confirmation
// and returns the generated id. A duplicate email yields ErrConflict.
func (s *Store) InsertPending(ctx context.Context, sub domain.NewSubscriber) (uuid.UUID, error) {
	return insertPending(ctx, s.db, sub)
}

func insertPending(ctx context.Context, q querier, sub domain.NewSubscriber) (uuid.UUID, error) {
	id := uuid.New()
	query := `INSERT INTO subscriptions (id, email, name, subscribed_at, status)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := q.ExecContext(ctx, query, id, sub.Email.String(), sub.Name.String(),
		time.Now().UTC(), domain.SubscriberPendingConfirmation)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return uuid.Nil, ErrConflict
		}
		return uuid.Nil, fmt.Errorf("inserting pending subscriber: %w", err)
	}
	return id, nil
}

// StoreToken persists a token-to-subscriber mapping. Tokens are write-once;
// a subscriber may hold several tokens from retried signups, but each token
// maps to exactly one subscriber.
func (s *Store) StoreToken(ctx context.Context, subscriberID uuid.UUID, token string) error {
	return storeToken(ctx, s.db, subscriberID, token)
}

func storeToken(ctx context.Context, q querier, subscriberID uuid.UUID, token string) error {
	query := `INSERT INTO subscription_tokens (subscription_token, subscriber_id, created_at)
		VALUES ($1, $2, $3)`

	if _, err := q.ExecContext(ctx, query, token, subscriberID, time.Now().UTC()); err != nil {
		return fmt.Errorf("storing confirmation token: %w", err)
	}
	return nil
}

// CreatePendingWithToken runs intake persistence as one transaction:
// insert the pending subscriber, then its confirmation token. Either both
// rows exist afterwards or neither does, so a token failure cannot orphan
// a pending subscriber.
func (s *Store) CreatePendingWithToken(ctx context.Context, sub domain.NewSubscriber, token string) (uuid.UUID, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return uuid.Nil, fmt.Errorf("beginning intake transaction: %w", err)
	}
	defer tx.Rollback()

	id, err := insertPending(ctx, tx, sub)
	if err != nil {
		return uuid.Nil, err
	}
	if err := storeToken(ctx, tx, id, token); err != nil {
		return uuid.Nil, err
	}
	if err := tx.Commit(); err != nil {
		return uuid.Nil, fmt.Errorf("committing intake transaction: %w", err)
	}
	return id, nil
}

// FindSubscriberIDByToken resolves a confirmation token by exact match.
// An unknown token is not an error: found is false and err is nil.
func (s *Store) FindSubscriberIDByToken(ctx context.Context, token string) (uuid.UUID, bool, error) {
	query := `SELECT subscriber_id FROM subscription_tokens WHERE subscription_token = $1`

	var id uuid.UUID
	err := s.db.QueryRowContext(ctx, query, token).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("looking up confirmation token: %w", err)
	}
	return id, true, nil
}

// MarkConfirmed transitions a subscriber to confirmed. Confirming an
// already-confirmed subscriber is a no-op success, so repeated clicks on
// the same link stay 200.
func (s *Store) MarkConfirmed(ctx context.Context, subscriberID uuid.UUID) error {
	query := `UPDATE subscriptions SET status = $1 WHERE id = $2`

	if _, err := s.db.ExecContext(ctx, query, domain.SubscriberConfirmed, subscriberID); err != nil {
		return fmt.Errorf("marking subscriber confirmed: %w", err)
	}
	return nil
}

// GetSubscriber retrieves a subscriber by id. Unknown ids return nil, nil.
func (s *Store) GetSubscriber(ctx context.Context, subscriberID uuid.UUID) (*domain.Subscriber, error) {
	query := `SELECT id, email, name, subscribed_at, status
		FROM subscriptions WHERE id = $1`

	sub := &domain.Subscriber{}
	err := s.db.QueryRowContext(ctx, query, subscriberID).Scan(
		&sub.ID, &sub.Email, &sub.Name, &sub.SubscribedAt, &sub.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading subscriber: %w", err)
	}
	return sub, nil
}
