package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
)

// SubscriberStatus enumerates the states a subscriber can be in.
type SubscriberStatus string

const (
	SubscriberPendingConfirmation SubscriberStatus = "pending_confirmation"
	SubscriberConfirmed           SubscriberStatus = "confirmed"
)

// Subscriber represents a persisted mailing list member.
type Subscriber struct {
	ID           uuid.UUID        `json:"id" db:"id"`
	Email        string           `json:"email" db:"email"`
	Name         string           `json:"name" db:"name"`
	SubscribedAt time.Time        `json:"subscribed_at" db:"subscribed_at"`
	Status       SubscriberStatus `json:"status" db:"status"`
}

// ValidationError reports why a raw input was rejected. It is always
// client-caused and maps to a 400 at the HTTP edge.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// maxNameLength bounds subscriber names. Counted in runes, not bytes, so
// multi-byte names get the full budget.
const maxNameLength = 256

// forbiddenNameChars are rejected anywhere in a subscriber name. They are
// the usual injection suspects for HTML, paths, and quoting contexts.
const forbiddenNameChars = `/()"<>\{}`

// SubscriberName is a validated display name. The zero value is not valid;
// construct through ParseSubscriberName.
type SubscriberName struct {
	value string
}

// ParseSubscriberName validates a raw untrusted name. It fails on
// empty/whitespace-only input, names longer than 256 characters, control
// characters, and the forbidden character set.
func ParseSubscriberName(raw string) (SubscriberName, error) {
	if strings.TrimSpace(raw) == "" {
		return SubscriberName{}, &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if utf8.RuneCountInString(raw) > maxNameLength {
		return SubscriberName{}, &ValidationError{Field: "name", Reason: fmt.Sprintf("must not exceed %d characters", maxNameLength)}
	}
	for _, r := range raw {
		if unicode.IsControl(r) {
			return SubscriberName{}, &ValidationError{Field: "name", Reason: "must not contain control characters"}
		}
		if strings.ContainsRune(forbiddenNameChars, r) {
			return SubscriberName{}, &ValidationError{Field: "name", Reason: fmt.Sprintf("must not contain %q", r)}
		}
	}
	return SubscriberName{value: raw}, nil
}

// String returns the validated name text.
func (n SubscriberName) String() string { return n.value }

// SubscriberEmail is a validated email address. The zero value is not
// valid; construct through ParseSubscriberEmail.
type SubscriberEmail struct {
	value string
}

// ParseSubscriberEmail validates a raw untrusted email address: exactly one
// @, non-empty local part and domain, a dot in the domain, no whitespace,
// and RFC length bounds on both sides.
func ParseSubscriberEmail(raw string) (SubscriberEmail, error) {
	fail := func(reason string) (SubscriberEmail, error) {
		return SubscriberEmail{}, &ValidationError{Field: "email", Reason: reason}
	}

	if raw == "" {
		return fail("must not be empty")
	}
	if len(raw) > 254 {
		return fail("must not exceed 254 characters")
	}
	if strings.ContainsFunc(raw, unicode.IsSpace) {
		return fail("must not contain whitespace")
	}

	parts := strings.Split(raw, "@")
	if len(parts) != 2 {
		return fail("must contain exactly one @")
	}
	local, host := parts[0], parts[1]
	if local == "" || len(local) > 64 {
		return fail("local part must be 1-64 characters")
	}
	if host == "" {
		return fail("domain must not be empty")
	}
	if !strings.Contains(host, ".") {
		return fail("domain must contain a dot")
	}
	if strings.HasPrefix(host, ".") || strings.HasSuffix(host, ".") {
		return fail("domain must not start or end with a dot")
	}
	return SubscriberEmail{value: raw}, nil
}

// String returns the validated address text.
func (e SubscriberEmail) String() string { return e.value }

// NewSubscriber is a validated intake payload. Both fields can only be
// produced by the parse functions above, so holding a NewSubscriber is
// proof the input passed validation.
type NewSubscriber struct {
	Name  SubscriberName
	Email SubscriberEmail
}

// ParseNewSubscriber builds a NewSubscriber from raw form values.
func ParseNewSubscriber(rawName, rawEmail string) (NewSubscriber, error) {
	name, err := ParseSubscriberName(rawName)
	if err != nil {
		return NewSubscriber{}, err
	}
	email, err := ParseSubscriberEmail(rawEmail)
	if err != nil {
		return NewSubscriber{}, err
	}
	return NewSubscriber{Name: name, Email: email}, nil
}
