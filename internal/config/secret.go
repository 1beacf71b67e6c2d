package config

// Secret wraps a sensitive configuration value (database password, provider
// authorization token) so it cannot leak through logging or serialization.
// Every textual rendering is redacted; the raw value is available only
// through Reveal at the point of use.
type Secret struct {
	value string
}

// NewSecret wraps a raw sensitive value.
func NewSecret(value string) Secret { return Secret{value: value} }

// Reveal returns the raw secret. Call it only where the value is actually
// consumed (connection string, auth header).
func (s Secret) Reveal() string { return s.value }

// IsZero reports whether no value was configured.
func (s Secret) IsZero() bool { return s.value == "" }

func (s Secret) String() string { return "[REDACTED]" }

// GoString keeps %#v output redacted as well.
func (s Secret) GoString() string { return "config.Secret{value:\"[REDACTED]\"}" }

// MarshalJSON redacts the value if a Settings struct is ever serialized.
func (s Secret) MarshalJSON() ([]byte, error) { return []byte(`"[REDACTED]"`), nil }

// UnmarshalYAML reads the secret from a YAML scalar.
func (s *Secret) UnmarshalYAML(unmarshal func(any) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	s.value = raw
	return nil
}

// MarshalYAML redacts the value on the way out.
func (s Secret) MarshalYAML() (any, error) { return "[REDACTED]", nil }
