// Package identity abstracts the authentication backend behind the
// Provider interface. LocalProvider implements it with bcrypt password
// hashes and short-lived JWT sessions; a hosted identity service could
// replace it without touching the callers.
package identity
