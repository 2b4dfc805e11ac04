// Package signin implements the sign-in gate for invited accounts.
//
// Every sign-in walks the same ordered chain: invitation lookup,
// expiry check, credential verification, invitation consumption,
// profile lookup, active check, first-connection check. The first
// failing check determines the single error returned; credential
// failures never reveal whether the email exists.
package signin
