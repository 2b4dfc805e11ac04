// Package finalize completes a first connection by replacing the
// provisioning secret with a user-chosen password, or by confirming an
// SSO-backed account. Finalization clears the first-connection flag and
// consumes any still-active invitation.
package finalize
