// Package provisioning creates the identity, invitation and profile for a
// newly invited user as a single logical operation.
//
// All preconditions (requester is an admin of the target company, email is
// unused, no active invitation exists) are checked before any write. The
// writes then run as a saga: identity first, invitation second, profile
// last, with compensating deletes applied in reverse order when a later
// step fails. A failed compensation is surfaced as a CompensationError so
// operators know manual repair is needed.
//
// The invitation token doubles as the identity's initial password. It is
// returned to the caller only when the service is configured to reveal it.
package provisioning
