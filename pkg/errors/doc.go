// Package errors provides structured error handling with error codes for invite-idm.
//
// Every service returns *errors.Error values carrying a typed code; handlers
// map the code to an HTTP status with MapErrorCodeToHTTPStatus. Validation and
// authorization failures are detected before any mutation and simply returned;
// once a provisioning sequence has begun, failure paths attempt their defined
// compensation before surfacing the error (see pkg/provisioning).
//
// Basic usage:
//
//	err := errors.New(errors.ErrCodeNotInvited, "no invitation for this email")
//	err := errors.Wrapf(dbErr, errors.ErrCodeInternal, "failed to load profile %s", id)
//
//	if errors.IsCode(err, errors.ErrCodeInvitationExpired) { ... }
package errors
