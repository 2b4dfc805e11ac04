// Package invite manages the invitation records that gate enrollment.
//
// An invitation is pending until its token is consumed or its expiry
// passes; at most one unused invitation may exist per email. The
// service layer answers the pre-login validity check and the admin
// listing with computed statuses.
package invite
