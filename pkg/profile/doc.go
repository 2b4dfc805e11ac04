// Package profile stores the application-facing view of a user: name,
// company, role, activation and first-connection state. Profiles
// reference an identity by auth id; legacy profiles created before the
// identity store can be backfilled with MigrateProfiles.
package profile
