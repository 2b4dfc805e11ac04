package invite

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryInviteRepository implements InviteRepository using in-memory storage
type InMemoryInviteRepository struct {
	mu      sync.RWMutex
	invites map[uuid.UUID]Invitation
}

// NewInMemoryInviteRepository creates a new in-memory invite repository
func NewInMemoryInviteRepository() *InMemoryInviteRepository {
	return &InMemoryInviteRepository{
		invites: make(map[uuid.UUID]Invitation),
	}
}

// CreateInvite creates a new unused invitation
func (r *InMemoryInviteRepository) CreateInvite(ctx context.Context, params CreateInviteParams) (Invitation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, inv := range r.invites {
		if strings.EqualFold(inv.Email, params.Email) && !inv.Used {
			return Invitation{}, ErrActiveInvite
		}
	}

	inv := Invitation{
		InviteID:  uuid.New(),
		Email:     strings.ToLower(params.Email),
		FirstName: params.FirstName,
		LastName:  params.LastName,
		CompanyID: params.CompanyID,
		Token:     params.Token,
		InvitedAt: time.Now().UTC(),
		ExpiresAt: params.ExpiresAt,
	}
	r.invites[inv.InviteID] = inv
	return inv, nil
}

// GetActiveInviteByEmail returns the invitation with used=false for the email
func (r *InMemoryInviteRepository) GetActiveInviteByEmail(ctx context.Context, email string) (Invitation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, inv := range r.invites {
		if strings.EqualFold(inv.Email, email) && !inv.Used {
			return inv, nil
		}
	}
	return Invitation{}, ErrInviteNotFound
}

// GetLatestInviteByEmail returns the most recent invitation for the email
func (r *InMemoryInviteRepository) GetLatestInviteByEmail(ctx context.Context, email string) (Invitation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest Invitation
	found := false
	for _, inv := range r.invites {
		if !strings.EqualFold(inv.Email, email) {
			continue
		}
		if !found || inv.InvitedAt.After(latest.InvitedAt) {
			latest = inv
			found = true
		}
	}
	if !found {
		return Invitation{}, ErrInviteNotFound
	}
	return latest, nil
}

// ListInvitesByCompany lists a company's invitations, newest first
func (r *InMemoryInviteRepository) ListInvitesByCompany(ctx context.Context, companyID int32) ([]Invitation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var invites []Invitation
	for _, inv := range r.invites {
		if inv.CompanyID == companyID {
			invites = append(invites, inv)
		}
	}
	sort.Slice(invites, func(i, j int) bool {
		return invites[i].InvitedAt.After(invites[j].InvitedAt)
	})
	return invites, nil
}

// ConsumeInviteByEmail flips used false->true for the email's active invitation
func (r *InMemoryInviteRepository) ConsumeInviteByEmail(ctx context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, inv := range r.invites {
		if strings.EqualFold(inv.Email, email) && !inv.Used {
			inv.Used = true
			r.invites[id] = inv
			return true, nil
		}
	}
	return false, nil
}

// DeleteInvite removes an invitation
func (r *InMemoryInviteRepository) DeleteInvite(ctx context.Context, inviteID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.invites[inviteID]; !ok {
		return ErrInviteNotFound
	}
	delete(r.invites, inviteID)
	return nil
}
