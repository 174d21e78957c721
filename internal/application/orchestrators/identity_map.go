package orchestrators

import (
	"context"
	"log/slog"

	"brigadeportal/internal/domain/member"
)

// IdentityMap resolves DLB member ids to local member ids. It is built fresh
// per sync invocation (never cached across invocations) so membership
// changes take effect immediately.
type IdentityMap struct {
	byExternal map[int64]string
}

// Resolve returns the local member id for a DLB member id.
// POST: (id, true) when mapped, ("", false) otherwise
func (m IdentityMap) Resolve(externalID int64) (string, bool) {
	id, ok := m.byExternal[externalID]
	return id, ok
}

// Len returns the number of mapped members.
func (m IdentityMap) Len() int {
	return len(m.byExternal)
}

// IdentityMapMemberStore defines the member store interface for map building.
type IdentityMapMemberStore interface {
	ListActiveLinked(ctx context.Context, brigadeID string) ([]member.Member, error)
}

// BuildIdentityMapDeps holds dependencies for BuildIdentityMap.
type BuildIdentityMapDeps struct {
	MemberStore IdentityMapMemberStore
}

// BuildIdentityMap builds the DLB-to-local id map from active members with a
// DLB link. The storage layer guarantees one active member per DLB id within
// a brigade; a duplicate here indicates drift and the first mapping wins.
// PRE: brigadeID is non-empty
// POST: Returns a map covering every active linked member
func BuildIdentityMap(ctx context.Context, brigadeID string, deps BuildIdentityMapDeps) (IdentityMap, error) {
	members, err := deps.MemberStore.ListActiveLinked(ctx, brigadeID)
	if err != nil {
		return IdentityMap{}, err
	}
	byExternal := make(map[int64]string, len(members))
	for _, m := range members {
		if _, exists := byExternal[m.DLBMemberID]; exists {
			slog.Warn("identity_map_duplicate_dlb_id", "dlb_member_id", m.DLBMemberID, "member_id", m.ID)
			continue
		}
		byExternal[m.DLBMemberID] = m.ID
	}
	return IdentityMap{byExternal: byExternal}, nil
}
