package user

import (
	"context"

	"go.uber.org/zap"

	common_models "npo-crm/internal/common/models"
)

// ScopeService derives a caller's DataScopeFilter from their role and stored
// grant row. It backs both the per-request scope middleware and the
// owner-scoped runs the report feature performs for public tokens and
// schedules.
type ScopeService struct {
	Repo UserRepository
	Log  *zap.Logger
}

func NewScopeService(repo UserRepository, log *zap.Logger) *ScopeService {
	return &ScopeService{Repo: repo, Log: log}
}

// Resolve maps (user, role) to a row filter:
//
//   - admins are unrestricted (nil filter)
//   - a stored grant row is authoritative: NULL columns leave their dimension
//     open, non-NULL columns restrict to exactly the stored values (an empty
//     array grants nothing), created_by_only pins rows to the user's own
//   - a user with no grant row sees only records they created
func (s *ScopeService) Resolve(ctx context.Context, userID int64, role string) (*common_models.DataScopeFilter, error) {
	if role == common_models.RoleAdmin {
		return nil, nil
	}

	grant, err := s.Repo.GetScope(ctx, userID)
	if err != nil {
		return nil, err
	}
	if grant == nil {
		return &common_models.DataScopeFilter{CreatedByUserIDs: []int64{userID}}, nil
	}

	scope := &common_models.DataScopeFilter{
		AccountIDs:   grant.AccountIDs,
		ContactIDs:   grant.ContactIDs,
		AccountTypes: grant.AccountTypes,
	}
	if grant.CreatedByOnly {
		scope.CreatedByUserIDs = []int64{userID}
	}
	if scope.IsZero() {
		// An all-NULL grant row is a deliberate "see everything" grant:
		// the user keeps a non-admin role but reads unrestricted.
		return nil, nil
	}
	return scope, nil
}

// ResolveOwner builds the full identity a background or public-token run
// executes under. The result never widens what the owner could see
// interactively.
func (s *ScopeService) ResolveOwner(ctx context.Context, userID int64) (*common_models.Identity, error) {
	u, err := s.Repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	scope, err := s.Resolve(ctx, u.ID, u.Role)
	if err != nil {
		return nil, err
	}
	return &common_models.Identity{UserID: u.ID, Role: u.Role, Scope: scope}, nil
}
