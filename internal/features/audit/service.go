package audit

import (
	"context"
	"time"

	common_models "npo-crm/internal/common/models"
)

// UserFinder resolves actor display names for the audit trail. Implemented
// by the user feature's repository.
type UserFinder interface {
	FindNamesByIDs(ctx context.Context, ids []int64) (map[int64]string, error)
}

type AuditService interface {
	LogChange(ctx context.Context, action common_models.AuditAction, entity string, recordID string, changes map[string]common_models.Change) error
	ListLogs(ctx context.Context, filter ListFilter, page, limit int) ([]common_models.AuditLog, int64, error)
}

type AuditServiceImpl struct {
	Repo     AuditRepository
	UserRepo UserFinder
}

func NewAuditService(repo AuditRepository, userRepo UserFinder) AuditService {
	return &AuditServiceImpl{
		Repo:     repo,
		UserRepo: userRepo,
	}
}

func (s *AuditServiceImpl) LogChange(ctx context.Context, action common_models.AuditAction, entity string, recordID string, changes map[string]common_models.Change) error {
	// Actor 0 is reserved for background work
	var actorID int64
	if identity := common_models.IdentityFromContext(ctx); identity != nil {
		actorID = identity.UserID
	}

	entry := common_models.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   entity,
		RecordID: recordID,
		Changes:  changes,
		At:       time.Now(),
	}

	return s.Repo.Create(ctx, entry)
}

func (s *AuditServiceImpl) ListLogs(ctx context.Context, filter ListFilter, page, limit int) ([]common_models.AuditLog, int64, error) {
	p := common_models.NewPagination(page, limit, 100)
	logs, total, err := s.Repo.List(ctx, filter, p)
	if err != nil {
		return nil, 0, err
	}

	actorIDs := make([]int64, 0)
	uniqueIDs := make(map[int64]bool)
	for _, entry := range logs {
		if entry.ActorID != 0 && !uniqueIDs[entry.ActorID] {
			uniqueIDs[entry.ActorID] = true
			actorIDs = append(actorIDs, entry.ActorID)
		}
	}

	names := map[int64]string{}
	if len(actorIDs) > 0 {
		if found, err := s.UserRepo.FindNamesByIDs(ctx, actorIDs); err == nil {
			names = found
		}
	}

	for i, entry := range logs {
		if entry.ActorID == 0 {
			logs[i].ActorName = "System"
		} else if name, ok := names[entry.ActorID]; ok {
			logs[i].ActorName = name
		} else {
			logs[i].ActorName = "Unknown User"
		}
	}

	return logs, total, nil
}
