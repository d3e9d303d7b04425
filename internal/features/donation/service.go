package donation

import (
	"context"
	"strconv"
	"strings"
	"time"

	"npo-crm/internal/features/audit"
	"npo-crm/internal/features/catalog"
	"npo-crm/internal/features/notify"

	common_models "npo-crm/internal/common/models"
)

type DonationService interface {
	Create(ctx context.Context, req DonationRequest) (*Donation, error)
	Get(ctx context.Context, id int64) (*Donation, error)
	List(ctx context.Context, filter ListFilter, page, limit int) ([]Donation, ListTotals, error)
	Update(ctx context.Context, id int64, req DonationRequest) (*Donation, error)
	Delete(ctx context.Context, id int64) error
}

type DonationServiceImpl struct {
	Repo    DonationRepository
	Audit   audit.AuditService
	Hub     *notify.Hub
	MaxPage int
}

func NewDonationService(repo DonationRepository, auditService audit.AuditService, hub *notify.Hub, maxPage int) DonationService {
	return &DonationServiceImpl{Repo: repo, Audit: auditService, Hub: hub, MaxPage: maxPage}
}

func (s *DonationServiceImpl) Create(ctx context.Context, req DonationRequest) (*Donation, error) {
	if err := normalizeRequest(&req); err != nil {
		return nil, err
	}
	identity := common_models.IdentityFromContext(ctx)
	if identity == nil {
		return nil, common_models.NewForbidden("Login required")
	}

	d := &Donation{
		AccountID:    req.AccountID,
		ContactID:    req.ContactID,
		Amount:       req.Amount,
		Fee:          req.Fee,
		Currency:     req.Currency,
		Method:       req.Method,
		Campaign:     strings.TrimSpace(req.Campaign),
		ReceivedAt:   req.ReceivedAt,
		Acknowledged: req.Acknowledged,
		CreatedBy:    identity.UserID,
	}
	if err := s.Repo.Create(ctx, d); err != nil {
		return nil, err
	}

	_ = s.Audit.LogChange(ctx, common_models.AuditActionCreate, "donation", strconv.FormatInt(d.ID, 10), map[string]common_models.Change{
		"donation": {New: d},
	})
	s.Hub.Publish("donation.created", map[string]interface{}{"id": d.ID, "amount": d.Amount})
	return d, nil
}

func (s *DonationServiceImpl) Get(ctx context.Context, id int64) (*Donation, error) {
	return s.Repo.FindByID(ctx, id, callerScope(ctx))
}

func (s *DonationServiceImpl) List(ctx context.Context, filter ListFilter, page, limit int) ([]Donation, ListTotals, error) {
	p := common_models.NewPagination(page, limit, s.MaxPage)
	return s.Repo.List(ctx, filter, callerScope(ctx), p)
}

func (s *DonationServiceImpl) Update(ctx context.Context, id int64, req DonationRequest) (*Donation, error) {
	if err := normalizeRequest(&req); err != nil {
		return nil, err
	}
	before, err := s.Repo.FindByID(ctx, id, callerScope(ctx))
	if err != nil {
		return nil, err
	}

	after := *before
	after.AccountID = req.AccountID
	after.ContactID = req.ContactID
	after.Amount = req.Amount
	after.Fee = req.Fee
	after.Currency = req.Currency
	after.Method = req.Method
	after.Campaign = strings.TrimSpace(req.Campaign)
	after.ReceivedAt = req.ReceivedAt
	after.Acknowledged = req.Acknowledged

	if err := s.Repo.Update(ctx, &after); err != nil {
		return nil, err
	}

	changes := diffDonations(before, &after)
	if len(changes) > 0 {
		_ = s.Audit.LogChange(ctx, common_models.AuditActionUpdate, "donation", strconv.FormatInt(id, 10), changes)
	}
	s.Hub.Publish("donation.updated", map[string]interface{}{"id": id})
	return &after, nil
}

func (s *DonationServiceImpl) Delete(ctx context.Context, id int64) error {
	before, err := s.Repo.FindByID(ctx, id, callerScope(ctx))
	if err != nil {
		return err
	}
	if err := s.Repo.SoftDelete(ctx, id); err != nil {
		return err
	}

	_ = s.Audit.LogChange(ctx, common_models.AuditActionDelete, "donation", strconv.FormatInt(id, 10), map[string]common_models.Change{
		"donation": {Old: before, New: "DELETED"},
	})
	s.Hub.Publish("donation.deleted", map[string]interface{}{"id": id})
	return nil
}

func normalizeRequest(req *DonationRequest) error {
	if req.Amount <= 0 {
		return common_models.NewValidation("Donation amount must be positive")
	}
	if req.Fee < 0 {
		return common_models.NewValidation("Processing fee cannot be negative")
	}
	if req.Currency == "" {
		req.Currency = "USD"
	}
	if req.Method == "" {
		req.Method = "card"
	}
	valid := false
	for _, m := range catalog.DonationMethods {
		if req.Method == m {
			valid = true
			break
		}
	}
	if !valid {
		return common_models.NewValidation("Invalid donation method")
	}
	if req.ReceivedAt.IsZero() {
		req.ReceivedAt = time.Now()
	}
	return nil
}

func diffDonations(before, after *Donation) map[string]common_models.Change {
	changes := map[string]common_models.Change{}
	if !equalID(before.AccountID, after.AccountID) {
		changes["account_id"] = common_models.Change{Old: before.AccountID, New: after.AccountID}
	}
	if !equalID(before.ContactID, after.ContactID) {
		changes["contact_id"] = common_models.Change{Old: before.ContactID, New: after.ContactID}
	}
	if before.Amount != after.Amount {
		changes["amount"] = common_models.Change{Old: before.Amount, New: after.Amount}
	}
	if before.Fee != after.Fee {
		changes["fee"] = common_models.Change{Old: before.Fee, New: after.Fee}
	}
	if before.Currency != after.Currency {
		changes["currency"] = common_models.Change{Old: before.Currency, New: after.Currency}
	}
	if before.Method != after.Method {
		changes["method"] = common_models.Change{Old: before.Method, New: after.Method}
	}
	if before.Campaign != after.Campaign {
		changes["campaign"] = common_models.Change{Old: before.Campaign, New: after.Campaign}
	}
	if !before.ReceivedAt.Equal(after.ReceivedAt) {
		changes["received_at"] = common_models.Change{Old: before.ReceivedAt, New: after.ReceivedAt}
	}
	if before.Acknowledged != after.Acknowledged {
		changes["acknowledged"] = common_models.Change{Old: before.Acknowledged, New: after.Acknowledged}
	}
	return changes
}

func equalID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func callerScope(ctx context.Context) *common_models.DataScopeFilter {
	if identity := common_models.IdentityFromContext(ctx); identity != nil {
		return identity.Scope
	}
	return nil
}
