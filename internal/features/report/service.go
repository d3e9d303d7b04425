package report

import (
	"context"

	"go.uber.org/zap"

	"npo-crm/internal/config"
	"npo-crm/internal/features/catalog"

	common_models "npo-crm/internal/common/models"
)

// ReportService runs ad-hoc report definitions end to end: validate, build
// SQL, execute under the caller's scope, format. Saved report lifecycle
// lives in SavedReportService.
type ReportService interface {
	Fields(entity string) ([]catalog.FieldDefinition, error)
	Generate(ctx context.Context, identity *common_models.Identity, def ReportDefinition) (*ReportResult, error)
	Export(ctx context.Context, identity *common_models.Identity, def ReportDefinition, format string, name string) (*ExportFile, error)
}

type ReportServiceImpl struct {
	Catalog   *catalog.Catalog
	Validator *Validator
	Builder   *Builder
	Runner    QueryRunner
	Config    *config.Config
	Log       *zap.Logger
}

func NewReportService(cat *catalog.Catalog, validator *Validator, builder *Builder, runner QueryRunner, cfg *config.Config, log *zap.Logger) ReportService {
	return &ReportServiceImpl{
		Catalog:   cat,
		Validator: validator,
		Builder:   builder,
		Runner:    runner,
		Config:    cfg,
		Log:       log,
	}
}

func (s *ReportServiceImpl) Fields(entity string) ([]catalog.FieldDefinition, error) {
	return s.Catalog.FieldsForEntity(entity)
}

func (s *ReportServiceImpl) Generate(ctx context.Context, identity *common_models.Identity, def ReportDefinition) (*ReportResult, error) {
	validated, err := s.Validator.Validate(def)
	if err != nil {
		return nil, err
	}

	query, err := s.Builder.Build(validated, callerScope(identity))
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.Config.ReportTimeout)
	defer cancel()

	total, err := s.Runner.Count(ctx, query.CountSQL, query.CountArgs)
	if err != nil {
		return nil, err
	}

	rows, err := s.Runner.Run(ctx, query.SQL, query.Args)
	if err != nil {
		return nil, err
	}

	data, err := FormatRows(validated, rows)
	if err != nil {
		return nil, err
	}

	return &ReportResult{
		Columns: Columns(validated),
		Data:    data,
		Total:   total,
	}, nil
}

// Export renders the full result set, not one page: the validated limit is
// raised to the export ceiling and the count query gates against it first.
// An empty name falls back to the entity name for the download filename.
func (s *ReportServiceImpl) Export(ctx context.Context, identity *common_models.Identity, def ReportDefinition, format string, name string) (*ExportFile, error) {
	target, err := ParseFormat(format)
	if err != nil {
		return nil, err
	}

	validated, err := s.Validator.Validate(def)
	if err != nil {
		return nil, err
	}
	validated.Limit = int(s.Config.ExportMaxRows)
	validated.Offset = 0

	query, err := s.Builder.Build(validated, callerScope(identity))
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.Config.ReportTimeout)
	defer cancel()

	total, err := s.Runner.Count(ctx, query.CountSQL, query.CountArgs)
	if err != nil {
		return nil, err
	}
	if total > s.Config.ExportMaxRows {
		return nil, common_models.NewExportTooLarge(total, s.Config.ExportMaxRows)
	}

	rows, err := s.Runner.Run(ctx, query.SQL, query.Args)
	if err != nil {
		return nil, err
	}

	data, err := FormatRows(validated, rows)
	if err != nil {
		return nil, err
	}

	if name == "" {
		name = validated.Entity.Name
	}
	return ExportRows(validated, data, target, name)
}

func callerScope(identity *common_models.Identity) *common_models.DataScopeFilter {
	if identity == nil {
		return nil
	}
	return identity.Scope
}
