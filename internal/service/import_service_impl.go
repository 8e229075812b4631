package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/ordertree/internal/db"
	"github.com/alexanderramin/ordertree/internal/domain"
	"github.com/alexanderramin/ordertree/internal/importer"
	"github.com/alexanderramin/ordertree/internal/repository"
)

type importService struct {
	orders       repository.OrderRepo
	labelTypes   repository.LabelTypeRepo
	criteria     repository.CriterionRepo
	advanceTypes repository.AdvanceTypeRepo
	uow          db.UnitOfWork
	codes        CodeSettings
	observer     UseCaseObserver
}

func NewImportService(
	orders repository.OrderRepo,
	labelTypes repository.LabelTypeRepo,
	criteria repository.CriterionRepo,
	advanceTypes repository.AdvanceTypeRepo,
	uow db.UnitOfWork,
	codes CodeSettings,
	observers ...UseCaseObserver,
) ImportService {
	return &importService{
		orders:       orders,
		labelTypes:   labelTypes,
		criteria:     criteria,
		advanceTypes: advanceTypes,
		uow:          uow,
		codes:        codes,
		observer:     useCaseObserverOrNoop(observers),
	}
}

func (s *importService) ImportOrder(ctx context.Context, filePath string) (*ImportResult, error) {
	schema, err := importer.LoadImportSchema(filePath)
	if err != nil {
		return nil, fmt.Errorf("loading import file: %w", err)
	}
	return s.importSchema(ctx, schema)
}

func (s *importService) ImportOrderFromSchema(ctx context.Context, schema *importer.ImportSchema) (*ImportResult, error) {
	return s.importSchema(ctx, schema)
}

func (s *importService) importSchema(ctx context.Context, schema *importer.ImportSchema) (result *ImportResult, err error) {
	fields := map[string]any{"order": schema.Order.Name, "elements": len(schema.Elements)}
	defer observe(ctx, s.observer, "import-order", time.Now(), fields, &err)

	if errs := importer.ValidateImportSchema(schema); len(errs) > 0 {
		return nil, formatValidationErrors(errs)
	}

	catalog, err := s.catalog(ctx)
	if err != nil {
		return nil, err
	}
	t, err := importer.Convert(schema, catalog)
	if err != nil {
		return nil, fmt.Errorf("converting import schema: %w", err)
	}

	root := t.Root()
	root.CodeAutogenerated = s.codes.GenerateCodeForOrder()
	session := newEditSession(t, s.orders, s.uow, s.codes, NoopUseCaseObserver{})
	version, err := session.Save(ctx)
	if err != nil {
		return nil, err
	}

	result = &ImportResult{Order: root, Version: version}
	for _, e := range t.Elements() {
		result.ElementCount++
		if e.IsLeaf() {
			result.LineCount++
		}
	}
	fields["code"] = root.Code
	return result, nil
}

func (s *importService) catalog(ctx context.Context) (importer.Catalog, error) {
	labelTypes, err := s.labelTypes.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	criteria, err := s.criteria.List(ctx)
	if err != nil {
		return nil, err
	}
	advanceTypes, err := s.advanceTypes.List(ctx)
	if err != nil {
		return nil, err
	}
	return importer.NewCatalog(labelTypes, criteria, advanceTypes), nil
}

func formatValidationErrors(errs []error) error {
	return fmt.Errorf("import %w", domain.ValidationErrors(errs))
}
