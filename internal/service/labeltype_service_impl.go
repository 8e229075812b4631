package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/ordertree/internal/db"
	"github.com/alexanderramin/ordertree/internal/domain"
	"github.com/alexanderramin/ordertree/internal/repository"
	"github.com/alexanderramin/ordertree/internal/validation"
)

const labelTypeCodePrefix = "LBL"

type labelTypeService struct {
	labelTypes repository.LabelTypeRepo
	uow        db.UnitOfWork
	codes      CodeSettings
	observer   UseCaseObserver
}

func NewLabelTypeService(labelTypes repository.LabelTypeRepo, uow db.UnitOfWork, codes CodeSettings, observers ...UseCaseObserver) LabelTypeService {
	return &labelTypeService{
		labelTypes: labelTypes,
		uow:        uow,
		codes:      codes,
		observer:   useCaseObserverOrNoop(observers),
	}
}

func (s *labelTypeService) List(ctx context.Context) ([]*domain.LabelType, error) {
	return s.labelTypes.GetAll(ctx)
}

func (s *labelTypeService) Get(ctx context.Context, ref string) (*domain.LabelType, error) {
	lt, err := s.labelTypes.Find(ctx, ref)
	if errors.Is(err, domain.ErrNotFound) {
		return s.labelTypes.FindByName(ctx, ref)
	}
	return lt, err
}

// FindLabel looks a label up by type name and label name.
func (s *labelTypeService) FindLabel(ctx context.Context, typeName, labelName string) (*domain.Label, error) {
	lt, err := s.labelTypes.FindByName(ctx, typeName)
	if err != nil {
		return nil, err
	}
	l := lt.FindLabel(labelName)
	if l == nil {
		return nil, fmt.Errorf("label %q of type %q: %w", labelName, lt.Name, domain.ErrNotFound)
	}
	return l, nil
}

// InitCreate starts a new label type. Its code is generated on save when
// label codes are configured to be generated.
func (s *labelTypeService) InitCreate(name string) *domain.LabelType {
	lt := domain.NewLabelType("", strings.TrimSpace(name))
	lt.CodeAutogenerated = s.codes.GenerateCodeForLabel()
	return lt
}

func (s *labelTypeService) InitEdit(ctx context.Context, id string) (*domain.LabelType, error) {
	return s.labelTypes.Find(ctx, id)
}

func (s *labelTypeService) AddLabel(lt *domain.LabelType, name string) (*domain.Label, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &domain.ValidationError{Entity: lt, Field: "label name", Msg: "cannot be empty"}
	}
	return lt.AddLabel(name), nil
}

func (s *labelTypeService) RemoveLabel(lt *domain.LabelType, l *domain.Label) {
	lt.RemoveLabel(l)
}

func (s *labelTypeService) LabelNameIsUnique(lt *domain.LabelType, name string) bool {
	return lt.LabelNameIsUnique(name)
}

// ConfirmSave checks type-name uniqueness against the store, then the label
// set, and reports every problem at once. Codes are generated only once the
// label type is known to be valid.
func (s *labelTypeService) ConfirmSave(ctx context.Context, lt *domain.LabelType) (err error) {
	fields := map[string]any{"label_type": lt.Name, "labels": len(lt.Labels)}
	defer observe(ctx, s.observer, "save-label-type", time.Now(), fields, &err)

	var errs domain.ValidationErrors
	unique, err := s.labelTypes.IsUnique(ctx, lt)
	if err != nil {
		return err
	}
	if !unique {
		errs = append(errs, &domain.DuplicateError{Field: "label type name", Value: lt.Name, Entities: []any{lt}})
	}
	if verr := validation.ValidateLabelType(lt); verr != nil {
		var list domain.ValidationErrors
		if errors.As(verr, &list) {
			errs = append(errs, list...)
		} else {
			errs = append(errs, verr)
		}
	}
	if err = errs.ErrOrNil(); err != nil {
		return err
	}

	id, version, created, updated := lt.ID, lt.Version, lt.CreatedAt, lt.UpdatedAt
	var fresh []*domain.Label
	for _, l := range lt.Labels {
		if l.ID == "" {
			fresh = append(fresh, l)
		}
	}
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		repo := repository.NewSQLiteLabelTypeRepo(tx)
		if lt.CodeAutogenerated {
			if err := s.generateCodes(ctx, repo, lt); err != nil {
				return err
			}
		}
		return repo.Save(ctx, lt)
	})
	if err != nil {
		// Nothing was committed.
		lt.ID, lt.Version, lt.CreatedAt, lt.UpdatedAt = id, version, created, updated
		for _, l := range fresh {
			l.ID = ""
		}
	}
	return err
}

func (s *labelTypeService) generateCodes(ctx context.Context, repo repository.LabelTypeRepo, lt *domain.LabelType) error {
	width := s.codes.CodeDigitWidth()
	if strings.TrimSpace(lt.Code) == "" {
		all, err := repo.GetAll(ctx)
		if err != nil {
			return err
		}
		existing := make([]string, 0, len(all))
		for _, other := range all {
			existing = append(existing, other.Code)
		}
		lt.Code = validation.NextCode(labelTypeCodePrefix+validation.ChildSeparator, existing, width)
	}
	validation.GenerateLabelCodes(lt, width)
	return nil
}

// ConfirmDelete removes the label type with its labels; elements lose the
// deleted labels.
func (s *labelTypeService) ConfirmDelete(ctx context.Context, lt *domain.LabelType) (err error) {
	defer observe(ctx, s.observer, "delete-label-type", time.Now(), map[string]any{"label_type": lt.Name}, &err)
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return repository.NewSQLiteLabelTypeRepo(tx).Remove(ctx, lt.ID)
	})
}
