package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/ordertree/internal/domain"
	"github.com/alexanderramin/ordertree/internal/repository"
)

type workReportService struct {
	reports repository.WorkReportRepo
}

func NewWorkReportService(reports repository.WorkReportRepo) WorkReportService {
	return &workReportService{reports: reports}
}

func (s *workReportService) Report(ctx context.Context, e *domain.OrderElement, date time.Time, hours int) (*repository.WorkReportLine, error) {
	if e.IsNew() {
		return nil, fmt.Errorf("order element %q must be saved before reporting work on it", e.Name)
	}
	if hours <= 0 {
		return nil, &domain.ValidationError{Entity: e, Field: "hours", Value: hours, Msg: "must be positive"}
	}
	line := &repository.WorkReportLine{ElementID: e.ID, Date: date.UTC().Truncate(24 * time.Hour), Hours: hours}
	if err := s.reports.AddLine(ctx, line); err != nil {
		return nil, err
	}
	return line, nil
}

func (s *workReportService) Lines(ctx context.Context, e *domain.OrderElement) ([]*repository.WorkReportLine, error) {
	if e.IsNew() {
		return nil, nil
	}
	return s.reports.ListByElement(ctx, e.ID)
}
