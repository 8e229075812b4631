package validation

import (
	"strings"

	"github.com/alexanderramin/ordertree/internal/domain"
)

// CheckLabelsUnique scans every pair of labels in lt and reports one
// DuplicateError per pair sharing a name.
func CheckLabelsUnique(lt *domain.LabelType) []*domain.DuplicateError {
	var out []*domain.DuplicateError
	for i := 0; i < len(lt.Labels); i++ {
		for j := i + 1; j < len(lt.Labels); j++ {
			if lt.Labels[i].Name == lt.Labels[j].Name {
				out = append(out, &domain.DuplicateError{
					Field:    "label name",
					Value:    lt.Labels[j].Name,
					Entities: []any{lt.Labels[i], lt.Labels[j]},
				})
			}
		}
	}
	return out
}

// CheckLabelTypeNameUnique reports a DuplicateError when another label type
// in others carries lt's name.
func CheckLabelTypeNameUnique(lt *domain.LabelType, others []*domain.LabelType) error {
	holders := []any{lt}
	for _, o := range others {
		if o == lt || (o.ID != "" && o.ID == lt.ID) {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(o.Name), strings.TrimSpace(lt.Name)) {
			holders = append(holders, o)
		}
	}
	if len(holders) > 1 {
		return &domain.DuplicateError{Field: "label type name", Value: lt.Name, Entities: holders}
	}
	return nil
}

// ValidateLabelType aggregates every problem of lt: missing names, bad codes
// and duplicate label names. Codes are only checked when they are not going
// to be generated.
func ValidateLabelType(lt *domain.LabelType) error {
	var errs domain.ValidationErrors
	if strings.TrimSpace(lt.Name) == "" {
		errs = append(errs, &domain.ValidationError{Entity: lt, Field: "name", Msg: "label type name cannot be empty"})
	}
	if !lt.CodeAutogenerated && !IsFormatCodeValid(lt.Code) {
		errs = append(errs, &domain.ValidationError{Entity: lt, Field: "code", Value: lt.Code,
			Msg: "cannot be empty or contain the character \"" + Separator + "\""})
	}
	for _, l := range lt.Labels {
		if strings.TrimSpace(l.Name) == "" {
			errs = append(errs, &domain.ValidationError{Entity: l, Field: "label name", Msg: "cannot be empty"})
		}
	}
	for _, d := range CheckLabelsUnique(lt) {
		errs = append(errs, d)
	}
	return errs.ErrOrNil()
}
