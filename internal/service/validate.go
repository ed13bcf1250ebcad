package service

import (
	"strings"

	"github.com/noah-isme/events-api/internal/dto"
	appErrors "github.com/noah-isme/events-api/pkg/errors"
)

// ValidateEvent enforces presence and shape constraints on a normalized
// record. In create mode every required field must be present and
// non-blank; missing fields are collected and reported together. In update
// mode only fields that are present are checked for shape. All rejections
// are caller-attributable 400s.
func ValidateEvent(rec *dto.NormalizedEvent, mode ValidationMode) error {
	var problems []string

	if mode == ModeCreate {
		var missing []string
		for _, check := range []struct {
			name  string
			value *string
		}{
			{"name", rec.Name},
			{"tagline", rec.Tagline},
			{"description", rec.Description},
			{"moderator", rec.Moderator},
			{"category", rec.Category},
			{"sub_category", rec.SubCategory},
		} {
			if check.value == nil || strings.TrimSpace(*check.value) == "" {
				missing = append(missing, check.name)
			}
		}
		if !rec.Schedule.Set {
			missing = append(missing, "schedule")
		}
		if !rec.RigorRank.Set {
			missing = append(missing, "rigor_rank")
		}
		if len(missing) > 0 {
			problems = append(problems, "missing required fields: "+strings.Join(missing, ", "))
		}
	}

	if rec.UID.Set && !rec.UID.Valid {
		problems = append(problems, "uid must be an integer")
	}
	if rec.RigorRank.Set && !rec.RigorRank.Valid {
		problems = append(problems, "rigor_rank must be an integer")
	}
	if rec.Schedule.Set && !rec.Schedule.Valid {
		problems = append(problems, "schedule must be a valid date/time")
	}

	if len(problems) > 0 {
		return appErrors.Clone(appErrors.ErrValidation, strings.Join(problems, "; "))
	}
	return nil
}
