package analytics

import (
	"net/http"
	"strings"
	"time"

	"github.com/angelmondragon/storefront-backend/api/validators"
	internalanalytics "github.com/angelmondragon/storefront-backend/internal/analytics"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

var timeNowUTC = func() time.Time {
	return time.Now().UTC()
}

// resolveRange reads either an explicit from/to day pair or a preset window
// ending today. The "all" preset leaves both ends open.
func resolveRange(r *http.Request, now time.Time) (internalanalytics.SummaryRequest, error) {
	from, err := validators.ParseQueryDate(r, "from")
	if err != nil {
		return internalanalytics.SummaryRequest{}, err
	}
	to, err := validators.ParseQueryDate(r, "to")
	if err != nil {
		return internalanalytics.SummaryRequest{}, err
	}

	if !from.IsZero() || !to.IsZero() {
		if from.IsZero() || to.IsZero() {
			return internalanalytics.SummaryRequest{}, pkgerrors.New(pkgerrors.CodeValidation, "from and to must be provided together")
		}
		if to.Before(from) {
			return internalanalytics.SummaryRequest{}, pkgerrors.New(pkgerrors.CodeValidation, "to must not be before from")
		}
		return internalanalytics.SummaryRequest{Start: from, End: to}, nil
	}

	preset := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("preset")))
	if preset == "all" {
		return internalanalytics.SummaryRequest{}, nil
	}
	days, ok := presetDays(preset)
	if !ok {
		return internalanalytics.SummaryRequest{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid preset")
	}
	end := internalanalytics.Day(now)
	return internalanalytics.SummaryRequest{Start: end.AddDate(0, 0, -(days - 1)), End: end}, nil
}

func presetDays(value string) (int, bool) {
	switch value {
	case "", "30d":
		return 30, true
	case "7d":
		return 7, true
	case "90d":
		return 90, true
	default:
		return 0, false
	}
}
