package dialog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dfuchss/deltabot/internal/domain"
)

// cityZones maps a few well-known city names to IANA zone names. Anything
// not listed here is tried as an IANA zone name directly.
var cityZones = map[string]string{
	"berlin":      "Europe/Berlin",
	"karlsruhe":   "Europe/Berlin",
	"london":      "Europe/London",
	"new york":    "America/New_York",
	"los angeles": "America/Los_Angeles",
	"tokyo":       "Asia/Tokyo",
	"sydney":      "Australia/Sydney",
}

// Clock tells the current time, honoring a city or timezone entity when the
// classifier extracted one.
type Clock struct {
	deps Deps
}

// NewClock creates the clock dialog.
func NewClock(deps Deps) *Clock {
	return &Clock{deps: deps}
}

func (d *Clock) ID() string { return IDClock }

func (d *Clock) Proceed(ctx context.Context, msg domain.InboundMessage, _ []domain.IntentResult, entities []domain.EntityResult) domain.DialogResult {
	now := d.deps.now()

	zone := zoneFromEntities(entities)
	if zone == "" {
		_ = d.deps.Sender.Send(ctx, msg, fmt.Sprintf("It is %s here.", now.Format("15:04 (Monday, 02 Jan 2006)")), true)
		return domain.DialogDone
	}

	loc, err := time.LoadLocation(zone)
	if err != nil {
		// Malformed entity data is absorbed here, never propagated.
		_ = d.deps.Sender.Send(ctx, msg, fmt.Sprintf("I don't know the timezone %q.", zone), true)
		return domain.DialogDone
	}

	_ = d.deps.Sender.Send(ctx, msg, fmt.Sprintf("It is %s in %s.", now.In(loc).Format("15:04 (Monday, 02 Jan 2006)"), zone), true)
	return domain.DialogDone
}

// zoneFromEntities picks the zone to report. City entities win over raw
// timezone entities because classifiers extract them more reliably.
func zoneFromEntities(entities []domain.EntityResult) string {
	var fallback string
	for _, e := range entities {
		switch e.Kind {
		case "city":
			if zone, ok := cityZones[strings.ToLower(e.Value)]; ok {
				return zone
			}
			fallback = e.Value
		case "timezone":
			if fallback == "" {
				fallback = e.Value
			}
		}
	}
	return fallback
}
