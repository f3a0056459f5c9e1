// Package plans holds the static plan-to-entitlement table, the plan
// pricing and the plan durations. The table is package-level immutable
// state loaded once at init and safe for concurrent reads.
package plans

import "time"

// Plan tier names. Canonical maps the aliases still floating around in
// client payloads (basic, custom) onto these three.
const (
	Free    = "free"
	Pro     = "pro"
	Premium = "premium"
)

// Unlimited marks a limit that is not enforced for the tier.
const Unlimited = -1

// Entitlements is the full capability set granted by one plan tier.
type Entitlements struct {
	Dashboards          int
	WidgetsPerDashboard int
	PlayersLimit        int
	UploadLimit         int
	CanUseChatbot       bool
	CanSyncAPI          bool
	CanExportPDF        bool
	ExportFormats       []string
	DataHistoryDays     int
}

var table = map[string]Entitlements{
	Free: {
		Dashboards:          1,
		WidgetsPerDashboard: 3,
		PlayersLimit:        5,
		UploadLimit:         5,
		CanUseChatbot:       false,
		CanSyncAPI:          false,
		CanExportPDF:        false,
		ExportFormats:       []string{"PNG"},
		DataHistoryDays:     7,
	},
	Pro: {
		Dashboards:          Unlimited,
		WidgetsPerDashboard: 15,
		PlayersLimit:        Unlimited,
		UploadLimit:         50,
		CanUseChatbot:       true,
		CanSyncAPI:          true,
		CanExportPDF:        true,
		ExportFormats:       []string{"PNG", "PDF"},
		DataHistoryDays:     90,
	},
	Premium: {
		Dashboards:          Unlimited,
		WidgetsPerDashboard: Unlimited,
		PlayersLimit:        Unlimited,
		UploadLimit:         Unlimited,
		CanUseChatbot:       true,
		CanSyncAPI:          true,
		CanExportPDF:        true,
		ExportFormats:       []string{"PNG", "PDF", "CSV"},
		DataHistoryDays:     Unlimited,
	},
}

var prices = map[string]float64{
	Free:    0,
	Pro:     49.99,
	Premium: 89.99,
}

// Subscription durations per tier. Zero means unlimited (no end date).
var durations = map[string]time.Duration{
	Free:    0,
	Pro:     365 * 24 * time.Hour,
	Premium: 730 * 24 * time.Hour,
}

var aliases = map[string]string{
	"basic":  Free,
	"custom": Premium,
}

// Canonical maps a client-supplied plan name to one of the three tiers.
// Unknown names fall back to the free tier.
func Canonical(name string) string {
	if name == Free || name == Pro || name == Premium {
		return name
	}
	if tier, ok := aliases[name]; ok {
		return tier
	}
	return Free
}

// IsKnown reports whether name resolves to a tier without falling back.
func IsKnown(name string) bool {
	if name == Free || name == Pro || name == Premium {
		return true
	}
	_, ok := aliases[name]
	return ok
}

// Get returns the entitlement set for a tier. Unknown tiers get the
// free entitlements.
func Get(plan string) Entitlements {
	return table[Canonical(plan)]
}

// Price returns the USD price of a tier.
func Price(plan string) float64 {
	return prices[Canonical(plan)]
}

// EndDate computes when a subscription started now would end, or nil
// for tiers without an expiry.
func EndDate(plan string, now time.Time) *time.Time {
	d := durations[Canonical(plan)]
	if d == 0 {
		return nil
	}
	end := now.Add(d)
	return &end
}

// Allows reports whether the tier grants the named boolean or
// nonzero-limit entitlement. Unknown keys deny.
func Allows(plan, key string) bool {
	e := Get(plan)
	switch key {
	case "canUseChatbot":
		return e.CanUseChatbot
	case "canSyncAPI":
		return e.CanSyncAPI
	case "canExportPDF":
		return e.CanExportPDF
	case "dashboards":
		return e.Dashboards != 0
	case "widgetsPerDashboard":
		return e.WidgetsPerDashboard != 0
	case "playersLimit", "maxPlayers":
		return e.PlayersLimit != 0
	case "uploadLimit":
		return e.UploadLimit != 0
	case "dataHistoryDays":
		return e.DataHistoryDays != 0
	default:
		return false
	}
}
