package locale

const (
	DefaultTimezone = "UTC"
)

type Country struct {
	Code            string   // ISO 3166-1 alpha-2 country code (e.g., "IL", "US")
	Name            string   // Human-readable country name
	PhonePrefixes   []string // Valid phone number prefixes (e.g., ["+972", "972"])
	DefaultTimezone string   // IANA timezone identifier (e.g., "Asia/Jerusalem")
}

// Countries covered by the marketplace. Keep in sync with the phone
// regions accepted by the sanitizer package.
var Countries = map[string]Country{
	"IL": {
		Code:            "IL",
		Name:            "Israel",
		PhonePrefixes:   []string{"+972", "972"},
		DefaultTimezone: "Asia/Jerusalem",
	},
	"US": {
		Code:            "US",
		Name:            "United States",
		PhonePrefixes:   []string{"+1", "1"},
		DefaultTimezone: "America/New_York",
	},
	"GB": {
		Code:            "GB",
		Name:            "United Kingdom",
		PhonePrefixes:   []string{"+44", "44"},
		DefaultTimezone: "Europe/London",
	},
	"FR": {
		Code:            "FR",
		Name:            "France",
		PhonePrefixes:   []string{"+33", "33"},
		DefaultTimezone: "Europe/Paris",
	},
	"DE": {
		Code:            "DE",
		Name:            "Germany",
		PhonePrefixes:   []string{"+49", "49"},
		DefaultTimezone: "Europe/Berlin",
	},
}
