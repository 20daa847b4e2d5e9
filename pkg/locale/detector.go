package locale

import "strings"

// InferTimezoneFromPhone maps a phone number to the default timezone of
// its country. Falls back to UTC for unknown prefixes so notification
// scheduling always has a usable zone.
func InferTimezoneFromPhone(phone string) string {
	if country := InferCountryFromPhone(phone); country != nil {
		return country.DefaultTimezone
	}
	return DefaultTimezone
}

// InferCountryFromPhone returns the country matching the phone prefix,
// or nil when no marketplace country matches.
func InferCountryFromPhone(phone string) *Country {
	normalized := strings.TrimSpace(phone)
	if normalized == "" {
		return nil
	}

	for _, country := range Countries {
		for _, prefix := range country.PhonePrefixes {
			if strings.HasPrefix(normalized, prefix) {
				return &country
			}
		}
	}

	return nil
}
