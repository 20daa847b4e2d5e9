package sanitizer

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// Regions tried when parsing a phone number without an explicit
// country prefix. Numbers already in E.164 parse under any region.
var supportedRegions = []string{
	"IL",
	"US",
	"GB",
	"FR",
	"DE",
}

// NormalizePhone converts a phone number to E.164 format. Returns the
// empty string when the number cannot be parsed for any supported
// region.
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ""
	}

	for _, region := range supportedRegions {
		parsed, err := phonenumbers.Parse(phone, region)
		if err != nil {
			continue
		}
		if phonenumbers.IsValidNumber(parsed) {
			return phonenumbers.Format(parsed, phonenumbers.E164)
		}
	}
	return ""
}
