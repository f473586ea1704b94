package timeutil

import (
	"regexp"
	"strings"
)

var (
	fourDigits = regexp.MustCompile(`^\d{4}$`)
	nonDigits  = regexp.MustCompile(`\D`)
	phoneSplit = regexp.MustCompile(`[,\n;]+`)
)

// ValidatePhone accepts exactly four digits, the form customers fill in at
// booking time.
func ValidatePhone(phone string) bool {
	return fourDigits.MatchString(phone)
}

// ParsePhoneNumbers extracts digit-only numbers from a free-form list
// separated by commas, semicolons or newlines. Spaces stay inside an entry
// so formatted numbers like "+7 (900) 123-45-67" survive whole. Numbers
// shorter than four digits are dropped.
func ParsePhoneNumbers(input string) []string {
	var phones []string
	for _, part := range phoneSplit.Split(input, -1) {
		digits := nonDigits.ReplaceAllString(strings.TrimSpace(part), "")
		if len(digits) >= 4 {
			phones = append(phones, digits)
		}
	}
	return phones
}

// FormatPhoneDisplay masks a bare four-digit suffix for display.
func FormatPhoneDisplay(phone string) string {
	if len(phone) == 4 {
		return "****" + phone
	}
	return phone
}

// PhoneSuffixMatch compares two numbers by their last four digits, the weak
// match used to link a booking's short phone to a client record.
func PhoneSuffixMatch(a, b string) bool {
	da := nonDigits.ReplaceAllString(a, "")
	db := nonDigits.ReplaceAllString(b, "")
	if len(da) < 4 || len(db) < 4 {
		return false
	}
	return da[len(da)-4:] == db[len(db)-4:]
}
