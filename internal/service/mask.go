package service

import "strings"

// MaskBookerName keeps the first character of the name and replaces
// the rest with '*'. Applied on the guest channel only; member reads
// are never masked.
func MaskBookerName(name string) string {
	runes := []rune(name)
	if len(runes) <= 1 {
		return name
	}
	return string(runes[0]) + strings.Repeat("*", len(runes)-1)
}

// MaskPhoneNumber keeps the first and last segment of a '-'-delimited
// phone number and masks every character in between. Numbers without a
// middle segment are returned unchanged.
func MaskPhoneNumber(phone string) string {
	parts := strings.Split(phone, "-")
	if len(parts) < 3 {
		return phone
	}
	for i := 1; i < len(parts)-1; i++ {
		parts[i] = strings.Repeat("*", len(parts[i]))
	}
	return strings.Join(parts, "-")
}
