// Package mask redacts account and card numbers for display and notifications.
package mask

import "strings"

// Last4 keeps only the last four characters of number, e.g. "****1486".
func Last4(number string) string {
	number = strings.TrimSpace(number)
	if len(number) < 4 {
		return "****"
	}
	return "****" + number[len(number)-4:]
}

// Email hides the local part of an address except for its first character.
func Email(addr string) string {
	at := strings.IndexByte(addr, '@')
	if at <= 0 {
		return "***"
	}
	return addr[:1] + "***" + addr[at:]
}
