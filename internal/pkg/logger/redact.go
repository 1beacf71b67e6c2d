package logger

import "strings"

// RedactEmail masks the local part of an email address so log lines never
// carry a full recipient. "ursula@gmail.com" becomes "ur***@gmail.com".
// Local parts of two characters or fewer are masked entirely, and anything
// not shaped like an address is replaced wholesale.
func RedactEmail(email string) string {
	local, dom, ok := strings.Cut(email, "@")
	if !ok || strings.Contains(dom, "@") {
		return "***@***"
	}
	if len(local) <= 2 {
		return "***@" + dom
	}
	return local[:2] + "***@" + dom
}
