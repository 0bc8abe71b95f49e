package security

import (
	"net/http"
)

var sensitiveHeaders = []string{
	"Authorization",
	"Cookie",
	"Set-Cookie",
	"X-CSRF-Token",
}

// SanitizeHeaders removes credentials and cookies (including the signed
// referral cookie) so headers can be logged
func SanitizeHeaders(headers http.Header) http.Header {
	for _, header := range sensitiveHeaders {
		headers.Del(header)
	}
	return headers
}
