package logging

import (
	"log/slog"
	"net/url"
)

// RedactedStringURL is a string containing a URL for safe logging
type RedactedStringURL string

// LogValue implements slog.LogValuer to avoid revealing credentials
func (s RedactedStringURL) LogValue() slog.Value {
	u, err := url.Parse(string(s))
	if err != nil {
		return slog.StringValue(string(s))
	}
	return slog.StringValue(u.Redacted())
}

// RedactStringURL returns a safely loggable URL string. Used for the
// notification provider endpoint and database DSNs, both of which may
// embed credentials.
func RedactStringURL(s string) slog.LogValuer {
	return RedactedStringURL(s)
}
