package logger

import (
	"log/slog"
	"strings"
)

const redacted = "***REDACTED***"

var redactedKeys = map[string]struct{}{
	"token":         {},
	"access_token":  {},
	"refresh_token": {},
	"authorization": {},
	"password":      {},
	"jwt":           {},
}

// redactAttr masks credentials whatever group they are logged under.
func redactAttr(_ []string, a slog.Attr) slog.Attr {
	if _, hit := redactedKeys[strings.ToLower(a.Key)]; hit {
		return slog.String(a.Key, redacted)
	}
	return a
}
