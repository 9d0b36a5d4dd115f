package logging

import "strings"

const redacted = "********"

// sensitiveKeys never reach a log sink with their value intact. Matching is
// on the last dotted segment, case-insensitive.
var sensitiveKeys = map[string]bool{
	"token":         true,
	"auth_token":    true,
	"authtoken":     true,
	"authorization": true,
	"password":      true,
	"newpassword":   true,
	"secret_key":    true,
	"access_key":    true,
}

func isSensitive(key string) bool {
	if i := strings.LastIndexByte(key, '.'); i >= 0 {
		key = key[i+1:]
	}
	return sensitiveKeys[strings.ToLower(key)]
}
