package api

import (
	"encoding/json"
	"fmt"
	"strings"
)

type errorBody struct {
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Errors  json.RawMessage `json:"errors"`
}

func (b errorBody) message() string {
	if msg := strings.TrimSpace(b.Message); msg != "" {
		return msg
	}
	return strings.TrimSpace(b.Error)
}

func parseErrorBody(data []byte) errorBody {
	var body errorBody
	if len(data) == 0 {
		return body
	}
	// Bodies that are not JSON objects carry no usable detail.
	_ = json.Unmarshal(data, &body)
	return body
}

// parseFieldErrors accepts {"field": "message"} maps and
// [{"field"|"param"|"path": ..., "message"|"msg": ...}] lists.
func parseFieldErrors(raw json.RawMessage) map[string]string {
	if len(raw) == 0 {
		return nil
	}
	fields := make(map[string]string)

	var asMap map[string]any
	if err := json.Unmarshal(raw, &asMap); err == nil {
		for name, value := range asMap {
			if msg := fieldMessage(value); msg != "" {
				fields[name] = msg
			}
		}
	} else {
		var asList []map[string]any
		if err := json.Unmarshal(raw, &asList); err != nil {
			return nil
		}
		for _, entry := range asList {
			name := firstString(entry, "field", "param", "path")
			msg := firstString(entry, "message", "msg")
			if name == "" || msg == "" {
				continue
			}
			if existing, ok := fields[name]; ok {
				msg = existing + "; " + msg
			}
			fields[name] = msg
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

func fieldMessage(value any) string {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			if msg := fieldMessage(item); msg != "" {
				parts = append(parts, msg)
			}
		}
		return strings.Join(parts, "; ")
	case map[string]any:
		return firstString(v, "message", "msg")
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func firstString(entry map[string]any, keys ...string) string {
	for _, key := range keys {
		if s, ok := entry[key].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}
