package ofapi

import (
	"fmt"
	"time"
)

// OFAPI responses do not follow a single canonical schema: the payload
// list can live under data, data.list, or list, and sender/counterpart
// ids move between fromUser, author and withUser depending on endpoint
// version. Each helper below applies an explicit ordered rule list and
// returns a zero value when nothing matches.

// documentList resolves the item array of a listing response.
// Priority: data (array) > data.list > list.
func documentList(doc map[string]any) []map[string]any {
	candidates := []any{doc["data"]}
	if inner, ok := doc["data"].(map[string]any); ok {
		candidates = append(candidates, inner["list"])
	}
	candidates = append(candidates, doc["list"])

	for _, c := range candidates {
		arr, ok := c.([]any)
		if !ok {
			continue
		}
		out := make([]map[string]any, 0, len(arr))
		for _, item := range arr {
			if m, ok := item.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	}
	return nil
}

// chatID resolves a conversation id.
// Priority: withUser.id (the counterpart) > id.
func chatID(item map[string]any) string {
	if with, ok := item["withUser"].(map[string]any); ok {
		if id := anyString(with["id"]); id != "" {
			return id
		}
	}
	return anyString(item["id"])
}

// fanName resolves the counterpart display name.
// Priority: withUser.name > withUser.username.
func fanName(item map[string]any) string {
	with, ok := item["withUser"].(map[string]any)
	if !ok {
		return ""
	}
	if name := anyString(with["name"]); name != "" {
		return name
	}
	return anyString(with["username"])
}

// senderID resolves a message author id.
// Priority: fromUser.id > author.id. Missing sender defaults to "".
func senderID(item map[string]any) string {
	for _, key := range []string{"fromUser", "author"} {
		if from, ok := item[key].(map[string]any); ok {
			if id := anyString(from["id"]); id != "" {
				return id
			}
		}
	}
	return ""
}

func stringField(item map[string]any, key string) string {
	return anyString(item[key])
}

func timeField(item map[string]any, key string) time.Time {
	s := anyString(item[key])
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// anyString renders scalar JSON values as strings; ids arrive as both
// numbers and strings upstream.
func anyString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		if x == float64(int64(x)) {
			return fmt.Sprintf("%d", int64(x))
		}
		return fmt.Sprintf("%v", x)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", x)
	}
}
