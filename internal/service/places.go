package service

import (
	"encoding/json"
	"strings"

	"github.com/borderbuddy/travel-platform/internal/model"
)

const maxPlaceItems = 10

// parsePlaceItems extracts place suggestions from an assistant answer.
// Models sometimes wrap the JSON in prose or code fences, so we scan
// for the outermost array before decoding. Returns nil when nothing
// usable is found.
func parsePlaceItems(answer string) []model.PlaceItem {
	start := strings.Index(answer, "[")
	end := strings.LastIndex(answer, "]")
	if start < 0 || end <= start {
		return nil
	}

	var items []model.PlaceItem
	if err := json.Unmarshal([]byte(answer[start:end+1]), &items); err != nil {
		return nil
	}

	out := items[:0]
	for _, it := range items {
		it.Name = strings.TrimSpace(it.Name)
		if it.Name == "" {
			continue
		}
		out = append(out, it)
		if len(out) == maxPlaceItems {
			break
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
