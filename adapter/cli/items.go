package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/memoryplanner/internal/planning/application/queries"
	"github.com/felixgeelhaar/memoryplanner/internal/planning/domain"
	"github.com/google/uuid"
)

// MatchItem resolves an ID prefix among the plan items. Breaks cannot be
// ticked.
func MatchItem(items []queries.PlanItemDTO, prefix string) (uuid.UUID, error) {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if prefix == "" {
		return uuid.Nil, errors.New("missing item id")
	}
	var matches []queries.PlanItemDTO
	for _, item := range items {
		if item.Type == string(domain.ItemTypeBreak) {
			continue
		}
		if strings.HasPrefix(item.ID.String(), prefix) {
			matches = append(matches, item)
		}
	}
	switch len(matches) {
	case 0:
		return uuid.Nil, fmt.Errorf("no plan item matches %q", prefix)
	case 1:
		return matches[0].ID, nil
	default:
		titles := make([]string, len(matches))
		for i, m := range matches {
			titles[i] = fmt.Sprintf("%s (%s)", m.Title, m.ID.String()[:8])
		}
		return uuid.Nil, fmt.Errorf("%q matches several items: %s", prefix, strings.Join(titles, ", "))
	}
}
