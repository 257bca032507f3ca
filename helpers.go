package mcptools

import (
	"context"
	"fmt"
)

// FetchAll drains a cursor-paginated list call such as Client.ListTools.
// It fails when a server hands back a cursor it already returned.
func FetchAll[T any](
	ctx context.Context,
	fetch func(ctx context.Context, cursor *string) ([]T, *string, error),
) ([]T, error) {
	var allItems []T
	var cursor *string
	seen := make(map[string]bool)

	for {
		items, nextCursor, err := fetch(ctx, cursor)
		if err != nil {
			return nil, fmt.Errorf("fetch failed: %w", err)
		}

		allItems = append(allItems, items...)

		if nextCursor == nil || *nextCursor == "" {
			return allItems, nil
		}
		if seen[*nextCursor] {
			return nil, fmt.Errorf("fetch failed: cursor %q returned twice", *nextCursor)
		}
		seen[*nextCursor] = true
		cursor = nextCursor
	}
}
