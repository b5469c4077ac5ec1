package sqlitedb

import (
	"context"
	"fmt"
)

// Tables lists the store's tables in the order Info reports them.
var Tables = []string{"user", "friend", "interaction", "status", "mention", "link", "hashtag"}

// Info returns the row count of every table.
func (q *Queries) Info(ctx context.Context) (map[string]int, error) {
	out := make(map[string]int, len(Tables))
	for _, t := range Tables {
		var n int
		if err := q.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+t).Scan(&n); err != nil {
			return nil, fmt.Errorf("count %s: %w", t, err)
		}
		out[t] = n
	}
	return out, nil
}
