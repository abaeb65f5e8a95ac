package audit_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"bastion-hq/gateway/pkg/audit"
	"bastion-hq/gateway/pkg/audit/storage"
)

func TestProperty_QueryLimitAndOrdering(t *testing.T) {
	actions := audit.Actions

	rapid.Check(t, func(rt *rapid.T) {
		offsets := rapid.SliceOfN(rapid.IntRange(0, 3600), 0, 40).Draw(rt, "offsets")
		i := 0
		clock := func() time.Time {
			ts := baseTime.Add(time.Duration(offsets[i]) * time.Second)
			i++
			return ts
		}

		logger := audit.NewLogger(storage.NewMemorySink(), audit.WithClock(clock))
		ctx := context.Background()
		for range offsets {
			_, err := logger.Log(ctx, audit.Record{
				UserID: rapid.SampledFrom([]string{"a", "b"}).Draw(rt, "user"),
				Action: rapid.SampledFrom(actions).Draw(rt, "action"),
			})
			require.NoError(rt, err)
		}

		limit := rapid.IntRange(0, 50).Draw(rt, "limit")
		entries, err := logger.QueryLogs(ctx, audit.Query{Limit: limit})
		require.NoError(rt, err)

		effective := limit
		if effective == 0 {
			effective = audit.DefaultQueryLimit
		}
		assert.LessOrEqual(rt, len(entries), effective)
		assert.Equal(rt, min(effective, len(offsets)), len(entries))
		for j := 1; j < len(entries); j++ {
			assert.False(rt, entries[j].Timestamp.After(entries[j-1].Timestamp),
				"entries not newest first at %d", j)
		}
	})
}
