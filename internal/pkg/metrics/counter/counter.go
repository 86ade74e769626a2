package counter

import (
	"context"
	"strconv"

	"github.com/nibiaa/TenantDesk/internal/pkg/cache"
)

const (
	provisionOutcomesKey = "provision:counters:outcomes"
	syncRunsKey          = "billing:counters:sync_runs"
	syncRecordsKey       = "billing:counters:sync_records"
)

// AddProvisionOutcome increments the counter for one submission outcome.
// The field is "success" or the error kind of the failure.
func AddProvisionOutcome(outcome string) error {
	ctx := context.Background()
	return cache.GetClient().HIncrBy(ctx, provisionOutcomesKey, outcome, 1).Err()
}

// AddSyncRun records one completed billing sync and the number of records it
// touched.
func AddSyncRun(records int) error {
	ctx := context.Background()
	rdb := cache.GetClient()
	if err := rdb.Incr(ctx, syncRunsKey).Err(); err != nil {
		return err
	}
	return rdb.IncrBy(ctx, syncRecordsKey, int64(records)).Err()
}

// Snapshot returns the current counter values for the stats endpoint.
func Snapshot() (map[string]int64, error) {
	ctx := context.Background()
	rdb := cache.GetClient()

	out := make(map[string]int64)

	outcomes, err := rdb.HGetAll(ctx, provisionOutcomesKey).Result()
	if err != nil {
		return nil, err
	}
	for field, raw := range outcomes {
		if v, perr := strconv.ParseInt(raw, 10, 64); perr == nil {
			out["provision_"+field] = v
		}
	}

	for key, field := range map[string]string{
		syncRunsKey:    "sync_runs",
		syncRecordsKey: "sync_records",
	} {
		raw, err := rdb.Get(ctx, key).Result()
		if err != nil {
			continue
		}
		if v, perr := strconv.ParseInt(raw, 10, 64); perr == nil {
			out[field] = v
		}
	}

	return out, nil
}
