package api

import (
	"context"
	"sync"

	"github.com/OnlyWorlds/worldtool/pkg/record"
)

// FetchAll retrieves every record of every type, one request per type in
// parallel. A type whose fetch fails (after retries) degrades to an
// empty slice rather than aborting the batch; the failure is logged.
func (c *Client) FetchAll(ctx context.Context) map[string][]record.Record {
	out := make(map[string][]record.Record, len(record.Types()))

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, recordType := range record.Types() {
		wg.Add(1)
		go func(recordType string) {
			defer wg.Done()

			var records []record.Record
			err := withRetry(ctx, func() error {
				var lerr error
				records, lerr = c.List(ctx, recordType, nil)
				return lerr
			})
			if err != nil {
				c.log.Warn("fetch failed, returning empty set",
					"record_type", recordType, "error", err)
				records = []record.Record{}
			}

			mu.Lock()
			out[recordType] = records
			mu.Unlock()
		}(recordType)
	}
	wg.Wait()
	return out
}

// Counts returns the number of records per type, with the same fan-out
// and partial-failure tolerance as FetchAll. A failed type counts -1 so
// the UI can show "unknown" instead of a misleading zero.
func (c *Client) Counts(ctx context.Context) map[string]int {
	out := make(map[string]int, len(record.Types()))

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, recordType := range record.Types() {
		wg.Add(1)
		go func(recordType string) {
			defer wg.Done()

			count := -1
			err := withRetry(ctx, func() error {
				records, lerr := c.List(ctx, recordType, nil)
				if lerr != nil {
					return lerr
				}
				count = len(records)
				return nil
			})
			if err != nil {
				c.log.Warn("count failed", "record_type", recordType, "error", err)
			}

			mu.Lock()
			out[recordType] = count
			mu.Unlock()
		}(recordType)
	}
	wg.Wait()
	return out
}
