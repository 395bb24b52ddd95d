package ranking

import (
	"sort"

	"github.com/hqops/invite-tracker/internal/models"
)

// assignRanks sorts records by redemption count descending and assigns dense
// ranks in place: tied counts share a rank, and the next distinct count gets
// the 1-based position index of its first record. With counts {A:5, B:5, C:3}
// the ranks come out as {A:1, B:1, C:3}.
//
// Both the incremental and the bulk paths go through here, so the two can
// never drift apart on tie handling.
func assignRanks(records []models.PerformanceRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].RedemptionCount > records[j].RedemptionCount
	})

	currentRank := 1
	for i := range records {
		if i > 0 && records[i].RedemptionCount != records[i-1].RedemptionCount {
			currentRank = i + 1
		}
		records[i].Rank = currentRank
	}
}
