package scenariodomain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindRequest(t *testing.T) {
	history := []ScenarioRecord{
		{Fingerprint: "scn_1"},
		{Fingerprint: "scn_2", RequestID: "req-2"},
	}

	idx, ok := FindRequest("req-2", history)
	require.True(t, ok)
	assert.Equal(t, 1, idx)

	_, ok = FindRequest("req-3", history)
	assert.False(t, ok)

	// records without a request ID never match an empty key
	_, ok = FindRequest("", history)
	assert.False(t, ok)
}

func TestReplay(t *testing.T) {
	now := time.Date(2026, time.October, 16, 12, 0, 0, 0, time.Local)
	at := func(h int) int64 { return now.Add(time.Duration(-h) * time.Hour).UnixMilli() }

	history := []ScenarioRecord{
		{Fingerprint: "scn_a", Timestamp: at(5), RewardEligible: true},
		{Fingerprint: "scn_b", Timestamp: at(4), RewardEligible: true},
		{Fingerprint: "scn_a", Timestamp: at(3), RequestID: "dup"},
		{Fingerprint: "scn_c", Timestamp: at(2), RewardEligible: true},
		{Fingerprint: "scn_d", Timestamp: at(1), RequestID: "capped"},
	}

	tests := []struct {
		name        string
		idx         int
		wantDup     bool
		wantCredit  bool
		wantMessage string
	}{
		{"credited", 1, false, true, MessageNewScenario},
		{"duplicate", 2, true, false, MessageDuplicate},
		{"quota", 4, false, false, MessageDailyLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Replay(history, tt.idx, now)
			assert.Equal(t, history[tt.idx].Fingerprint, a.Fingerprint)
			assert.Equal(t, tt.wantDup, a.Duplicate)
			assert.Equal(t, tt.wantCredit, a.RewardEligible)
			assert.Equal(t, tt.wantMessage, a.Message)
			assert.Equal(t, 0, a.Quota.Remaining)
			if tt.wantDup {
				require.NotNil(t, a.DuplicateOf)
				assert.Equal(t, history[0].Timestamp, a.DuplicateOf.Timestamp)
			}
		})
	}
}
