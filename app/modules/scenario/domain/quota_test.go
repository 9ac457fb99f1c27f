package scenariodomain

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

var testLoc = time.FixedZone("UTC+2", 2*60*60)

func at(day, hour, min int) time.Time {
	return time.Date(2026, time.March, day, hour, min, 0, 0, testLoc)
}

func eligibleAt(t time.Time) ScenarioRecord {
	return ScenarioRecord{Fingerprint: "scn_" + t.Format("150405"), Timestamp: t.UnixMilli(), RewardEligible: true}
}

func TestDailyQuota(t *testing.T) {
	now := at(10, 15, 0)

	tests := []struct {
		name    string
		history []ScenarioRecord
		want    Quota
	}{
		{
			name: "empty history",
			want: Quota{Remaining: DailyRewardCap},
		},
		{
			name:    "one eligible today",
			history: []ScenarioRecord{eligibleAt(at(10, 9, 0))},
			want:    Quota{Remaining: 2, UsedToday: 1},
		},
		{
			name: "ineligible records do not count",
			history: []ScenarioRecord{
				eligibleAt(at(10, 9, 0)),
				{Fingerprint: "scn_dup", Timestamp: at(10, 9, 30).UnixMilli()},
			},
			want: Quota{Remaining: 2, UsedToday: 1},
		},
		{
			name: "yesterday does not count",
			history: []ScenarioRecord{
				eligibleAt(at(9, 23, 59)),
				eligibleAt(at(9, 12, 0)),
				eligibleAt(at(9, 8, 0)),
			},
			want: Quota{Remaining: 3},
		},
		{
			name: "exhausted",
			history: []ScenarioRecord{
				eligibleAt(at(10, 0, 0)),
				eligibleAt(at(10, 1, 0)),
				eligibleAt(at(10, 2, 0)),
			},
			want: Quota{Exhausted: true, Remaining: 0, UsedToday: 3},
		},
		{
			name: "over cap clamps remaining at zero",
			history: []ScenarioRecord{
				eligibleAt(at(10, 0, 0)),
				eligibleAt(at(10, 1, 0)),
				eligibleAt(at(10, 2, 0)),
				eligibleAt(at(10, 3, 0)),
			},
			want: Quota{Exhausted: true, Remaining: 0, UsedToday: 4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DailyQuota(tt.history, now)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("DailyQuota() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDailyQuotaCalendarBoundaries(t *testing.T) {
	startOfDay := time.Date(2026, time.March, 10, 0, 0, 0, 0, testLoc)
	endOfDay := startOfDay.Add(24*time.Hour - time.Millisecond)

	history := []ScenarioRecord{
		{Fingerprint: "a", Timestamp: startOfDay.UnixMilli(), RewardEligible: true},
		{Fingerprint: "b", Timestamp: endOfDay.UnixMilli(), RewardEligible: true},
		{Fingerprint: "c", Timestamp: startOfDay.Add(-time.Millisecond).UnixMilli(), RewardEligible: true},
		{Fingerprint: "d", Timestamp: endOfDay.Add(time.Millisecond).UnixMilli(), RewardEligible: true},
	}

	got := DailyQuota(history, at(10, 12, 0))
	assert.Equal(t, 2, got.UsedToday)
}

func TestDailyQuotaResetsAtMidnightNotRolling(t *testing.T) {
	history := []ScenarioRecord{
		eligibleAt(at(10, 23, 50)),
		eligibleAt(at(10, 23, 55)),
		eligibleAt(at(10, 23, 58)),
	}

	assert.True(t, DailyQuota(history, at(10, 23, 59)).Exhausted)

	// two minutes later, a new calendar day
	next := at(11, 0, 1)
	q := DailyQuota(history, next)
	assert.False(t, q.Exhausted)
	assert.Equal(t, DailyRewardCap, q.Remaining)
}

func TestDailyQuotaUsesNowLocation(t *testing.T) {
	// 23:30 UTC on the 9th is 01:30 on the 10th at UTC+2
	rec := ScenarioRecord{Fingerprint: "x", Timestamp: time.Date(2026, time.March, 9, 23, 30, 0, 0, time.UTC).UnixMilli(), RewardEligible: true}

	local := DailyQuota([]ScenarioRecord{rec}, at(10, 10, 0))
	assert.Equal(t, 1, local.UsedToday)

	utc := DailyQuota([]ScenarioRecord{rec}, at(10, 10, 0).UTC())
	assert.Equal(t, 0, utc.UsedToday)
}
