package activitydb

import (
	"time"

	activitydomain "github.com/Black-And-White-Club/envsim/app/modules/activity/domain"
	"github.com/uptrace/bun"
)

// UserActivity is one row of activity_counters.
type UserActivity struct {
	bun.BaseModel `bun:"table:activity_counters,alias:ac"`

	UserID           string    `bun:"user_id,pk"`
	SimulationsRun   int       `bun:"simulations_run,notnull,default:0"`
	ReportsGenerated int       `bun:"reports_generated,notnull,default:0"`
	CommunityActions int       `bun:"community_actions,notnull,default:0"`
	CreatedAt        time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt        time.Time `bun:"updated_at,notnull,default:current_timestamp"`

	ActiveDays []*ActiveDay `bun:"rel:has-many,join:user_id=user_id"`
}

// ActiveDay is one (user, day) pair. The composite key makes inserts idempotent.
type ActiveDay struct {
	bun.BaseModel `bun:"table:activity_days,alias:ad"`

	UserID    string    `bun:"user_id,pk"`
	Day       string    `bun:"day,pk,type:varchar(10)"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// CountedEvent remembers an event that already moved a counter.
type CountedEvent struct {
	bun.BaseModel `bun:"table:activity_counted_events,alias:ce"`

	EventKey  string    `bun:"event_key,pk"`
	UserID    string    `bun:"user_id,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// ToDomain converts the row and its loaded days.
func (u *UserActivity) ToDomain() activitydomain.UserActivityCounters {
	out := activitydomain.UserActivityCounters{
		UserID:           u.UserID,
		SimulationsRun:   u.SimulationsRun,
		ReportsGenerated: u.ReportsGenerated,
		CommunityActions: u.CommunityActions,
		ActiveDays:       make([]string, 0, len(u.ActiveDays)),
		CreatedAt:        u.CreatedAt,
	}
	for _, d := range u.ActiveDays {
		out.AddActiveDay(d.Day)
	}
	return out
}
