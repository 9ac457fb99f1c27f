package scenariodb

import (
	"time"

	scenariodomain "github.com/Black-And-White-Club/envsim/app/modules/scenario/domain"
	"github.com/uptrace/bun"
)

// History is one user's ordered scenario history, stored as a single JSONB
// document so the whole list is read and written in one round-trip.
type History struct {
	bun.BaseModel `bun:"table:scenario_histories,alias:sh"`

	UserID    string                          `bun:"user_id,pk"`
	Records   []scenariodomain.ScenarioRecord `bun:"records,type:jsonb,notnull"`
	Version   int64                           `bun:"version,notnull"`
	CreatedAt time.Time                       `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time                       `bun:"updated_at,notnull,default:current_timestamp"`
}

// Clone returns a copy whose Records slice does not alias h's.
func (h *History) Clone() *History {
	if h == nil {
		return nil
	}
	out := *h
	out.Records = append([]scenariodomain.ScenarioRecord(nil), h.Records...)
	return &out
}
