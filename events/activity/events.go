// Package activityevents defines the activity module's event topics and payloads.
package activityevents

import "time"

// Topics.
const (
	ActivityReportGeneratedV1 = "activity.report.generated.v1"
	ActivityCommunityActionV1 = "activity.community.action.v1"
)

// ActivityReportGeneratedPayloadV1 records that a user produced a report.
type ActivityReportGeneratedPayloadV1 struct {
	UserID     string    `json:"user_id"`
	ReportID   string    `json:"report_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ActivityCommunityActionPayloadV1 records a community contribution.
type ActivityCommunityActionPayloadV1 struct {
	UserID     string    `json:"user_id"`
	Action     string    `json:"action"`
	OccurredAt time.Time `json:"occurred_at"`
}
