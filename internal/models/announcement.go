package models

import "time"

// SystemSender is recorded when the acting sender cannot be identified.
const SystemSender = "System"

// AnnouncementContent is the immutable payload delivered to every recipient.
type AnnouncementContent struct {
	Title     string  `db:"title" json:"title"`
	Body      string  `db:"body" json:"body"`
	Priority  int     `db:"priority" json:"priority"`
	Color     string  `db:"color" json:"color"`
	Icon      string  `db:"icon" json:"icon"`
	ActionURL *string `db:"action_url" json:"actionUrl"`
}

// DeliveryPlan is the resolved form of a targeting descriptor.
// Bulk plans carry a Selector; manual plans carry RecipientIDs.
type DeliveryPlan struct {
	Mode         TargetingMode
	Selector     *RecipientSelector
	RecipientIDs []string
}

// Bulk reports whether the plan is applied as a single predicate-based write.
func (p DeliveryPlan) Bulk() bool {
	return p.Selector != nil
}

// DeliveryAttempt is the result of writing one notification for one recipient.
type DeliveryAttempt struct {
	RecipientID string
	Err         error
}

// Delivered reports whether the attempt succeeded.
func (a DeliveryAttempt) Delivered() bool {
	return a.Err == nil
}

// DeliveryFailure records why a single recipient was not reached.
type DeliveryFailure struct {
	RecipientID string `json:"userId"`
	Reason      string `json:"error"`
}

// DeliveryOutcome aggregates a dispatch. Failures are only enumerated for manual plans.
type DeliveryOutcome struct {
	Delivered int               `json:"delivered"`
	Failed    int               `json:"failed"`
	Failures  []DeliveryFailure `json:"failures,omitempty"`
}

// DeliverySummary is the outcome as persisted on the audit record.
type DeliverySummary struct {
	Delivered int `json:"delivered"`
	Failed    int `json:"failed"`
	Total     int `json:"total"`
}

// AnnouncementRecord is the append-only audit entry written once per dispatch.
type AnnouncementRecord struct {
	ID string `db:"id" json:"id"`
	AnnouncementContent
	Targeting      TargetingSpec `db:"targeting" json:"targeting"`
	SentAt         time.Time     `db:"sent_at" json:"sentAt"`
	SentBy         string        `db:"sent_by" json:"sentBy"`
	DeliveredCount int           `db:"delivered_count" json:"deliveredCount"`
	FailedCount    int           `db:"failed_count" json:"failedCount"`
	TotalCount     int           `db:"total_count" json:"totalCount"`
}

// Result returns the persisted outcome summary.
func (r AnnouncementRecord) Result() DeliverySummary {
	return DeliverySummary{Delivered: r.DeliveredCount, Failed: r.FailedCount, Total: r.TotalCount}
}

// Summary projects the record into its history listing form.
func (r AnnouncementRecord) Summary() AnnouncementSummary {
	return AnnouncementSummary{
		ID:            r.ID,
		Title:         r.Title,
		Body:          r.Body,
		Priority:      r.Priority,
		Color:         r.Color,
		Icon:          r.Icon,
		SentAt:        r.SentAt,
		TargetingType: r.Targeting.Type,
		Result:        r.Result(),
		SentBy:        r.SentBy,
	}
}

// AnnouncementSummary is a history entry. Targeting is reduced to its tag.
type AnnouncementSummary struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	Body          string          `json:"body"`
	Priority      int             `json:"priority"`
	Color         string          `json:"color"`
	Icon          string          `json:"icon"`
	SentAt        time.Time       `json:"sentAt"`
	TargetingType TargetingMode   `json:"targetingType"`
	Result        DeliverySummary `json:"result"`
	SentBy        string          `json:"sentBy"`
}
