package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// TargetingMode names the addressing mode of a dispatch.
type TargetingMode string

const (
	TargetingAll    TargetingMode = "all"
	TargetingFilter TargetingMode = "filter"
	TargetingManual TargetingMode = "manual"
)

// TargetingDescriptor describes who should receive an announcement.
// It is implemented by AllTargeting, FilteredTargeting and ManualTargeting only.
type TargetingDescriptor interface {
	Mode() TargetingMode
	sealed()
}

// AllTargeting reaches every active recipient.
type AllTargeting struct{}

// FilteredTargeting reaches active recipients matching at least one provided criterion.
type FilteredTargeting struct {
	Criteria FilterCriteria
}

// ManualTargeting reaches an explicit list of recipients in the given order.
type ManualTargeting struct {
	RecipientIDs []string
}

func (AllTargeting) Mode() TargetingMode      { return TargetingAll }
func (FilteredTargeting) Mode() TargetingMode { return TargetingFilter }
func (ManualTargeting) Mode() TargetingMode   { return TargetingManual }

func (AllTargeting) sealed()      {}
func (FilteredTargeting) sealed() {}
func (ManualTargeting) sealed()   {}

// FilterCriteria lists candidate attribute values. Empty lists are ignored.
type FilterCriteria struct {
	Companies []string `json:"companies,omitempty"`
	Positions []string `json:"positions,omitempty"`
	Roles     []string `json:"roles,omitempty"`
}

// IsEmpty reports whether no criterion carries a candidate value.
func (c FilterCriteria) IsEmpty() bool {
	return len(c.Companies) == 0 && len(c.Positions) == 0 && len(c.Roles) == 0
}

// TargetingSpec is the wire and storage form of a targeting descriptor.
// A spec decoded from JSON keeps the submitted payload, which is what gets persisted.
type TargetingSpec struct {
	Type    TargetingMode   `json:"type"`
	Filter  *FilterCriteria `json:"filter,omitempty"`
	UserIDs []string        `json:"userIds,omitempty"`

	raw json.RawMessage
}

// UnmarshalJSON decodes the spec and retains the payload as submitted.
func (s *TargetingSpec) UnmarshalJSON(data []byte) error {
	type wire TargetingSpec
	var decoded wire
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*s = TargetingSpec(decoded)
	s.raw = append(json.RawMessage(nil), data...)
	return nil
}

// Raw returns the submitted payload, or nil for specs built in code.
func (s TargetingSpec) Raw() json.RawMessage {
	return s.raw
}

// SpecFor renders a descriptor back into its wire form.
func SpecFor(d TargetingDescriptor) TargetingSpec {
	switch v := d.(type) {
	case AllTargeting:
		return TargetingSpec{Type: TargetingAll}
	case FilteredTargeting:
		criteria := v.Criteria
		return TargetingSpec{Type: TargetingFilter, Filter: &criteria}
	case ManualTargeting:
		return TargetingSpec{Type: TargetingManual, UserIDs: v.RecipientIDs}
	default:
		return TargetingSpec{}
	}
}

// Value stores the spec as JSONB, preferring the submitted payload.
func (s TargetingSpec) Value() (driver.Value, error) {
	if len(s.raw) > 0 {
		return []byte(s.raw), nil
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal targeting: %w", err)
	}
	return raw, nil
}

// Scan reads a JSONB column into the spec.
func (s *TargetingSpec) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*s = TargetingSpec{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("scan targeting: unsupported type %T", src)
	}
	var decoded TargetingSpec
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return fmt.Errorf("scan targeting: %w", err)
	}
	*s = decoded
	return nil
}
