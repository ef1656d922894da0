package models

// RecipientStatus represents the lifecycle state of an addressable user.
type RecipientStatus string

const (
	RecipientActive   RecipientStatus = "active"
	RecipientInactive RecipientStatus = "inactive"
)

// Recipient is a user eligible to receive notifications.
type Recipient struct {
	ID       string          `db:"id" json:"id"`
	Email    string          `db:"email" json:"email"`
	FullName string          `db:"full_name" json:"full_name"`
	Company  string          `db:"company" json:"company"`
	Position string          `db:"position" json:"position"`
	Role     string          `db:"role" json:"role"`
	Status   RecipientStatus `db:"status" json:"status"`
}

// RecipientSelector is the predicate of a bulk delivery plan.
// A recipient matches when its status equals Status and, if any candidate list is
// non-empty, at least one of its attributes appears in the corresponding list.
type RecipientSelector struct {
	Status    RecipientStatus
	Companies []string
	Positions []string
	Roles     []string
}

// HasCriteria reports whether the selector carries an OR clause.
func (s RecipientSelector) HasCriteria() bool {
	return len(s.Companies) > 0 || len(s.Positions) > 0 || len(s.Roles) > 0
}

// Matches evaluates the predicate against a recipient.
func (s RecipientSelector) Matches(r Recipient) bool {
	if r.Status != s.Status {
		return false
	}
	if !s.HasCriteria() {
		return true
	}
	return contains(s.Companies, r.Company) || contains(s.Positions, r.Position) || contains(s.Roles, r.Role)
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
