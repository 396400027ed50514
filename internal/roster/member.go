package roster

import (
	"time"
)

// Role is the application role of a team member.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// Member represents a team member with their office-day pattern.
type Member struct {
	ID         string
	Name       string
	OfficeDays map[time.Weekday]bool
	Email      string
	Role       Role
	Active     bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// InOffice reports whether the member is normally in the office on the given
// weekday.
func (m Member) InOffice(day time.Weekday) bool {
	return m.OfficeDays[day]
}

// HasOfficeDays reports whether the member's office pattern covers every
// weekday in required.
func (m Member) HasOfficeDays(required map[time.Weekday]bool) bool {
	for day, needed := range required {
		if needed && !m.OfficeDays[day] {
			return false
		}
	}
	return true
}

// UnavailablePeriod represents whole-day unavailability for a member over an
// inclusive date range.
type UnavailablePeriod struct {
	ID        int64
	MemberID  string
	StartDate time.Time
	EndDate   time.Time
	Reason    string
	CreatedAt time.Time
}

// Contains reports whether date falls inside the period.
func (p UnavailablePeriod) Contains(date time.Time) bool {
	d := date.Format("2006-01-02")
	return d >= p.StartDate.Format("2006-01-02") && d <= p.EndDate.Format("2006-01-02")
}
