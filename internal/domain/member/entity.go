package member

import "time"

// MembershipStatus は会員資格の状態を表す
type MembershipStatus string

const (
	StatusActive    MembershipStatus = "active"
	StatusSuspended MembershipStatus = "suspended"
	StatusCancelled MembershipStatus = "cancelled"
)

// Member は会員エンティティを表す
// 会員情報は会員ディレクトリが所有し、予約サブシステムからは参照のみ行う
type Member struct {
	ID        string
	FirstName string
	LastName  string
	Email     string
	Status    MembershipStatus
	PlanID    *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FullName は会員のフルネームを返す
func (m *Member) FullName() string {
	return m.FirstName + " " + m.LastName
}

// HasActivePlan は有効な会員プランを持っているかを返す
func (m *Member) HasActivePlan() bool {
	return m.PlanID != nil && m.Status == StatusActive
}
