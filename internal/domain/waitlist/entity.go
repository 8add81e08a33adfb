package waitlist

import "time"

// Entry はクラスのキャンセル待ちリストへの登録を表す
// 状態遷移: queued（active・未通知）→ notified（通知済み・期限付き）
// → confirmed または expired（どちらも終端、active=false）
type Entry struct {
	ID              string
	MemberID        string
	ClassID         string
	Position        int
	Notified        bool
	Confirmed       bool
	Active          bool
	EnqueuedAt      time.Time
	NotifiedAt      *time.Time
	ConfirmDeadline *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewEntry は新しいキャンセル待ちエントリを作成する
// position はクラス内で過去に発行された最大値+1（欠番は再利用しない）
func NewEntry(memberID, classID string, position int) *Entry {
	now := time.Now()
	return &Entry{
		MemberID:   memberID,
		ClassID:    classID,
		Position:   position,
		Active:     true,
		EnqueuedAt: now,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Validate はエントリの検証を行う
func (e *Entry) Validate() error {
	if e.MemberID == "" {
		return ErrMemberIDRequired
	}
	if e.ClassID == "" {
		return ErrClassIDRequired
	}
	if e.Position < 1 {
		return ErrInvalidPosition
	}
	return nil
}

// Notify はエントリを通知済みにし、確認期限を設定する
func (e *Entry) Notify(confirmWindow time.Duration) {
	now := time.Now()
	deadline := now.Add(confirmWindow)
	e.Notified = true
	e.NotifiedAt = &now
	e.ConfirmDeadline = &deadline
	e.UpdatedAt = now
}

// Confirm はエントリを確認済みにして終端化する
func (e *Entry) Confirm() {
	e.Confirmed = true
	e.Active = false
	e.UpdatedAt = time.Now()
}

// Deactivate はエントリを無効化する（辞退・期限切れ・リスト無効化）
func (e *Entry) Deactivate() {
	e.Active = false
	e.UpdatedAt = time.Now()
}

// HasExpired は確認期限が過ぎているかを返す
func (e *Entry) HasExpired() bool {
	if !e.Notified || e.ConfirmDeadline == nil {
		return false
	}
	return time.Now().After(*e.ConfirmDeadline)
}

// CanConfirm は会員が枠を確認できる状態かを返す
func (e *Entry) CanConfirm() bool {
	return e.Notified && !e.Confirmed && e.Active && !e.HasExpired()
}
