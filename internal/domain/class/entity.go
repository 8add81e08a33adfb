package class

import "time"

// Class はジムのグループクラスエンティティを表す
// 定員（Capacity）は不変条件として常に1以上
type Class struct {
	ID              string
	Title           string
	Description     string
	Capacity        int
	Active          bool
	WaitlistEnabled bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewClass は新しいクラスを作成する
func NewClass(title, description string, capacity int) *Class {
	now := time.Now()
	return &Class{
		Title:       title,
		Description: description,
		Capacity:    capacity,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Validate はクラスの検証を行う
func (c *Class) Validate() error {
	if c.Title == "" {
		return ErrTitleRequired
	}
	if c.Capacity <= 0 {
		return ErrInvalidCapacity
	}
	return nil
}

// Deactivate はクラスを無効化する（予約受付停止）
func (c *Class) Deactivate() {
	c.Active = false
	c.UpdatedAt = time.Now()
}

// EnableWaitlist はキャンセル待ちリストを有効化する
func (c *Class) EnableWaitlist() error {
	if c.WaitlistEnabled {
		return ErrWaitlistAlreadyEnabled
	}
	c.WaitlistEnabled = true
	c.UpdatedAt = time.Now()
	return nil
}

// DisableWaitlist はキャンセル待ちリストを無効化する
func (c *Class) DisableWaitlist() {
	c.WaitlistEnabled = false
	c.UpdatedAt = time.Now()
}

// FreeSlots は確定済み予約数から空き枠数を計算する
// occupied は有効な予約の件数（導出値であり保存されない）
func (c *Class) FreeSlots(occupied int) int {
	free := c.Capacity - occupied
	if free < 0 {
		return 0
	}
	return free
}

// HasCapacity は空き枠があるかを返す
func (c *Class) HasCapacity(occupied int) bool {
	return c.FreeSlots(occupied) > 0
}
