package models

import "time"

// ParentStudent links a parent account to a student record. A parent may
// have several students and a student several parents.
type ParentStudent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ParentID  uint      `gorm:"not null;index;uniqueIndex:idx_parent_student" json:"parent_id"`
	Parent    User      `gorm:"foreignKey:ParentID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	StudentID uint      `gorm:"not null;index;uniqueIndex:idx_parent_student" json:"student_id"`
	Student   Student   `gorm:"foreignKey:StudentID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}
