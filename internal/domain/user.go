package domain

import (
	"regexp"

	"github.com/google/uuid"
)

// FullNamePattern accepts "Surname Name" or "Surname Name Patronymic" in Latin or Cyrillic letters.
var FullNamePattern = regexp.MustCompile(`^[a-zA-Zа-яёА-ЯЁ]+\s[a-zA-Zа-яёА-ЯЁ]+(\s[a-zA-Zа-яёА-ЯЁ]+)?$`)

type User struct {
	BaseEntity
	Login  string     `gorm:"uniqueIndex;size:191" json:"login"`
	Name   string     `gorm:"size:191;not null" json:"name" binding:"required,fullname"`
	UnitID *uuid.UUID `gorm:"size:36;index" json:"unitId"`
	Unit   *Unit      `gorm:"constraint:OnDelete:SET NULL" json:"unit,omitempty" binding:"-"`
}

func (User) TableName() string { return "users" }
