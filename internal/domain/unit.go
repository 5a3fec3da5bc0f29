package domain

// Unit is an organisational unit users can belong to.
type Unit struct {
	BaseEntity
	Name  string `gorm:"size:191;not null" json:"name" binding:"required"`
	Users []User `gorm:"foreignKey:UnitID;constraint:OnDelete:SET NULL" json:"users,omitempty" binding:"-"`
}

func (Unit) TableName() string { return "units" }
