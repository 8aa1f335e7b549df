package models

// Catalog entities live in the long-lived primary database and are shared
// across every shift.

type Category struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"not null;unique" json:"name"`
}

type Dish struct {
	ID         uint     `gorm:"primaryKey" json:"id"`
	Name       string   `gorm:"not null" json:"name"`
	Price      float64  `gorm:"not null" json:"price"`
	CategoryID uint     `gorm:"index" json:"category_id"`
	Category   Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE" json:"-"`
}

// Customer is looked up by phone number. Phone uniqueness is a convention
// enforced by the upsert path, not a schema constraint.
type Customer struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Name    string `gorm:"not null" json:"name"`
	Phone   string `gorm:"index" json:"phone"`
	Address string `json:"address"`
}
