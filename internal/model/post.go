package model

// Post is a minimal demo entity
type Post struct {
	BaseModel
	Name      string `gorm:"type:varchar(255);not null;index" json:"name"`
	CreatedBy string `gorm:"type:varchar(36);not null;index" json:"createdBy"`

	// Relations
	Creator *User `gorm:"foreignKey:CreatedBy;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"creator,omitempty"`
}

// TableName specifies the table name for Post model
func (Post) TableName() string {
	return "posts"
}
