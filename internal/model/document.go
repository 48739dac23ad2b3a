package model

import "time"

// DocumentType distinguishes procurement document kinds
type DocumentType string

const (
	DocumentTypePOW             DocumentType = "POW"
	DocumentTypePurchaseRequest DocumentType = "PURCHASE_REQUEST"
)

// DocumentStatus represents where a document is in review
type DocumentStatus string

const (
	DocumentStatusDraft     DocumentStatus = "DRAFT"
	DocumentStatusForReview DocumentStatus = "FOR_REVIEW"
	DocumentStatusRevision  DocumentStatus = "REVISION"
	DocumentStatusReleased  DocumentStatus = "RELEASED"
)

// CanTransitionTo reports whether a document may move from s to next.
// RELEASED is terminal.
func (s DocumentStatus) CanTransitionTo(next DocumentStatus) bool {
	switch s {
	case DocumentStatusDraft:
		return next == DocumentStatusForReview
	case DocumentStatusForReview:
		return next == DocumentStatusRevision || next == DocumentStatusReleased
	case DocumentStatusRevision:
		return next == DocumentStatusForReview
	}
	return false
}

// Document represents a procurement or clearance document.
// ProjectRef is a free-form project code and is not a foreign key.
type Document struct {
	UUIDModel
	DocumentCode   string         `gorm:"type:varchar(64);uniqueIndex;not null" json:"documentCode"`
	Type           DocumentType   `gorm:"type:varchar(32);not null;index" json:"type"`
	Title          string         `gorm:"type:varchar(255);not null" json:"title"`
	Status         DocumentStatus `gorm:"type:varchar(32);not null;default:'DRAFT';index" json:"status"`
	FilePath       *string        `gorm:"type:varchar(255)" json:"filePath"`
	FileName       *string        `gorm:"type:varchar(255)" json:"fileName"`
	FileSize       *int64         `json:"fileSize"`
	Amount         *float64       `gorm:"type:decimal(15,2)" json:"amount"`
	District       District       `gorm:"type:varchar(32);not null;index" json:"district"`
	ProjectRef     *string        `gorm:"type:varchar(64);index" json:"projectRef"`
	ReleasedAt     *time.Time     `json:"releasedAt"`
	ReleasedBy     *string        `gorm:"type:varchar(36)" json:"releasedBy"`
	ReleaseRemarks *string        `gorm:"type:varchar(255)" json:"releaseRemarks"`
	CreatedBy      string         `gorm:"type:varchar(36);not null;index" json:"createdBy"`

	// Relations
	Creator *User `gorm:"foreignKey:CreatedBy;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"creator,omitempty"`
}

// TableName specifies the table name for Document model
func (Document) TableName() string {
	return "documents"
}
