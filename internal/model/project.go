package model

// ProjectSubType classifies the kind of infrastructure
type ProjectSubType string

const (
	ProjectSubTypeRoad         ProjectSubType = "ROAD"
	ProjectSubTypeBridge       ProjectSubType = "BRIDGE"
	ProjectSubTypeBuilding     ProjectSubType = "BUILDING"
	ProjectSubTypeWaterSystem  ProjectSubType = "WATER_SYSTEM"
	ProjectSubTypeFloodControl ProjectSubType = "FLOOD_CONTROL"
	ProjectSubTypeOthers       ProjectSubType = "OTHERS"
)

// ImplementationMode describes who executes the works
type ImplementationMode string

const (
	ImplementationByAdministration ImplementationMode = "BY_ADMINISTRATION"
	ImplementationByContract       ImplementationMode = "BY_CONTRACT"
)

// District is a legislative district of the province
type District string

const (
	District1 District = "DISTRICT_1"
	District2 District = "DISTRICT_2"
	District3 District = "DISTRICT_3"
	District4 District = "DISTRICT_4"
)

// FundSource is the appropriation a project is charged against
type FundSource string

const (
	FundSourceGeneralFund          FundSource = "GENERAL_FUND"
	FundSourceDevelopmentFund20    FundSource = "DEVELOPMENT_FUND_20"
	FundSourceSpecialEducationFund FundSource = "SPECIAL_EDUCATION_FUND"
	FundSourceTrustFund            FundSource = "TRUST_FUND"
	FundSourceNationalGrant        FundSource = "NATIONAL_GRANT"
	FundSourceOthers               FundSource = "OTHERS"
)

// ProjectStatus represents project progress
type ProjectStatus string

const (
	ProjectStatusNotYetStarted ProjectStatus = "NOT_YET_STARTED"
	ProjectStatusOngoing       ProjectStatus = "ON_GOING"
	ProjectStatusCompleted     ProjectStatus = "COMPLETED"
	ProjectStatusSuspended     ProjectStatus = "SUSPENDED"
)

// Project represents an infrastructure project record
type Project struct {
	UUIDModel
	ProjectCode        string             `gorm:"type:varchar(64);uniqueIndex;not null" json:"projectCode"`
	Title              string             `gorm:"type:varchar(255);not null" json:"title"`
	SubType            *ProjectSubType    `gorm:"type:varchar(32)" json:"subType"`
	ImplementationMode ImplementationMode `gorm:"type:varchar(32);not null" json:"implementationMode"`
	District           District           `gorm:"type:varchar(32);not null;index" json:"district"`
	FundSource         FundSource         `gorm:"type:varchar(32);not null" json:"fundSource"`
	Appropriation      float64            `gorm:"type:decimal(15,2);not null;default:0" json:"appropriation"`
	ContractCost       float64            `gorm:"type:decimal(15,2);not null;default:0" json:"contractCost"`
	DurationDays       int                `gorm:"not null;default:0" json:"durationDays"`
	DaysElapsed        int                `gorm:"not null;default:0" json:"daysElapsed"`
	ManpowerCount      int                `gorm:"not null;default:0" json:"manpowerCount"`
	Barangay           string             `gorm:"type:varchar(128)" json:"barangay"`
	Municipality       string             `gorm:"type:varchar(128)" json:"municipality"`
	LocationRemarks    string             `gorm:"type:varchar(255)" json:"locationRemarks"`
	Status             ProjectStatus      `gorm:"type:varchar(32);not null;default:'NOT_YET_STARTED';index" json:"status"`
	CreatedBy          string             `gorm:"type:varchar(36);not null;index" json:"createdBy"`

	// Relations
	Creator *User `gorm:"foreignKey:CreatedBy;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"creator,omitempty"`
}

// TableName specifies the table name for Project model
func (Project) TableName() string {
	return "projects"
}
