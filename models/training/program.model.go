package training

// Program statuses
const (
	ProgramDraft  = "DRAFT"
	ProgramActive = "ACTIVE"
)

// Program is an ordered set of modules a learner completes in sequence
type Program struct {
	Base
	Title        string   `json:"title" gorm:"not null"`
	Description  string   `json:"description" gorm:"type:text"`
	Status       string   `json:"status" gorm:"default:'DRAFT'"`
	PassingScore int      `json:"passing_score" gorm:"not null"`
	MaxAttempts  int      `json:"max_attempts" gorm:"default:0"` // 0 = unlimited
	IsPublished  bool     `json:"is_published" gorm:"default:false"`
	IsDeleted    bool     `gorm:"default:false"`
	Modules      []Module `json:"modules,omitempty" gorm:"foreignKey:ProgramID;constraint:OnDelete:CASCADE"`
}

func (Program) TableName() string { return "training_programs" }

// Module is a section of a program
type Module struct {
	Base
	ProgramID     string    `json:"program_id" gorm:"type:varchar(36);index;not null"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	SequenceOrder int       `json:"sequence_order" gorm:"default:0"`
	IsGateway     bool      `json:"is_gateway" gorm:"default:false"`
	IsDeleted     bool      `gorm:"default:false"`
	Contents      []Content `json:"contents,omitempty" gorm:"foreignKey:ModuleID;constraint:OnDelete:CASCADE"`
}

func (Module) TableName() string { return "training_modules" }
