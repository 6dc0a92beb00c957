package types

import (
	"encoding/json"
	"time"
)

// Stage is the last pipeline step whose results are durably committed for a deck.
type Stage string

const (
	StageNew                Stage = "new"
	StageTextExtracted      Stage = "text_extracted"
	StageSummarized         Stage = "summarized"
	StageClaimsExtracted    Stage = "claims_extracted"
	StageClaimsAssessed     Stage = "claims_assessed"
	StageQuestionsGenerated Stage = "questions_generated"
	StageComplete           Stage = "complete"
)

// Stages lists every stage in pipeline order.
var Stages = []Stage{
	StageNew,
	StageTextExtracted,
	StageSummarized,
	StageClaimsExtracted,
	StageClaimsAssessed,
	StageQuestionsGenerated,
	StageComplete,
}

func (s Stage) Valid() bool {
	for _, stage := range Stages {
		if s == stage {
			return true
		}
	}
	return false
}

type Startup struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"not null"`
	Website     *string   `json:"website"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`

	Decks []Deck `json:"decks,omitempty" gorm:"constraint:OnDelete:CASCADE"`
}

// Deck is one uploaded pitch deck and its derived analysis state.
// Processed is true exactly when Stage is StageComplete.
type Deck struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	StartupID    uint      `json:"startup_id" gorm:"index;not null"`
	FilePath     string    `json:"file_path" gorm:"not null"`
	RawText      *string   `json:"-" gorm:"type:text"`
	SummaryJSON  *string   `json:"-" gorm:"type:text"`
	Stage        Stage     `json:"stage" gorm:"type:varchar(32);index;not null;default:new"`
	Processed    bool      `json:"processed" gorm:"index;not null;default:false"`
	FailureCount int       `json:"failure_count" gorm:"not null;default:0"`
	LastError    *string   `json:"last_error" gorm:"type:text"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Claims    []Claim    `json:"claims,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	Questions []Question `json:"questions,omitempty" gorm:"constraint:OnDelete:CASCADE"`
}

// Summary decodes SummaryJSON. A missing or unreadable summary decodes to an
// empty mapping.
func (d *Deck) Summary() Summary {
	if d.SummaryJSON == nil {
		return Summary{}
	}
	var summary Summary
	if err := json.Unmarshal([]byte(*d.SummaryJSON), &summary); err != nil || summary == nil {
		return Summary{}
	}
	return summary
}

// CurrentStage returns the stored stage. Processed decks are always complete,
// and an unknown stage is inferred from the nullable fields.
func (d *Deck) CurrentStage() Stage {
	if d.Processed {
		return StageComplete
	}
	if d.Stage.Valid() {
		return d.Stage
	}
	switch {
	case d.RawText == nil:
		return StageNew
	case d.SummaryJSON == nil:
		return StageTextExtracted
	default:
		return StageSummarized
	}
}

type Claim struct {
	ID                uint     `json:"id" gorm:"primaryKey"`
	DeckID            uint     `json:"deck_id" gorm:"index;not null"`
	Text              string   `json:"text" gorm:"type:text;not null"`
	Category          Category `json:"category" gorm:"type:varchar(16);not null"`
	PlausibilityScore *float64 `json:"plausibility_score"`
	Notes             *string  `json:"notes" gorm:"type:text"`
}

type Question struct {
	ID       uint     `json:"id" gorm:"primaryKey"`
	DeckID   uint     `json:"deck_id" gorm:"index;not null"`
	Text     string   `json:"text" gorm:"type:text;not null"`
	Category Category `json:"category" gorm:"type:varchar(16);not null"`
}
