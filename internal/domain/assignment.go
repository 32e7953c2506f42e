package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	PurposeNormal   = "normal"
	PurposePractice = "practice"

	ContentKindDrill    = "drill"
	ContentKindExercise = "exercise"
)

// SessionAssignment persists the sampled, order-stable item subset chosen
// for one user+content+purpose. Overwritten on regeneration, never
// appended.
type SessionAssignment struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_assignment_user_content_purpose;column:user_id" json:"user_id"`
	ContentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_assignment_user_content_purpose;column:content_id" json:"content_id"`
	Purpose   string    `gorm:"not null;uniqueIndex:idx_assignment_user_content_purpose;column:purpose" json:"purpose"`

	ContentKind string `gorm:"not null;column:content_kind" json:"content_kind"`

	// ItemIDs is the ordered JSON list of question/challenge IDs.
	ItemIDs datatypes.JSON `gorm:"not null;column:item_ids" json:"item_ids"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (SessionAssignment) TableName() string { return "session_assignment" }

func (a *SessionAssignment) DecodeItemIDs() ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if len(a.ItemIDs) == 0 {
		return ids, nil
	}
	if err := json.Unmarshal(a.ItemIDs, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

func (a *SessionAssignment) SetItemIDs(ids []uuid.UUID) error {
	if ids == nil {
		ids = []uuid.UUID{}
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	a.ItemIDs = datatypes.JSON(raw)
	return nil
}
