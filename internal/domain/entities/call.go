package entities

import (
	"time"

	"github.com/google/uuid"
)

// CallStatus represents the processing lifecycle of a sales call
type CallStatus string

const (
	CallStatusPending    CallStatus = "pending"    // Uploaded, waiting for the pipeline
	CallStatusProcessing CallStatus = "processing" // Pipeline running
	CallStatusCompleted  CallStatus = "completed"  // Transcript and segments persisted
	CallStatusFailed     CallStatus = "failed"     // Unrecovered pipeline error
)

// callTransitions lists the statuses a call may move to from each status.
// Completed and failed are terminal.
var callTransitions = map[CallStatus][]CallStatus{
	CallStatusPending:    {CallStatusProcessing, CallStatusFailed},
	CallStatusProcessing: {CallStatusCompleted, CallStatusFailed},
}

// IsValid reports whether s is a known status
func (s CallStatus) IsValid() bool {
	switch s {
	case CallStatusPending, CallStatusProcessing, CallStatusCompleted, CallStatusFailed:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is allowed
func (s CallStatus) IsTerminal() bool {
	return s == CallStatusCompleted || s == CallStatusFailed
}

// CanTransitionTo checks whether moving from s to next is allowed
func (s CallStatus) CanTransitionTo(next CallStatus) bool {
	for _, allowed := range callTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// PredecessorsOf returns every status that may transition into next
func PredecessorsOf(next CallStatus) []CallStatus {
	var from []CallStatus
	for status, targets := range callTransitions {
		for _, t := range targets {
			if t == next {
				from = append(from, status)
			}
		}
	}
	return from
}

// Call is a single sales-call submission
type Call struct {
	ID             uint        `json:"-" gorm:"primaryKey;autoIncrement"`
	CallID         string      `json:"call_id" gorm:"type:varchar(64);uniqueIndex;not null"`
	AgentID        string      `json:"agent_id,omitempty" gorm:"type:varchar(128)"`
	CustomerID     string      `json:"customer_id,omitempty" gorm:"type:varchar(128)"`
	AudioFilename  string      `json:"audio_filename,omitempty" gorm:"type:varchar(512)"`
	AudioObjectKey string      `json:"audio_object_key,omitempty" gorm:"type:varchar(512)"`
	Status         CallStatus  `json:"status" gorm:"type:varchar(32);not null;default:'pending';index"`
	Transcript     *Transcript `json:"transcript,omitempty" gorm:"foreignKey:CallID;references:CallID;constraint:OnDelete:CASCADE"`
	Segments       []Segment   `json:"segments,omitempty" gorm:"foreignKey:CallID;references:CallID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time   `json:"created_at" gorm:"autoCreateTime;index"`
	UpdatedAt      time.Time   `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Call) TableName() string {
	return "calls"
}

// NewCall creates a pending call. An empty callID gets a fresh UUID.
func NewCall(callID, agentID, customerID string) *Call {
	if callID == "" {
		callID = uuid.NewString()
	}
	now := time.Now()
	return &Call{
		CallID:     callID,
		AgentID:    agentID,
		CustomerID: customerID,
		Status:     CallStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}
