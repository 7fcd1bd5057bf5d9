package store

import "time"

// Session is the durable session record: the single state of record for
// the lifecycle, shared by the push and the poll read paths.
type Session struct {
	ID          string `gorm:"primaryKey"`
	Status      string `gorm:"index"`
	ScheduledAt time.Time
	Duration    time.Duration
	StartedAt   *time.Time
	EndedAt     *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Participants []Participant `gorm:"foreignKey:SessionID"`
}

// Participant is one entry of a session's authorized set.
type Participant struct {
	ID            uint   `gorm:"primarykey"`
	SessionID     string `gorm:"index:idx_session_participant,unique"`
	ParticipantID string `gorm:"index:idx_session_participant,unique"`
	Role          string
}

// Message is one chat log entry. The log is append-only per session.
type Message struct {
	ID        uint   `gorm:"primarykey"`
	SessionID string `gorm:"index"`
	SenderID  string
	Body      string
	SentAt    time.Time `gorm:"index"`
}

// Transition is one recorded lifecycle move.
type Transition struct {
	ID         uint   `gorm:"primarykey"`
	SessionID  string `gorm:"index"`
	FromStatus string
	ToStatus   string
	ActorID    string
	At         time.Time
}
