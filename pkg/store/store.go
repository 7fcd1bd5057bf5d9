// Package store persists sessions, their chat logs and lifecycle
// transitions in SQLite (pure Go driver, in-memory when no data dir is
// configured, which is also handy for tests).
package store

import (
	"errors"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/greenroom-live/greenroom/pkg/logger"
	"github.com/greenroom-live/greenroom/pkg/os"
	"github.com/greenroom-live/greenroom/pkg/session"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type Store struct {
	db  *gorm.DB
	log *logger.Logger
}

var ErrExists = errors.New("session already exists")

func New(dataDir string, log *logger.Logger) (*Store, error) {
	dsn := "file::memory:?cache=shared"
	if dataDir != "" {
		if err := os.CheckCreateDir(dataDir); err != nil {
			return nil, err
		}
		dsn = filepath.Join(dataDir, "greenroom.db")
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 gormlogger.Discard,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&Session{}, &Participant{}, &Message{}, &Transition{}); err != nil {
		return nil, err
	}
	return &Store{db: db, log: log}, nil
}

func (s *Store) Close() error {
	db, err := s.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}

func (s *Store) CreateSession(sess *Session) error {
	if sess.Status == "" {
		sess.Status = string(session.Scheduled)
	}
	var n int64
	if err := s.db.Model(&Session{}).Where("id = ?", sess.ID).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return ErrExists
	}
	return s.db.Create(sess).Error
}

// GetSession loads a session record with its authorized set.
func (s *Store) GetSession(id string) (*Session, error) {
	var sess Session
	err := s.db.Preload("Participants").First(&sess, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, session.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

// RecordTransition writes a lifecycle move as one atomic unit: the
// session row is advanced only when it is still in the expected from
// state, and the transition log entry is appended alongside. A stale
// from state fails with ErrInvalidTransition and changes nothing.
func (s *Store) RecordTransition(id string, from, to session.Status, actor string, at time.Time) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		patch := map[string]any{"status": string(to), "updated_at": at}
		switch to {
		case session.InProgress:
			patch["started_at"] = at
		case session.Completed, session.Cancelled:
			patch["ended_at"] = at
		}
		res := tx.Model(&Session{}).
			Where("id = ? AND status = ?", id, string(from)).
			Updates(patch)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var n int64
			if err := tx.Model(&Session{}).Where("id = ?", id).Count(&n).Error; err != nil {
				return err
			}
			if n == 0 {
				return session.ErrSessionNotFound
			}
			return session.ErrInvalidTransition
		}
		return tx.Create(&Transition{
			SessionID:  id,
			FromStatus: string(from),
			ToStatus:   string(to),
			ActorID:    actor,
			At:         at,
		}).Error
	})
}

// AppendMessage appends a chat entry to the session's log.
func (s *Store) AppendMessage(sessionID, senderID, body string, at time.Time) (*Message, error) {
	m := Message{SessionID: sessionID, SenderID: senderID, Body: body, SentAt: at}
	if err := s.db.Create(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// Messages returns the chat log in send order, optionally only entries
// after the given time (for catch-up since last seen).
func (s *Store) Messages(sessionID string, after time.Time) ([]Message, error) {
	var out []Message
	q := s.db.Where("session_id = ?", sessionID)
	if !after.IsZero() {
		q = q.Where("sent_at > ?", after)
	}
	if err := q.Order("id").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Transitions returns the recorded lifecycle moves in order.
func (s *Store) Transitions(sessionID string) ([]Transition, error) {
	var out []Transition
	if err := s.db.Where("session_id = ?", sessionID).Order("id").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
