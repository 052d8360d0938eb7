package store

import (
	"sync"

	"go.uber.org/zap"

	"github.com/okvalo/pixpress/press"
)

// SettingsStore holds the current compression settings and writes every
// change through to the database.
type SettingsStore struct {
	mu  sync.Mutex
	s   press.Settings
	db  *DB
	log *zap.Logger
}

// NewSettingsStore loads persisted settings merged over defaults. db may
// be nil for an in-memory store.
func NewSettingsStore(db *DB, log *zap.Logger) *SettingsStore {
	if log == nil {
		log = zap.NewNop()
	}
	st := &SettingsStore{s: press.DefaultSettings(), db: db, log: log}
	if db != nil {
		st.s = db.LoadSettings()
	}
	return st
}

// Get returns the current settings snapshot.
func (st *SettingsStore) Get() press.Settings {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.s
}

// Update applies fn to a copy of the current settings, clamps the result,
// persists it, and returns the new snapshot.
func (st *SettingsStore) Update(fn func(*press.Settings)) press.Settings {
	st.mu.Lock()
	defer st.mu.Unlock()

	next := st.s
	fn(&next)
	st.s = next.Clamp()

	if st.db != nil {
		if err := st.db.SaveSettings(st.s); err != nil {
			st.log.Warn("persisting settings failed", zap.Error(err))
		}
	}
	return st.s
}
