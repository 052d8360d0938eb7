package store

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/boltdb/bolt"
	"go.uber.org/zap"

	"github.com/okvalo/pixpress/press"
)

const (
	stateBucket = "state"

	settingsKey = "compressionSettings"
	imagesKey   = "compressorImages"
)

// DB wraps the bolt database file holding settings and registry metadata.
// All reads and writes are synchronous.
type DB struct {
	bolt *bolt.DB
	log  *zap.Logger
}

// Open opens (creating if needed) the database at path. log may be nil.
func Open(path string, log *zap.Logger) (*DB, error) {
	if log == nil {
		log = zap.NewNop()
	}
	b, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening bolt file: %w", err)
	}
	err = b.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(stateBucket))
		return err
	})
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("creating state bucket: %w", err)
	}
	return &DB{bolt: b, log: log}, nil
}

// Close closes the underlying database.
func (db *DB) Close() error {
	return db.bolt.Close()
}

// SaveSettings stores the settings snapshot as JSON.
func (db *DB) SaveSettings(s press.Settings) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	return db.put(settingsKey, data)
}

// LoadSettings returns persisted settings merged over defaults: fields
// missing from the stored JSON keep their default values, so older
// databases keep working as the schema grows. A corrupt value is logged
// and replaced by defaults, never fatal.
func (db *DB) LoadSettings() press.Settings {
	s := press.DefaultSettings()
	data := db.get(settingsKey)
	if data == nil {
		return s
	}
	if err := json.Unmarshal(data, &s); err != nil {
		db.log.Warn("stored settings unreadable, using defaults", zap.Error(err))
		return press.DefaultSettings()
	}
	return s.Clamp()
}

// persistedRecord is the durable subset of a Record: metadata only, never
// file handles or live-preview state.
type persistedRecord struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	OriginalURL       string          `json:"originalUrl"`
	OriginalSize      int64           `json:"originalSize"`
	CommittedURL      string          `json:"committedUrl,omitempty"`
	CommittedSize     int64           `json:"committedSize,omitempty"`
	CommittedRatio    float64         `json:"committedRatio,omitempty"`
	CommittedSettings *press.Settings `json:"committedSettings,omitempty"`
	Status            Status          `json:"status"`
	Error             string          `json:"error,omitempty"`
}

// SaveRecords stores registry metadata as a JSON array.
func (db *DB) SaveRecords(records []*Record) error {
	out := make([]persistedRecord, 0, len(records))
	for _, rec := range records {
		p := persistedRecord{
			ID:                rec.ID,
			Name:              rec.Name,
			OriginalURL:       rec.OriginalURL,
			OriginalSize:      rec.OriginalSize,
			CommittedSize:     rec.CommittedSize,
			CommittedRatio:    rec.CommittedRatio,
			CommittedSettings: rec.CommittedSettings,
			Status:            rec.Status,
			Error:             rec.Error,
		}
		if rec.Committed != nil {
			p.CommittedURL = rec.Committed.URL()
		}
		// A compress interrupted by shutdown restarts from pending.
		if p.Status == StatusCompressing {
			p.Status = StatusPending
		}
		out = append(out, p)
	}
	data, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("encoding image records: %w", err)
	}
	return db.put(imagesKey, data)
}

// LoadRecords rehydrates registry metadata. Committed artifacts whose
// cache files have disappeared demote the record back to pending. Decode
// failures are logged and yield an empty registry rather than an error.
func (db *DB) LoadRecords() []*Record {
	data := db.get(imagesKey)
	if data == nil {
		return nil
	}
	var stored []persistedRecord
	if err := json.Unmarshal(data, &stored); err != nil {
		db.log.Warn("stored image registry unreadable, starting empty", zap.Error(err))
		return nil
	}

	records := make([]*Record, 0, len(stored))
	for _, p := range stored {
		rec := &Record{
			ID:           p.ID,
			Name:         p.Name,
			OriginalURL:  p.OriginalURL,
			OriginalSize: p.OriginalSize,
			Status:       p.Status,
			Error:        p.Error,
		}
		// Only the URL survives a restart; the source path is re-derived
		// from it when the file still exists.
		if path, ok := urlPath(p.OriginalURL); ok {
			rec.SourcePath = path
		}

		if p.Status == StatusCompressed {
			if path, ok := urlPath(p.CommittedURL); ok {
				if _, err := os.Stat(path); err == nil {
					rec.Committed = &press.Artifact{Path: path, Size: p.CommittedSize}
					rec.CommittedSize = p.CommittedSize
					rec.CommittedRatio = p.CommittedRatio
					rec.CommittedSettings = p.CommittedSettings
				}
			}
			if rec.Committed == nil {
				db.log.Info("committed artifact missing, image demoted to pending",
					zap.String("image", p.Name))
				rec.Status = StatusPending
			}
		}
		records = append(records, rec)
	}
	return records
}

func urlPath(url string) (string, bool) {
	if url == "" {
		return "", false
	}
	const prefix = "file://"
	if len(url) > len(prefix) && url[:len(prefix)] == prefix {
		return url[len(prefix):], true
	}
	return url, true
}

func (db *DB) put(key string, value []byte) error {
	return db.bolt.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(stateBucket)).Put([]byte(key), value)
	})
}

func (db *DB) get(key string) []byte {
	var out []byte
	_ = db.bolt.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket([]byte(stateBucket)).Get([]byte(key)); v != nil {
			out = append([]byte(nil), v...)
		}
		return nil
	})
	return out
}
