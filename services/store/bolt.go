package store

import (
	"fmt"
	"os"
	"sync"
	"time"

	"go.etcd.io/bbolt"

	"sjsage522/carwatcher/logger"
	scerrors "sjsage522/carwatcher/pkg/errors"
)

var seenBucket = []byte("seen")

// BoltStore persists the ledger in a bbolt database, one key per listing
type BoltStore struct {
	mu     sync.Mutex
	path   string
	db     *bbolt.DB
	record Record
	log    *logger.Logger
}

// NewBoltStore opens (or creates) the database at path and loads it.
// A file that is not a valid database is moved aside and replaced.
func NewBoltStore(path string, log *logger.Logger) (*BoltStore, error) {
	s := &BoltStore{
		path:   path,
		record: Record{},
		log:    log,
	}

	db, err := openBolt(path)
	if err != nil {
		aside := fmt.Sprintf("%s.corrupt-%d", path, time.Now().Unix())
		log.Warn().Err(scerrors.NewParse("store", "invalid bolt database", err)).
			Str("path", path).Str("moved_to", aside).
			Msg("Seen store unreadable, resetting to empty")
		if rerr := os.Rename(path, aside); rerr != nil {
			return nil, scerrors.NewStore("store", "failed to move corrupted database aside", rerr)
		}
		db, err = openBolt(path)
		if err != nil {
			return nil, scerrors.NewStore("store", "failed to open bolt database", err)
		}
	}
	s.db = db

	s.Load()
	return s, nil
}

func openBolt(path string) (*bbolt.DB, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(seenBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Load reads every key of the seen bucket into memory
func (s *BoltStore) Load() Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	record := Record{}
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(seenBucket)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			record[string(k)] = string(v)
			return nil
		})
	})
	if err != nil {
		s.log.Warn().Err(scerrors.NewParse("store", "failed to read seen bucket", err)).
			Str("path", s.path).Msg("Seen store unreadable, resetting to empty")
		record = Record{}
		if rerr := s.resetLocked(); rerr != nil {
			s.log.Error().Err(rerr).Str("path", s.path).Msg("Failed to reset seen store")
		}
	}

	s.record = record
	s.log.Debug().Int("entries", len(record)).Str("path", s.path).Msg("Seen store loaded")
	return s.record.Clone()
}

func (s *BoltStore) resetLocked() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if tx.Bucket(seenBucket) != nil {
			if err := tx.DeleteBucket(seenBucket); err != nil {
				return err
			}
		}
		_, err := tx.CreateBucket(seenBucket)
		return err
	})
}

// Contains reports whether id was seen
func (s *BoltStore) Contains(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.record[id]
	return ok
}

// MarkSeen records id in memory
func (s *BoltStore) MarkSeen(id, timestamp string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record[id] = timestamp
}

// Snapshot returns a copy of the in-memory mapping
func (s *BoltStore) Snapshot() Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record.Clone()
}

// Persist writes the whole mapping in one transaction
func (s *BoltStore) Persist() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(seenBucket)
		if err != nil {
			return err
		}
		for id, ts := range s.record {
			if err := b.Put([]byte(id), []byte(ts)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return scerrors.NewStore("store", "failed to persist seen store", err)
	}
	s.log.Debug().Int("entries", len(s.record)).Str("path", s.path).Msg("Seen store persisted")
	return nil
}

// Close closes the database
func (s *BoltStore) Close() error {
	return s.db.Close()
}
