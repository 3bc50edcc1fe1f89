package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	lerrors "github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/harentsoaR/mediflow-portal/internal/models"
)

var ErrNotFound = errors.New("not found")

const (
	// SessionKey is the single key holding the persisted session blob.
	SessionKey  = "mediflow_user"
	auditPrefix = "audit/"
)

// LevelDB is the portal's local persistent key-value store. It owns the
// session key and the emergency-access audit journal.
type LevelDB struct {
	db *leveldb.DB
}

// OpenLevelDB opens (or creates) the database at path, recovering the
// manifest if it is corrupted.
func OpenLevelDB(path string) (*LevelDB, error) {
	db, err := leveldb.OpenFile(path, nil)
	if lerrors.IsCorrupted(err) {
		db, err = leveldb.RecoverFile(path, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("open leveldb %s: %w", path, err)
	}
	return &LevelDB{db: db}, nil
}

func (s *LevelDB) Close() error {
	return s.db.Close()
}

func (s *LevelDB) Load() ([]byte, error) {
	v, err := s.db.Get([]byte(SessionKey), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, ErrNotFound
	}
	return v, err
}

func (s *LevelDB) Save(blob []byte) error {
	return s.db.Put([]byte(SessionKey), blob, &opt.WriteOptions{Sync: true})
}

func (s *LevelDB) Clear() error {
	return s.db.Delete([]byte(SessionKey), &opt.WriteOptions{Sync: true})
}

// AppendAudit stores an entry keyed by timestamp so iteration is chronological.
func (s *LevelDB) AppendAudit(_ context.Context, e models.AuditEntry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	key := fmt.Sprintf("%s%020d/%s", auditPrefix, e.Timestamp.UnixNano(), e.ID)
	return s.db.Put([]byte(key), data, &opt.WriteOptions{Sync: true})
}

// AuditTrail returns up to limit entries, newest first. limit <= 0 means all.
func (s *LevelDB) AuditTrail(ctx context.Context, limit int) ([]models.AuditEntry, error) {
	iter := s.db.NewIterator(util.BytesPrefix([]byte(auditPrefix)), nil)
	defer iter.Release()

	entries := make([]models.AuditEntry, 0)
	for ok := iter.Last(); ok; ok = iter.Prev() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var e models.AuditEntry
		if err := json.Unmarshal(iter.Value(), &e); err != nil {
			return nil, fmt.Errorf("decode audit entry %s: %w", iter.Key(), err)
		}
		entries = append(entries, e)
		if limit > 0 && len(entries) == limit {
			break
		}
	}
	return entries, iter.Error()
}
