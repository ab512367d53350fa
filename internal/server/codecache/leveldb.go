package codecache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/yamdb/internal/timex"
	"github.com/syndtr/goleveldb/leveldb"
)

// ErrShutdown is returned after Close.
var ErrShutdown = errors.New("code cache is shut down")

type levelRecord struct {
	Value     string `json:"value"`
	ExpiresAt int64  `json:"expires_at"` // unix nanoseconds
}

// LevelDB persists codes in a local LevelDB directory so they survive a
// restart of a single-node deployment.
type LevelDB struct {
	sync.RWMutex

	shutdown bool
	db       *leveldb.DB
	clock    timex.Clock
}

// OpenLevelDB opens (or creates) the database at path.
func OpenLevelDB(path string, clock timex.Clock) (*LevelDB, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("open leveldb %s: %w", path, err)
	}
	return &LevelDB{db: db, clock: clock}, nil
}

func (l *LevelDB) Put(_ context.Context, key, value string, ttl time.Duration) error {
	l.Lock()
	defer l.Unlock()

	if l.shutdown {
		return ErrShutdown
	}

	payload, err := json.Marshal(levelRecord{
		Value:     value,
		ExpiresAt: l.clock.Now().Add(ttl).UnixNano(),
	})
	if err != nil {
		return err
	}
	return l.db.Put([]byte(key), payload, nil)
}

// Get drops an expired record while reporting the miss.
func (l *LevelDB) Get(_ context.Context, key string) (string, bool, error) {
	l.Lock()
	defer l.Unlock()

	if l.shutdown {
		return "", false, ErrShutdown
	}

	payload, err := l.db.Get([]byte(key), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return "", false, nil
	} else if err != nil {
		return "", false, err
	}

	var rec levelRecord
	if err := json.Unmarshal(payload, &rec); err != nil {
		return "", false, fmt.Errorf("decode code record: %w", err)
	}
	if l.clock.Now().UnixNano() >= rec.ExpiresAt {
		if err := l.db.Delete([]byte(key), nil); err != nil {
			return "", false, err
		}
		return "", false, nil
	}
	return rec.Value, true, nil
}

// Sweep deletes every expired or undecodable record and returns how many
// were removed.
func (l *LevelDB) Sweep() (int, error) {
	l.Lock()
	defer l.Unlock()

	if l.shutdown {
		return 0, ErrShutdown
	}

	now := l.clock.Now().UnixNano()
	batch := new(leveldb.Batch)
	iter := l.db.NewIterator(nil, nil)
	for iter.Next() {
		var rec levelRecord
		if err := json.Unmarshal(iter.Value(), &rec); err != nil || now >= rec.ExpiresAt {
			batch.Delete(append([]byte(nil), iter.Key()...))
		}
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		return 0, err
	}

	if batch.Len() == 0 {
		return 0, nil
	}
	if err := l.db.Write(batch, nil); err != nil {
		return 0, err
	}
	return batch.Len(), nil
}

// Close releases the database. Further calls fail with ErrShutdown.
func (l *LevelDB) Close() error {
	l.Lock()
	defer l.Unlock()

	if l.shutdown {
		return nil
	}
	l.shutdown = true
	return l.db.Close()
}
