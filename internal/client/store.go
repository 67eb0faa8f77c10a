package client

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/fitgrow/fitgrow-backend/internal/models"
	"github.com/goccy/go-json"
)

// Keys of the durable cache
const (
	keyAuthToken  = "authToken"
	keyUserData   = "userData"
	keyAuthExpiry = "authExpiry"
	keyDashboard  = "dashboard"
)

// Session is the cached login
type Session struct {
	Token     string
	User      models.Profile
	ExpiresAt time.Time
}

// Expired reports whether the token is past its expiry at now.
// A session without a known expiry is never considered expired.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Store persists the session and the dashboard values in badger
type Store struct {
	db *badger.DB
}

// OpenStore opens or creates the cache in dir
func OpenStore(dir string) (*Store, error) {
	db, err := badger.Open(badger.DefaultOptions(dir).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	return &Store{db: db}, nil
}

// NewStore wraps an already opened database
func NewStore(db *badger.DB) *Store {
	return &Store{db: db}
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}

// LoadSession returns the cached session, or nil when no token is stored
func (s *Store) LoadSession() (*Session, error) {
	var sess *Session
	err := s.db.View(func(txn *badger.Txn) error {
		token, err := getValue(txn, keyAuthToken)
		if err != nil || token == nil {
			return err
		}
		sess = &Session{Token: string(token)}

		user, err := getValue(txn, keyUserData)
		if err != nil {
			return err
		}
		if user != nil {
			if err := json.Unmarshal(user, &sess.User); err != nil {
				return fmt.Errorf("decode user data: %w", err)
			}
		}

		expiry, err := getValue(txn, keyAuthExpiry)
		if err != nil {
			return err
		}
		if expiry != nil {
			if sess.ExpiresAt, err = time.Parse(time.RFC3339, string(expiry)); err != nil {
				return fmt.Errorf("decode auth expiry: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// SaveSession overwrites the cached session
func (s *Store) SaveSession(sess *Session) error {
	user, err := json.Marshal(sess.User)
	if err != nil {
		return fmt.Errorf("marshal user data: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(keyAuthToken), []byte(sess.Token)); err != nil {
			return fmt.Errorf("set token: %w", err)
		}
		if err := txn.Set([]byte(keyUserData), user); err != nil {
			return fmt.Errorf("set user data: %w", err)
		}
		if sess.ExpiresAt.IsZero() {
			return deleteKey(txn, keyAuthExpiry)
		}
		return txn.Set([]byte(keyAuthExpiry), []byte(sess.ExpiresAt.UTC().Format(time.RFC3339)))
	})
}

// ClearSession removes every session key
func (s *Store) ClearSession() error {
	return s.db.Update(func(txn *badger.Txn) error {
		for _, key := range []string{keyAuthToken, keyUserData, keyAuthExpiry} {
			if err := deleteKey(txn, key); err != nil {
				return err
			}
		}
		return nil
	})
}

// LoadDashboard returns the cached displayed values, zero when none are stored
func (s *Store) LoadDashboard() (models.DailyStats, error) {
	var values models.DailyStats
	err := s.db.View(func(txn *badger.Txn) error {
		raw, err := getValue(txn, keyDashboard)
		if err != nil || raw == nil {
			return err
		}
		return json.Unmarshal(raw, &values)
	})
	return values, err
}

// SaveDashboard stores the displayed values
func (s *Store) SaveDashboard(values models.DailyStats) error {
	raw, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("marshal dashboard: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyDashboard), raw)
	})
}

func getValue(txn *badger.Txn, key string) ([]byte, error) {
	item, err := txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return item.ValueCopy(nil)
}

func deleteKey(txn *badger.Txn, key string) error {
	if err := txn.Delete([]byte(key)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}
