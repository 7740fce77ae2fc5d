// Package store persists linked accounts and audit events in a bbolt
// database. Long-lived credential tokens are sealed with AES-GCM before
// they reach disk; everything else is stored as JSON.
package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	apperrors "github.com/alexjbarnes/skport-sync/internal/errors"
	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
)

const (
	// storeDirPerm is the permission mode for the store directory.
	storeDirPerm = fs.FileMode(0o700)

	// storeFilePerm is the permission mode for the database file.
	storeFilePerm = fs.FileMode(0o600)

	// storeOpenTimeout is the maximum time to wait for the bolt database lock.
	storeOpenTimeout = 5 * time.Second
)

var (
	accountsBucket = []byte("accounts")
	eventsBucket   = []byte("events")
	appBucket      = []byte("app")

	saltKey = []byte("salt")
)

// Account is one linked game account, keyed by the chat-platform user ID
// that owns it. Token is the long-lived credential token; it is sealed
// before persistence and never written in the clear.
type Account struct {
	ID       string `json:"id"`
	Nickname string `json:"nickname"`

	// UserID is the external SKPort user identifier.
	UserID string `json:"userId"`
	HgID   string `json:"hgId"`

	ServerID   string `json:"serverId"`
	ServerName string `json:"serverName"`
	RoleID     string `json:"roleId"`

	// Token is only populated in memory. The on-disk record carries
	// SealedToken instead.
	Token       string `json:"-"`
	SealedToken []byte `json:"sealedToken,omitempty"`

	Notify       bool `json:"notify"`
	EnableSignin bool `json:"enableSignin"`
	IsPrivate    bool `json:"isPrivate"`

	CreatedAt      time.Time `json:"createdAt"`
	TokenUpdatedAt time.Time `json:"tokenUpdatedAt"`
}

// Event is one audit record of a sweep or manual operation outcome.
type Event struct {
	ID        string          `json:"id"`
	AccountID string          `json:"accountId"`
	Source    string          `json:"source"`
	Kind      string          `json:"kind"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// Event sources and kinds.
const (
	SourceCron   = "cron"
	SourceManual = "manual"

	KindAttendance = "attendance"
	KindRefresh    = "refresh"
)

// Store wraps a bbolt database for all persistent application state.
type Store struct {
	db  *bolt.DB
	box *secretBox
}

// Open opens (creating if needed) the store at path. secret seals
// credential tokens at rest; the per-database salt is generated on first
// open and kept in the app bucket.
func Open(path, secret string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), storeDirPerm); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	db, err := bolt.Open(path, storeFilePerm, &bolt.Options{Timeout: storeOpenTimeout})
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	var salt []byte

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{accountsBucket, eventsBucket, appBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}

		app := tx.Bucket(appBucket)

		if existing := app.Get(saltKey); existing != nil {
			salt = append([]byte(nil), existing...)
			return nil
		}

		fresh, err := newSalt()
		if err != nil {
			return err
		}

		salt = fresh

		return app.Put(saltKey, fresh)
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing store: %w", err)
	}

	box, err := newSecretBox(secret, salt)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, box: box}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// PutAccount persists an account, sealing its token first. The in-memory
// Token field never reaches disk.
func (s *Store) PutAccount(a Account) error {
	if a.ID == "" {
		return fmt.Errorf("account ID is required")
	}

	sealed, err := s.box.seal(a.Token)
	if err != nil {
		return fmt.Errorf("sealing token: %w", err)
	}

	a.SealedToken = sealed
	a.Token = ""

	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("marshalling account: %w", err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(accountsBucket).Put([]byte(a.ID), data)
	})
}

// GetAccount returns the account for id with its token unsealed, or
// ErrAccountNotFound.
func (s *Store) GetAccount(id string) (*Account, error) {
	var raw []byte

	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(accountsBucket).Get([]byte(id))
		if v != nil {
			raw = append([]byte(nil), v...)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	if raw == nil {
		return nil, apperrors.ErrAccountNotFound
	}

	return s.decodeAccount(raw)
}

// DeleteAccount removes the account and its events.
func (s *Store) DeleteAccount(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(accountsBucket).Delete([]byte(id)); err != nil {
			return err
		}

		c := tx.Bucket(eventsBucket).Cursor()
		prefix := eventPrefix(id)

		for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
			if err := c.Delete(); err != nil {
				return err
			}
		}

		return nil
	})
}

// ListAccounts returns every linked account with tokens unsealed.
func (s *Store) ListAccounts() ([]Account, error) {
	return s.listAccounts(func(Account) bool { return true })
}

// ListSigninAccounts returns accounts with the daily sign-in flag enabled.
func (s *Store) ListSigninAccounts() ([]Account, error) {
	return s.listAccounts(func(a Account) bool { return a.EnableSignin })
}

func (s *Store) listAccounts(keep func(Account) bool) ([]Account, error) {
	var raws [][]byte

	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(accountsBucket).ForEach(func(k, v []byte) error {
			raws = append(raws, append([]byte(nil), v...))
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	accounts := make([]Account, 0, len(raws))

	for _, raw := range raws {
		a, err := s.decodeAccount(raw)
		if err != nil {
			return nil, err
		}

		if keep(*a) {
			accounts = append(accounts, *a)
		}
	}

	return accounts, nil
}

// UpdateToken replaces the stored credential token for id. Only the
// refresh sweep and a successful re-link call this.
func (s *Store) UpdateToken(id, token string) error {
	a, err := s.GetAccount(id)
	if err != nil {
		return err
	}

	a.Token = token
	a.TokenUpdatedAt = time.Now().UTC()

	return s.PutAccount(*a)
}

// RecordEvent appends an audit event for accountID. payload is marshalled
// to JSON; a nil payload is allowed.
func (s *Store) RecordEvent(accountID, source, kind string, payload any) (Event, error) {
	event := Event{
		ID:        uuid.NewString(),
		AccountID: accountID,
		Source:    source,
		Kind:      kind,
		CreatedAt: time.Now().UTC(),
	}

	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return Event{}, fmt.Errorf("marshalling event payload: %w", err)
		}

		event.Payload = data
	}

	data, err := json.Marshal(event)
	if err != nil {
		return Event{}, fmt.Errorf("marshalling event: %w", err)
	}

	key := fmt.Sprintf("%s/%020d-%s", accountID, event.CreatedAt.UnixNano(), event.ID)

	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(eventsBucket).Put([]byte(key), data)
	})
	if err != nil {
		return Event{}, err
	}

	return event, nil
}

// EventsFor returns all events recorded for accountID in chronological
// order.
func (s *Store) EventsFor(accountID string) ([]Event, error) {
	var events []Event

	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(eventsBucket).Cursor()
		prefix := eventPrefix(accountID)

		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			var e Event
			if err := json.Unmarshal(v, &e); err != nil {
				return err
			}

			events = append(events, e)
		}

		return nil
	})

	return events, err
}

func (s *Store) decodeAccount(raw []byte) (*Account, error) {
	a := &Account{}
	if err := json.Unmarshal(raw, a); err != nil {
		return nil, fmt.Errorf("decoding account: %w", err)
	}

	token, err := s.box.open(a.SealedToken)
	if err != nil {
		return nil, err
	}

	a.Token = token
	a.SealedToken = nil

	return a, nil
}

func eventPrefix(accountID string) []byte {
	return []byte(accountID + "/")
}
