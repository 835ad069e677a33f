package oauth

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/looplj/authhub/internal/log"
)

const (
	storeFileMode = os.FileMode(0o600)
	storeDirMode  = os.FileMode(0o700)
)

// Store keeps one credential per provider name in a single JSON document on
// disk. It is a best-effort cache, not a transactional ledger: reads degrade
// to empty on a missing or corrupt file, and every write rewrites the whole
// document and re-applies owner-only permissions.
type Store struct {
	mu   sync.Mutex
	path string
}

// DefaultStorePath is ~/.authhub/credentials.json.
func DefaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".authhub", "credentials.json")
	}

	return filepath.Join(home, ".authhub", "credentials.json")
}

// NewStore creates a store backed by the given file path.
func NewStore(path string) *Store {
	if path == "" {
		path = DefaultStorePath()
	}

	return &Store{path: path}
}

// Path returns the store file path.
func (s *Store) Path() string { return s.path }

// Entry pairs a provider name with its stored credential.
type Entry struct {
	Provider   string
	Credential *Credential
}

// Get returns the credential stored for provider, if any.
func (s *Store) Get(provider string) (*Credential, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	creds := s.load()

	cred, ok := creds[provider]

	return cred, ok
}

// Save stores the credential for provider, replacing any previous one.
func (s *Store) Save(provider string, cred *Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	creds := s.load()
	creds[provider] = cred

	return s.persist(creds)
}

// Delete removes the credential for provider, reporting whether one existed.
func (s *Store) Delete(provider string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	creds := s.load()

	if _, ok := creds[provider]; !ok {
		return false, nil
	}

	delete(creds, provider)

	return true, s.persist(creds)
}

// List returns all stored credentials sorted by provider name.
func (s *Store) List() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	creds := s.load()

	entries := make([]Entry, 0, len(creds))
	for provider, cred := range creds {
		entries = append(entries, Entry{Provider: provider, Credential: cred})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Provider < entries[j].Provider
	})

	return entries
}

// load reads the store document, creating an empty owner-only file on first
// use. Read failures degrade to an empty mapping.
func (s *Store) load() map[string]*Credential {
	s.ensure()

	creds := make(map[string]*Credential)

	data, err := os.ReadFile(s.path)
	if err != nil {
		return creds
	}

	if err := json.Unmarshal(data, &creds); err != nil {
		log.Warn(context.Background(), "credential store unreadable, treating as empty",
			log.String("path", s.path), log.Cause(err))

		return make(map[string]*Credential)
	}

	return creds
}

// persist rewrites the whole document and re-applies owner-only permissions,
// defending against umask or OS defaults weakening the file.
func (s *Store) persist(creds map[string]*Credential) error {
	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return err
	}

	if err := os.WriteFile(s.path, data, storeFileMode); err != nil {
		return err
	}

	return os.Chmod(s.path, storeFileMode)
}

// ensure lazily creates the containing directory and an empty store file.
func (s *Store) ensure() {
	if _, err := os.Stat(s.path); err == nil {
		_ = os.Chmod(s.path, storeFileMode)
		return
	}

	if err := os.MkdirAll(filepath.Dir(s.path), storeDirMode); err != nil {
		return
	}

	_ = os.WriteFile(s.path, []byte("{}\n"), storeFileMode)
}
