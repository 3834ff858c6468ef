// Package userdict persists the user's personal dictionary. Words added
// here are merged into the base word list at lookup time; the base list
// itself is never modified.
package userdict

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/dgraph-io/badger/v3"
)

const keyPrefix = "word:"

// ErrInvalidWord is returned when a candidate entry is empty or contains
// whitespace. Entries are single lowercase tokens.
var ErrInvalidWord = errors.New("invalid dictionary word")

// Store is a badger-backed personal dictionary.
type Store struct {
	db *badger.DB
}

// Open opens (or creates) the personal dictionary under dir.
func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir).WithLoggingLevel(badger.WARNING)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open personal dictionary: %w", err)
	}
	return &Store{db: db}, nil
}

// Normalize trims and lowercases word, rejecting empty strings and
// anything containing whitespace.
func Normalize(word string) (string, error) {
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" || strings.ContainsFunc(word, unicode.IsSpace) {
		return "", fmt.Errorf("%w: %q", ErrInvalidWord, word)
	}
	return word, nil
}

// Add stores word in the personal dictionary. Adding an existing word is
// a no-op.
func (s *Store) Add(word string) error {
	word, err := Normalize(word)
	if err != nil {
		return err
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPrefix+word), nil)
	})
	if err != nil {
		return fmt.Errorf("failed to add %q: %w", word, err)
	}
	return nil
}

// Remove deletes word from the personal dictionary and reports whether
// it was present.
func (s *Store) Remove(word string) (bool, error) {
	word, err := Normalize(word)
	if err != nil {
		return false, err
	}

	found := false
	err = s.db.Update(func(txn *badger.Txn) error {
		key := []byte(keyPrefix + word)
		switch _, err := txn.Get(key); {
		case errors.Is(err, badger.ErrKeyNotFound):
			return nil
		case err != nil:
			return err
		}
		found = true
		return txn.Delete(key)
	})
	if err != nil {
		return false, fmt.Errorf("failed to remove %q: %w", word, err)
	}
	return found, nil
}

// Has reports whether word is in the personal dictionary.
func (s *Store) Has(word string) (bool, error) {
	word, err := Normalize(word)
	if err != nil {
		return false, err
	}

	found := false
	err = s.db.View(func(txn *badger.Txn) error {
		switch _, err := txn.Get([]byte(keyPrefix + word)); {
		case errors.Is(err, badger.ErrKeyNotFound):
			return nil
		case err != nil:
			return err
		}
		found = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to look up %q: %w", word, err)
	}
	return found, nil
}

// Words returns every personal-dictionary entry. Badger iterates keys in
// byte order, so the result is already sorted.
func (s *Store) Words() ([]string, error) {
	var words []string

	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(keyPrefix)
	opts.PrefetchValues = false

	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			key := string(it.Item().Key())
			words = append(words, strings.TrimPrefix(key, keyPrefix))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list personal dictionary: %w", err)
	}
	return words, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
