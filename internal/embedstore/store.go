// Package embedstore persists text embeddings in a bbolt file so the corpus
// does not have to be re-encoded on every start. Each model gets its own
// top-level bucket; keys are the SHA-256 of the text and values are packed
// little-endian float32s.
package embedstore

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var ErrCorruptValue = errors.New("stored embedding is not a whole number of float32s")

// Store implements semantic.Store for a single model.
type Store struct {
	db     *bolt.DB
	bucket []byte
}

// Open opens (or creates) the database at path and scopes it to model.
func Open(path, model string) (*Store, error) {
	if model == "" {
		return nil, errors.New("embedstore: model name is required")
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("embedstore: create directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("bbolt open: %w", err)
	}

	s := &Store{db: db, bucket: []byte(model)}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(s.bucket)
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("embedstore: create bucket: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// GetMany returns the stored vectors for the texts it knows; absent texts
// are simply left out of the result.
func (s *Store) GetMany(texts []string) (map[string][]float32, error) {
	found := make(map[string][]float32, len(texts))

	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		if b == nil {
			return nil
		}
		for _, text := range texts {
			v := b.Get(key(text))
			if v == nil {
				continue
			}
			// decode copies, so nothing outlives the transaction
			vec, err := decode(v)
			if err != nil {
				return fmt.Errorf("%q: %w", text, err)
			}
			found[text] = vec
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

func (s *Store) PutMany(entries map[string][]float32) error {
	if len(entries) == 0 {
		return nil
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(s.bucket)
		if err != nil {
			return err
		}
		for text, vec := range entries {
			if err := b.Put(key(text), encode(vec)); err != nil {
				return err
			}
		}
		return nil
	})
}

// Len is the number of vectors stored for the model.
func (s *Store) Len() (int, error) {
	var n int
	err := s.db.View(func(tx *bolt.Tx) error {
		if b := tx.Bucket(s.bucket); b != nil {
			n = b.Stats().KeyN
		}
		return nil
	})
	return n, err
}

func key(text string) []byte {
	sum := sha256.Sum256([]byte(text))
	return sum[:]
}

func encode(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, f := range vec {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(f))
	}
	return buf
}

func decode(data []byte) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, ErrCorruptValue
	}
	vec := make([]float32, len(data)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[4*i:]))
	}
	return vec, nil
}
