// Copyright 2025 Tomas Machalek <tomas.machalek@gmail.com>
// Copyright 2025 Department of Linguistics,
// Faculty of Arts, Charles University
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package artifact

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/jay192005/GDP-GROWTH-PREDICTION-MODEL-FRONTEND/eval/rf"
	"github.com/jay192005/GDP-GROWTH-PREDICTION-MODEL-FRONTEND/feats"
	"github.com/rs/zerolog/log"
)

var (
	ErrNotFound       = errors.New("artifacts not found")
	ErrSchemaMismatch = errors.New("artifact feature schema mismatch")
)

// Meta describes the training run which produced the artifacts
type Meta struct {
	RunID          string    `msgpack:"runId" json:"runId"`
	CreatedAt      time.Time `msgpack:"createdAt" json:"createdAt"`
	FeatureColumns []string  `msgpack:"featureColumns" json:"featureColumns"`
	SplitYear      int       `msgpack:"splitYear" json:"splitYear"`
	TrainSamples   int       `msgpack:"trainSamples" json:"trainSamples"`
	TestSamples    int       `msgpack:"testSamples" json:"testSamples"`
}

// Bundle is a trained model along with the country encoding
// it was trained with. The two are always stored and loaded
// together.
type Bundle struct {
	Model    *rf.Model
	Encoding *feats.CountryEncoding
	Meta     Meta
}

// ----------------------------

type badgerLogger struct{}

func (bl badgerLogger) Errorf(msg string, args ...any) {
	log.Error().Msgf("badger: "+strings.TrimSpace(msg), args...)
}

func (bl badgerLogger) Warningf(msg string, args ...any) {
	log.Warn().Msgf("badger: "+strings.TrimSpace(msg), args...)
}

func (bl badgerLogger) Infof(msg string, args ...any) {
	log.Debug().Msgf("badger: "+strings.TrimSpace(msg), args...)
}

func (bl badgerLogger) Debugf(msg string, args ...any) {
	log.Trace().Msgf("badger: "+strings.TrimSpace(msg), args...)
}

// ----------------------------

// DB is a wrapper around badger.DB providing concrete
// methods for storing and retrieving trained artifacts.
type DB struct {
	bdb *badger.DB
}

// Close closes the internal Badger database.
// It is necessary to perform the close especially
// in cases of data writing.
// It is possible to call the method on nil instance
// or on an uninitialized DB object, in which case
// it is a NOP.
func (db *DB) Close() error {
	if db != nil && db.bdb != nil {
		return db.bdb.Close()
	}
	return nil
}

// Save stores the model, its encoding and metadata within a single
// transaction so a reader never sees a model paired with a different
// encoding.
func (db *DB) Save(bundle Bundle) error {
	if bundle.Model == nil || bundle.Encoding == nil {
		return fmt.Errorf("failed to save artifacts: both model and encoding must be provided")
	}
	bModel, err := encodeModel(bundle.Model)
	if err != nil {
		return fmt.Errorf("failed to save artifacts: %w", err)
	}
	bEnc, err := encodeEncoding(bundle.Encoding)
	if err != nil {
		return fmt.Errorf("failed to save artifacts: %w", err)
	}
	bMeta, err := encodeMeta(bundle.Meta)
	if err != nil {
		return fmt.Errorf("failed to save artifacts: %w", err)
	}
	err = db.bdb.Update(func(txn *badger.Txn) error {
		if err := txn.Set(encodeKey(ModelPrefix, currentSlot), bModel); err != nil {
			return err
		}
		if err := txn.Set(encodeKey(EncodingPrefix, currentSlot), bEnc); err != nil {
			return err
		}
		return txn.Set(encodeKey(MetaPrefix, currentSlot), bMeta)
	})
	if err != nil {
		return fmt.Errorf("failed to save artifacts: %w", err)
	}
	log.Info().
		Str("runId", bundle.Meta.RunID).
		Int("modelSize", len(bModel)).
		Int("numCountries", bundle.Encoding.Len()).
		Msg("saved model artifacts")
	return nil
}

func readValue(txn *badger.Txn, key []byte) ([]byte, error) {
	item, err := txn.Get(key)
	if err == badger.ErrKeyNotFound {
		return nil, ErrNotFound

	} else if err != nil {
		return nil, err
	}
	return item.ValueCopy(nil)
}

// Load reads the model and its encoding. In case nothing has been
// stored yet, ErrNotFound is returned. In case the stored model was
// trained with different feature columns than the current ones,
// ErrSchemaMismatch is returned.
func (db *DB) Load() (Bundle, error) {
	var bModel, bEnc, bMeta []byte
	err := db.bdb.View(func(txn *badger.Txn) error {
		var err error
		bModel, err = readValue(txn, encodeKey(ModelPrefix, currentSlot))
		if err != nil {
			return err
		}
		bEnc, err = readValue(txn, encodeKey(EncodingPrefix, currentSlot))
		if err != nil {
			return err
		}
		bMeta, err = readValue(txn, encodeKey(MetaPrefix, currentSlot))
		return err
	})
	if err != nil {
		return Bundle{}, fmt.Errorf("failed to load artifacts: %w", err)
	}
	meta, err := decodeMeta(bMeta)
	if err != nil {
		return Bundle{}, fmt.Errorf("failed to load artifacts: %w", err)
	}
	if !feats.SameColumns(meta.FeatureColumns) {
		return Bundle{}, fmt.Errorf(
			"failed to load artifacts (stored columns: %s): %w",
			strings.Join(meta.FeatureColumns, ", "), ErrSchemaMismatch)
	}
	model, err := decodeModel(bModel)
	if err != nil {
		return Bundle{}, fmt.Errorf("failed to load artifacts: %w", err)
	}
	if model.NumFeatures != feats.NumFeatures {
		return Bundle{}, fmt.Errorf(
			"failed to load artifacts (model input size %d): %w", model.NumFeatures, ErrSchemaMismatch)
	}
	enc, err := decodeEncoding(bEnc)
	if err != nil {
		return Bundle{}, fmt.Errorf("failed to load artifacts: %w", err)
	}
	return Bundle{Model: model, Encoding: enc, Meta: meta}, nil
}

// Drop removes all the stored artifacts
func (db *DB) Drop() error {
	return db.bdb.DropAll()
}

func (db *DB) Size() (int64, int64) {
	return db.bdb.Size()
}

func OpenDB(path string) (*DB, error) {
	opts := badger.DefaultOptions(path).
		WithLogger(badgerLogger{}).
		WithValueLogFileSize(64 << 20)

	ans := &DB{}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open artifact database: %w", err)
	}
	ans.bdb = db
	return ans, nil
}

// OpenInMemoryDB creates a non-persistent database, mostly
// for testing purposes.
func OpenInMemoryDB() (*DB, error) {
	opts := badger.DefaultOptions("").
		WithInMemory(true).
		WithLogger(badgerLogger{})
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory artifact database: %w", err)
	}
	return &DB{bdb: db}, nil
}
