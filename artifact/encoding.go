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
	"fmt"

	"github.com/jay192005/GDP-GROWTH-PREDICTION-MODEL-FRONTEND/eval/rf"
	"github.com/jay192005/GDP-GROWTH-PREDICTION-MODEL-FRONTEND/feats"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	ModelPrefix    byte = 0x00 // serialized forest
	EncodingPrefix byte = 0x01 // country encoding classes
	MetaPrefix     byte = 0x02 // metadata of the training run
)

// currentSlot names the only artifact set the service works with
const currentSlot = "current"

func encodeKey(prefix byte, slot string) []byte {
	key := make([]byte, 1+len(slot))
	key[0] = prefix
	copy(key[1:], []byte(slot))
	return key
}

type encodingRecord struct {
	Classes []string `msgpack:"classes"`
}

func encodeModel(model *rf.Model) ([]byte, error) {
	data, err := msgpack.Marshal(model)
	if err != nil {
		return nil, fmt.Errorf("failed to encode model: %w", err)
	}
	return data, nil
}

func decodeModel(data []byte) (*rf.Model, error) {
	var model rf.Model
	if err := msgpack.Unmarshal(data, &model); err != nil {
		return nil, fmt.Errorf("failed to decode model: %w", err)
	}
	return &model, nil
}

func encodeEncoding(enc *feats.CountryEncoding) ([]byte, error) {
	data, err := msgpack.Marshal(encodingRecord{Classes: enc.Classes()})
	if err != nil {
		return nil, fmt.Errorf("failed to encode country encoding: %w", err)
	}
	return data, nil
}

func decodeEncoding(data []byte) (*feats.CountryEncoding, error) {
	var rec encodingRecord
	if err := msgpack.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode country encoding: %w", err)
	}
	return feats.NewCountryEncoding(rec.Classes)
}

func encodeMeta(meta Meta) ([]byte, error) {
	data, err := msgpack.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("failed to encode artifact metadata: %w", err)
	}
	return data, nil
}

func decodeMeta(data []byte) (Meta, error) {
	var meta Meta
	if err := msgpack.Unmarshal(data, &meta); err != nil {
		return Meta{}, fmt.Errorf("failed to decode artifact metadata: %w", err)
	}
	return meta, nil
}
