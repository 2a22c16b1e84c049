// Copyright 2024 Tomas Machalek <tomas.machalek@gmail.com>
// Copyright 2024 Institute of the Czech National Corpus,
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

package stats

import (
	"database/sql"
	"fmt"
	"math"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

// Database is a log of training and evaluation runs
type Database struct {
	db *sql.DB
}

func (database *Database) createTrainingRunTable() error {
	_, err := database.db.Exec(
		"CREATE TABLE training_run (" +
			"id TEXT PRIMARY KEY NOT NULL, " +
			"datetime INTEGER NOT NULL, " +
			"kind TEXT NOT NULL, " +
			"splitYear INTEGER NOT NULL DEFAULT 0, " +
			"trainSamples INTEGER NOT NULL, " +
			"trainR2 FLOAT, " +
			"trainRMSE FLOAT, " +
			"trainMAE FLOAT, " +
			"trainMAPE FLOAT, " +
			"testSamples INTEGER NOT NULL, " +
			"testR2 FLOAT, " +
			"testRMSE FLOAT, " +
			"testMAE FLOAT, " +
			"testMAPE FLOAT, " +
			"comment TEXT" +
			")",
	)
	if err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	log.Info().Msg("created table `training_run`")
	return nil
}

func (database *Database) tableExists(tn string) (bool, error) {
	ans := database.db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='table' AND name = ?", tn)
	var nm sql.NullString
	err := ans.Scan(&nm)
	if err == sql.ErrNoRows {
		return false, nil

	} else if err != nil {
		return false, fmt.Errorf("failed to determine existence of table %s: %w", tn, err)
	}
	return true, nil
}

func (database *Database) Init() error {
	ex, err := database.tableExists("training_run")
	if err != nil {
		return fmt.Errorf("failed to init table training_run: %w", err)
	}
	if ex {
		log.Debug().Str("table", "training_run").Msg("table already exists")

	} else {
		if err := database.createTrainingRunTable(); err != nil {
			return fmt.Errorf("failed to create table training_run: %w", err)
		}
	}
	return nil
}

func nullableFloat(v float64) sql.NullFloat64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

func floatOrNaN(v sql.NullFloat64) float64 {
	if v.Valid {
		return v.Float64
	}
	return math.NaN()
}

func (database *Database) AddRun(rec RunRecord) error {
	tx, err := database.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to add run record: %w", err)
	}
	_, err = tx.Exec(
		"INSERT INTO training_run (id, datetime, kind, splitYear, "+
			"trainSamples, trainR2, trainRMSE, trainMAE, trainMAPE, "+
			"testSamples, testR2, testRMSE, testMAE, testMAPE, comment) "+
			"VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		rec.ID,
		rec.Datetime,
		rec.Kind,
		rec.SplitYear,
		rec.Train.NumSamples,
		nullableFloat(rec.Train.R2),
		nullableFloat(rec.Train.RMSE),
		nullableFloat(rec.Train.MAE),
		nullableFloat(rec.Train.MAPE),
		rec.Test.NumSamples,
		nullableFloat(rec.Test.R2),
		nullableFloat(rec.Test.RMSE),
		nullableFloat(rec.Test.MAE),
		nullableFloat(rec.Test.MAPE),
		rec.Comment,
	)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to add run record: %w", err)
	}
	if err := tx.Commit(); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to add run record: %w", err)
	}
	return nil
}

// ListRuns returns stored runs, newest first
func (database *Database) ListRuns(filter ListFilter) ([]RunRecord, error) {
	query := "SELECT id, datetime, kind, splitYear, " +
		"trainSamples, trainR2, trainRMSE, trainMAE, trainMAPE, " +
		"testSamples, testR2, testRMSE, testMAE, testMAPE, comment " +
		"FROM training_run WHERE %s ORDER BY datetime DESC, rowid DESC"
	whereChunks := make([]string, 0, 2)
	whereChunks = append(whereChunks, "1 = 1")
	args := make([]any, 0, 2)
	if filter.Kind != nil {
		whereChunks = append(whereChunks, "kind = ?")
		args = append(args, *filter.Kind)
	}
	query = fmt.Sprintf(query, strings.Join(whereChunks, " AND "))
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}
	rows, err := database.db.Query(query, args...)
	if err != nil {
		return []RunRecord{}, fmt.Errorf("failed to fetch run records: %w", err)
	}
	defer rows.Close()
	ans := make([]RunRecord, 0, 50)
	for rows.Next() {
		var rec RunRecord
		var trainR2, trainRMSE, trainMAE, trainMAPE sql.NullFloat64
		var testR2, testRMSE, testMAE, testMAPE sql.NullFloat64
		var comment sql.NullString
		err := rows.Scan(
			&rec.ID,
			&rec.Datetime,
			&rec.Kind,
			&rec.SplitYear,
			&rec.Train.NumSamples,
			&trainR2,
			&trainRMSE,
			&trainMAE,
			&trainMAPE,
			&rec.Test.NumSamples,
			&testR2,
			&testRMSE,
			&testMAE,
			&testMAPE,
			&comment,
		)
		if err != nil {
			return []RunRecord{}, fmt.Errorf("failed to fetch run records: %w", err)
		}
		rec.Train.R2 = floatOrNaN(trainR2)
		rec.Train.RMSE = floatOrNaN(trainRMSE)
		rec.Train.MAE = floatOrNaN(trainMAE)
		rec.Train.MAPE = floatOrNaN(trainMAPE)
		rec.Test.R2 = floatOrNaN(testR2)
		rec.Test.RMSE = floatOrNaN(testRMSE)
		rec.Test.MAE = floatOrNaN(testMAE)
		rec.Test.MAPE = floatOrNaN(testMAPE)
		rec.Comment = comment.String
		ans = append(ans, rec)
	}
	if err := rows.Err(); err != nil {
		return []RunRecord{}, fmt.Errorf("failed to fetch run records: %w", err)
	}
	return ans, nil
}

func (database *Database) Close() error {
	return database.db.Close()
}

func NewDatabase(path string) (*Database, error) {
	dbConn, err := sql.Open("sqlite3", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("failed to open stats database: %w", err)
	}
	return &Database{
		db: dbConn,
	}, nil
}
