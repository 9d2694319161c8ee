package main

import (
	"context"
	_ "embed"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"pharmacy/aggregate"
)

//go:embed sql/schema.sql
var schema string

// pgReport is everything one run stores in PostgreSQL.
type pgReport struct {
	SourceFile string
	Stats      aggregate.Stats
	Drugs      []aggregate.DrugCost // ranked
}

// connectPg opens a small pool and verifies the connection.
func connectPg(ctx context.Context, connStr string) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("parse connection: %w", err)
	}
	poolConfig.MaxConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return pool, nil
}

func initSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

// loadReportToPg stores a ranked report in a single transaction and returns
// the generated run id. Nothing is committed if any step fails.
func loadReportToPg(ctx context.Context, pool *pgxpool.Pool, rep pgReport) (uuid.UUID, error) {
	start := time.Now()
	runID := uuid.New()

	tx, err := pool.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`INSERT INTO drug_cost_reports (run_id, source_file, record_count, malformed_costs, drug_count)
		 VALUES ($1, $2, $3, $4, $5)`,
		pgtype.UUID{Bytes: runID, Valid: true},
		sanitizeUTF8(rep.SourceFile),
		rep.Stats.Records,
		rep.Stats.MalformedCosts,
		int32(len(rep.Drugs)),
	); err != nil {
		return uuid.Nil, fmt.Errorf("insert report: %w", err)
	}

	rows := make([][]any, len(rep.Drugs))
	for i, d := range rep.Drugs {
		cost, err := costToNumeric(d.TotalCost)
		if err != nil {
			return uuid.Nil, fmt.Errorf("drug %q: %w", d.DrugName, err)
		}
		rows[i] = []any{
			pgtype.UUID{Bytes: runID, Valid: true},
			int32(i + 1),
			sanitizeUTF8(d.DrugName),
			int32(d.NumPrescriber),
			cost,
		}
	}

	copied, err := tx.CopyFrom(ctx,
		pgx.Identifier{"drug_costs"},
		[]string{"run_id", "rank", "drug_name", "num_prescriber", "total_cost"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("copy drug_costs: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("commit: %w", err)
	}

	fmt.Printf("PostgreSQL: run %s, %d drug rows in %s\n",
		runID, copied, time.Since(start).Round(time.Millisecond))
	return runID, nil
}

// costToNumeric maps non-finite totals to the numeric NaN and infinity
// values; PostgreSQL 14+ stores infinities in numeric columns.
func costToNumeric(c aggregate.Cost) (pgtype.Numeric, error) {
	if c.IsFractional() {
		f := c.Float64()
		switch {
		case math.IsNaN(f):
			return pgtype.Numeric{NaN: true, Valid: true}, nil
		case math.IsInf(f, 1):
			return pgtype.Numeric{InfinityModifier: pgtype.Infinity, Valid: true}, nil
		case math.IsInf(f, -1):
			return pgtype.Numeric{InfinityModifier: pgtype.NegativeInfinity, Valid: true}, nil
		}
	}
	var num pgtype.Numeric
	if err := num.Scan(c.Decimal()); err != nil {
		return pgtype.Numeric{}, fmt.Errorf("numeric %s: %w", c, err)
	}
	return num, nil
}
