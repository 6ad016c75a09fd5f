package rel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// PG implements Client against Postgres. Each entity table has the shape
// (id text primary key, doc jsonb not null); filters and sorts operate on
// the jsonb column, so the document vocabulary maps onto the store without
// per-entity SQL.
type PG struct {
	pool *pgxpool.Pool
	log  *zap.Logger
}

// identRe restricts table and field names to plain identifiers. Names come
// from code, not callers, but they are interpolated into SQL and therefore
// validated anyway.
var identRe = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// ConnectPG opens a pgx pool against the DSN and verifies connectivity.
func ConnectPG(ctx context.Context, dsn string, logger *zap.Logger) (*PG, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MaxConnLifetime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 8*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}

	logger.Info("postgres connected")
	return &PG{pool: pool, log: logger}, nil
}

// NewPG wraps an existing pool; used where the pool is shared with the
// typed users store.
func NewPG(pool *pgxpool.Pool, logger *zap.Logger) *PG {
	return &PG{pool: pool, log: logger}
}

// Pool exposes the underlying pool for stores that issue typed SQL.
func (p *PG) Pool() *pgxpool.Pool { return p.pool }

// Close releases the pool.
func (p *PG) Close() { p.pool.Close() }

// EnsureTable creates the jsonb document table if it does not exist.
func (p *PG) EnsureTable(ctx context.Context, table string) error {
	if err := checkIdent(table); err != nil {
		return err
	}
	_, err := p.pool.Exec(ctx, fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS %s (id text PRIMARY KEY, doc jsonb NOT NULL)`, table))
	if err != nil {
		return fmt.Errorf("ensure table %s: %w", table, err)
	}
	return nil
}

func (p *PG) Select(ctx context.Context, table string, conds []Cond, opts SelectOptions) ([]Document, error) {
	if err := checkIdent(table); err != nil {
		return nil, err
	}
	where, args, err := buildWhere(conds)
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `SELECT doc FROM %s`, table)
	sb.WriteString(where)
	if opts.SortField != "" {
		if err := checkIdent(opts.SortField); err != nil {
			return nil, err
		}
		dir := "ASC"
		if opts.SortDesc {
			dir = "DESC"
		}
		fmt.Fprintf(&sb, ` ORDER BY doc->>'%s' %s, id %s`, opts.SortField, dir, dir)
	} else {
		sb.WriteString(` ORDER BY id ASC`)
	}
	if opts.Skip > 0 {
		fmt.Fprintf(&sb, ` OFFSET %d`, opts.Skip)
	}
	if opts.Limit > 0 {
		fmt.Fprintf(&sb, ` LIMIT %d`, opts.Limit)
	}

	rows, err := p.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", table, err)
	}
	defer rows.Close()

	out := []Document{}
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("select %s: %w", table, err)
		}
		var doc Document
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("select %s: decode row: %w", table, err)
		}
		out = append(out, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("select %s: %w", table, err)
	}
	return out, nil
}

func (p *PG) Get(ctx context.Context, table, id string) (Document, error) {
	if err := checkIdent(table); err != nil {
		return nil, err
	}
	var raw []byte
	err := p.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT doc FROM %s WHERE id = $1`, table), id).Scan(&raw)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get %s/%s: %w", table, id, err)
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("get %s/%s: decode row: %w", table, id, err)
	}
	return doc, nil
}

func (p *PG) Upsert(ctx context.Context, table string, doc Document) (Document, error) {
	if err := checkIdent(table); err != nil {
		return nil, err
	}
	id, _ := doc["id"].(string)
	if id == "" {
		return nil, fmt.Errorf("upsert %s: document has no id", table)
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("upsert %s: encode row: %w", table, err)
	}

	var stored []byte
	err = p.pool.QueryRow(ctx, fmt.Sprintf(
		`INSERT INTO %s (id, doc) VALUES ($1, $2)
		 ON CONFLICT (id) DO UPDATE SET doc = EXCLUDED.doc
		 RETURNING doc`, table), id, raw).Scan(&stored)
	if err != nil {
		return nil, fmt.Errorf("upsert %s/%s: %w", table, id, err)
	}
	var out Document
	if err := json.Unmarshal(stored, &out); err != nil {
		return nil, fmt.Errorf("upsert %s/%s: decode row: %w", table, id, err)
	}
	return out, nil
}

func (p *PG) Delete(ctx context.Context, table, id string) error {
	if err := checkIdent(table); err != nil {
		return err
	}
	tag, err := p.pool.Exec(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, table), id)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", table, id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *PG) Count(ctx context.Context, table string, conds []Cond) (int64, error) {
	if err := checkIdent(table); err != nil {
		return 0, err
	}
	where, args, err := buildWhere(conds)
	if err != nil {
		return 0, err
	}
	var n int64
	err = p.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT count(*) FROM %s`, table)+where, args...).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

func (p *PG) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// buildWhere renders the conditions as jsonb containment clauses. Each
// equality (and each member of an In set) becomes `doc @> '{"field": v}'`,
// which compares with json typing rather than text casts.
func buildWhere(conds []Cond) (string, []any, error) {
	if len(conds) == 0 {
		return "", nil, nil
	}
	var clauses []string
	var args []any
	arg := func(field string, v any) (string, error) {
		raw, err := json.Marshal(Document{field: v})
		if err != nil {
			return "", fmt.Errorf("encode filter value for %s: %w", field, err)
		}
		args = append(args, raw)
		return fmt.Sprintf("doc @> $%d::jsonb", len(args)), nil
	}

	for _, c := range conds {
		if err := checkIdent(c.Field); err != nil {
			return "", nil, err
		}
		switch c.Op {
		case OpEq:
			cl, err := arg(c.Field, c.Value)
			if err != nil {
				return "", nil, err
			}
			clauses = append(clauses, cl)
		case OpIn:
			vs, ok := c.Value.([]any)
			if !ok {
				return "", nil, fmt.Errorf("in-filter on %s: value is not a list", c.Field)
			}
			if len(vs) == 0 {
				clauses = append(clauses, "FALSE")
				continue
			}
			var ors []string
			for _, v := range vs {
				cl, err := arg(c.Field, v)
				if err != nil {
					return "", nil, err
				}
				ors = append(ors, cl)
			}
			clauses = append(clauses, "("+strings.Join(ors, " OR ")+")")
		default:
			return "", nil, fmt.Errorf("unsupported filter op %d on %s", c.Op, c.Field)
		}
	}
	return " WHERE " + strings.Join(clauses, " AND "), args, nil
}

func checkIdent(name string) error {
	if !identRe.MatchString(name) {
		return fmt.Errorf("invalid identifier %q", name)
	}
	return nil
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
