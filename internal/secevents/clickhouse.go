package secevents

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	clickhouse "github.com/ClickHouse/clickhouse-go/v2"
	"github.com/google/uuid"
)

type chStore struct {
	conn  clickhouse.Conn
	table string
}

// NewClickHouse stores events in ClickHouse for long retention. The table is
// expected to exist:
//
//	CREATE TABLE pitboss.security_events (
//	    event_time DateTime, id String, actor String, action String,
//	    severity String, ip String, detail String
//	) ENGINE = MergeTree ORDER BY event_time
func NewClickHouse(dsn string) (Store, error) {
	// naive DSN parse: clickhouse://host:port/db
	addr := strings.TrimPrefix(strings.TrimPrefix(dsn, "clickhouse://"), "http://")
	host := addr
	if i := strings.Index(host, "/"); i >= 0 {
		host = host[:i]
	}
	conn, err := clickhouse.Open(&clickhouse.Options{Addr: []string{host}})
	if err != nil {
		return nil, fmt.Errorf("clickhouse: %w", err)
	}
	return &chStore{conn: conn, table: "pitboss.security_events"}, nil
}

// NewFromEnv returns the ClickHouse store when CLICKHOUSE_DSN is set,
// otherwise the in-memory buffer.
func NewFromEnv() Store {
	dsn := strings.TrimSpace(os.Getenv("CLICKHOUSE_DSN"))
	if dsn == "" {
		return NewMemory()
	}
	s, err := NewClickHouse(dsn)
	if err != nil {
		log.Printf("[secevents] clickhouse unavailable, using memory: %v", err)
		return NewMemory()
	}
	return s
}

func (s *chStore) Insert(evt Event) error {
	if evt.ID == "" {
		evt.ID = uuid.NewString()
	}
	if evt.Time.IsZero() {
		evt.Time = time.Now()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	batch, err := s.conn.PrepareBatch(ctx, "INSERT INTO "+s.table+" (event_time, id, actor, action, severity, ip, detail)")
	if err != nil {
		return err
	}
	if err := batch.Append(evt.Time, evt.ID, evt.Actor, evt.Action, evt.Severity, evt.IP, evt.Detail); err != nil {
		return err
	}
	return batch.Send()
}

func (s *chStore) List(opts ListOptions) ([]Event, int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	where := []string{"1=1"}
	args := []any{}
	if opts.Severity != "" {
		where = append(where, "severity = ?")
		args = append(args, opts.Severity)
	}
	if opts.Actor != "" {
		where = append(where, "actor = ?")
		args = append(args, opts.Actor)
	}
	if q := strings.TrimSpace(opts.Search); q != "" {
		where = append(where, "(positionCaseInsensitive(actor, ?) > 0 OR positionCaseInsensitive(action, ?) > 0 OR positionCaseInsensitive(detail, ?) > 0)")
		args = append(args, q, q, q)
	}
	cond := strings.Join(where, " AND ")

	var total uint64
	row := s.conn.QueryRow(ctx, "SELECT count() FROM "+s.table+" WHERE "+cond, args...)
	if err := row.Scan(&total); err != nil {
		return nil, 0, err
	}

	dir := "DESC"
	if opts.SortAsc {
		dir = "ASC"
	}
	size := opts.PageSize
	if size <= 0 {
		size = 20
	}
	page := opts.Page
	if page <= 0 {
		page = 1
	}
	query := fmt.Sprintf(
		"SELECT event_time, id, actor, action, severity, ip, detail FROM %s WHERE %s ORDER BY event_time %s LIMIT %d OFFSET %d",
		s.table, cond, dir, size, (page-1)*size,
	)
	rows, err := s.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.Time, &e.ID, &e.Actor, &e.Action, &e.Severity, &e.IP, &e.Detail); err != nil {
			return nil, 0, err
		}
		out = append(out, e)
	}
	if out == nil {
		out = []Event{}
	}
	return out, int64(total), rows.Err()
}

func (s *chStore) Close() error { return s.conn.Close() }
