package alerts

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"backend-touristsafety/internal/db"

	"github.com/jackc/pgx/v5"
)

var (
	ErrAlertNotFound = errors.New("alert not found")
	// ErrAlertChanged means the alert's status moved since it was read.
	ErrAlertChanged  = errors.New("alert changed concurrently")
)

// Store persists alerts. Save only applies when the stored status still equals prev.
type Store interface {
	Create(ctx context.Context, a Alert) (Alert, error)
	Get(ctx context.Context, id int64) (Alert, error)
	List(ctx context.Context, f Filter) ([]Alert, error)
	Save(ctx context.Context, a Alert, prev Status) error
}

type MemoryStore struct {
	mu     sync.RWMutex
	nextID int64
	alerts map[int64]Alert
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{alerts: map[int64]Alert{}}
}

func (m *MemoryStore) Create(_ context.Context, a Alert) (Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	a.ID = m.nextID
	m.alerts[a.ID] = a
	return a, nil
}

func (m *MemoryStore) Get(_ context.Context, id int64) (Alert, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.alerts[id]
	if !ok {
		return Alert{}, ErrAlertNotFound
	}
	return a, nil
}

// List returns matching alerts newest first.
func (m *MemoryStore) List(_ context.Context, f Filter) ([]Alert, error) {
	m.mu.RLock()
	out := make([]Alert, 0, len(m.alerts))
	for _, a := range m.alerts {
		if f.Matches(a) {
			out = append(out, a)
		}
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.After(out[j].Timestamp)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (m *MemoryStore) Save(_ context.Context, a Alert, prev Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.alerts[a.ID]
	if !ok {
		return ErrAlertNotFound
	}
	if cur.Status != prev {
		return ErrAlertChanged
	}
	m.alerts[a.ID] = a
	return nil
}

type PostgresStore struct {
	db db.Querier
}

func NewPostgresStore(q db.Querier) *PostgresStore {
	return &PostgresStore{db: q}
}

const alertColumns = `id, type, COALESCE(emergency,''), tourist_id, COALESCE(tourist_name,''),
	COALESCE(device_id,''), message, lat, lng, COALESCE(address,''), status, priority,
	COALESCE(assigned_officer,''), created_at, acknowledged_at, resolved_at`

func (p *PostgresStore) Create(ctx context.Context, a Alert) (Alert, error) {
	row := p.db.QueryRow(ctx, `
		INSERT INTO alerts (type, emergency, tourist_id, tourist_name, device_id, message,
			lat, lng, address, status, priority, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		RETURNING id
	`, string(a.Type), a.Emergency, a.TouristID, a.TouristName, a.DeviceID, a.Message,
		a.Location.Lat, a.Location.Lng, a.Location.Address, string(a.Status), string(a.Priority), a.Timestamp)
	if err := row.Scan(&a.ID); err != nil {
		return Alert{}, err
	}
	return a, nil
}

func (p *PostgresStore) Get(ctx context.Context, id int64) (Alert, error) {
	row := p.db.QueryRow(ctx, `SELECT `+alertColumns+` FROM alerts WHERE id=$1`, id)
	a, err := scanAlert(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Alert{}, ErrAlertNotFound
	}
	return a, err
}

func (p *PostgresStore) List(ctx context.Context, f Filter) ([]Alert, error) {
	where, args := filterClause(f)
	rows, err := p.db.Query(ctx, `SELECT `+alertColumns+` FROM alerts`+where+` ORDER BY created_at DESC, id DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Alert{}
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (p *PostgresStore) Save(ctx context.Context, a Alert, prev Status) error {
	tag, err := p.db.Exec(ctx, `
		UPDATE alerts SET status=$2, assigned_officer=$3, acknowledged_at=$4, resolved_at=$5
		WHERE id=$1 AND status=$6
	`, a.ID, string(a.Status), a.AssignedOfficer, a.AcknowledgedAt, a.ResolvedAt, string(prev))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		if _, err := p.Get(ctx, a.ID); err != nil {
			return err
		}
		return ErrAlertChanged
	}
	return nil
}

func filterClause(f Filter) (string, []any) {
	switch f {
	case "", FilterAll:
		return "", nil
	case FilterActive:
		return " WHERE status='active'", nil
	case FilterCritical:
		return " WHERE priority='critical'", nil
	case FilterUnresolved:
		return " WHERE status<>'resolved'", nil
	default:
		return " WHERE type=$1", []any{string(f)}
	}
}

func scanAlert(row pgx.Row) (Alert, error) {
	var (
		a                          Alert
		typ, status, priority      string
		acknowledgedAt, resolvedAt *time.Time
	)
	if err := row.Scan(&a.ID, &typ, &a.Emergency, &a.TouristID, &a.TouristName, &a.DeviceID, &a.Message,
		&a.Location.Lat, &a.Location.Lng, &a.Location.Address, &status, &priority, &a.AssignedOfficer,
		&a.Timestamp, &acknowledgedAt, &resolvedAt); err != nil {
		return Alert{}, err
	}
	a.Type = Type(typ)
	a.Status = Status(status)
	a.Priority = Priority(priority)
	a.AcknowledgedAt = acknowledgedAt
	a.ResolvedAt = resolvedAt
	return a, nil
}
