package services

import (
	"context"
	"database/sql"
	"delivery-dispatch-service/internal/adapters/repositories"
	"delivery-dispatch-service/internal/domain"
	"delivery-dispatch-service/internal/platform/db"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, events ...domain.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type fixture struct {
	conn   *db.DB
	store  *repositories.SQLStore
	events *recordingPublisher
}

func f64(v float64) *float64 { return &v }

// Orders 1..6 around the origin, in degrees:
// 1 (0,3)  2 (0,1)  3 (0,2)  4 no coordinate  5 (0,4)  6 (0,-1)
func newFixture(t *testing.T) *fixture {
	t.Helper()

	dir := t.TempDir()
	conn, err := db.Open(db.DriverSQLite, filepath.Join(dir, "services.db"))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	ctx := context.Background()
	require.NoError(t, repositories.InitSchema(ctx, conn))

	seed := repositories.Seed{
		Drivers: []repositories.DriverSeed{
			{ID: 1, Name: "Ana", Phone: "70000001"},
			{ID: 2, Name: "Luis", Phone: "70000002"},
		},
		Customers: []repositories.CustomerSeed{
			{ID: 1, Name: "Marta", Phone: "60000001", Address: "Av. Heroinas 100"},
		},
		Orders: []repositories.OrderSeed{
			{ID: 1, CustomerID: 1, Address: "A", Lat: f64(0), Lon: f64(3)},
			{ID: 2, CustomerID: 1, Address: "B", Lat: f64(0), Lon: f64(1)},
			{ID: 3, CustomerID: 1, Address: "C", Lat: f64(0), Lon: f64(2)},
			{ID: 4, CustomerID: 1, Address: "D"},
			{ID: 5, CustomerID: 1, Address: "E", Lat: f64(0), Lon: f64(4)},
			{ID: 6, CustomerID: 1, Address: "F", Lat: f64(0), Lon: f64(-1)},
		},
	}
	raw, err := json.Marshal(seed)
	require.NoError(t, err)
	path := filepath.Join(dir, "seed.json")
	require.NoError(t, os.WriteFile(path, raw, 0o644))
	require.NoError(t, repositories.SeedFromJSON(ctx, conn, path))

	return &fixture{
		conn:   conn,
		store:  repositories.NewSQLStore(conn),
		events: &recordingPublisher{},
	}
}

func (f *fixture) assigner() *RouteAssigner {
	return NewRouteAssigner(f.store, f.events, domain.Coordinates{Lat: 0, Lon: 0})
}

func (f *fixture) orders() *OrderService {
	return NewOrderService(f.store, f.events)
}

func (f *fixture) driverStatus(t *testing.T, id int64) domain.DriverStatus {
	t.Helper()
	var s string
	require.NoError(t, f.conn.QueryRow(`SELECT status FROM drivers WHERE id = ?`, id).Scan(&s))
	return domain.DriverStatus(s)
}

func (f *fixture) order(t *testing.T, id int64) (domain.OrderStatus, sql.NullInt64) {
	t.Helper()
	var s string
	var routeID sql.NullInt64
	require.NoError(t, f.conn.QueryRow(`SELECT status, route_id FROM orders WHERE id = ?`, id).Scan(&s, &routeID))
	return domain.OrderStatus(s), routeID
}

func (f *fixture) routeCount(t *testing.T, driverID int64) int {
	t.Helper()
	var n int
	require.NoError(t, f.conn.QueryRow(`SELECT COUNT(*) FROM routes WHERE driver_id = ?`, driverID).Scan(&n))
	return n
}
