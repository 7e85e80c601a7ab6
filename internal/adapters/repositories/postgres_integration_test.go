//go:build integration

package repositories_test

import (
	"context"
	"delivery-dispatch-service/internal/adapters/repositories"
	"delivery-dispatch-service/internal/domain"
	"delivery-dispatch-service/internal/platform/db"
	"delivery-dispatch-service/internal/services"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupPostgres starts a PostgreSQL container and returns a seeded connection
// with one driver and ten pending orders on a line east of the origin.
func setupPostgres(t *testing.T) *db.DB {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "dispatch",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "failed to start PostgreSQL container")
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate PostgreSQL container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)
	dsn := fmt.Sprintf("postgres://test:test@%s:%s/dispatch?sslmode=disable", host, port.Port())

	var conn *db.DB
	require.Eventually(t, func() bool {
		conn, err = db.Open(db.DriverPostgres, dsn)
		return err == nil
	}, 30*time.Second, time.Second, "PostgreSQL not ready for connections")
	t.Cleanup(func() { conn.Close() })

	require.NoError(t, repositories.InitSchema(ctx, conn))

	seed := repositories.Seed{
		Drivers:   []repositories.DriverSeed{{ID: 1, Name: "Ana"}},
		Customers: []repositories.CustomerSeed{{ID: 1, Name: "Marta"}},
	}
	for i := 1; i <= 10; i++ {
		lat, lon := 0.0, float64(i)
		seed.Orders = append(seed.Orders, repositories.OrderSeed{ID: int64(i), CustomerID: 1, Lat: &lat, Lon: &lon})
	}
	raw, err := json.Marshal(seed)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(path, raw, 0o644))
	require.NoError(t, repositories.SeedFromJSON(ctx, conn, path))

	return conn
}

func TestPostgresConcurrentAssignmentsMergeIntoOneRoute(t *testing.T) {
	conn := setupPostgres(t)
	store := repositories.NewSQLStore(conn)
	assigner := services.NewRouteAssigner(store, nil, domain.Coordinates{})
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := int64(1); i <= 10; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			if _, err := assigner.AssignRoute(ctx, 1, []int64{id}); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	var routes int
	require.NoError(t, conn.QueryRow(`SELECT COUNT(*) FROM routes WHERE driver_id = 1`).Scan(&routes))
	assert.Equal(t, 1, routes)

	route, err := store.LatestRoute(ctx, 1)
	require.NoError(t, err)
	require.Len(t, route.Points, 10)
	for i, p := range route.Points {
		assert.Equal(t, i+1, p.Seq)
	}
}

func TestPostgresConcurrentDeliveriesReleaseOnce(t *testing.T) {
	conn := setupPostgres(t)
	store := repositories.NewSQLStore(conn)
	ctx := context.Background()

	ids := []int64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	_, err := services.NewRouteAssigner(store, nil, domain.Coordinates{}).AssignRoute(ctx, 1, ids)
	require.NoError(t, err)

	orders := services.NewOrderService(store, nil)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		releases int
	)
	for _, id := range ids {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			update, err := orders.UpdateStatus(ctx, id, "delivered")
			if !assert.NoError(t, err) {
				return
			}
			if update.DriverReleased {
				mu.Lock()
				releases++
				mu.Unlock()
			}
		}(id)
	}
	wg.Wait()

	assert.Equal(t, 1, releases)

	d, err := store.GetDriver(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.DriverAvailable, d.Status)
}
