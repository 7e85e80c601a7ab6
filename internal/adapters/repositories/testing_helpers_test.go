package repositories

import (
	"context"
	"delivery-dispatch-service/internal/platform/db"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func ptr(f float64) *float64 { return &f }

func testSeed() Seed {
	return Seed{
		Drivers: []DriverSeed{
			{ID: 1, Name: "Ana", License: "LP-100", Phone: "70000001", VehiclePlate: "1234-ABC"},
			{ID: 2, Name: "Luis", License: "LP-200", Phone: "70000002", VehiclePlate: "5678-XYZ"},
		},
		Customers: []CustomerSeed{
			{ID: 1, Name: "Marta", Phone: "60000001", Address: "Av. Heroinas 100", Lat: ptr(-17.39), Lon: ptr(-66.15)},
			{ID: 2, Name: "Pedro", Phone: "60000002", Address: "Calle Jordan 22"},
		},
		Orders: []OrderSeed{
			{ID: 10, CustomerID: 1, Address: "Av. Heroinas 100", Lat: ptr(-17.390), Lon: ptr(-66.150)},
			{ID: 11, CustomerID: 2, Address: "Calle Jordan 22", Lat: ptr(-17.380), Lon: ptr(-66.140)},
			{ID: 12, CustomerID: 2, Address: "Calle Jordan 22"},
		},
	}
}

// newTestDB opens a seeded SQLite database in a temp dir.
func newTestDB(t *testing.T) *db.DB {
	t.Helper()

	dir := t.TempDir()
	conn, err := db.Open(db.DriverSQLite, filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	ctx := context.Background()
	require.NoError(t, InitSchema(ctx, conn))

	raw, err := json.Marshal(testSeed())
	require.NoError(t, err)
	seedPath := filepath.Join(dir, "seed.json")
	require.NoError(t, os.WriteFile(seedPath, raw, 0o644))
	require.NoError(t, SeedFromJSON(ctx, conn, seedPath))

	return conn
}
