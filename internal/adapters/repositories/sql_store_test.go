package repositories

import (
	"context"
	"delivery-dispatch-service/internal/domain"
	"delivery-dispatch-service/internal/ports"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedIsIdempotent(t *testing.T) {
	conn := newTestDB(t)
	ctx := context.Background()

	// Reseeding must not reset progressed orders.
	_, err := conn.ExecContext(ctx, `UPDATE orders SET status = 'delivered' WHERE id = 10`)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"drivers":[{"id":1,"name":"Ana"}],"customers":[{"id":1,"name":"Marta"}],"orders":[{"id":10,"customer_id":1}]}`), 0o644))
	require.NoError(t, SeedFromJSON(ctx, conn, path))

	var status string
	require.NoError(t, conn.QueryRowContext(ctx, `SELECT status FROM orders WHERE id = 10`).Scan(&status))
	assert.Equal(t, "delivered", status)
}

func TestSeedRejectsUnknownCustomer(t *testing.T) {
	conn := newTestDB(t)

	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"orders":[{"id":99,"customer_id":42}]}`), 0o644))

	err := SeedFromJSON(context.Background(), conn, path)
	require.ErrorContains(t, err, "unknown customer")
}

func TestGetDriver(t *testing.T) {
	store := NewSQLStore(newTestDB(t))
	ctx := context.Background()

	d, err := store.GetDriver(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Ana", d.Name)
	assert.Equal(t, "1234-ABC", d.VehiclePlate)
	assert.Equal(t, domain.DriverAvailable, d.Status)

	_, err = store.GetDriver(ctx, 404)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListOrdersWithFilter(t *testing.T) {
	store := NewSQLStore(newTestDB(t))
	ctx := context.Background()

	all, err := store.ListOrders(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)

	assert.Equal(t, int64(10), all[0].ID)
	require.NotNil(t, all[0].Location)
	assert.Equal(t, -17.39, all[0].Location.Lat)
	require.NotNil(t, all[0].Customer)
	assert.Equal(t, "Marta", all[0].Customer.Name)
	assert.Nil(t, all[2].Location)

	delivered := domain.OrderDelivered
	none, err := store.ListOrders(ctx, &delivered)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestTxRouteLifecycle(t *testing.T) {
	store := NewSQLStore(newTestDB(t))
	ctx := context.Background()
	driverID := int64(1)

	var routeID int64
	err := store.WithTx(ctx, func(tx ports.Tx) error {
		d, err := tx.LockDriver(ctx, driverID)
		if err != nil {
			return err
		}
		assert.Equal(t, domain.DriverAvailable, d.Status)

		active, err := tx.ActiveRoute(ctx, driverID)
		require.NoError(t, err)
		assert.Nil(t, active)

		orders, err := tx.FindOrders(ctx, []int64{12, 404, 10})
		require.NoError(t, err)
		require.Len(t, orders, 2)
		assert.Equal(t, int64(12), orders[0].ID)
		assert.Equal(t, int64(10), orders[1].ID)

		route := &domain.Route{DriverID: &driverID, DistanceKm: 10, EstimatedMinutes: 60}
		require.NoError(t, tx.CreateRoute(ctx, route))
		routeID = route.ID

		pts, err := tx.AppendRoutePoints(ctx, route.ID, []domain.RoutePoint{
			{OrderID: 10, Location: orders[1].Location},
			{OrderID: 12},
		})
		require.NoError(t, err)
		assert.Equal(t, 1, pts[0].Seq)
		assert.Equal(t, 2, pts[1].Seq)

		require.NoError(t, tx.SetDriverStatus(ctx, driverID, domain.DriverEnRoute))
		return tx.AssignOrders(ctx, route.ID, []int64{10, 12})
	})
	require.NoError(t, err)

	err = store.WithTx(ctx, func(tx ports.Tx) error {
		active, err := tx.ActiveRoute(ctx, driverID)
		require.NoError(t, err)
		require.NotNil(t, active)
		assert.Equal(t, routeID, active.ID)
		require.Len(t, active.Points, 2)

		// Appending continues the sequence.
		pts, err := tx.AppendRoutePoints(ctx, routeID, []domain.RoutePoint{{OrderID: 11}})
		require.NoError(t, err)
		assert.Equal(t, 3, pts[0].Seq)

		n, err := tx.CountUndelivered(ctx, routeID)
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		owner, err := tx.RouteDriverID(ctx, routeID)
		require.NoError(t, err)
		require.NotNil(t, owner)
		assert.Equal(t, driverID, *owner)

		now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
		require.NoError(t, tx.UpdateOrderStatus(ctx, 10, domain.OrderDelivered, &now))
		o, err := tx.LockOrder(ctx, 10)
		require.NoError(t, err)
		require.NotNil(t, o.DeliveredAt)
		assert.True(t, now.Equal(*o.DeliveredAt))

		n, err = tx.CountUndelivered(ctx, routeID)
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		busy, err := tx.CountUndeliveredForDriver(ctx, driverID)
		require.NoError(t, err)
		assert.Equal(t, 1, busy)

		idle, err := tx.CountUndeliveredForDriver(ctx, 2)
		require.NoError(t, err)
		assert.Zero(t, idle)
		return nil
	})
	require.NoError(t, err)

	latest, err := store.LatestRoute(ctx, driverID)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "(-17.39, -66.15); (None, None); (None, None); ", latest.PointsText())

	routeOrders, err := store.RouteOrders(ctx, routeID)
	require.NoError(t, err)
	require.Len(t, routeOrders, 3)
	assert.Equal(t, int64(10), routeOrders[0].ID)
	assert.Equal(t, int64(12), routeOrders[1].ID)
	assert.Equal(t, int64(11), routeOrders[2].ID)
	assert.Equal(t, "Pedro", routeOrders[1].Customer.Name)

	history, err := store.DeliveredOrders(ctx, driverID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, int64(10), history[0].ID)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	store := NewSQLStore(newTestDB(t))
	ctx := context.Background()
	boom := errors.New("boom")

	err := store.WithTx(ctx, func(tx ports.Tx) error {
		require.NoError(t, tx.SetDriverStatus(ctx, 1, domain.DriverEnRoute))
		return boom
	})
	require.ErrorIs(t, err, boom)

	d, err := store.GetDriver(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.DriverAvailable, d.Status)
}

func TestTxNotFound(t *testing.T) {
	store := NewSQLStore(newTestDB(t))
	ctx := context.Background()

	err := store.WithTx(ctx, func(tx ports.Tx) error {
		_, err := tx.LockDriver(ctx, 404)
		require.ErrorIs(t, err, domain.ErrNotFound)

		_, err = tx.LockOrder(ctx, 404)
		require.ErrorIs(t, err, domain.ErrNotFound)

		_, err = tx.LockRoute(ctx, 404)
		require.ErrorIs(t, err, domain.ErrNotFound)

		_, err = tx.RouteDriverID(ctx, 404)
		require.ErrorIs(t, err, domain.ErrNotFound)
		return nil
	})
	require.NoError(t, err)
}

func TestCreateIncident(t *testing.T) {
	store := NewSQLStore(newTestDB(t))

	inc := &domain.Incident{DriverID: 2, Kind: "flat_tire", Description: "Rear tire on Av. America"}
	require.NoError(t, store.CreateIncident(context.Background(), inc))
	assert.NotZero(t, inc.ID)
	assert.False(t, inc.ReportedAt.IsZero())
}
