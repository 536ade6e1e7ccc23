package store

import (
	"context"
	"database/sql"
	"os"
	"testing"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pedidos-bot/api/internal/order"
)

// Runs against a disposable database named by TEST_DATABASE_URL.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	db, err := sql.Open("pgx", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	require.NoError(t, Migrate(ctx, db, nil))
	require.NoError(t, Migrate(ctx, db, nil), "second run must be a no-op")

	_, err = db.ExecContext(ctx, `truncate ordenes_telegram, inventario_balances, productos, clientes restart identity cascade`)
	require.NoError(t, err)
	return db
}

func TestIntegration_CatalogAndClients(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	_, err := db.ExecContext(ctx, `
insert into productos (codigo, descripcion, precio, inventario, eliminado_en) values
 ('B812', 'BOLSA NEGRA 8X12 X10', 80.00, 5, null),
 ('B50',  'BOLSA NEGRA 8X12 X50', 350.00, 0, null),
 ('OLD',  'BOLSA VIEJA', 1.00, 10, now())`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `insert into inventario_balances (producto_id, cantidad_actual) values (2, 7)`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `
insert into clientes (nombres, apellidos, activo) values
 ('GRANJAS', 'DEL SUR', true),
 ('SUR', 'EXPRESS', true),
 ('GRANJAS', 'CERRADAS', false)`)
	require.NoError(t, err)

	cat := NewCatalogRepo(db)
	rows, err := cat.SearchProducts(ctx, "bolsa negra")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.True(t, rows[1].Stock.Equal(decimal.NewFromInt(7)), "balance overrides the product counter")

	all, err := cat.ListAllProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	for _, p := range all {
		assert.NotEqual(t, "OLD", p.Code, "deleted products are hidden")
	}

	clients, err := NewClientRepo(db).SearchClients(ctx, "granjas del sur")
	require.NoError(t, err)
	require.Len(t, clients, 1)
	assert.Equal(t, "GRANJAS DEL SUR", clients[0].Name)

	none, err := NewClientRepo(db).SearchClients(ctx, "g")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestIntegration_Orders(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewOrderRepo(db)

	normal := decimal.RequireFromString("80")
	items := []order.Item{{Code: "B812", Description: "BOLSA", Quantity: 2, Price: decimal.RequireFromString("85.5"), OriginalPrice: &normal, Stock: decimal.NewFromInt(5)}}
	a := order.NewAssembler(repo, nil, nil)
	rec, err := a.Finalize(ctx, order.Draft{UserID: 1, Client: "GRANJAS DEL SUR", RawInput: "2 bolsa", Items: items, Note: "x"})
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusPending, got.Status)
	assert.True(t, got.Total.Equal(decimal.RequireFromString("171")))
	require.Len(t, got.Items, 1)
	assert.True(t, got.Items[0].OriginalPrice.Equal(normal))
	assert.NotEmpty(t, got.Date)

	counts, err := repo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, []order.StatusCount{{Status: "pendiente", Count: 1}}, counts)

	_, err = repo.GetByID(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}
