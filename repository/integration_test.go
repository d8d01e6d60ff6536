//go:build integration

package repository_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"waysfood-api/config"
	"waysfood-api/models"
	"waysfood-api/repository"
	"waysfood-api/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
)

func setupPostgres(t *testing.T) *gorm.DB {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("waysfood"),
		postgres.WithUsername("waysfood"),
		postgres.WithPassword("waysfood"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := config.OpenDB("postgres", dsn)
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))
	return db
}

// Only one of several racing updates from the same version may win.
func TestPostgresConcurrentUpdates(t *testing.T) {
	ctx := context.Background()
	db := setupPostgres(t)
	store := repository.NewStore(db)
	customer := testutil.CreateUser(t, db, "budi", models.RoleCustomer)
	partner := testutil.CreateUser(t, db, "asep", models.RolePartner)

	tx := &models.Transaction{CustomerID: customer.ID, RestaurantID: partner.ID, Status: models.StatusWaitingApprove, Version: 1}
	require.NoError(t, store.Transactions.Create(ctx, tx))

	const racers = 8
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		wins  int
		stale int
	)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := store.Transactions.Update(ctx, tx.ID, 1, map[string]any{"status": models.StatusOnTheWay})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case assert.ErrorIs(t, err, repository.ErrStaleVersion):
				stale++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	assert.Equal(t, racers-1, stale)
}

func TestPostgresPopularPartners(t *testing.T) {
	ctx := context.Background()
	db := setupPostgres(t)
	store := repository.NewStore(db)
	customer := testutil.CreateUser(t, db, "budi", models.RoleCustomer)
	partner := testutil.CreateUser(t, db, "asep", models.RolePartner)
	testutil.CreateUser(t, db, "joko", models.RolePartner)

	tx := &models.Transaction{CustomerID: customer.ID, RestaurantID: partner.ID, Status: models.StatusSuccess, Version: 1}
	require.NoError(t, store.Transactions.Create(ctx, tx))

	stats, err := store.Users.PopularPartners(ctx, models.StatusSuccess, 4)
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, partner.ID, stats[0].ID)
	assert.Equal(t, int64(1), stats[0].TransactionCount)
}
