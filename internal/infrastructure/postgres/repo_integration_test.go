//go:build integration

package postgres_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ErlanBelekov/contacts-api/internal/domain"
	"github.com/ErlanBelekov/contacts-api/internal/infrastructure/postgres"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("contacts_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "start postgres container")
	t.Cleanup(func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := container.Terminate(cleanupCtx); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := postgres.NewPool(ctx, dsn, postgres.PoolOptions{MaxConns: 10, MinConns: 1})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, postgres.Migrate(ctx, pool))
	return pool
}

func TestRepositories(t *testing.T) {
	pool := setupPool(t)
	accounts := postgres.NewAccountRepository(pool)
	contacts := postgres.NewContactRepository(pool)
	ctx := context.Background()

	t.Run("account create and find", func(t *testing.T) {
		a, err := accounts.Create(ctx, "find@b.com", "hash")
		require.NoError(t, err)
		_, err = uuid.Parse(a.ID)
		require.NoError(t, err)

		got, err := accounts.FindByEmail(ctx, "FIND@b.com")
		require.NoError(t, err)
		assert.Equal(t, a.ID, got.ID)
		assert.Equal(t, "hash", got.PasswordHash)

		_, err = accounts.FindByEmail(ctx, "missing@b.com")
		assert.ErrorIs(t, err, domain.ErrAccountNotFound)
	})

	t.Run("duplicate email maps to ErrEmailTaken", func(t *testing.T) {
		_, err := accounts.Create(ctx, "dup@b.com", "hash")
		require.NoError(t, err)

		_, err = accounts.Create(ctx, "DUP@b.com", "hash")
		assert.ErrorIs(t, err, domain.ErrEmailTaken)
	})

	t.Run("concurrent inserts yield exactly one account", func(t *testing.T) {
		const n = 8
		var (
			wg    sync.WaitGroup
			mu    sync.Mutex
			ok    int
			taken int
		)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := accounts.Create(ctx, "race@b.com", "hash")
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					ok++
				case assert.ErrorIs(t, err, domain.ErrEmailTaken):
					taken++
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, 1, ok)
		assert.Equal(t, n-1, taken)
	})

	t.Run("contacts are owner scoped", func(t *testing.T) {
		alice, err := accounts.Create(ctx, "alice@b.com", "hash")
		require.NoError(t, err)
		bob, err := accounts.Create(ctx, "bob@b.com", "hash")
		require.NoError(t, err)

		c, err := contacts.Create(ctx, &domain.Contact{
			OwnerID: alice.ID, FirstName: "Ada", LastName: "Lovelace", Phone: "0123456789",
		})
		require.NoError(t, err)
		assert.Equal(t, alice.ID, c.OwnerID)

		_, err = contacts.Create(ctx, &domain.Contact{
			OwnerID: alice.ID, FirstName: "Alan", LastName: "Babbage", Phone: "0123456789",
		})
		require.NoError(t, err)

		list, err := contacts.List(ctx, alice.ID)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "Babbage", list[0].LastName)

		bobList, err := contacts.List(ctx, bob.ID)
		require.NoError(t, err)
		assert.Empty(t, bobList)

		_, err = contacts.GetByID(ctx, c.ID, bob.ID)
		assert.ErrorIs(t, err, domain.ErrContactNotFound)

		name := "Eve"
		_, err = contacts.Update(ctx, c.ID, bob.ID, domain.ContactPatch{FirstName: &name})
		assert.ErrorIs(t, err, domain.ErrContactNotFound)

		assert.ErrorIs(t, contacts.Delete(ctx, c.ID, bob.ID), domain.ErrContactNotFound)

		still, err := contacts.GetByID(ctx, c.ID, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, "Ada", still.FirstName)

		phone := "0987654321"
		updated, err := contacts.Update(ctx, c.ID, alice.ID, domain.ContactPatch{Phone: &phone})
		require.NoError(t, err)
		assert.Equal(t, phone, updated.Phone)
		assert.Equal(t, "Ada", updated.FirstName)

		require.NoError(t, contacts.Delete(ctx, c.ID, alice.ID))
		_, err = contacts.GetByID(ctx, c.ID, alice.ID)
		assert.ErrorIs(t, err, domain.ErrContactNotFound)
	})

	t.Run("malformed id maps to ErrInvalidIdentifier", func(t *testing.T) {
		owner, err := accounts.Create(ctx, "malformed@b.com", "hash")
		require.NoError(t, err)

		_, err = contacts.GetByID(ctx, "not-a-uuid", owner.ID)
		assert.ErrorIs(t, err, domain.ErrInvalidIdentifier)
		assert.ErrorIs(t, contacts.Delete(ctx, "not-a-uuid", owner.ID), domain.ErrInvalidIdentifier)
	})
}
