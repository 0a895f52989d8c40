//go:build integration

package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/estudai/estudai/internal/caldate"
)

// openPostgresStore starts a PostgreSQL container, applies migrations and
// returns a Store connected to it.
func openPostgresStore(t *testing.T) *Store {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:17-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "estudai",
				"POSTGRES_PASSWORD": "estudai",
				"POSTGRES_DB":       "estudai",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://estudai:estudai@%s:%s/estudai?sslmode=disable", host, port.Port())
	s, err := Open(ctx, DialectPostgres, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	require.NoError(t, s.Migrate(ctx))
	return s
}

func TestPostgresIntegration(t *testing.T) {
	s := openPostgresStore(t)
	ctx := context.Background()
	today := caldate.MustParse("2025-03-10")

	t.Run("profile streak and xp", func(t *testing.T) {
		profiles := s.Profiles()
		require.NoError(t, profiles.Ensure(ctx, "u1", baseTime))
		require.NoError(t, profiles.SetStreak(ctx, "u1", 3, &today))

		xp, level, err := profiles.IncrementXP(ctx, "u1", 510, 500)
		require.NoError(t, err)
		assert.Equal(t, 510, xp)
		assert.Equal(t, 2, level)

		p, err := profiles.Get(ctx, "u1")
		require.NoError(t, err)
		require.NotNil(t, p.LastActivityDate)
		assert.Equal(t, today, *p.LastActivityDate)
	})

	t.Run("due cards", func(t *testing.T) {
		cards := s.Flashcards()
		c := newCard("u1", "Biologia", today, baseTime)
		require.NoError(t, cards.Create(ctx, c))

		due, err := cards.Due(ctx, "u1", "Biologia", today)
		require.NoError(t, err)
		require.Len(t, due, 1)
		assert.Equal(t, c.ID, due[0].ID)
	})

	t.Run("essay history capped", func(t *testing.T) {
		for i := range 6 {
			require.NoError(t, s.Essays().InsertAndTrim(ctx, &Essay{
				ID: uuid.NewString(), UserID: "u1", Content: "texto", Score: 500,
				Feedback: types.JSONText(`{"c1":{"score":100}}`), CreatedAt: baseTime.Add(time.Duration(i) * time.Minute),
			}, 5))
		}
		got, err := s.Essays().ListRecent(ctx, "u1", 0)
		require.NoError(t, err)
		assert.Len(t, got, 5)
	})

	t.Run("topic search", func(t *testing.T) {
		require.NoError(t, s.QuestionPool().Insert(ctx, &PooledQuestion{
			ID: uuid.NewString(), Subject: "Química", Topic: "Estequiometria", Difficulty: "hard",
			Content: types.JSONText(`{"question":"?"}`), IsPublic: true, CreatedAt: baseTime,
		}))
		got, err := s.QuestionPool().Search(ctx, "Química", "ESTEQUIO", 20)
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})
}
