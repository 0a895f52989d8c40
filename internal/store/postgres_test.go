package store

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/estudai/estudai/internal/caldate"
	"github.com/estudai/estudai/internal/domain"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(sqlx.NewDb(db, "pgx"), DialectPostgres), mock
}

func TestPostgres_IncrementXPUsesDollarPlaceholders(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(
		"UPDATE profiles SET xp = xp + $1, level = (xp + $2) / $3 + 1 WHERE id = $4 RETURNING xp, level",
	)).
		WithArgs(10, 10, 500, "u1").
		WillReturnRows(sqlmock.NewRows([]string{"xp", "level"}).AddRow(510, 2))

	xp, level, err := s.Profiles().IncrementXP(context.Background(), "u1", 10, 500)
	require.NoError(t, err)
	assert.Equal(t, 510, xp)
	assert.Equal(t, 2, level)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_IncrementXPMissingProfile(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery("UPDATE profiles SET xp").
		WillReturnRows(sqlmock.NewRows([]string{"xp", "level"}))

	_, _, err := s.Profiles().IncrementXP(context.Background(), "ghost", 10, 500)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_EssayInsertAndTrimIsOneTransaction(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(mock sqlmock.Sqlmock)
		wantErr   bool
	}{
		{
			name: "commits insert and trim",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(regexp.QuoteMeta("INSERT INTO essays")).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectExec(regexp.QuoteMeta(
					"DELETE FROM essays WHERE user_id = $1 AND id NOT IN (SELECT id FROM essays WHERE user_id = $2 ORDER BY created_at DESC LIMIT $3)",
				)).
					WithArgs("u1", "u1", 5).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
		},
		{
			name: "rolls back when trim fails",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec("INSERT INTO essays").
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectExec("DELETE FROM essays").
					WillReturnError(errors.New("connection reset"))
				mock.ExpectRollback()
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock := newMockStore(t)
			tt.setupMock(mock)

			err := s.Essays().InsertAndTrim(context.Background(), &Essay{
				ID: "e1", UserID: "u1", Content: "texto", Score: 720,
				Feedback: types.JSONText(`{}`), CreatedAt: baseTime,
			}, 5)
			if tt.wantErr {
				assert.ErrorContains(t, err, "trim essays")
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostgres_ReplaceRangeDeletesExactRange(t *testing.T) {
	s, mock := newMockStore(t)
	from := caldate.MustParse("2025-03-10")
	to := caldate.MustParse("2025-03-17")

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(
		"DELETE FROM study_tasks WHERE user_id = $1 AND task_date >= $2 AND task_date <= $3",
	)).
		WithArgs("u1", from, to).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	require.NoError(t, s.StudyTasks().ReplaceRange(context.Background(), "u1", from, to, nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_SearchIsCaseInsensitive(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(
		"FROM questions_pool WHERE is_public = $1 AND subject = $2 AND LOWER(topic) LIKE $3 LIMIT 20",
	)).
		WithArgs(true, "Química", "%estequiometria%").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_by", "subject", "topic", "difficulty", "content", "is_public", "created_at"}).
			AddRow("q1", nil, "Química", "Estequiometria", "medium", []byte(`{"question":"?"}`), true, baseTime))

	got, err := s.QuestionPool().Search(context.Background(), "Química", "Estequiometria", 20)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Nil(t, got[0].CreatedBy)
	assert.NoError(t, mock.ExpectationsWereMet())
}
