package storage

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/stock-ledger/internal/core/domain"
)

func TestMySQLJournal_EnsureSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS ledger_events").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, NewMySQLJournal(db).EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLJournal_Append(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(mock sqlmock.Sqlmock)
		expectErr bool
	}{
		{
			name: "insert success",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(regexp.QuoteMeta("INSERT INTO ledger_events")).
					WithArgs("evt-1", "added", "apple", "10", sqlmock.AnyArg()).
					WillReturnResult(sqlmock.NewResult(1, 1))
			},
		},
		{
			name: "insert failure",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(regexp.QuoteMeta("INSERT INTO ledger_events")).
					WillReturnError(errors.New("connection reset"))
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()
			tt.setupMock(mock)

			event := domain.MutationEvent{
				ID:       "evt-1",
				Kind:     domain.EventAdded,
				Item:     "apple",
				Quantity: domain.Q(10),
				At:       time.Now(),
			}
			err = NewMySQLJournal(db).Append(context.Background(), event)
			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestMySQLJournal_Events(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	at := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "kind", "item", "quantity", "created_at"}).
		AddRow("evt-1", "added", "apple", "10", at).
		AddRow("evt-2", "removed", "apple", "2.5", at.Add(time.Minute))
	mock.ExpectQuery(regexp.QuoteMeta("FROM ledger_events WHERE item = ?")).
		WithArgs("apple").
		WillReturnRows(rows)

	events, err := NewMySQLJournal(db).Events(context.Background(), "apple")
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, domain.EventAdded, events[0].Kind)
	assert.True(t, events[0].Quantity.Equal(domain.Q(10)))
	assert.Equal(t, domain.EventRemoved, events[1].Kind)
	assert.Equal(t, "2.5", events[1].Quantity.String())
	assert.Equal(t, "2024-05-01 09:31:00.000000: Removed 2.5 of apple", events[1].String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLJournal_EventsBadQuantity(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "kind", "item", "quantity", "created_at"}).
		AddRow("evt-1", "added", "apple", "lots", time.Now())
	mock.ExpectQuery("SELECT id, kind, item, quantity, created_at").WillReturnRows(rows)

	_, err = NewMySQLJournal(db).Events(context.Background(), "apple")
	assert.ErrorIs(t, err, domain.ErrTypeMismatch)
}
