package domain

import (
	"errors"
	"io/fs"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "10", want: "10"},
		{in: "2.5", want: "2.5"},
		{in: " 7 ", want: "7"},
		{in: "1e3", want: "1000"},
		{in: "-3", want: "-3"},
		{in: "1e64", want: "1" + strings.Repeat("0", 64)},
		{in: "ten", wantErr: true},
		{in: "", wantErr: true},
		{in: "1e30000000", wantErr: true},
		{in: "1e2000000000", wantErr: true},
		{in: "1e-65", wantErr: true},
		{in: "1" + strings.Repeat("0", 64), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			q, err := ParseQuantity(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrTypeMismatch)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, q.String())
		})
	}
}

func TestQuantity_Arithmetic(t *testing.T) {
	q := Q(10).Sub(Q(3)).Add(Q(0.5))
	assert.Equal(t, "7.5", q.String())
	assert.True(t, Q(2).LessThan(Q(2.5)))
	assert.True(t, Q(0).IsZero())
	assert.True(t, Quantity{}.IsZero())
	assert.True(t, Q(-1).IsNegative())
	assert.True(t, Q(int64(4)).Equal(Q(4.0)))
}

func TestMutationEvent_String(t *testing.T) {
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	added := MutationEvent{Kind: EventAdded, Item: "apple", Quantity: Q(10), At: at}
	assert.Equal(t, "2024-05-01 10:00:00.000000: Added 10 of apple", added.String())

	removed := MutationEvent{Kind: EventRemoved, Item: "pear", Quantity: Q(1.5), At: at}
	assert.Equal(t, "2024-05-01 10:00:00.000000: Removed 1.5 of pear", removed.String())
}

func TestSnapshot_Validate(t *testing.T) {
	tests := []struct {
		name    string
		snap    Snapshot
		wantErr bool
	}{
		{name: "empty", snap: nil},
		{name: "valid", snap: Snapshot{{"apple", Q(10)}, {"banana", Q(0)}}},
		{name: "blank name", snap: Snapshot{{"  ", Q(1)}}, wantErr: true},
		{name: "invalid utf-8 name", snap: Snapshot{{"a\xffb", Q(1)}}, wantErr: true},
		{name: "negative", snap: Snapshot{{"apple", Q(-1)}}, wantErr: true},
		{name: "duplicate", snap: Snapshot{{"apple", Q(1)}, {"apple", Q(2)}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.snap.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrSchemaViolation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCheckName(t *testing.T) {
	assert.NoError(t, CheckName("apple"))
	assert.NoError(t, CheckName("café"))
	assert.ErrorIs(t, CheckName(" \t"), ErrEmptyName)
	assert.ErrorIs(t, CheckName("a\xffb"), ErrTypeMismatch)
}

func TestPersistError(t *testing.T) {
	tests := []struct {
		kind     FailureKind
		sentinel error
	}{
		{KindBadPath, ErrEmptyName},
		{KindFileNotFound, ErrIOFailure},
		{KindPermissionDenied, ErrIOFailure},
		{KindMalformedJSON, ErrMalformedJSON},
		{KindSchemaViolation, ErrSchemaViolation},
		{KindOtherIO, ErrIOFailure},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			err := error(&PersistError{Op: "load", Path: "x.json", Kind: tt.kind, Err: fs.ErrNotExist})
			assert.ErrorIs(t, err, tt.sentinel)
			assert.ErrorIs(t, err, fs.ErrNotExist)

			kind, ok := KindOf(err)
			require.True(t, ok)
			assert.Equal(t, tt.kind, kind)
			assert.Contains(t, err.Error(), string(tt.kind))
		})
	}

	_, ok := KindOf(errors.New("plain"))
	assert.False(t, ok)
}
