package storage

import (
	"errors"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"multi-tenant-booking/internal/model"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		wantValidation bool
	}{
		{"invalid datetime format", &pq.Error{Code: "22007", Message: `invalid input syntax for type date: "next tuesday"`}, true},
		{"datetime out of range", &pq.Error{Code: "22008"}, true},
		{"foreign key violation", &pq.Error{Code: "23503"}, true},
		{"check violation", &pq.Error{Code: "23514"}, true},
		{"unique violation", &pq.Error{Code: "23505"}, false},
		{"connection failure", &pq.Error{Code: "08006"}, false},
		{"plain error", errors.New("dial tcp 127.0.0.1:5432: connect: connection refused"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify("insert booking", tt.err)

			assert.Equal(t, tt.wantValidation, errors.Is(got, model.ErrValidation))
			assert.Equal(t, !tt.wantValidation, errors.Is(got, model.ErrStoreUnavailable))
			assert.Contains(t, got.Error(), "insert booking")
		})
	}
}

func TestClassifyKeepsDriverError(t *testing.T) {
	cause := errors.New("connection reset by peer")
	got := classify("list bookings", cause)

	assert.ErrorIs(t, got, cause)
	assert.ErrorIs(t, got, model.ErrStoreUnavailable)
}
