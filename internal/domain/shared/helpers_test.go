package shared

import (
	"errors"
	"testing"
)

func TestIsUniqueConstraintError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New(`ERROR: duplicate key value violates unique constraint "idx_donations_checkout_session_id" (SQLSTATE 23505)`), true},
		{errors.New("UNIQUE constraint failed: transaction_details.charge_id"), true},
		{errors.New("connection refused"), false},
	}

	for _, tt := range tests {
		if got := IsUniqueConstraintError(tt.err); got != tt.want {
			t.Fatalf("IsUniqueConstraintError(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
