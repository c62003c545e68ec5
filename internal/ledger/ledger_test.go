package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidator_Validate(t *testing.T) {
	v := NewValidator(nil) // defaults to "algo"

	tests := []struct {
		name     string
		selected []string
		wantErr  bool
	}{
		{name: "single supported", selected: []string{"algo"}, wantErr: false},
		{name: "repeated supported", selected: []string{"algo", "algo"}, wantErr: false},
		{name: "empty list", selected: []string{}, wantErr: true},
		{name: "nil list", selected: nil, wantErr: true},
		{name: "unknown ledger", selected: []string{"eth"}, wantErr: true},
		{name: "mixed list rejected as a whole", selected: []string{"algo", "eth"}, wantErr: true},
		{name: "case variant rejected", selected: []string{"ALGO"}, wantErr: true},
		{name: "empty string rejected", selected: []string{""}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.selected)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedLedger)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidator_ConfiguredSet(t *testing.T) {
	v := NewValidator([]string{"algo", "algo-testnet"})

	assert.NoError(t, v.Validate([]string{"algo-testnet", "algo"}))
	assert.ErrorIs(t, v.Validate([]string{"eth"}), ErrUnsupportedLedger)
}
