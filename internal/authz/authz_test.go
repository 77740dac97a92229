package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanUpdateUser(t *testing.T) {
	tests := []struct {
		name          string
		principal     int64
		authenticated bool
		targetID      int64
		wantErr       error
	}{
		{name: "owner may update", principal: 5, authenticated: true, targetID: 5},
		{name: "other user denied", principal: 7, authenticated: true, targetID: 5, wantErr: ErrUpdateForbidden},
		{name: "anonymous denied", authenticated: false, targetID: 5, wantErr: ErrUpdateForbidden},
		{name: "anonymous denied even with zero target", authenticated: false, targetID: 0, wantErr: ErrUpdateForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanUpdateUser(tt.principal, tt.authenticated, tt.targetID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCanDeleteUser(t *testing.T) {
	tests := []struct {
		name          string
		principal     int64
		authenticated bool
		targetID      int64
		wantErr       error
	}{
		{name: "owner may delete", principal: 5, authenticated: true, targetID: 5},
		{name: "other user denied", principal: 7, authenticated: true, targetID: 5, wantErr: ErrDeleteForbidden},
		{name: "anonymous denied", authenticated: false, targetID: 5, wantErr: ErrDeleteForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanDeleteUser(tt.principal, tt.authenticated, tt.targetID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
