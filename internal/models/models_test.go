package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Role
		wantErr bool
	}{
		{in: "admin", want: RoleAdmin},
		{in: "user", want: RoleUser},
		{in: "Admin", wantErr: true},
		{in: "", wantErr: true},
		{in: "superuser", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, err := ParseRole(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRole_UnmarshalJSON_RejectsUnknown(t *testing.T) {
	t.Parallel()

	var body struct {
		Role Role `json:"role"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"role":"admin"}`), &body))
	assert.Equal(t, RoleAdmin, body.Role)

	err := json.Unmarshal([]byte(`{"role":"root"}`), &body)
	require.Error(t, err)
}

func TestUser_HasPassword(t *testing.T) {
	t.Parallel()

	empty := ""
	hash := "$2a$10$abc"

	assert.False(t, (&User{}).HasPassword())
	assert.False(t, (&User{PasswordHash: &empty}).HasPassword())
	assert.True(t, (&User{PasswordHash: &hash}).HasPassword())
}
