package runner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIdentity(t *testing.T) {
	tests := []struct {
		input   string
		want    Identity
		wantErr bool
	}{
		{input: "octocat/hello-world", want: Identity{Owner: "octocat", Name: "hello-world"}},
		{input: "org/repo.name", want: Identity{Owner: "org", Name: "repo.name"}},
		{input: "noslash", wantErr: true},
		{input: "/repo", wantErr: true},
		{input: "owner/", wantErr: true},
		{input: "a/b/c", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseIdentity(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformedLabel)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.input, got.String())
		})
	}
}

func TestIdentityIsZero(t *testing.T) {
	assert.True(t, Identity{}.IsZero())
	assert.False(t, Identity{Owner: "octocat", Name: "x"}.IsZero())
}
