package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFolderName(t *testing.T) {
	cases := []struct {
		id          uint
		first, last string
		want        string
	}{
		{1, "Jane", "Doe", "1-Jane_Doe"},
		{1, "Jane", "Smith", "1-Jane_Smith"},
		{12, "Edgar Fabian", "Gonzalez Perez", "12-Edgar_Fabian_Gonzalez_Perez"},
		{3, "Ana ", "Ruiz", "3-Ana__Ruiz"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, FolderName(c.id, c.first, c.last))
	}

	p := Person{ID: 7, FirstName: "María José", LastName: "Soto"}
	assert.Equal(t, "7-María_José_Soto", p.FolderName())
}

func TestUserPassword(t *testing.T) {
	u := &User{}
	require.NoError(t, u.SetPassword("secret123"))
	assert.NotEqual(t, "secret123", u.PasswordHash)
	assert.True(t, u.CheckPassword("secret123"))
	assert.False(t, u.CheckPassword("secret124"))
}

func TestTokenSecretRoundTrip(t *testing.T) {
	secret, err := NewTokenSecret()
	require.NoError(t, err)
	assert.Len(t, secret, tokenSecretLength)

	other, err := NewTokenSecret()
	require.NoError(t, err)
	assert.NotEqual(t, secret, other)

	tok := PersonalAccessToken{ID: 42}
	id, parsed, ok := ParsePlainTextToken(tok.PlainText(secret))
	require.True(t, ok)
	assert.Equal(t, uint(42), id)
	assert.Equal(t, secret, parsed)
	assert.Len(t, HashTokenSecret(secret), 64)
}

func TestParsePlainTextToken_Rejects(t *testing.T) {
	for _, raw := range []string{"", "abc", "|secret", "0|secret", "x|secret", "5|"} {
		_, _, ok := ParsePlainTextToken(raw)
		assert.False(t, ok, raw)
	}
}
