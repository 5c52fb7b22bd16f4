package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	hash, salt, err := Hash("correct horse battery staple")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	require.NotEmpty(t, salt)

	ok, err := Verify("correct horse battery staple", salt, hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Verify("wrong password", salt, hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashUsesFreshSalt(t *testing.T) {
	hash1, salt1, err := Hash("hunter2")
	require.NoError(t, err)
	hash2, salt2, err := Hash("hunter2")
	require.NoError(t, err)

	assert.NotEqual(t, salt1, salt2)
	assert.NotEqual(t, hash1, hash2)
}

func TestHashWithSaltIsDeterministic(t *testing.T) {
	hash, salt, err := Hash("hunter2")
	require.NoError(t, err)

	again, err := HashWithSalt("hunter2", salt)
	require.NoError(t, err)
	assert.Equal(t, hash, again)
}

func TestVerifyRejectsMalformedSalt(t *testing.T) {
	_, err := Verify("pw", "not-hex!", "deadbeef")
	assert.Error(t, err)
}
