package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPasswordService_HashAndVerify(t *testing.T) {
	svc := NewPasswordService()

	hash, err := svc.HashPassword("correct horse battery staple")
	assert.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, "correct horse battery staple", hash)

	assert.True(t, svc.VerifyPassword(hash, "correct horse battery staple"))
	assert.False(t, svc.VerifyPassword(hash, "wrong password"))
	assert.False(t, svc.VerifyPassword("not-a-hash", "anything"))
}

func TestPasswordService_DistinctSalts(t *testing.T) {
	svc := NewPasswordService()

	a, err := svc.HashPassword("same input")
	assert.NoError(t, err)
	b, err := svc.HashPassword("same input")
	assert.NoError(t, err)

	assert.NotEqual(t, a, b)
}
