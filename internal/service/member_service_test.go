package service

import (
	"crypto/sha256"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashPassword(t *testing.T) {
	expected := fmt.Sprintf("%x", sha256.Sum256([]byte("13800138000:secret123")))
	assert.Equal(t, expected, hashPassword("13800138000", "secret123"))

	// 同密码不同账号产生不同摘要
	assert.NotEqual(t,
		hashPassword("13800138000", "secret123"),
		hashPassword("13900139000", "secret123"))
	assert.NotEqual(t,
		hashPassword("13800138000", "secret123"),
		hashPassword("13800138000", "secret124"))
}
