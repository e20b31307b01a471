package idgen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateUnique(t *testing.T) {
	sf := &Snowflake{workerID: 1}

	seen := make(map[int64]bool)
	for i := 0; i < 10000; i++ {
		id := sf.Generate()
		assert.False(t, seen[id], "ID 重复: %d", id)
		seen[id] = true
	}
}

func TestGenerateMonotonic(t *testing.T) {
	sf := &Snowflake{workerID: 1}

	prev := sf.Generate()
	for i := 0; i < 1000; i++ {
		id := sf.Generate()
		assert.Greater(t, id, prev)
		prev = id
	}
}

func TestGenerateConcurrent(t *testing.T) {
	sf := &Snowflake{workerID: 2}

	const goroutines = 10
	const perGoroutine = 1000

	ch := make(chan int64, goroutines*perGoroutine)
	done := make(chan struct{})
	for g := 0; g < goroutines; g++ {
		go func() {
			for i := 0; i < perGoroutine; i++ {
				ch <- sf.Generate()
			}
			done <- struct{}{}
		}()
	}
	for g := 0; g < goroutines; g++ {
		<-done
	}
	close(ch)

	seen := make(map[int64]bool)
	for id := range ch {
		assert.False(t, seen[id])
		seen[id] = true
	}
	assert.Len(t, seen, goroutines*perGoroutine)
}

func TestOrderNoFormat(t *testing.T) {
	giftNo := GenerateGiftOrderNo()
	assert.True(t, strings.HasPrefix(giftNo, "GFT"))
	assert.Len(t, giftNo, 3+14+8)

	rechargeNo := GenerateRechargeNo()
	assert.True(t, strings.HasPrefix(rechargeNo, "RCH"))
	assert.Len(t, rechargeNo, 3+14+8)

	assert.NotEqual(t, GenerateGiftOrderNo(), GenerateGiftOrderNo())
}

func TestSessionKeyUnique(t *testing.T) {
	a := GenerateSessionKey()
	b := GenerateSessionKey()
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}
