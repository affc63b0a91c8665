package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jose-valero/streambot/internal/domain"
)

func TestGSSessionsReuseOperatorLock(t *testing.T) {
	s := NewGSSessions()

	for i := 0; i < 5; i++ {
		unlock := s.Lock("op1")
		s.Put("op1", domain.NewGSSession())
		s.Delete("op1")
		unlock()
	}
	unlock := s.Lock("op2")
	unlock()

	assert.Equal(t, 2, s.lockCount())
	assert.Zero(t, s.Len())
}
