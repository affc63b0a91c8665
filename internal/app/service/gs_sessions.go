package service

import (
	"sync"

	"github.com/jose-valero/streambot/internal/domain"
)

// GSSessions es el store explícito de sesiones GS: operador -> sesión, más un
// mutex por operador para serializar sus sub-comandos.
type GSSessions struct {
	mu       sync.Mutex
	locks    map[string]*sync.Mutex
	sessions map[string]*domain.GSSession
}

func NewGSSessions() *GSSessions {
	return &GSSessions{
		locks:    map[string]*sync.Mutex{},
		sessions: map[string]*domain.GSSession{},
	}
}

// Lock toma el mutex del operador y devuelve la función para soltarlo.
func (s *GSSessions) Lock(operatorID string) func() {
	s.mu.Lock()
	l, ok := s.locks[operatorID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[operatorID] = l
	}
	s.mu.Unlock()
	l.Lock()
	return l.Unlock
}

func (s *GSSessions) Get(operatorID string) (*domain.GSSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[operatorID]
	return sess, ok
}

// Put reemplaza en silencio cualquier sesión previa del operador.
func (s *GSSessions) Put(operatorID string, sess *domain.GSSession) {
	s.mu.Lock()
	s.sessions[operatorID] = sess
	s.mu.Unlock()
}

// Delete borra la sesión. El mutex del operador se conserva: quien llama
// puede tenerlo tomado, y la cantidad está acotada por ACCEPTED_AUTHORS.
func (s *GSSessions) Delete(operatorID string) {
	s.mu.Lock()
	delete(s.sessions, operatorID)
	s.mu.Unlock()
}

func (s *GSSessions) lockCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.locks)
}

func (s *GSSessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
