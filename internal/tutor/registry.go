package tutor

import "sync"

// Registry hands out one Session per learner ID. Independent learners get
// independent state and never share a lock.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	cfg      Config
}

// NewRegistry creates a registry that builds sessions from cfg.
func NewRegistry(cfg Config) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		cfg:      cfg,
	}
}

// Session returns the learner's session, creating it on first use.
func (r *Registry) Session(learnerID string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[learnerID]; ok {
		return s, nil
	}

	s, err := NewSession(r.cfg)
	if err != nil {
		return nil, err
	}
	r.sessions[learnerID] = s
	return s, nil
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
