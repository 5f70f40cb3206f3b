package session

import (
	"net/http"

	gorilla "github.com/gorilla/sessions"
)

// A Stub is a SessionStorer holding a single session in memory.
// Saving a Stub's session does nothing.
//
// Use a Stub in tests or wherever no real session storage is configured.
type Stub struct {
	s *gorilla.Session
}

// NewStub constructs a *Stub.
func NewStub() *Stub {
	s := new(Stub)
	s.s = gorilla.NewSession(s, "stub")
	return s
}

func (s *Stub) GetSession(r *http.Request) (Session, error) { return Session{s.s}, nil }

func (s *Stub) Get(r *http.Request, name string) (*gorilla.Session, error) { return s.s, nil }
func (s *Stub) New(r *http.Request, name string) (*gorilla.Session, error) { return s.s, nil }
func (s *Stub) Save(r *http.Request, w http.ResponseWriter, sess *gorilla.Session) error {
	return nil
}
