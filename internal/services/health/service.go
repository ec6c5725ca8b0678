package health

import (
	"context"
	"time"
)

const pingTimeout = 2 * time.Second

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Status is the health payload.
type Status struct {
	OK             bool   `json:"ok"`
	Database       string `json:"database"`
	EditorSessions int    `json:"editorSessions"`
}

// Service reports whether the API can serve requests.
type Service struct {
	DB       Pinger
	Sessions func() int
}

// NewService constructs a health service. db is nil when repositories are
// in memory.
func NewService(db Pinger, sessions func() int) *Service {
	return &Service{DB: db, Sessions: sessions}
}

// Status pings the database. OK is false only when a configured database
// does not answer.
func (s *Service) Status(ctx context.Context) Status {
	st := Status{OK: true, Database: "memory"}
	if s.Sessions != nil {
		st.EditorSessions = s.Sessions()
	}
	if s.DB == nil {
		return st
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := s.DB.PingContext(ctx); err != nil {
		st.OK = false
		st.Database = "unreachable"
		return st
	}
	st.Database = "ok"
	return st
}
