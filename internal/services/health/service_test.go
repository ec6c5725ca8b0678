package health

import (
	"context"
	"errors"
	"testing"
)

type pingFunc func(context.Context) error

func (f pingFunc) PingContext(ctx context.Context) error { return f(ctx) }

func TestStatus(t *testing.T) {
	tests := []struct {
		name string
		db   Pinger
		want Status
	}{
		{name: "memory", want: Status{OK: true, Database: "memory", EditorSessions: 2}},
		{name: "db up", db: pingFunc(func(context.Context) error { return nil }), want: Status{OK: true, Database: "ok", EditorSessions: 2}},
		{name: "db down", db: pingFunc(func(context.Context) error { return errors.New("refused") }), want: Status{OK: false, Database: "unreachable", EditorSessions: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewService(tt.db, func() int { return 2 }).Status(context.Background())
			if got != tt.want {
				t.Fatalf("Status() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
