package startup

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Gobusters/ectologger/zapadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStartup(maxAttempts int) *Startup {
	return NewStartup(zapadapter.NewZapEctoLogger(zap.NewNop(), nil), maxAttempts).WithBackoffUnit(time.Millisecond)
}

func recorder(events *[]string, name string) *Dependency {
	return &Dependency{
		Name: name,
		StartFunc: func(ctx context.Context) error {
			*events = append(*events, "start "+name)
			return nil
		},
		StopFunc: func(ctx context.Context) error {
			*events = append(*events, "stop "+name)
			return nil
		},
	}
}

func TestStartOrderAndReverseStop(t *testing.T) {
	var events []string
	s := newTestStartup(1)

	server := recorder(&events, "http")
	server.Requires = []string{"database"}
	s.AddDependency(server)
	s.AddDependency(recorder(&events, "tracing"))
	s.AddDependency(recorder(&events, "database"))

	ctx := context.Background()
	require.NoError(t, s.Start(ctx))
	assert.Equal(t, StartupStatusStarted, s.Status("http"))
	require.NoError(t, s.Stop(ctx))

	assert.Equal(t, []string{
		"start database", "start http", "start tracing",
		"stop tracing", "stop http", "stop database",
	}, events)
	assert.Equal(t, StartupStatusStopped, s.Status("database"))
}

func TestStartRetries(t *testing.T) {
	calls := 0
	s := newTestStartup(3)
	s.AddDependency(&Dependency{
		Name: "database",
		StartFunc: func(ctx context.Context) error {
			calls++
			if calls < 3 {
				return errors.New("connection refused")
			}
			return nil
		},
	})

	require.NoError(t, s.Start(context.Background()))
	assert.Equal(t, 3, calls)
}

func TestStartGivesUp(t *testing.T) {
	s := newTestStartup(2)
	s.AddDependency(&Dependency{
		Name:      "database",
		StartFunc: func(ctx context.Context) error { return errors.New("login failed") },
	})

	err := s.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 2 attempts")
	assert.Contains(t, err.Error(), "login failed")
	assert.Equal(t, StartupStatusFailed, s.Status("database"))
}

func TestStartUnknownDependency(t *testing.T) {
	s := newTestStartup(1)
	s.AddDependency(&Dependency{Name: "http", Requires: []string{"database"}})

	err := s.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown startup dependency 'database'")
}

func TestStartCycle(t *testing.T) {
	s := newTestStartup(1)
	s.AddDependency(&Dependency{Name: "a", Requires: []string{"b"}})
	s.AddDependency(&Dependency{Name: "b", Requires: []string{"a"}})

	err := s.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle")
}

func TestStopContinuesAfterFailure(t *testing.T) {
	var events []string
	s := newTestStartup(1)
	s.AddDependency(recorder(&events, "database"))
	s.AddDependency(&Dependency{
		Name:     "cache",
		StopFunc: func(ctx context.Context) error { return errors.New("already closed") },
	})

	ctx := context.Background()
	require.NoError(t, s.Start(ctx))
	err := s.Stop(ctx)
	require.Error(t, err)
	assert.Equal(t, []string{"start database", "stop database"}, events)
}
