package sessionhub_test

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/dalemusser/studydesk/internal/app/controller"
	"github.com/dalemusser/studydesk/internal/app/store/kv"
	"github.com/dalemusser/studydesk/internal/app/system/sessionhub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func TestDo_CreatesAndReusesSessions(t *testing.T) {
	ctx := context.Background()
	h := sessionhub.New(kv.NewMemory(), zap.NewNop())

	var first *controller.Controller
	require.NoError(t, h.Do(ctx, "abc", func(s *sessionhub.Session) error {
		first = s.Ctl
		assert.True(t, s.Ctl.State().Ready)
		assert.Equal(t, controller.ViewAuth, s.Ctl.Screen())
		return nil
	}))
	require.NoError(t, h.Do(ctx, "abc", func(s *sessionhub.Session) error {
		assert.Same(t, first, s.Ctl)
		return nil
	}))
	assert.Equal(t, 1, h.Len())
}

func TestEvictIdle_RestoresFromStore(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	h := sessionhub.New(kv.NewMemory(), zap.NewNop(),
		sessionhub.WithClock(func() time.Time { return now }),
		sessionhub.WithControllerOptions(controller.WithBcryptCost(bcrypt.MinCost)))

	require.NoError(t, h.Do(ctx, "abc", func(s *sessionhub.Session) error {
		_, err := s.Ctl.Dispatch(ctx, controller.Register{Email: "ana@example.com", Password: "pw"})
		return err
	}))

	now = now.Add(time.Hour)
	require.NoError(t, h.Do(ctx, "def", func(*sessionhub.Session) error { return nil }))

	assert.Equal(t, 1, h.EvictIdle(now.Add(-30*time.Minute)))
	assert.Equal(t, 1, h.Len())

	require.NoError(t, h.Do(ctx, "abc", func(s *sessionhub.Session) error {
		st := s.Ctl.State()
		require.NotNil(t, st.CurrentUser)
		assert.Equal(t, "ana@example.com", st.CurrentUser.Email)
		return nil
	}))
}

func TestDo_SerializesEachSession(t *testing.T) {
	ctx := context.Background()
	h := sessionhub.New(kv.NewMemory(), zap.NewNop())
	ids := []string{"a", "b", "c"}

	// Each counter is touched only under its own session's lock.
	var inside, maxInside [3]int
	var wg sync.WaitGroup
	for i := range 30 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			k := i % 3
			_ = h.Do(ctx, ids[k], func(*sessionhub.Session) error {
				inside[k]++
				maxInside[k] = max(maxInside[k], inside[k])
				time.Sleep(time.Millisecond)
				inside[k]--
				return nil
			})
		}()
	}
	wg.Wait()
	assert.Equal(t, [3]int{1, 1, 1}, maxInside)
}

func TestDo_BusySessionDoesNotBlockOthers(t *testing.T) {
	ctx := context.Background()
	h := sessionhub.New(kv.NewMemory(), zap.NewNop())

	entered := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = h.Do(ctx, "slow", func(*sessionhub.Session) error {
			close(entered)
			<-release
			return nil
		})
	}()
	<-entered

	other := make(chan error, 1)
	go func() { other <- h.Do(ctx, "fast", func(*sessionhub.Session) error { return nil }) }()
	select {
	case err := <-other:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("a busy session blocked another session")
	}

	close(release)
	<-done
}

func TestEvictIdle_KeepsBusySession(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	h := sessionhub.New(kv.NewMemory(), zap.NewNop(),
		sessionhub.WithClock(func() time.Time { return now }))

	entered := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = h.Do(ctx, "busy", func(*sessionhub.Session) error {
			close(entered)
			<-release
			return nil
		})
	}()
	<-entered

	assert.Equal(t, 0, h.EvictIdle(now.Add(time.Hour)))
	assert.Equal(t, 1, h.Len())

	close(release)
	<-done
	assert.Equal(t, 1, h.EvictIdle(now.Add(time.Hour)))
	assert.Equal(t, 0, h.Len())
}

func TestDo_ConcurrentRegistrationsKeepBothUsers(t *testing.T) {
	ctx := context.Background()
	h := sessionhub.New(kv.NewMemory(), zap.NewNop(),
		sessionhub.WithControllerOptions(controller.WithBcryptCost(bcrypt.MinCost)))

	emails := []string{"a@example.com", "b@example.com", "c@example.com", "d@example.com"}
	var wg sync.WaitGroup
	for i, email := range emails {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := h.Do(ctx, "s"+strconv.Itoa(i), func(s *sessionhub.Session) error {
				_, err := s.Ctl.Dispatch(ctx, controller.Register{Email: email, Password: "pw"})
				return err
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	primaries := 0
	for i := range emails {
		require.NoError(t, h.Do(ctx, "s"+strconv.Itoa(i), func(s *sessionhub.Session) error {
			if _, err := s.Ctl.Dispatch(ctx, controller.GoToDashboard{}); err != nil {
				return err
			}
			st := s.Ctl.State()
			if st.IsPrimaryAdmin {
				primaries++
				assert.Len(t, st.AllUsers, len(emails))
			}
			return nil
		}))
	}
	assert.Equal(t, 1, primaries)
}

func TestNotices(t *testing.T) {
	h := sessionhub.New(kv.NewMemory(), zap.NewNop())
	_ = h.Do(context.Background(), "x", func(s *sessionhub.Session) error {
		s.Flash("error", "first")
		s.Flash("success", "second")
		assert.Len(t, s.TakeNotices(), 2)
		assert.Empty(t, s.TakeNotices())
		return nil
	})
}
