package network

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatic_SetNotifiesOnChange(t *testing.T) {
	s := NewStatic(true)
	ch, cancel := s.Subscribe()
	defer cancel()

	s.Set(true) // no change, no notification
	select {
	case v := <-ch:
		t.Fatalf("unexpected notification %v", v)
	default:
	}

	s.Set(false)
	assert.False(t, s.Online())
	select {
	case v := <-ch:
		assert.False(t, v)
	case <-time.After(time.Second):
		t.Fatal("expected notification")
	}
}

func TestStatic_SlowSubscriberSeesLatest(t *testing.T) {
	s := NewStatic(true)
	ch, cancel := s.Subscribe()
	defer cancel()

	s.Set(false)
	s.Set(true)
	s.Set(false)

	assert.False(t, <-ch)
	select {
	case v := <-ch:
		t.Fatalf("expected a single pending value, got extra %v", v)
	default:
	}
}

func TestStatic_CancelStopsNotifications(t *testing.T) {
	s := NewStatic(true)
	ch, cancel := s.Subscribe()
	cancel()
	cancel() // idempotent

	s.Set(false)
	select {
	case v := <-ch:
		t.Fatalf("unexpected notification after cancel: %v", v)
	default:
	}
}

func TestProber_Probe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized) // any response means reachable
	}))

	p := NewProber(srv.URL, time.Hour, nil)
	require.True(t, p.Probe(context.Background()))
	assert.True(t, p.Online())

	srv.Close()
	assert.False(t, p.Probe(context.Background()))
	assert.False(t, p.Online())
}

func TestProber_StartStopsWithContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	p := NewProber(srv.URL, 10*time.Millisecond, nil)
	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)
	cancel()

	assert.True(t, p.Online())
}
