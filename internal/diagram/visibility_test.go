package diagram

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestVisibilityStore_DefaultsHidden(t *testing.T) {
	s := NewVisibilityStore()
	defer s.Close()
	require.False(t, s.Show())
}

func TestVisibilityStore_SetAndToggle(t *testing.T) {
	s := NewVisibilityStore()
	defer s.Close()

	s.Set(true)
	require.True(t, s.Show())
	require.False(t, s.Toggle())
	require.False(t, s.Show())
	require.True(t, s.Toggle())
}

func TestVisibilityStore_PublishesOnlyChanges(t *testing.T) {
	s := NewVisibilityStore()
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := s.Subscribe(ctx)

	s.Set(false) // unchanged
	s.Set(true)
	s.Toggle()

	for _, want := range []bool{true, false} {
		select {
		case ev := <-ch:
			require.Equal(t, want, ev.Payload)
		case <-time.After(time.Second):
			t.Fatal("timeout waiting for visibility event")
		}
	}
	select {
	case ev := <-ch:
		t.Fatalf("unexpected event %v", ev)
	default:
	}
}

func TestVisibilityStore_AllNodesObserveSameValue(t *testing.T) {
	s := NewVisibilityStore()
	defer s.Close()

	nodes := []*Node{
		NewNode("a", sampleDomain(), s),
		NewNode("b", sampleDomain(), s),
		NewNode("c", sampleDomain(), s),
	}
	for _, v := range []bool{true, false, true} {
		s.Set(v)
		for _, n := range nodes {
			require.Equal(t, v, n.Render().ThemesVisible)
		}
	}
}

func TestVisibilityStore_CloseEndsSubscriptions(t *testing.T) {
	s := NewVisibilityStore()
	ch := s.Subscribe(context.Background())
	s.Close()
	_, ok := <-ch
	require.False(t, ok)
}
