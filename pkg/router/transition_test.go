package router

import (
	"testing"

	"github.com/vango-dev/mall/pkg/route"
)

func resAt(index int) *Resolution {
	return &Resolution{Route: &route.Route{}, Meta: route.Meta{Index: index}}
}

func TestTransition(t *testing.T) {
	tests := []struct {
		name string
		from *Resolution
		to   *Resolution
		want Direction
	}{
		{"first navigation", nil, resAt(1), DirectionNone},
		{"deeper", resAt(1), resAt(3), DirectionForward},
		{"shallower", resAt(3), resAt(2), DirectionBack},
		{"same level", resAt(2), resAt(2), DirectionNone},
		{"unresolved target", resAt(2), &Resolution{Path: "/x"}, DirectionNone},
	}

	for _, tt := range tests {
		if got := Transition(tt.from, tt.to); got != tt.want {
			t.Errorf("%s: Transition = %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestStateString(t *testing.T) {
	want := map[State]string{
		StateResolving:  "resolving",
		StateMounted:    "mounted",
		StateUnresolved: "unresolved",
		StateFailed:     "failed",
		StateSuperseded: "superseded",
		State(99):       "unknown",
	}
	for s, w := range want {
		if s.String() != w {
			t.Errorf("State(%d).String() = %q, want %q", s, s.String(), w)
		}
	}
}
