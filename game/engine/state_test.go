package engine

import "testing"

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StatePending, "pending"},
		{StateStarting, "starting"},
		{StateCountingDown, "counting_down"},
		{StateLive, "live"},
		{StateEnded, "ended"},
		{StateForfeited, "forfeited"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestStateTerminal(t *testing.T) {
	for _, s := range []State{StatePending, StateStarting, StateCountingDown, StateLive} {
		if s.Terminal() {
			t.Errorf("%v should not be terminal", s)
		}
	}
	for _, s := range []State{StateEnded, StateForfeited} {
		if !s.Terminal() {
			t.Errorf("%v should be terminal", s)
		}
	}
}
