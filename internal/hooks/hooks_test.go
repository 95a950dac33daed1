package hooks

import "testing"

func TestFire_InvokesMatchingHookOnce(t *testing.T) {
	d := NewDispatcher()
	calls := 0
	d.Register("w1", Hooks{OnMinimize: func() { calls++ }})

	d.Fire("w1", EventMinimize)
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}

	// Other events and other windows are silent.
	d.Fire("w1", EventRestore)
	d.Fire("w2", EventMinimize)
	if calls != 1 {
		t.Fatalf("expected no further calls, got %d", calls)
	}
}

func TestFire_RecoversPanickingHook(t *testing.T) {
	d := NewDispatcher()
	after := false
	d.Register("w1", Hooks{OnClose: func() { panic("boom") }})

	d.Fire("w1", EventClose)
	after = true
	if !after {
		t.Fatalf("dispatch did not survive a panicking hook")
	}
}

func TestForget_DropsHooks(t *testing.T) {
	d := NewDispatcher()
	calls := 0
	d.Register("w1", Hooks{OnClose: func() { calls++ }})
	d.Forget("w1")

	d.Fire("w1", EventClose)
	if calls != 0 {
		t.Fatalf("expected no calls after Forget, got %d", calls)
	}
}
