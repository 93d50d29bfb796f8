package connect

import "testing"

func nopHandler(any, string, Delivery) {}

func TestRegistryAddRemove(t *testing.T) {
	r := newRegistry()

	r.add("a/#", false, nopHandler)
	if got := r.count("a/#"); got != 1 {
		t.Fatalf("count() = %d, want 1", got)
	}

	removed, remaining := r.remove("a/#", nopHandler)
	if !removed {
		t.Error("remove() removed = false, want true")
	}
	if remaining != 0 {
		t.Errorf("remove() remaining = %d, want 0", remaining)
	}
}

func TestRegistryRemoveUnknownIsNoop(t *testing.T) {
	r := newRegistry()
	r.add("a/#", false, nopHandler)

	other := func(any, string, Delivery) {}
	removed, remaining := r.remove("a/#", other)
	if removed {
		t.Error("remove() removed = true for unregistered handler, want false")
	}
	if remaining != 1 {
		t.Errorf("remove() remaining = %d, want 1", remaining)
	}
}

func TestRegistryRemovesOnlyFirstMatch(t *testing.T) {
	r := newRegistry()

	// Same handler registered twice on the same pattern: each
	// registration is independently removable.
	r.add("a/+", false, nopHandler)
	r.add("a/+", false, nopHandler)

	_, remaining := r.remove("a/+", nopHandler)
	if remaining != 1 {
		t.Errorf("remove() remaining = %d, want 1", remaining)
	}
	_, remaining = r.remove("a/+", nopHandler)
	if remaining != 0 {
		t.Errorf("remove() remaining = %d, want 0", remaining)
	}
}

func TestRegistryRemoveAll(t *testing.T) {
	r := newRegistry()
	r.add("a/#", false, nopHandler)
	r.add("b/#", false, nopHandler)

	r.removeAll()
	if got := len(r.snapshot()); got != 0 {
		t.Errorf("snapshot() length = %d after removeAll, want 0", got)
	}
}

func TestRegistrySnapshotStable(t *testing.T) {
	r := newRegistry()
	r.add("a/#", false, nopHandler)
	r.add("b/#", false, nopHandler)

	snap := r.snapshot()
	r.remove("a/#", nopHandler)

	if len(snap) != 2 {
		t.Errorf("snapshot mutated by remove: length = %d, want 2", len(snap))
	}
}

func TestRegistryPatterns(t *testing.T) {
	r := newRegistry()
	r.add("a/#", false, nopHandler)
	r.add("a/#", false, nopHandler)
	r.add("b/+", true, nopHandler)

	patterns := r.patterns()
	want := []string{"a/#", "b/+"}
	if len(patterns) != len(want) {
		t.Fatalf("patterns() = %v, want %v", patterns, want)
	}
	for i := range want {
		if patterns[i] != want[i] {
			t.Errorf("patterns()[%d] = %q, want %q", i, patterns[i], want[i])
		}
	}
}
