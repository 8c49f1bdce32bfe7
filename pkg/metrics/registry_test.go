package metrics

import "testing"

func TestInitRegistry_EnablesMetrics(t *testing.T) {
	Reset()
	defer Reset()

	if IsEnabled() {
		t.Fatal("expected metrics disabled before InitRegistry")
	}

	reg := InitRegistry()
	if reg == nil {
		t.Fatal("expected non-nil registry")
	}
	if !IsEnabled() {
		t.Fatal("expected metrics enabled after InitRegistry")
	}
	if GetRegistry() != reg {
		t.Fatal("expected GetRegistry to return the initialized registry")
	}
}

func TestGetRegistry_NilWhenDisabled(t *testing.T) {
	Reset()
	if GetRegistry() != nil {
		t.Fatal("expected nil registry before InitRegistry")
	}
}
