package achievement

import "testing"

func TestRegistry_Register(t *testing.T) {
	registry := NewRegistry()

	if err := registry.Register(newTestRule("first_session", true)); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if registry.Count() != 1 {
		t.Errorf("Expected 1 rule, got %d", registry.Count())
	}

	if err := registry.Register(newTestRule("first_session", false)); err == nil {
		t.Error("Expected error for duplicate registration")
	}
	if registry.Count() != 1 {
		t.Errorf("Expected duplicate to be rejected, got %d rules", registry.Count())
	}
}

func TestRegistry_Get(t *testing.T) {
	registry := NewRegistry()
	registry.Register(newTestRule("regular", true))

	if registry.Get("regular") == nil {
		t.Error("Expected rule to be found")
	}
	if registry.Get("unknown") != nil {
		t.Error("Expected nil for unknown rule")
	}
}

func TestRegistry_GetAll_KeepsRegistrationOrder(t *testing.T) {
	registry := NewRegistry()
	ids := []string{"c", "a", "b"}
	for _, id := range ids {
		registry.Register(newTestRule(id, true))
	}

	all := registry.GetAll()
	if len(all) != len(ids) {
		t.Fatalf("Expected %d rules, got %d", len(ids), len(all))
	}
	for i, rule := range all {
		if rule.ID() != ids[i] {
			t.Errorf("Position %d: expected %s, got %s", i, ids[i], rule.ID())
		}
	}
}
