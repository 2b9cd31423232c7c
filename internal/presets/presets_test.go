package presets

import "testing"

func TestEnginePresetsValidate(t *testing.T) {
	for _, name := range EngineNames() {
		p, err := Engine(name)
		if err != nil {
			t.Fatalf("Engine(%q) failed: %v", name, err)
		}
		if err := p.Config.Validate(); err != nil {
			t.Errorf("preset %q does not validate: %v", name, err)
		}
		if p.Description == "" {
			t.Errorf("preset %q has no description", name)
		}
	}
}

func TestNetworkPresetsValidate(t *testing.T) {
	for _, name := range NetworkNames() {
		p, err := Network(name)
		if err != nil {
			t.Fatalf("Network(%q) failed: %v", name, err)
		}
		if err := p.Config.Validate(); err != nil {
			t.Errorf("preset %q does not validate: %v", name, err)
		}
	}
}

func TestPresetsReturnedByValue(t *testing.T) {
	p, err := Engine("steady")
	if err != nil {
		t.Fatalf("Engine failed: %v", err)
	}
	p.Config.Lives = 999

	again, err := Engine("steady")
	if err != nil {
		t.Fatalf("Engine failed: %v", err)
	}
	if again.Config.Lives == 999 {
		t.Error("mutating a returned preset leaked into later lookups")
	}
}

func TestUnknownPreset(t *testing.T) {
	if _, err := Engine("nope"); err == nil {
		t.Error("expected an error for an unknown engine preset")
	}
	if _, err := Network("nope"); err == nil {
		t.Error("expected an error for an unknown network preset")
	}
}
