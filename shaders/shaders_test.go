package shaders

import (
	"errors"
	"strings"
	"testing"

	"pbr-engine/gfx"
)

func TestLoadAllPrograms(t *testing.T) {
	for _, name := range Names() {
		src, err := Load(name)
		if err != nil {
			t.Fatalf("Load(%q): %v", name, err)
		}
		if src.Name != name {
			t.Errorf("Load(%q): expected name %q, got %q", name, name, src.Name)
		}
		for _, stage := range []string{src.Vertex, src.Fragment} {
			if !strings.HasPrefix(stage, "#version 410 core") {
				t.Errorf("%s: stage does not start with a version directive", name)
			}
			if strings.Contains(stage, "#include") {
				t.Errorf("%s: unexpanded include", name)
			}
		}
	}
}

func TestIrradianceAndPrefilterAreDistinct(t *testing.T) {
	irr, _ := Load("irradiance")
	pre, _ := Load("prefilter")
	if irr.Fragment == pre.Fragment {
		t.Error("irradiance and prefilter must use different fragment programs")
	}
	if !strings.Contains(pre.Fragment, "importanceSampleGGX") {
		t.Error("prefilter: expected the GGX helpers to be included")
	}
}

func TestUnknownProgram(t *testing.T) {
	if _, err := Load("nope"); !errors.Is(err, gfx.ErrResourceLoad) {
		t.Errorf("expected ErrResourceLoad, got %v", err)
	}
}
