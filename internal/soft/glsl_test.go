package soft

import (
	"reflect"
	"testing"
)

func TestReflectUniforms(t *testing.T) {
	fs := `
#version 410 core
#define MAX_LIGHTS 2
struct Prop { vec3 color; int useSampler; sampler2D sampler; };
struct Light { int enabled; vec3 position; };
uniform Prop albedo;
uniform Light lights[MAX_LIGHTS];
uniform float weights[3];
// uniform float commented;
uniform highp vec3 viewPos;
void main() {}
`
	vs := `uniform mat4 mvp; uniform vec3 viewPos; void main() {}`

	names, err := reflectUniforms(vs, fs)
	if err != nil {
		t.Fatal(err)
	}
	expected := []string{
		"mvp", "viewPos",
		"albedo.color", "albedo.useSampler", "albedo.sampler",
		"lights[0].enabled", "lights[0].position",
		"lights[1].enabled", "lights[1].position",
		"weights[0]", "weights[1]", "weights[2]",
	}
	if !reflect.DeepEqual(names, expected) {
		t.Errorf("expected %v, got %v", expected, names)
	}
}

func TestReflectRequiresEntryPoint(t *testing.T) {
	if _, err := reflectUniforms("uniform float a;"); err == nil {
		t.Error("expected an error for a stage without main")
	}
	if _, err := reflectUniforms("uniform float a[N]; void main() {}"); err == nil {
		t.Error("expected an error for an unknown array size")
	}
}
