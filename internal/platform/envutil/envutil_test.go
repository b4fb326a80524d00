package envutil

import "testing"

func TestEnvHelpers(t *testing.T) {
	t.Setenv("ENVUTIL_INT", "42")
	t.Setenv("ENVUTIL_BAD_INT", "x")
	t.Setenv("ENVUTIL_FLOAT", "0.25")
	t.Setenv("ENVUTIL_BOOL", "off")

	if got := Int("ENVUTIL_INT", 1); got != 42 {
		t.Fatalf("Int: want=42 got=%d", got)
	}
	if got := Int("ENVUTIL_BAD_INT", 7); got != 7 {
		t.Fatalf("Int(bad): want=7 got=%d", got)
	}
	if got := Float("ENVUTIL_FLOAT", 1); got != 0.25 {
		t.Fatalf("Float: want=0.25 got=%v", got)
	}
	if got := Bool("ENVUTIL_BOOL", true); got {
		t.Fatalf("Bool: want=false got=%v", got)
	}
	if got := Bool("ENVUTIL_UNSET", true); !got {
		t.Fatalf("Bool(unset): want=true got=%v", got)
	}
	if got := String("ENVUTIL_UNSET", "d"); got != "d" {
		t.Fatalf("String(unset): want=d got=%q", got)
	}
}
