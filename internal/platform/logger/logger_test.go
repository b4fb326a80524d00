package logger

import "testing"

func TestSanitizeKVs(t *testing.T) {
	redactOnce.Do(func() {})
	redactionEnabled = true
	hashSalt = ""

	got := sanitizeKVs([]interface{}{"api_key", "sk-123", "user_id", "user_1", "worker", "cart"})
	if len(got) != 6 {
		t.Fatalf("sanitizeKVs: want 6 entries got=%d", len(got))
	}
	if got[1] != "[REDACTED]" {
		t.Fatalf("api_key: want=%q got=%v", "[REDACTED]", got[1])
	}
	hashed, ok := got[3].(string)
	if !ok || len(hashed) != len("hash:")+12 {
		t.Fatalf("user_id: want hashed value got=%v", got[3])
	}
	if got[5] != "cart" {
		t.Fatalf("worker: want=%q got=%v", "cart", got[5])
	}
}

func TestSanitizeCoarsensCoordinates(t *testing.T) {
	redactOnce.Do(func() {})
	redactionEnabled = true

	got := sanitizeKVs([]interface{}{"lat", 40.712776, "lng", -74.005974, "radius_km", 50.25})
	if got[1] != 40.71 || got[3] != -74.01 {
		t.Fatalf("coordinates: want=40.71,-74.01 got=%v,%v", got[1], got[3])
	}
	if got[5] != 50.25 {
		t.Fatalf("radius_km: want untouched got=%v", got[5])
	}
}

func TestNewWithLevel(t *testing.T) {
	if _, err := NewWithLevel("development", "not-a-level"); err == nil {
		t.Fatalf("NewWithLevel: expected error for invalid level")
	}
	log, err := New("test")
	if err != nil {
		t.Fatalf("New(test): %v", err)
	}
	log.Info("quiet", "k", "v")
	log.With("service", "x").Debug("quiet")
}
