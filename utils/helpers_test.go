package utils

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Hokkaido Autumn 2026", "hokkaido-autumn-2026"},
		{"  Georgia -- Caucasus!! ", "georgia-caucasus"},
		{"ญี่ปุ่น Tokyo", "tokyo"},
		{"ญี่ปุ่น", ""},
	}
	for _, tc := range tests {
		if got := Slugify(tc.input); got != tc.want {
			t.Fatalf("Slugify(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestIsValidSlug(t *testing.T) {
	if !IsValidSlug("iceland-aurora-2026") {
		t.Fatalf("expected slug to be valid")
	}
	for _, s := range []string{"", "Iceland", "a--b", "-a", "ไอซ์แลนด์"} {
		if IsValidSlug(s) {
			t.Fatalf("expected %q to be invalid", s)
		}
	}
}

func TestIsValidFileExtension(t *testing.T) {
	allowed := []string{"jpg", " png", "webp"}
	if !IsValidFileExtension("cover.JPG", allowed) {
		t.Fatalf("expected jpg to be allowed")
	}
	if !IsValidFileExtension("cover.png", allowed) {
		t.Fatalf("expected png to be allowed")
	}
	if IsValidFileExtension("script.exe", allowed) || IsValidFileExtension("noext", allowed) {
		t.Fatalf("unexpected extension accepted")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := CheckPassword("s3cret-pass", hash); err != nil {
		t.Fatalf("expected password to match: %v", err)
	}
	if err := CheckPassword("wrong", hash); err == nil {
		t.Fatalf("expected mismatch")
	}
}

func TestGenerateRandomString(t *testing.T) {
	s, err := GenerateRandomString(11)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s) != 11 {
		t.Fatalf("expected length 11, got %d", len(s))
	}
}
