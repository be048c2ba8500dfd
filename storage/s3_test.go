package storage

import (
	"testing"
	"time"
)

func TestBuildObjectKey(t *testing.T) {
	now := time.Date(2026, 2, 3, 10, 0, 0, 0, time.UTC)
	got := BuildObjectKey(FolderGallery, 7, now, "abcd1234", "webp")
	if got != "gallery/7/2026/02/03/abcd1234.webp" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestExtractKeyFromURL(t *testing.T) {
	url := PublicURL("thaitour-media", "ap-southeast-1", "trips/1/2026/02/03/x.webp")
	if got := ExtractKeyFromURL(url); got != "trips/1/2026/02/03/x.webp" {
		t.Fatalf("unexpected key %q", got)
	}
	if got := ExtractKeyFromURL("https://example.com/x.webp"); got != "" {
		t.Fatalf("expected empty key, got %q", got)
	}
}

func TestGetContentType(t *testing.T) {
	tests := map[string]string{
		"webp": "image/webp",
		"JPG":  "image/jpeg",
		"png":  "image/png",
		"pdf":  "application/pdf",
		"bin":  "application/octet-stream",
	}
	for ext, want := range tests {
		if got := GetContentType(ext); got != want {
			t.Fatalf("GetContentType(%q) = %q, want %q", ext, got, want)
		}
	}
}
