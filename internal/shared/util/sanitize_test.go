package util

import "testing"

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"plain", "policy.pdf", "policy.pdf", false},
		{"slashes replaced", "uploads/policy.pdf", "uploads_policy.pdf", false},
		{"backslashes replaced", `uploads\policy.pdf`, "uploads_policy.pdf", false},
		{"traversal rejected", "../../etc/passwd", "", true},
		{"empty rejected", "   ", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizeFileName(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFileExt(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"policy.PDF", "pdf"},
		{"bill.jpg", "jpg"},
		{"noext", "pdf"},
		{"archive.tar.gz", "gz"},
	}
	for _, tt := range tests {
		if got := FileExt(tt.in); got != tt.want {
			t.Errorf("FileExt(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
