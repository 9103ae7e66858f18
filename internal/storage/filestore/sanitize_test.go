package filestore

import (
	"strings"
	"testing"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"report.pdf", "report.pdf"},
		{"My cool movie.mov", "My_cool_movie.mov"},
		{"../../../etc/passwd", "etc_passwd"},
		{"..\\windows\\system.txt", "windows_system.txt"},
		{"../../etc/My Report (v2).pdf", "etc_My_Report_v2.pdf"},
		{"i contain cool \xfcml\xe4uts.txt", "i_contain_cool_mluts.txt"},
		{"über café.png", "uber_cafe.png"},
		{"файл.txt", "txt"},
		{".hidden.gif", "hidden.gif"},
		{"__init__.txt", "init__.txt"},
		{"  spaced\tname .jpg", "spaced_name_.jpg"},
		{"///", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := SanitizeFilename(tt.in); got != tt.want {
				t.Errorf("SanitizeFilename(%q) = %q, ожидалось %q", tt.in, got, tt.want)
			}
		})
	}
}

// TestSanitizeFilename_NoSeparators проверяет отсутствие разделителей пути в результате.
func TestSanitizeFilename_NoSeparators(t *testing.T) {
	inputs := []string{"a/b/c.txt", "a\\b.txt", "/abs/path.png", "C:\\x\\y.jpg"}
	for _, in := range inputs {
		got := SanitizeFilename(in)
		if strings.ContainsAny(got, "/\\:") {
			t.Errorf("SanitizeFilename(%q) = %q содержит небезопасные символы", in, got)
		}
	}
}

func TestAllowList_Allowed(t *testing.T) {
	allow := NewAllowList([]string{"txt", "pdf", "png", "jpg", "jpeg", "gif"})

	tests := []struct {
		name string
		want bool
	}{
		{"notes.txt", true},
		{"REPORT.PDF", true},
		{"photo.JpEg", true},
		{"archive.tar.gif", true},
		{"setup.exe", false},
		{"image.png.exe", false},
		{"README", false},
		{"trailing.", false},
		{".gif", true},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := allow.Allowed(tt.name); got != tt.want {
				t.Errorf("Allowed(%q) = %v, ожидалось %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestAllowList_Extensions(t *testing.T) {
	allow := NewAllowList([]string{"PNG", ".txt", " gif ", ""})
	got := strings.Join(allow.Extensions(), ",")
	if got != "gif,png,txt" {
		t.Errorf("Extensions() = %s, ожидалось gif,png,txt", got)
	}
}
