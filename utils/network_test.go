package utils

import "testing"

func TestIsNetworkPath(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected bool
	}{
		{"UNC forward slashes", "//server/share/photo.jpg", true},
		{"UNC backslashes", "\\\\server\\share\\photo.jpg", true},
		{"Linux NFS mount", "/mnt/photos/a.jpg", true},
		{"Linux media mount", "/media/usb/a.jpg", true},
		{"macOS volume", "/Volumes/shared/a.jpg", true},
		{"SMB indicator", "/home/user/smb-share/a.jpg", true},
		{"Local home", "/home/user/pictures/a.jpg", false},
		{"Local tmp", "/tmp/a.jpg", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNetworkPath(tt.path); got != tt.expected {
				t.Errorf("IsNetworkPath(%q) = %v, expected %v", tt.path, got, tt.expected)
			}
		})
	}
}
