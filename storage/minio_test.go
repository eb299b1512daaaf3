package storage

import "testing"

func TestObjectName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"123", "lyrics/123.lrc"},
		{"netease:123", "lyrics/netease:123.lrc"},
		{"netease_123", "lyrics/netease_123.lrc"},
		{"a/b c", "lyrics/a%2Fb%20c.lrc"},
		{"../escape", "lyrics/..%2Fescape.lrc"},
		{"100%", "lyrics/100%25.lrc"},
	}

	for _, tt := range tests {
		if got := ObjectName(tt.input); got != tt.want {
			t.Errorf("ObjectName(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestObjectNameDistinct(t *testing.T) {
	keys := []string{
		"netease:123", "netease_123", "netease 123", "netease/123",
		"netease%2F123", "a/b", "a_b", "a%2Fb",
	}

	seen := make(map[string]string)
	for _, key := range keys {
		name := ObjectName(key)
		if prev, ok := seen[name]; ok {
			t.Errorf("ObjectName(%q) and ObjectName(%q) both map to %q", prev, key, name)
		}
		seen[name] = key

		back, ok := TrackKeyFromObject(name)
		if !ok || back != key {
			t.Errorf("TrackKeyFromObject(%q) = (%q, %v), want %q", name, back, ok, key)
		}
	}
}

func TestTrackKeyFromObjectRejectsForeignNames(t *testing.T) {
	for _, name := range []string{"other/123.lrc", "lyrics/123.txt", "lyrics/%zz.lrc"} {
		if key, ok := TrackKeyFromObject(name); ok {
			t.Errorf("TrackKeyFromObject(%q) = %q, want rejection", name, key)
		}
	}
}
