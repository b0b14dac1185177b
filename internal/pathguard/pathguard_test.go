package pathguard

import "testing"

func TestHasTraversal(t *testing.T) {
	tests := []struct {
		name string
		path string
		want bool
	}{
		{"plain filename", "hello.txt", false},
		{"nested safe path", "sub/dir/hello.txt", false},
		{"dot dot slash", "../evil", true},
		{"dot dot backslash", "..\\evil", true},
		{"exact dot dot", "..", true},
		{"embedded traversal", "a/../../b", true},
		{"leading slash dot dot", "/..", true},
		{"leading slash dot dot slash", "/../evil", true},
		{"dotdot prefix but longer name", "..hidden", false},
		{"dot dot at end no separator", "foo..bar", false},
		{"single dot", ".", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasTraversal(tt.path); got != tt.want {
				t.Errorf("HasTraversal(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestJoin(t *testing.T) {
	if got := Join("out", "file.txt"); got != "out/file.txt" {
		t.Errorf("Join = %q", got)
	}
}
