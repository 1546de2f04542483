package version

import (
	"strings"
	"testing"
)

func TestGet(t *testing.T) {
	v := Get()
	if v == "" {
		t.Fatal("empty version")
	}
	if strings.TrimSpace(v) != v {
		t.Errorf("version %q not trimmed", v)
	}
	if strings.Count(v, ".") != 2 {
		t.Errorf("version %q is not major.minor.patch", v)
	}
}
