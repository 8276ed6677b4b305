package lang

import (
	"context"
	"testing"
)

func TestLanguagesRegistered(t *testing.T) {
	t.Parallel()

	l, ok := Languages[PHP]
	if !ok {
		t.Fatal("php language not registered")
	}
	if l.GetLanguage() == nil {
		t.Error("php language is nil")
	}
}

func TestNewParser(t *testing.T) {
	t.Parallel()

	p := Languages[PHP].NewParser()
	if p == nil {
		t.Fatal("NewParser returned nil")
	}

	src := []byte("<?php\nclass Foo {}\n")
	tree, err := p.ParseCtx(context.Background(), nil, src)
	if err != nil {
		t.Fatalf("ParseCtx: %v", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.Type() != "program" {
		t.Errorf("root type = %q, want program", root.Type())
	}
	if root.HasError() {
		t.Error("valid source reported a syntax error")
	}
}

func TestStripSpace(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{`Foo\Bar`, `Foo\Bar`},
		{`Foo \ Bar`, `Foo\Bar`},
		{"\\Foo\n\\Bar", `\Foo\Bar`},
		{"", ""},
	}
	for _, tt := range tests {
		if got := StripSpace(tt.in); got != tt.want {
			t.Errorf("StripSpace(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
