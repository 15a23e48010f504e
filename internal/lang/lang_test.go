package lang

import (
	"slices"
	"testing"
)

func TestForExtension(t *testing.T) {
	tests := []struct {
		ext  string
		lang Language
	}{
		{".go", Go},
		{".c", C},
		{".h", C},
		{".cpp", CPP},
		{".hpp", CPP},
		{".cc", CPP},
	}
	for _, tt := range tests {
		spec := ForExtension(tt.ext)
		if spec == nil {
			t.Errorf("ForExtension(%q) = nil, want %s", tt.ext, tt.lang)
			continue
		}
		if spec.Language != tt.lang {
			t.Errorf("ForExtension(%q).Language = %s, want %s", tt.ext, spec.Language, tt.lang)
		}
	}
}

func TestForLanguage(t *testing.T) {
	for _, lang := range AllLanguages() {
		spec := ForLanguage(lang)
		if spec == nil {
			t.Errorf("ForLanguage(%s) = nil", lang)
			continue
		}
		if len(spec.FunctionNodeTypes) == 0 || len(spec.BlockNodeTypes) == 0 {
			t.Errorf("%s: missing function or block node types", lang)
		}
	}
}

func TestUnknownExtension(t *testing.T) {
	if spec := ForExtension(".py"); spec != nil {
		t.Errorf("ForExtension(.py) should be nil, got %v", spec)
	}
	if _, ok := LanguageForExtension(".rs"); ok {
		t.Error("LanguageForExtension(.rs) should not resolve")
	}
}

func TestGoSpec(t *testing.T) {
	spec := ForLanguage(Go)
	if spec == nil {
		t.Fatal("Go spec not registered")
	}
	found := map[string]bool{}
	for _, nt := range spec.FunctionNodeTypes {
		found[nt] = true
	}
	if !found["function_declaration"] || !found["method_declaration"] {
		t.Errorf("Go FunctionNodeTypes missing expected types: %v", spec.FunctionNodeTypes)
	}
	if spec.CasesFallThrough {
		t.Error("Go cases must not fall through")
	}
}

func TestCSpec(t *testing.T) {
	spec := ForLanguage(C)
	if spec == nil {
		t.Fatal("C spec not registered")
	}
	if !spec.CasesFallThrough {
		t.Error("C cases fall through")
	}
	if len(spec.ElseNodeTypes) != 1 || spec.ElseNodeTypes[0] != "else_clause" {
		t.Errorf("C ElseNodeTypes: got %v", spec.ElseNodeTypes)
	}
}

func TestParse(t *testing.T) {
	if l, ok := Parse("c"); !ok || l != C {
		t.Errorf("Parse(c) = %q, %v", l, ok)
	}
	if _, ok := Parse("python"); ok {
		t.Error("Parse(python) should fail")
	}
}

func TestCPPSpec(t *testing.T) {
	spec := ForLanguage(CPP)
	if spec == nil {
		t.Fatal("C++ spec not registered")
	}
	if !spec.CasesFallThrough {
		t.Error("C++ cases fall through")
	}
	for _, want := range []struct {
		name  string
		kinds []string
		kind  string
	}{
		{"for", spec.ForNodeTypes, "for_range_loop"},
		{"try", spec.TryNodeTypes, "try_statement"},
		{"catch", spec.CatchNodeTypes, "catch_clause"},
		{"throw", spec.ThrowNodeTypes, "throw_statement"},
		{"name", spec.NameNodeTypes, "qualified_identifier"},
	} {
		if !slices.Contains(want.kinds, want.kind) {
			t.Errorf("%s node types missing %q", want.name, want.kind)
		}
	}
}
