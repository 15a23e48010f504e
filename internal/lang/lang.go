package lang

// Language represents a supported programming language.
type Language string

const (
	C   Language = "c"
	CPP Language = "cpp"
	Go  Language = "go"
)

// AllLanguages returns all supported languages.
func AllLanguages() []Language {
	return []Language{C, CPP, Go}
}

// LanguageSpec defines the tree-sitter node types the front end needs to
// find functions and to build their control-flow graphs.
type LanguageSpec struct {
	Language          Language
	FileExtensions    []string
	FunctionNodeTypes []string

	// BlockNodeTypes are statement sequences executed in order.
	BlockNodeTypes []string
	IfNodeTypes    []string
	// ElseNodeTypes wrap the alternative branch of an if (C else_clause).
	ElseNodeTypes     []string
	WhileNodeTypes    []string
	DoNodeTypes       []string
	ForNodeTypes      []string
	SwitchNodeTypes   []string
	CaseNodeTypes     []string
	ReturnNodeTypes   []string
	BreakNodeTypes    []string
	ContinueNodeTypes []string
	// FallthroughNodeTypes end a case by jumping into the next one (Go).
	FallthroughNodeTypes []string
	// LabeledNodeTypes wrap a statement with a jump label in field "label".
	LabeledNodeTypes []string
	// SkipNodeTypes are kept in the AST but never become CFG statements.
	SkipNodeTypes []string

	// TryNodeTypes hold a guarded body in field "body" followed by handler
	// clauses of CatchNodeTypes (fields "parameters" and "body").
	TryNodeTypes   []string
	CatchNodeTypes []string
	ThrowNodeTypes []string

	// CasesFallThrough is true when a case body without a jump continues
	// into the next case (C), false when it leaves the switch (Go).
	CasesFallThrough bool
	// NameNodeTypes end the declarator chain when resolving a function name.
	NameNodeTypes []string
}

// registry maps file extensions to language specs.
var registry = map[string]*LanguageSpec{}

// Register adds a LanguageSpec to the global registry.
func Register(spec *LanguageSpec) {
	for _, ext := range spec.FileExtensions {
		registry[ext] = spec
	}
}

// ForExtension returns the LanguageSpec for a file extension (e.g. ".go").
func ForExtension(ext string) *LanguageSpec {
	return registry[ext]
}

// ForLanguage returns the LanguageSpec for a language.
func ForLanguage(lang Language) *LanguageSpec {
	for _, spec := range registry {
		if spec.Language == lang {
			return spec
		}
	}
	return nil
}

// LanguageForExtension returns the Language for a file extension.
func LanguageForExtension(ext string) (Language, bool) {
	spec := registry[ext]
	if spec == nil {
		return "", false
	}
	return spec.Language, true
}

// Parse converts a language name as written in config files or flags.
func Parse(name string) (Language, bool) {
	for _, l := range AllLanguages() {
		if string(l) == name {
			return l, true
		}
	}
	return "", false
}
