package lang

func init() {
	Register(&LanguageSpec{
		Language: CPP,

		// .h stays with C; C++ headers use the longer extensions.
		FileExtensions:    []string{".cpp", ".hpp", ".cc", ".cxx", ".hxx", ".hh"},
		FunctionNodeTypes: []string{"function_definition"},

		BlockNodeTypes:    []string{"compound_statement"},
		IfNodeTypes:       []string{"if_statement"},
		ElseNodeTypes:     []string{"else_clause"},
		WhileNodeTypes:    []string{"while_statement"},
		DoNodeTypes:       []string{"do_statement"},
		ForNodeTypes:      []string{"for_statement", "for_range_loop"},
		SwitchNodeTypes:   []string{"switch_statement"},
		CaseNodeTypes:     []string{"case_statement"},
		ReturnNodeTypes:   []string{"return_statement", "co_return_statement"},
		BreakNodeTypes:    []string{"break_statement"},
		ContinueNodeTypes: []string{"continue_statement"},
		LabeledNodeTypes:  []string{"labeled_statement"},
		SkipNodeTypes:     []string{"comment"},

		TryNodeTypes:   []string{"try_statement"},
		CatchNodeTypes: []string{"catch_clause"},
		ThrowNodeTypes: []string{"throw_statement"},

		CasesFallThrough: true,
		NameNodeTypes: []string{
			"identifier", "field_identifier", "qualified_identifier",
			"destructor_name", "operator_name",
		},
	})
}
