package lang

func init() {
	Register(&LanguageSpec{
		Language:          C,
		FileExtensions:    []string{".c", ".h"},
		FunctionNodeTypes: []string{"function_definition"},

		BlockNodeTypes:    []string{"compound_statement"},
		IfNodeTypes:       []string{"if_statement"},
		ElseNodeTypes:     []string{"else_clause"},
		WhileNodeTypes:    []string{"while_statement"},
		DoNodeTypes:       []string{"do_statement"},
		ForNodeTypes:      []string{"for_statement"},
		SwitchNodeTypes:   []string{"switch_statement"},
		CaseNodeTypes:     []string{"case_statement"},
		ReturnNodeTypes:   []string{"return_statement"},
		BreakNodeTypes:    []string{"break_statement"},
		ContinueNodeTypes: []string{"continue_statement"},
		LabeledNodeTypes:  []string{"labeled_statement"},
		SkipNodeTypes:     []string{"comment"},

		CasesFallThrough: true,
		NameNodeTypes:    []string{"identifier", "field_identifier"},
	})
}
