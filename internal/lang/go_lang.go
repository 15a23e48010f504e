package lang

func init() {
	Register(&LanguageSpec{
		Language:          Go,
		FileExtensions:    []string{".go"},
		FunctionNodeTypes: []string{"function_declaration", "method_declaration"},

		BlockNodeTypes:       []string{"block", "statement_list"},
		IfNodeTypes:          []string{"if_statement"},
		ForNodeTypes:         []string{"for_statement"},
		SwitchNodeTypes:      []string{"expression_switch_statement", "type_switch_statement", "select_statement"},
		CaseNodeTypes:        []string{"expression_case", "type_case", "default_case", "communication_case"},
		ReturnNodeTypes:      []string{"return_statement"},
		BreakNodeTypes:       []string{"break_statement"},
		ContinueNodeTypes:    []string{"continue_statement"},
		FallthroughNodeTypes: []string{"fallthrough_statement"},
		LabeledNodeTypes:     []string{"labeled_statement"},
		SkipNodeTypes:        []string{"comment"},

		NameNodeTypes: []string{"identifier", "field_identifier"},
	})
}
