package nodestore

// RelType is a relationship kind of the persisted graph.
type RelType string

// Grouping relations written by the function exporter.
const (
	IsFunctionOfAST   RelType = "IS_FUNCTION_OF_AST"
	IsFunctionOfCFG   RelType = "IS_FUNCTION_OF_CFG"
	IsASTOfASTRoot    RelType = "IS_AST_OF_AST_ROOT"
	IsASTOfASTNode    RelType = "IS_AST_OF_AST_NODE"
	IsCFGOfBasicBlock RelType = "IS_CFG_OF_BASIC_BLOCK"
	IsFileOf          RelType = "IS_FILE_OF"
)

// Structural relations written by the AST and CFG importers.
const (
	IsASTParent    RelType = "IS_AST_PARENT"
	FlowsTo        RelType = "FLOWS_TO"
	IsBasicBlockOf RelType = "IS_BASIC_BLOCK_OF"
)

var knownRelTypes = map[RelType]bool{
	IsFunctionOfAST:   true,
	IsFunctionOfCFG:   true,
	IsASTOfASTRoot:    true,
	IsASTOfASTNode:    true,
	IsCFGOfBasicBlock: true,
	IsFileOf:          true,
	IsASTParent:       true,
	FlowsTo:           true,
	IsBasicBlockOf:    true,
}

// Known reports whether t belongs to the relationship vocabulary.
func (t RelType) Known() bool { return knownRelTypes[t] }

// Node labels.
const (
	LabelFile       = "File"
	LabelFunction   = "Function"
	LabelASTGroup   = "ASTPseudoNode"
	LabelCFGGroup   = "CFGPseudoNode"
	LabelASTNode    = "ASTNode"
	LabelBasicBlock = "BasicBlock"
)
