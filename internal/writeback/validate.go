package writeback

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
)

// ValidationError contains structured information about a syntax error.
type ValidationError struct {
	FilePath string
	Line     uint32 // 0-indexed
	Column   uint32 // 0-indexed
	Message  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.FilePath, e.Line+1, e.Column+1, e.Message)
}

func parseGo(content []byte) (*sitter.Node, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(golang.GetLanguage())

	tree, err := parser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil, err
	}
	root := tree.RootNode()
	if root == nil {
		return nil, errors.New("tree-sitter returned nil root")
	}
	return root, nil
}

// Validate parses generated Go source with tree-sitter and returns an error
// if the AST contains syntax errors.
func Validate(content []byte, filePath string) error {
	root, err := parseGo(content)
	if err != nil {
		return fmt.Errorf("tree-sitter parse failed for %s: %w", filePath, err)
	}

	if !root.HasError() {
		return nil
	}

	// Walk tree to find first ERROR node for a useful error message
	errNode := findFirstError(root)
	if errNode != nil {
		return &ValidationError{
			FilePath: filePath,
			Line:     errNode.StartPoint().Row,
			Column:   errNode.StartPoint().Column,
			Message:  "syntax error in generated source",
		}
	}

	return &ValidationError{
		FilePath: filePath,
		Message:  "AST contains errors",
	}
}

// ASTErrors returns all ERROR node locations in the content for diagnostic reporting.
// Returns nil if there are no errors.
func ASTErrors(content []byte, filePath string) []ValidationError {
	root, err := parseGo(content)
	if err != nil || !root.HasError() {
		return nil
	}

	var errs []ValidationError
	collectErrors(root, filePath, &errs)
	return errs
}

// ValidateTypeExpr reports whether expr is exactly one Go type expression.
func ValidateTypeExpr(expr string) error {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return errors.New("empty type")
	}
	src := []byte("package p\n\nfunc _(_ " + expr + ") {}\n")
	root, err := parseGo(src)
	if err != nil {
		return fmt.Errorf("parse type %q: %w", expr, err)
	}
	if root.HasError() {
		return fmt.Errorf("invalid Go type %q", expr)
	}

	fn := root.NamedChild(int(root.NamedChildCount()) - 1)
	if fn == nil || fn.Type() != "function_declaration" {
		return fmt.Errorf("invalid Go type %q", expr)
	}
	params := fn.ChildByFieldName("parameters")
	if params == nil || params.NamedChildCount() != 1 {
		return fmt.Errorf("invalid Go type %q: not a single type", expr)
	}
	param := params.NamedChild(0)
	if param.Type() != "parameter_declaration" {
		return fmt.Errorf("invalid Go type %q", expr)
	}
	typ := param.ChildByFieldName("type")
	if typ == nil || typ.Content(src) != expr {
		return fmt.Errorf("invalid Go type %q: not a single type", expr)
	}
	return nil
}

// findFirstError does a depth-first search for the first ERROR node.
func findFirstError(node *sitter.Node) *sitter.Node {
	if node.IsError() || node.IsMissing() {
		return node
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.HasError() || child.IsError() || child.IsMissing() {
			found := findFirstError(child)
			if found != nil {
				return found
			}
		}
	}
	return nil
}

// collectErrors gathers all ERROR/MISSING nodes in the tree.
func collectErrors(node *sitter.Node, filePath string, errs *[]ValidationError) {
	if node.IsError() || node.IsMissing() {
		*errs = append(*errs, ValidationError{
			FilePath: filePath,
			Line:     node.StartPoint().Row,
			Column:   node.StartPoint().Column,
			Message:  "syntax error in generated source",
		})
		return // don't recurse into error children
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.HasError() || child.IsError() || child.IsMissing() {
			collectErrors(child, filePath, errs)
		}
	}
}
