package parsers

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
	typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/mvp-joe/modelguard/internal/scan"
)

// Dialect selects the tree-sitter grammar used by ASTBinder.
type Dialect string

const (
	// DialectTSX parses TypeScript with JSX, which also covers plain JavaScript.
	DialectTSX Dialect = "tsx"
	// DialectTypeScript parses TypeScript without JSX, which allows <T>x casts.
	DialectTypeScript Dialect = "typescript"
)

// ASTBinder collects bound names by walking a tree-sitter syntax tree.
// It recognizes the same five binding forms as scan.LineBinder, plus
// multi-line imports and TypeScript `import X = require(...)`.
// When the source cannot be parsed it falls back to the line binder.
type ASTBinder struct {
	language *sitter.Language
	fallback scan.Binder
}

// NewASTBinder creates an AST binder for the given dialect.
func NewASTBinder(dialect Dialect) *ASTBinder {
	var lang *sitter.Language
	switch dialect {
	case DialectTypeScript:
		lang = sitter.NewLanguage(typescript.LanguageTypescript())
	default:
		lang = sitter.NewLanguage(typescript.LanguageTSX())
	}
	return &ASTBinder{
		language: lang,
		fallback: scan.NewLineBinder(),
	}
}

// Bind parses text and returns every name bound by an import or require form.
func (b *ASTBinder) Bind(text string) scan.BindingSet {
	source := []byte(text)

	parser := sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(b.language); err != nil {
		return b.fallback.Bind(text)
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		return b.fallback.Bind(text)
	}
	defer tree.Close()

	bound := make(scan.BindingSet)
	walkTree(tree.RootNode(), func(n *sitter.Node) bool {
		switch n.Kind() {
		case "import_statement":
			bindImport(n, source, bound)
			return false
		case "variable_declarator":
			bindRequire(n, source, bound)
		}
		return true
	})
	return bound
}

// bindImport handles default, named, namespace and import-require forms.
func bindImport(node *sitter.Node, source []byte, bound scan.BindingSet) {
	if clause := findChildByType(node, "import_require_clause"); clause != nil {
		if id := findChildByType(clause, "identifier"); id != nil {
			bound.Add(extractNodeText(id, source))
		}
		return
	}

	clause := findChildByType(node, "import_clause")
	if clause == nil {
		// side-effect import: import "./polyfill";
		return
	}

	for _, child := range namedChildren(clause) {
		switch child.Kind() {
		case "identifier":
			bound.Add(extractNodeText(child, source))
		case "namespace_import":
			if id := findChildByType(child, "identifier"); id != nil {
				bound.Add(extractNodeText(id, source))
			}
		case "named_imports":
			for _, specifier := range namedChildren(child) {
				if specifier.Kind() != "import_specifier" {
					continue
				}
				local := specifier.ChildByFieldName("alias")
				if local == nil {
					local = specifier.ChildByFieldName("name")
				}
				addIdentifier(local, source, bound)
			}
		}
	}
}

// bindRequire handles `const X = require(...)` and `const { A, B: C } = require(...)`.
func bindRequire(node *sitter.Node, source []byte, bound scan.BindingSet) {
	if !isRequireCall(node.ChildByFieldName("value"), source) {
		return
	}

	name := node.ChildByFieldName("name")
	if name == nil {
		return
	}

	switch name.Kind() {
	case "identifier":
		bound.Add(extractNodeText(name, source))
	case "object_pattern":
		bindObjectPattern(name, source, bound)
	}
}

func bindObjectPattern(pattern *sitter.Node, source []byte, bound scan.BindingSet) {
	for _, child := range namedChildren(pattern) {
		switch child.Kind() {
		case "shorthand_property_identifier_pattern":
			bound.Add(extractNodeText(child, source))
		case "pair_pattern":
			// { B: C } binds C only
			value := child.ChildByFieldName("value")
			if value != nil && value.Kind() == "assignment_pattern" {
				value = value.ChildByFieldName("left")
			}
			addIdentifier(value, source, bound)
		case "object_assignment_pattern":
			addIdentifier(child.ChildByFieldName("left"), source, bound)
		case "rest_pattern":
			if id := findChildByType(child, "identifier"); id != nil {
				bound.Add(extractNodeText(id, source))
			}
		}
	}
}

// addIdentifier binds node when it is a plain identifier. String keys and
// nested patterns are skipped.
func addIdentifier(node *sitter.Node, source []byte, bound scan.BindingSet) {
	if node == nil {
		return
	}
	switch node.Kind() {
	case "identifier", "property_identifier", "shorthand_property_identifier_pattern":
		bound.Add(extractNodeText(node, source))
	}
}

// isRequireCall reports whether node is require(...) or require(...).member.
func isRequireCall(node *sitter.Node, source []byte) bool {
	for node != nil {
		switch node.Kind() {
		case "call_expression":
			fn := node.ChildByFieldName("function")
			return fn != nil && fn.Kind() == "identifier" && extractNodeText(fn, source) == "require"
		case "member_expression":
			node = node.ChildByFieldName("object")
		default:
			return false
		}
	}
	return false
}
