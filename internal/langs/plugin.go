package langs

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/codeintel-engine/engine/pkg/uast/pkg/node"
)

// Plugin is the capability set a language adapter exposes to the IR
// builder (spec.md §4.B): parsing a file into a generic UAST tree, plus
// enough identity to register the plugin by extension and to stamp nodes
// with the right ir.Language tag.
type Plugin interface {
	// Name is the canonical language name (e.g. "python", "go").
	Name() string
	// Extensions lists the lowercase, dot-free file extensions this
	// plugin claims.
	Extensions() []string
	// Parse lowers a file's contents into a UAST tree rooted at the file
	// node. ctx bounds parse time for pathological inputs.
	Parse(ctx context.Context, filename string, content []byte) (*node.Node, error)
}

// grammarPlugin is a Plugin backed by a tree-sitter grammar and a static
// Grammar mapping table; every built-in language uses this one
// implementation, parameterized by grammar name.
type grammarPlugin struct {
	name string
	exts []string
}

func (p *grammarPlugin) Name() string { return p.name }

func (p *grammarPlugin) Extensions() []string { return p.exts }

func (p *grammarPlugin) Parse(ctx context.Context, filename string, content []byte) (*node.Node, error) {
	lang := tsLanguage(p.name)
	if lang == nil {
		return nil, &ParseError{FilePath: filename, Message: "grammar unavailable for " + p.name}
	}

	grammar, ok := Grammars[p.name]
	if !ok {
		return nil, &ParseError{FilePath: filename, Message: "no grammar table for " + p.name}
	}

	tsParser := sitter.NewParser()
	tsParser.SetLanguage(lang)

	tree, err := tsParser.ParseString(ctx, nil, content)
	if err != nil {
		return nil, &ParseError{FilePath: filename, Message: "tree-sitter parse failed", Cause: err}
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.IsNull() {
		return nil, &ParseError{FilePath: filename, Message: "empty parse tree"}
	}

	interner := make(map[string]string, 128)

	return buildUAST(root, content, grammar, interner), nil
}

// Builtins is the set of language plugins SPEC_FULL.md names explicitly:
// Python, TypeScript/JavaScript (+TSX), Java, Kotlin, Rust and Go.
func Builtins() []Plugin {
	return []Plugin{
		&grammarPlugin{name: "go", exts: []string{"go"}},
		&grammarPlugin{name: "python", exts: []string{"py", "pyi"}},
		&grammarPlugin{name: "javascript", exts: []string{"js", "jsx", "mjs", "cjs"}},
		&grammarPlugin{name: "typescript", exts: []string{"ts"}},
		&grammarPlugin{name: "tsx", exts: []string{"tsx"}},
		&grammarPlugin{name: "java", exts: []string{"java"}},
		&grammarPlugin{name: "kotlin", exts: []string{"kt", "kts"}},
		&grammarPlugin{name: "rust", exts: []string{"rs"}},
	}
}

// Registry resolves a file path to the plugin that parses it, by
// extension. The zero value is not usable; construct with NewRegistry.
type Registry struct {
	byExt map[string]Plugin
}

// NewRegistry builds a Registry over plugins, last registration for a given
// extension wins (so a caller can override a built-in by passing its own
// plugin after Builtins()).
func NewRegistry(plugins ...Plugin) *Registry {
	r := &Registry{byExt: make(map[string]Plugin)}

	for _, p := range plugins {
		for _, ext := range p.Extensions() {
			r.byExt[strings.ToLower(ext)] = p
		}
	}

	return r
}

// NewDefaultRegistry builds a Registry over Builtins.
func NewDefaultRegistry() *Registry {
	return NewRegistry(Builtins()...)
}

// IsSupported reports whether filename's extension has a registered plugin.
func (r *Registry) IsSupported(filename string) bool {
	_, ok := r.byExt[extOf(filename)]

	return ok
}

// Language returns the plugin's language name for filename, or "" if
// unsupported.
func (r *Registry) Language(filename string) string {
	if p, ok := r.byExt[extOf(filename)]; ok {
		return p.Name()
	}

	return ""
}

// Parse dispatches to the plugin registered for filename's extension.
func (r *Registry) Parse(ctx context.Context, filename string, content []byte) (*node.Node, error) {
	p, ok := r.byExt[extOf(filename)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, filename)
	}

	return p.Parse(ctx, filename, content)
}

func extOf(filename string) string {
	idx := strings.LastIndexByte(filename, '.')
	if idx < 0 || idx == len(filename)-1 {
		return ""
	}

	return strings.ToLower(filename[idx+1:])
}
