package langs

import (
	"sync"
	"unsafe"

	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/alexaandru/go-sitter-forest/java"
	"github.com/alexaandru/go-sitter-forest/javascript"
	"github.com/alexaandru/go-sitter-forest/kotlin"
	"github.com/alexaandru/go-sitter-forest/python"
	"github.com/alexaandru/go-sitter-forest/rust"
	"github.com/alexaandru/go-sitter-forest/tsx"
	"github.com/alexaandru/go-sitter-forest/typescript"

	golang "github.com/alexaandru/go-sitter-forest/go"
)

// languageFuncs maps a Grammars key to its tree-sitter GetLanguage
// function, mirroring the teacher's pkg/uast/languages.go registry
// narrowed to the languages SPEC_FULL.md names.
//
//nolint:gochecknoglobals // static registry, mirrors the teacher's languageFuncs.
var languageFuncs = map[string]func() unsafe.Pointer{
	"go":         golang.GetLanguage,
	"python":     python.GetLanguage,
	"javascript": javascript.GetLanguage,
	"typescript": typescript.GetLanguage,
	"tsx":        tsx.GetLanguage,
	"java":       java.GetLanguage,
	"kotlin":     kotlin.GetLanguage,
	"rust":       rust.GetLanguage,
}

//nolint:gochecknoglobals // per-process language cache, languages are immutable once loaded.
var languageCache sync.Map

// tsLanguage returns the cached tree-sitter Language for a Grammars key, or
// nil if the grammar has no corresponding tree-sitter binding.
func tsLanguage(name string) *sitter.Language {
	if cached, ok := languageCache.Load(name); ok {
		if lang, ok := cached.(*sitter.Language); ok {
			return lang
		}
	}

	fn, ok := languageFuncs[name]
	if !ok {
		return nil
	}

	lang := sitter.NewLanguage(fn())
	languageCache.Store(name, lang)

	return lang
}
