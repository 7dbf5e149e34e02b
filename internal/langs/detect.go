package langs

import (
	"github.com/src-d/enry/v2"
)

// enryToPluginName maps a subset of enry's GitHub-Linguist language names
// to this registry's lowercase Plugin.Name() values, for the languages
// Builtins() actually registers plugins for.
var enryToPluginName = map[string]string{
	"Go":         "go",
	"Python":     "python",
	"JavaScript": "javascript",
	"TypeScript": "typescript",
	"TSX":        "tsx",
	"Java":       "java",
	"Kotlin":     "kotlin",
	"Rust":       "rust",
}

// DetectPlugin resolves filename+content to a registered Plugin, falling
// back to enry's content-based language detection when the extension
// lookup fails (spec.md's Parser Adapter registry names "extension +
// content-based fallback" as its detection strategy — IsSupported/
// Language/Parse alone only cover the extension half of that).
// Extensionless scripts (a shebang-only "configure" file, a Dockerfile's
// sibling build helper) are exactly the case this exists for.
func (r *Registry) DetectPlugin(filename string, content []byte) (Plugin, bool) {
	if p, ok := r.byExt[extOf(filename)]; ok {
		return p, true
	}

	detected := enry.GetLanguage(filename, content)

	name, ok := enryToPluginName[detected]
	if !ok {
		return nil, false
	}

	for _, p := range Builtins() {
		if p.Name() == name {
			return p, true
		}
	}

	return nil, false
}
