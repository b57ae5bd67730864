package parser

import (
	"unsafe"

	tree_sitter_zig "github.com/tree-sitter-grammars/tree-sitter-zig/bindings/go"
	tree_sitter_csharp "github.com/tree-sitter/tree-sitter-c-sharp/bindings/go"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_php "github.com/tree-sitter/tree-sitter-php/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/standardbeagle/snip/internal/types"
)

// builtinGrammars is the extension -> grammar table. Each entry names the
// kind tag of a method name node and of the declaration that owns it.
var builtinGrammars = []Grammar{
	{
		Language:        LanguageJava,
		Extensions:      []string{".java"},
		NameKind:        types.DefaultNameKind,
		DeclarationKind: types.DefaultDeclarationKind,
		load:            tree_sitter_java.Language,
	},
	{
		Language:        LanguageCSharp,
		Extensions:      []string{".cs"},
		NameKind:        types.DefaultNameKind,
		DeclarationKind: types.DefaultDeclarationKind,
		load:            tree_sitter_csharp.Language,
	},
	{
		// Go method names are field identifiers; plain funcs are function_declaration
		Language:        LanguageGo,
		Extensions:      []string{".go"},
		NameKind:        "field_identifier",
		DeclarationKind: types.DefaultDeclarationKind,
		load:            tree_sitter_go.Language,
	},
	{
		Language:        LanguagePHP,
		Extensions:      []string{".php", ".phtml"},
		NameKind:        "name",
		DeclarationKind: types.DefaultDeclarationKind,
		load:            tree_sitter_php.LanguagePHP,
	},
	{
		// Python has no separate method node; class bodies hold function_definition
		Language:        LanguagePython,
		Extensions:      []string{".py"},
		NameKind:        types.DefaultNameKind,
		DeclarationKind: "function_definition",
		load:            tree_sitter_python.Language,
	},
	{
		Language:        LanguageRust,
		Extensions:      []string{".rs"},
		NameKind:        types.DefaultNameKind,
		DeclarationKind: "function_item",
		load:            tree_sitter_rust.Language,
	},
	{
		Language:        LanguageJavaScript,
		Extensions:      []string{".js", ".jsx", ".mjs"},
		NameKind:        "property_identifier",
		DeclarationKind: "method_definition",
		load:            tree_sitter_javascript.Language,
	},
	{
		Language:        LanguageTypeScript,
		Extensions:      []string{".ts"},
		NameKind:        "property_identifier",
		DeclarationKind: "method_definition",
		load:            tree_sitter_typescript.LanguageTypescript,
	},
	{
		Language:        LanguageTSX,
		Extensions:      []string{".tsx"},
		NameKind:        "property_identifier",
		DeclarationKind: "method_definition",
		load:            tree_sitter_typescript.LanguageTSX,
	},
	{
		Language:        LanguageZig,
		Extensions:      []string{".zig"},
		NameKind:        types.DefaultNameKind,
		DeclarationKind: "function_declaration",
		load:            tree_sitter_zig.Language,
	},
}

// extensionIndex maps a file extension to its position in builtinGrammars
var extensionIndex = buildExtensionIndex()

func buildExtensionIndex() map[string]int {
	idx := make(map[string]int)
	for i, g := range builtinGrammars {
		for _, ext := range g.Extensions {
			idx[ext] = i
		}
	}
	return idx
}

// languageLoader is the signature every grammar binding exposes
type languageLoader func() unsafe.Pointer
