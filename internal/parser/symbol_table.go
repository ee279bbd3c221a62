package parser

// symbol is the parser's coarse record of a declared name. The parser
// records declarations here but does not consult the table: a function
// call is recognized by an IDENTIFIER followed by '('. Full type
// checking is the semantic analyzer's job (spec.md §4.3).
type symbol struct {
	returnType string
	variadic   bool
	isFunc     bool
}

// symbolTable is a flat, single-scope mapping seeded with the Mini-C
// standard library. Declarations fail silently on re-declare — the
// semantic stage is the one that reports redeclaration as an error
// (spec.md §3, "Symbol Table (parser)").
type symbolTable struct {
	symbols map[string]symbol
}

func newSymbolTable() *symbolTable {
	st := &symbolTable{symbols: make(map[string]symbol)}
	st.declare("printf", symbol{returnType: "int", isFunc: true, variadic: true})
	st.declare("scanf", symbol{returnType: "int", isFunc: true, variadic: true})
	st.declare("malloc", symbol{returnType: "void*", isFunc: true})
	st.declare("free", symbol{returnType: "void", isFunc: true})
	return st
}

// declare returns false without modifying the table if name is already
// bound — re-declaration is not a parser-level error.
func (st *symbolTable) declare(name string, sym symbol) bool {
	if _, exists := st.symbols[name]; exists {
		return false
	}
	st.symbols[name] = sym
	return true
}

func (st *symbolTable) lookup(name string) (symbol, bool) {
	sym, ok := st.symbols[name]
	return sym, ok
}
