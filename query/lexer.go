package query

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/satishbabariya/ormcore/dialect"
)

// Token rules shared by every dialect. Literal rules accept a missing closing quote so an
// unterminated literal swallows the rest of the text instead of exposing its contents.
var (
	ruleLineComment  = lexer.SimpleRule{Name: "LineComment", Pattern: `--[^\n]*`}
	ruleBlockComment = lexer.SimpleRule{Name: "BlockComment", Pattern: `/\*[\s\S]*?(?:\*/|$)`}
	ruleAgnostic     = lexer.SimpleRule{Name: "Agnostic", Pattern: `\?`}
	ruleChar         = lexer.SimpleRule{Name: "Char", Pattern: `[\s\S]`}
)

// Identifiers are lexed as whole words so that an E'...' escape string is only recognised
// where a token starts. A DollarQuote token is the opening $tag$ of a dollar-quoted body;
// rewrite copies the body up to the matching closing tag.
var postgresLexer = newSQLLexer([]lexer.SimpleRule{
	ruleLineComment,
	ruleBlockComment,
	{Name: "DollarQuote", Pattern: `\$(?:[A-Za-z_][A-Za-z0-9_]*)?\$`},
	{Name: "EString", Pattern: `[eE]'(?:\\[\s\S]|''|[^'\\])*'?`},
	{Name: "String", Pattern: `'(?:[^']|'')*'?`},
	{Name: "QuotedIdent", Pattern: `"(?:[^"]|"")*"?`},
	{Name: "Native", Pattern: `\$[0-9]+`},
	ruleAgnostic,
	{Name: "Word", Pattern: `[A-Za-z_][A-Za-z0-9_$]*`},
	{Name: "Text", Pattern: `[^'"$?\-/A-Za-z_]+`},
	ruleChar,
})

var mysqlLexer = newSQLLexer([]lexer.SimpleRule{
	ruleLineComment,
	{Name: "HashComment", Pattern: `#[^\n]*`},
	ruleBlockComment,
	{Name: "String", Pattern: `'(?:\\[\s\S]|''|[^'\\])*'?`},
	{Name: "DoubleString", Pattern: `"(?:\\[\s\S]|""|[^"\\])*"?`},
	{Name: "QuotedIdent", Pattern: "`(?:[^`]|``)*`?"},
	ruleAgnostic,
	{Name: "Text", Pattern: "[^'\"`?#\\-/]+"},
	ruleChar,
})

var sqliteLexer = newSQLLexer([]lexer.SimpleRule{
	ruleLineComment,
	ruleBlockComment,
	{Name: "String", Pattern: `'(?:[^']|'')*'?`},
	{Name: "QuotedIdent", Pattern: `"(?:[^"]|"")*"?`},
	{Name: "BacktickIdent", Pattern: "`(?:[^`]|``)*`?"},
	{Name: "BracketIdent", Pattern: `\[[^\]]*\]?`},
	{Name: "Native", Pattern: `[?$][0-9]+`},
	ruleAgnostic,
	{Name: "Text", Pattern: "[^'\"`\\[?$\\-/]+"},
	ruleChar,
})

// sqlLexer splits clause text into literal-aware tokens so that placeholder characters inside
// strings, quoted identifiers and comments are never treated as markers.
type sqlLexer struct {
	def       *lexer.StatefulDefinition
	agnostic  lexer.TokenType
	native    lexer.TokenType
	hasNative bool
	dollar    lexer.TokenType
	hasDollar bool
}

// newSQLLexer compiles rules. A Native token is a one-character sigil followed by its index.
func newSQLLexer(rules []lexer.SimpleRule) *sqlLexer {
	def := lexer.MustSimple(rules)
	symbols := def.Symbols()
	native, hasNative := symbols["Native"]
	dollar, hasDollar := symbols["DollarQuote"]
	return &sqlLexer{
		def:       def,
		agnostic:  symbols["Agnostic"],
		native:    native,
		hasNative: hasNative,
		dollar:    dollar,
		hasDollar: hasDollar,
	}
}

func lexerFor(d dialect.Dialect) *sqlLexer {
	switch d.Name() {
	case dialect.MySQL:
		return mysqlLexer
	case dialect.SQLite:
		return sqliteLexer
	default:
		return postgresLexer
	}
}

func (l *sqlLexer) tokenize(sql string) ([]lexer.Token, error) {
	lex, err := l.def.LexString("", sql)
	if err != nil {
		return nil, fmt.Errorf("failed to tokenize query: %w", err)
	}
	tokens, err := lexer.ConsumeAll(lex)
	if err != nil {
		return nil, fmt.Errorf("failed to tokenize query: %w", err)
	}
	return tokens, nil
}

// rewrite replaces each dialect-agnostic marker with the dialect's next positional marker and
// returns the rewritten text with the number of argument slots the text consumes. Native
// indexed markers are kept verbatim and raise the running counter to their index.
func (l *sqlLexer) rewrite(d dialect.Dialect, sql string) (string, int, error) {
	var sb strings.Builder
	sb.Grow(len(sql) + 8)
	counter := 0

	for rest := sql; rest != ""; {
		tokens, err := l.tokenize(rest)
		if err != nil {
			return "", 0, err
		}

		resume := len(rest)
	scan:
		for _, tok := range tokens {
			switch {
			case tok.EOF():
			case tok.Type == l.agnostic:
				counter++
				sb.WriteString(d.Placeholder(counter))
			case l.hasNative && tok.Type == l.native:
				n, err := strconv.Atoi(tok.Value[1:])
				if err != nil {
					return "", 0, fmt.Errorf("invalid placeholder %q: %w", tok.Value, err)
				}
				if n > counter {
					counter = n
				}
				sb.WriteString(tok.Value)
			case l.hasDollar && tok.Type == l.dollar:
				// Tokens after the opening tag are discarded; lexing restarts after the body.
				start := tok.Pos.Offset
				end := len(rest)
				body := start + len(tok.Value)
				if i := strings.Index(rest[body:], tok.Value); i >= 0 {
					end = body + i + len(tok.Value)
				}
				sb.WriteString(rest[start:end])
				resume = end
				break scan
			default:
				sb.WriteString(tok.Value)
			}
		}
		rest = rest[resume:]
	}
	return sb.String(), counter, nil
}
