// Package docblock extracts tags from `/** ... */` comments.
//
// Two tag flavours are recognised. Plain phpDocumentor tags (`@param`,
// `@return`, ...) keep the rest of their line as Value. Doctrine style
// annotations (`@ORM\Entity(...)`) are names of classes themselves; their
// argument lists are scanned for nested annotations and `Class::CONST`
// references.
package docblock

import (
	"strings"
	"unicode"

	"bugfree/internal/ast"
)

// plainTags never name a class, whatever their spelling case.
var plainTags = map[string]struct{}{
	"abstract": {}, "access": {}, "author": {}, "category": {}, "copyright": {},
	"deprecated": {}, "example": {}, "final": {}, "filesource": {}, "global": {},
	"ignore": {}, "internal": {}, "license": {}, "link": {}, "name": {},
	"package": {}, "see": {}, "since": {}, "static": {}, "staticvar": {},
	"subpackage": {}, "todo": {}, "tutorial": {}, "uses": {}, "version": {},
	"var": {}, "param": {}, "return": {}, "method": {}, "property": {},
	"dataprovider": {}, "throws": {}, "inheritdoc": {}, "expectedexception": {},
	"expectedexceptionmessage": {}, "api": {},
}

// IsDocComment reports whether text opens like a docblock.
func IsDocComment(text string) bool {
	return strings.HasPrefix(strings.TrimSpace(text), "/**")
}

// IsAnnotation reports whether a tag name is a doctrine style annotation.
func IsAnnotation(name string) bool {
	if name == "" {
		return false
	}
	if _, ok := plainTags[strings.ToLower(name)]; ok {
		return false
	}
	return strings.Contains(name, `\`) || unicode.IsUpper(rune(name[0]))
}

// Parse returns the tags of a docblock in order of appearance. Text that is
// not a docblock yields nil.
func Parse(text string) []ast.DocTag {
	if !IsDocComment(text) {
		return nil
	}
	p := &parser{src: text}
	p.run()
	return p.tags
}

// Block wraps Parse for a comment starting on line.
func Block(text string, line int) *ast.DocBlock {
	tags := Parse(text)
	if tags == nil {
		return nil
	}
	return &ast.DocBlock{Line: line, Tags: tags}
}

type parser struct {
	src  string
	pos  int
	line int
	tags []ast.DocTag
}

func (p *parser) eof() bool { return p.pos >= len(p.src) }

func (p *parser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) advance() byte {
	c := p.src[p.pos]
	p.pos++
	if c == '\n' || (c == '\r' && p.peek() != '\n') {
		p.line++
	}
	return c
}

func (p *parser) run() {
	for !p.eof() {
		if p.atTag() {
			p.tag()
			continue
		}
		p.advance()
	}
}

// atTag accepts `@` only at a word boundary so e-mail addresses in
// @author lines are not taken for tags.
func (p *parser) atTag() bool {
	if p.peek() != '@' {
		return false
	}
	if p.pos > 0 {
		prev := p.src[p.pos-1]
		if !isSpace(prev) && !strings.ContainsRune("*({,=", rune(prev)) {
			return false
		}
	}
	return p.pos+1 < len(p.src) && isNameStart(p.src[p.pos+1])
}

func (p *parser) tag() {
	p.advance() // '@'
	offset := p.line
	name := p.name()

	if !IsAnnotation(name) {
		p.tags = append(p.tags, ast.DocTag{Name: name, Offset: offset, Value: p.restOfLine()})
		return
	}

	idx := len(p.tags)
	p.tags = append(p.tags, ast.DocTag{Name: name, Offset: offset, Annotation: true})
	for p.peek() == ' ' || p.peek() == '\t' {
		p.advance()
	}
	if p.peek() == '(' {
		p.advance()
		p.arguments(idx, ')')
	}
}

func (p *parser) name() string {
	start := p.pos
	for !p.eof() && isNameChar(p.peek()) {
		p.advance()
	}
	return p.src[start:p.pos]
}

// restOfLine consumes up to the end of the line and trims the closing `*/`
// of one-line comments.
func (p *parser) restOfLine() string {
	start := p.pos
	for !p.eof() && p.peek() != '\n' && p.peek() != '\r' {
		p.advance()
	}
	value := p.src[start:p.pos]
	if i := strings.Index(value, "*/"); i >= 0 {
		value = value[:i]
	}
	return strings.TrimSpace(value)
}

// arguments scans an argument list up to end, recording references on the
// annotation at owner.
func (p *parser) arguments(owner int, end byte) {
	for !p.eof() {
		c := p.peek()
		switch {
		case c == end:
			p.advance()
			return
		case c == '"':
			p.str()
		case c == '(':
			p.advance()
			p.arguments(owner, ')')
		case c == '{':
			p.advance()
			p.arguments(owner, '}')
		case p.atTag():
			p.tag()
		case isNameStart(c):
			offset := p.line
			ident := p.name()
			if p.consume("::") {
				p.tags[owner].Refs = append(p.tags[owner].Refs, ast.DocRef{Text: ident, Offset: offset})
				p.name()
			}
		case c == '*' && strings.HasPrefix(p.src[p.pos:], "*/"):
			return
		default:
			p.advance()
		}
	}
}

func (p *parser) consume(s string) bool {
	if !strings.HasPrefix(p.src[p.pos:], s) {
		return false
	}
	for range len(s) {
		p.advance()
	}
	return true
}

// str skips a double quoted string; `""` is an escaped quote.
func (p *parser) str() {
	p.advance()
	for !p.eof() {
		if p.advance() == '"' {
			if p.peek() == '"' {
				p.advance()
				continue
			}
			return
		}
	}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isNameStart(c byte) bool {
	return c == '_' || c == '\\' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80
}

func isNameChar(c byte) bool {
	return isNameStart(c) || (c >= '0' && c <= '9') || c == '[' || c == ']' || c == '-'
}
