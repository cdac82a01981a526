package html

// Parser builds a Document from a token stream using a stack of open
// elements. It never fails; unbalanced markup is repaired by the end-tag
// rule in closeTag.
type Parser struct {
	doc   *Document
	stack []NodeID
}

func NewParser() *Parser {
	doc := NewDocument()
	return &Parser{
		doc:   doc,
		stack: []NodeID{doc.Root},
	}
}

// Feed applies one token to the tree under construction.
func (p *Parser) Feed(token Token) {
	switch token.Type {
	case TokenStartTag:
		node := p.doc.AddElement(p.currentParent(), token.TagName)
		// Void elements never receive children
		if !IsVoidElement(token.TagName) {
			p.push(node)
		}
	case TokenEndTag:
		p.closeTag(token.TagName)
	case TokenText:
		p.doc.AddText(p.currentParent(), token.Text)
	}
}

// Document returns the tree built so far.
func (p *Parser) Document() *Document {
	return p.doc
}

// currentParent returns the current parent node (top of stack)
func (p *Parser) currentParent() NodeID {
	if len(p.stack) == 0 {
		return p.doc.Root
	}
	return p.stack[len(p.stack)-1]
}

func (p *Parser) push(id NodeID) {
	p.stack = append(p.stack, id)
}

// pop removes the top node from the stack. The root is never popped.
func (p *Parser) pop() (NodeID, bool) {
	if len(p.stack) <= 1 {
		return NoParent, false
	}
	id := p.stack[len(p.stack)-1]
	p.stack = p.stack[:len(p.stack)-1]
	return id, true
}

// closeTag pops open elements until one named tagName has been popped.
// When no open element matches, every element above the root is closed:
// this over-closes compared to browsers and is kept on purpose.
func (p *Parser) closeTag(tagName string) {
	for {
		id, ok := p.pop()
		if !ok {
			return
		}
		if p.doc.Node(id).IsElement(tagName) {
			return
		}
	}
}

// Parse builds a document from tokens.
func Parse(tokens []Token) *Document {
	parser := NewParser()
	for _, token := range tokens {
		parser.Feed(token)
	}
	return parser.Document()
}

// ParseString tokenizes and parses markup in one step.
func ParseString(input string) *Document {
	return Parse(Tokenize(input))
}
