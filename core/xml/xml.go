// Package xml provides pure Go XML parsing, XPath and well-formedness checks
// over github.com/antchfx/xmlquery.
//
// Security Notes:
//   - XXE (External Entity) attacks are mitigated by using Go's xml.Decoder
//     which doesn't fetch external entities by default, and we explicitly
//     disable entity expansion in validation functions.
//   - The xmlquery library is used for parsing, which uses Go's encoding/xml
//     internally and inherits its security properties.
package xml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
)

// fragmentRoot wraps fragments so that several sibling elements parse as one document.
const fragmentRoot = "fragment-root"

// Document represents a parsed XML document.
type Document struct {
	root *xmlquery.Node
}

// Node represents an XML element.
type Node struct {
	node *xmlquery.Node
}

// Segment is one piece of mixed content: either text or a child element.
type Segment struct {
	Text string
	Elem *Node
}

// ValidationResult contains the result of XML validation.
type ValidationResult struct {
	Valid  bool
	Errors []ValidationError
}

// ValidationError represents a single validation error.
type ValidationError struct {
	Line    int
	Column  int
	Message string
}

// Parse parses XML data and returns a Document.
func Parse(data []byte) (*Document, error) {
	return ParseReader(bytes.NewReader(data))
}

// ParseReader parses XML from r and returns a Document.
func ParseReader(r io.Reader) (*Document, error) {
	root, err := xmlquery.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing XML: %w", err)
	}
	return &Document{root: root}, nil
}

// ParseFragment parses a string holding zero or more sibling elements and
// returns them in order. Text outside the elements is an error.
func ParseFragment(s string) ([]*Node, error) {
	doc, err := Parse([]byte("<" + fragmentRoot + ">" + s + "</" + fragmentRoot + ">"))
	if err != nil {
		return nil, err
	}
	root := doc.Root()
	if root == nil {
		return nil, nil
	}
	var nodes []*Node
	for _, seg := range root.Mixed() {
		if seg.Elem == nil {
			if !IsBlank(seg.Text) {
				return nil, fmt.Errorf("parsing fragment: text %q outside elements", strings.TrimSpace(seg.Text))
			}
			continue
		}
		nodes = append(nodes, seg.Elem)
	}
	return nodes, nil
}

// Validate checks XML data for well-formedness.
//
// Security: entity expansion is disabled. Go's xml.Decoder does not fetch
// external entities by default, and we explicitly disable internal entity
// expansion as well.
func Validate(data []byte) ValidationResult {
	result := ValidationResult{Valid: true}

	decoder := xml.NewDecoder(bytes.NewReader(data))
	decoder.Entity = map[string]string{}

	for {
		_, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			line, _ := decoder.InputPos()
			result.Valid = false
			result.Errors = append(result.Errors, ValidationError{
				Line:    line,
				Message: err.Error(),
			})
			break
		}
	}

	return result
}

// Root returns the root element of the document.
func (d *Document) Root() *Node {
	if d.root == nil {
		return nil
	}
	for child := d.root.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.ElementNode {
			return &Node{node: child}
		}
	}
	return nil
}

// XPathFirst executes an XPath query and returns the first matching node.
func (d *Document) XPathFirst(expr string) (*Node, error) {
	nodes, err := query(d.root, expr)
	if err != nil || len(nodes) == 0 {
		return nil, err
	}
	return nodes[0], nil
}

func query(top *xmlquery.Node, expr string) ([]*Node, error) {
	compiled, err := xpath.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid xpath: %w", err)
	}
	nodes := xmlquery.QuerySelectorAll(top, compiled)
	result := make([]*Node, len(nodes))
	for i, n := range nodes {
		result[i] = &Node{node: n}
	}
	return result, nil
}

// Name returns the element name.
func (n *Node) Name() string {
	if n == nil || n.node == nil {
		return ""
	}
	return n.node.Data
}

// OuterXML returns the node serialized including its own tag. Elements
// without children are written self-closing, so a fragment serializes the
// same way however it was spelled in the source.
func (n *Node) OuterXML() string {
	if n == nil || n.node == nil {
		return ""
	}
	return n.node.OutputXMLWithOptions(xmlquery.WithOutputSelf(), xmlquery.WithEmptyTagSupport())
}

// Children returns the child element nodes.
func (n *Node) Children() []*Node {
	if n == nil || n.node == nil {
		return nil
	}

	var children []*Node
	for child := n.node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.ElementNode {
			children = append(children, &Node{node: child})
		}
	}
	return children
}

// ChildrenNamed returns the child elements with the given name.
func (n *Node) ChildrenNamed(name string) []*Node {
	var out []*Node
	for _, c := range n.Children() {
		if c.Name() == name {
			out = append(out, c)
		}
	}
	return out
}

// FirstChild returns the first child element with the given name, or nil.
func (n *Node) FirstChild(name string) *Node {
	for _, c := range n.Children() {
		if c.Name() == name {
			return c
		}
	}
	return nil
}

// Mixed returns text and element children in document order.
// CDATA sections are reported as text.
func (n *Node) Mixed() []Segment {
	if n == nil || n.node == nil {
		return nil
	}
	var segs []Segment
	for child := n.node.FirstChild; child != nil; child = child.NextSibling {
		switch child.Type {
		case xmlquery.TextNode, xmlquery.CharDataNode:
			segs = append(segs, Segment{Text: child.Data})
		case xmlquery.ElementNode:
			segs = append(segs, Segment{Elem: &Node{node: child}})
		}
	}
	return segs
}

// Attr returns the value of a specific attribute.
func (n *Node) Attr(name string) string {
	if n == nil || n.node == nil {
		return ""
	}
	return n.node.SelectAttr(name)
}

// IsBlank reports whether s holds only XML whitespace.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
