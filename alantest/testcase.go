// Package alantest extracts compiler test cases from Markdown
// documents. A test case starts at a heading of the form "Test: name"
// and consists of one alan fence holding the source text followed by
// assertion fences holding what the compiler must produce for it.
package alantest

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// FenceAlan is the fence language of the source text of a test case.
const FenceAlan = "alan"

// AssertionType identifies what an assertion fence asserts.
type AssertionType string

const (
	// AssertionJasmin is the expected method part of the Jasmin
	// translation unit, everything after the fixed class preamble.
	AssertionJasmin AssertionType = "jasmin"

	// AssertionCompileError is the expected diagnostic in the form
	// "line:col: message".
	AssertionCompileError AssertionType = "compile-error"
)

// Assertion is one assertion fence of a test case.
type Assertion struct {
	Type    AssertionType
	Content string
}

// TestCase is one compiler test case extracted from a document.
type TestCase struct {
	Name       string // heading text after "Test: "
	Source     string // ALAN source text from the alan fence
	Assertions []Assertion
}

// ExtractTestCases parses a Markdown document and returns the test
// cases it holds, in document order. Fences with an unknown language,
// fences outside a test case, and test cases without a source or
// without assertions are reported as errors.
func ExtractTestCases(markdownContent string) ([]TestCase, error) {
	source := []byte(markdownContent)
	doc := goldmark.New().Parser().Parse(text.NewReader(source))

	var cases []TestCase
	var current *TestCase

	err := ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch n := node.(type) {
		case *ast.Heading:
			heading := nodeText(n, source)
			name, ok := strings.CutPrefix(heading, "Test: ")
			if !ok {
				break
			}
			if current != nil {
				if err := validate(current); err != nil {
					return ast.WalkStop, err
				}
				cases = append(cases, *current)
			}
			current = &TestCase{Name: name}

		case *ast.FencedCodeBlock:
			language := string(n.Language(source))
			if language == "" {
				break
			}
			line := lineNumber(n, source)
			if current == nil {
				return ast.WalkStop, fmt.Errorf(
					"line %d: %s fence outside of a test case", line, language)
			}
			content := strings.TrimRight(fenceContent(n, source), "\n")
			switch {
			case language == FenceAlan:
				if current.Source != "" {
					return ast.WalkStop, fmt.Errorf(
						"line %d: multiple alan fences in test '%s'", line, current.Name)
				}
				current.Source = content
			case isAssertionFence(language):
				current.Assertions = append(current.Assertions, Assertion{
					Type:    AssertionType(language),
					Content: content,
				})
			default:
				return ast.WalkStop, fmt.Errorf(
					"line %d: unknown fence language '%s' in test '%s'",
					line, language, current.Name)
			}
		}

		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}

	if current != nil {
		if err := validate(current); err != nil {
			return nil, err
		}
		cases = append(cases, *current)
	}
	return cases, nil
}

func isAssertionFence(language string) bool {
	switch AssertionType(language) {
	case AssertionJasmin, AssertionCompileError:
		return true
	}
	return false
}

func validate(c *TestCase) error {
	if c.Source == "" {
		return fmt.Errorf("test '%s' has no alan fence", c.Name)
	}
	if len(c.Assertions) == 0 {
		return fmt.Errorf("test '%s' has no assertion fences", c.Name)
	}
	return nil
}

// nodeText collects the plain text of a node and its children.
func nodeText(node ast.Node, source []byte) string {
	var buf bytes.Buffer
	ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			if t, ok := n.(*ast.Text); ok {
				buf.Write(t.Segment.Value(source))
			}
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}

func fenceContent(block *ast.FencedCodeBlock, source []byte) string {
	var buf bytes.Buffer
	for i := 0; i < block.Lines().Len(); i++ {
		line := block.Lines().At(i)
		buf.Write(line.Value(source))
	}
	return buf.String()
}

// lineNumber is the 1-based line of the first content line of a node.
func lineNumber(node ast.Node, source []byte) int {
	if node.Lines().Len() == 0 {
		return 1
	}
	start := node.Lines().At(0).Start
	line := 1
	for i := 0; i < start && i < len(source); i++ {
		if source[i] == '\n' {
			line++
		}
	}
	return line
}
