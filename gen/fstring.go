package gen

import (
	"go/scanner"
	"go/token"
	"log/slog"
	"strings"
)

// tree is a token, or a bracketed group of trees when tok is LPAREN,
// LBRACK or LBRACE.
type tree struct {
	tok        token.Token
	lit        string
	pos        token.Pos
	start, end int // byte offsets; end is exclusive
	kids       []*tree
}

func (t *tree) isGroup() bool {
	return t.tok == token.LPAREN || t.tok == token.LBRACK || t.tok == token.LBRACE
}

var closer = map[token.Token]token.Token{
	token.RPAREN: token.LPAREN,
	token.RBRACK: token.LBRACK,
	token.RBRACE: token.LBRACE,
}

// parseTree groups the tokens of src by brackets. Comments are kept so
// directives can be found; automatically inserted semicolons are kept
// with zero width.
func parseTree(fset *token.FileSet, filename string, src []byte) ([]*tree, error) {
	file := fset.AddFile(filename, -1, len(src))

	var (
		s    scanner.Scanner
		errs scanner.ErrorList
	)

	s.Init(file, src, errs.Add, scanner.ScanComments)

	root := &tree{}
	stack := []*tree{root}

	for {
		pos, tok, lit := s.Scan()
		if tok == token.EOF {
			break
		}

		start := file.Offset(pos)
		t := &tree{tok: tok, lit: lit, pos: pos, start: start, end: start + tokenLen(tok, lit)}
		top := stack[len(stack)-1]

		switch {
		case t.isGroup():
			top.kids = append(top.kids, t)
			stack = append(stack, t)

		case closer[tok] != token.ILLEGAL:
			if len(stack) == 1 || top.tok != closer[tok] {
				return nil, &PositionError{
					Pos: fset.Position(pos),
					Err: ErrUnbalanced.With(slog.String("token", tok.String())),
				}
			}

			top.end = t.end
			stack = stack[:len(stack)-1]

		default:
			top.kids = append(top.kids, t)
		}
	}

	if errs.Len() > 0 {
		errs.Sort()

		return nil, errs.Err()
	}

	if len(stack) > 1 {
		open := stack[len(stack)-1]

		return nil, &PositionError{
			Pos: fset.Position(open.pos),
			Err: ErrUnbalanced.With(slog.String("token", open.tok.String())),
		}
	}

	return root.kids, nil
}

func tokenLen(tok token.Token, lit string) int {
	switch {
	case tok == token.SEMICOLON && lit == "\n":
		return 0
	case lit != "":
		return len(lit)
	default:
		return len(tok.String())
	}
}

// rewriteFStrings expands f"..." literals in the bodies of functions that
// follow a [Directive] comment.
func (g *Generator) rewriteFStrings(filename string, src []byte) ([]byte, int, error) {
	if !strings.Contains(string(src), Directive) {
		return src, 0, nil
	}

	fset := token.NewFileSet()

	top, err := parseTree(fset, filename, src)
	if err != nil {
		return nil, 0, err
	}

	var edits []edit

	for i, t := range top {
		if t.tok != token.COMMENT || strings.TrimSpace(t.lit) != Directive {
			continue
		}

		body := funcBody(top[i+1:])
		if body == nil {
			g.cfg.logger.Warn("directive not followed by a function",
				slog.String("pos", fset.Position(t.pos).String()),
			)

			continue
		}

		if err := g.rewriteGroup(fset, body.kids, &edits); err != nil {
			return nil, 0, err
		}
	}

	return splice(src, edits), len(edits), nil
}

// funcBody returns the body of the function declaration at the start of
// trees, skipping comments. The body is the last brace group before the
// declaration's terminating semicolon.
func funcBody(trees []*tree) *tree {
	i := 0
	for i < len(trees) && trees[i].tok == token.COMMENT {
		i++
	}

	if i == len(trees) || trees[i].tok != token.FUNC {
		return nil
	}

	var body *tree

	for _, t := range trees[i+1:] {
		if t.tok == token.SEMICOLON {
			break
		}

		if t.tok == token.LBRACE {
			body = t
		}
	}

	return body
}

// rewriteGroup records an edit for every identifier f directly followed by
// a string literal in trees and in all groups nested within.
func (g *Generator) rewriteGroup(fset *token.FileSet, trees []*tree, edits *[]edit) error {
	for i, t := range trees {
		if t.isGroup() {
			if err := g.rewriteGroup(fset, t.kids, edits); err != nil {
				return err
			}

			continue
		}

		if t.tok != token.IDENT || t.lit != "f" || i+1 == len(trees) {
			continue
		}

		next := trees[i+1]
		if next.tok != token.STRING || next.start != t.end {
			continue
		}

		code, err := g.expand(next.lit, false)
		if err != nil {
			return locate(fset.Position(next.pos), next.lit, err)
		}

		*edits = append(*edits, edit{start: t.start, end: next.end, text: code})
	}

	return nil
}
