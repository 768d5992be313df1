package nfg

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"

	gzip "github.com/klauspost/pgzip"
	"github.com/pkg/errors"
)

// ReadFile reads a game in strategic-form payoff format from the named
// file, which may be gzip compressed.
func ReadFile(filename string) (*Table, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	br := bufio.NewReader(f)
	magic, err := br.Peek(2)
	if err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		r, err := gzip.NewReader(br)
		if err != nil {
			return nil, errors.Wrapf(err, "%s: invalid gzip stream", filename)
		}
		defer r.Close()
		return Read(r)
	}

	return Read(br)
}

// WriteFile writes g to the named file, gzip compressing it if the
// name ends in ".gz".
func WriteFile(filename string, g *Table) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}

	if err := writeTo(f, filename, g); err != nil {
		f.Close()
		return errors.Wrapf(err, "writing %v", filename)
	}

	return errors.Wrapf(f.Close(), "closing %v", filename)
}

func writeTo(w io.Writer, filename string, g *Table) error {
	if !strings.HasSuffix(filename, ".gz") {
		return Write(w, g)
	}

	gz := gzip.NewWriter(w)
	if err := Write(gz, g); err != nil {
		gz.Close()
		return err
	}

	return gz.Close()
}

// Read parses a game in strategic-form payoff format:
//
//	NFG 1 R "Title" { "Player 1" "Player 2" } { 2 2 }
//	1 1  0 2  0 2  1 1
//
// The strategy counts may instead be given as lists of strategy names,
// e.g. { { "Top" "Bottom" } { "Left" "Right" } }, and may be followed by
// a quoted comment. The payoffs of every player are listed for each
// contingency, with the first player's strategy varying fastest.
// Payoffs may be integers, decimals or fractions such as 3/4.
func Read(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	p := &parser{tokens: tokenize(data)}
	return p.parse()
}

type tokenKind int

const (
	tokWord tokenKind = iota
	tokString
	tokOpen
	tokClose
)

type token struct {
	kind tokenKind
	text string
	line int
}

func tokenize(data []byte) []token {
	var tokens []token
	line := 1
	for i := 0; i < len(data); {
		c := data[i]
		switch {
		case c == '\n':
			line++
			i++
		case unicode.IsSpace(rune(c)):
			i++
		case c == '{':
			tokens = append(tokens, token{tokOpen, "{", line})
			i++
		case c == '}':
			tokens = append(tokens, token{tokClose, "}", line})
			i++
		case c == '"':
			var sb strings.Builder
			i++
			for i < len(data) && data[i] != '"' {
				if data[i] == '\\' && i+1 < len(data) {
					i++
				}
				if data[i] == '\n' {
					line++
				}
				sb.WriteByte(data[i])
				i++
			}
			i++ // Closing quote.
			tokens = append(tokens, token{tokString, sb.String(), line})
		default:
			start := i
			for i < len(data) && !unicode.IsSpace(rune(data[i])) &&
				data[i] != '{' && data[i] != '}' && data[i] != '"' {
				i++
			}
			tokens = append(tokens, token{tokWord, string(data[start:i]), line})
		}
	}

	return tokens
}

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) peek() *token {
	if p.pos >= len(p.tokens) {
		return nil
	}

	return &p.tokens[p.pos]
}

func (p *parser) next(kind tokenKind, what string) (token, error) {
	tok := p.peek()
	if tok == nil {
		return token{}, errors.Errorf("unexpected end of input, expected %s", what)
	}

	if tok.kind != kind {
		return token{}, errors.Errorf("line %d: expected %s, got %q", tok.line, what, tok.text)
	}

	p.pos++
	return *tok, nil
}

func (p *parser) parse() (*Table, error) {
	if _, err := p.expectWord("NFG"); err != nil {
		return nil, err
	}
	if _, err := p.expectWord("1"); err != nil {
		return nil, err
	}
	if _, err := p.expectWord("R", "D"); err != nil {
		return nil, err
	}

	title, err := p.next(tokString, "game title")
	if err != nil {
		return nil, err
	}

	players, err := p.stringList("player names")
	if err != nil {
		return nil, err
	}

	numStrategies, labels, err := p.strategies(len(players))
	if err != nil {
		return nil, err
	}

	if tok := p.peek(); tok != nil && tok.kind == tokString {
		p.pos++ // Comment.
	}

	t := NewTable(numStrategies)
	t.SetTitle(title.text)
	for pl, name := range players {
		t.SetPlayerName(pl, name)
		for i, label := range labels[pl] {
			t.SetStrategyLabel(pl, i+1, label)
		}
	}

	var parseErr error
	NewSupport(t).forEachOrdered(func(profile []int) bool {
		for pl := range players {
			tok, err := p.next(tokWord, "payoff")
			if err != nil {
				parseErr = err
				return false
			}

			v, err := exact.Parse(tok.text)
			if err != nil {
				parseErr = errors.Wrapf(err, "line %d", tok.line)
				return false
			}

			t.SetPayoff(profile, pl, v)
		}
		return true
	})

	if parseErr != nil {
		return nil, parseErr
	}

	if tok := p.peek(); tok != nil {
		return nil, errors.Errorf("line %d: unexpected trailing input %q", tok.line, tok.text)
	}

	return t, nil
}

func (p *parser) expectWord(options ...string) (token, error) {
	tok, err := p.next(tokWord, strings.Join(options, " or "))
	if err != nil {
		return tok, err
	}

	for _, opt := range options {
		if tok.text == opt {
			return tok, nil
		}
	}

	return tok, errors.Errorf("line %d: expected %s, got %q",
		tok.line, strings.Join(options, " or "), tok.text)
}

func (p *parser) stringList(what string) ([]string, error) {
	if _, err := p.next(tokOpen, "{"); err != nil {
		return nil, errors.Wrap(err, what)
	}

	var result []string
	for {
		tok := p.peek()
		if tok != nil && tok.kind == tokClose {
			p.pos++
			return result, nil
		}

		s, err := p.next(tokString, what)
		if err != nil {
			return nil, err
		}
		result = append(result, s.text)
	}
}

// strategies parses either { n1 n2 ... } or { { "a" "b" } { "c" } ... }.
func (p *parser) strategies(nPlayers int) ([]int, [][]string, error) {
	if _, err := p.next(tokOpen, "{"); err != nil {
		return nil, nil, errors.Wrap(err, "strategies")
	}

	counts := make([]int, 0, nPlayers)
	labels := make([][]string, 0, nPlayers)
	for {
		tok := p.peek()
		if tok == nil {
			return nil, nil, errors.New("unexpected end of input in strategies")
		}

		switch tok.kind {
		case tokClose:
			p.pos++
			if len(counts) != nPlayers {
				return nil, nil, errors.Errorf("line %d: %d strategy sets for %d players",
					tok.line, len(counts), nPlayers)
			}
			return counts, labels, nil
		case tokOpen:
			names, err := p.stringList("strategy names")
			if err != nil {
				return nil, nil, err
			}
			counts = append(counts, len(names))
			labels = append(labels, names)
		case tokWord:
			p.pos++
			n, err := strconv.Atoi(tok.text)
			if err != nil || n < 1 {
				return nil, nil, errors.Errorf("line %d: invalid strategy count %q", tok.line, tok.text)
			}
			counts = append(counts, n)
			labels = append(labels, nil)
		default:
			return nil, nil, errors.Errorf("line %d: unexpected %q in strategies", tok.line, tok.text)
		}
	}
}

// forEachOrdered visits every contingency of the support with the
// first player's strategy varying fastest, the order of the file format.
func (s *Support) forEachOrdered(fn func(profile []int) bool) {
	profile := make([]int, len(s.active))
	numbers := make([][]int, len(s.active))
	for pl := range numbers {
		numbers[pl] = s.Numbers(pl)
	}

	idx := make([]int, len(s.active))
	for {
		for pl, i := range idx {
			profile[pl] = numbers[pl][i]
		}

		if !fn(profile) {
			return
		}

		pl := 0
		for ; pl < len(idx); pl++ {
			idx[pl]++
			if idx[pl] < len(numbers[pl]) {
				break
			}
			idx[pl] = 0
		}

		if pl == len(idx) {
			return
		}
	}
}

// Write writes g in strategic-form payoff format.
func Write(w io.Writer, g *Table) error {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "NFG 1 R %s {", quote(g.Title()))
	for pl := 0; pl < g.NumPlayers(); pl++ {
		fmt.Fprintf(&buf, " %s", quote(PlayerName(g, pl)))
	}
	buf.WriteString(" }\n{")
	for pl := 0; pl < g.NumPlayers(); pl++ {
		buf.WriteString(" {")
		for i := 1; i <= g.NumStrategies(pl); i++ {
			fmt.Fprintf(&buf, " %s", quote(StrategyName(g, Strategy{pl, i})))
		}
		buf.WriteString(" }")
	}
	buf.WriteString(" }\n\n")

	first := true
	NewSupport(g).forEachOrdered(func(profile []int) bool {
		for pl := 0; pl < g.NumPlayers(); pl++ {
			if !first {
				buf.WriteByte(' ')
			}
			first = false
			buf.WriteString(g.Payoff(profile, pl).String())
		}
		return true
	})
	buf.WriteByte('\n')

	_, err := w.Write(buf.Bytes())
	return err
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}
