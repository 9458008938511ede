package table

import (
	"fmt"
	"strings"
)

// DefaultRule is the precedence used when none is configured.
const DefaultRule = "FI>I>PI>UL>L>M>PM>PG"

// absentAliases name the "not present in this assembly" class. They are
// accepted in a rule for compatibility but always rank last.
var absentAliases = map[string]bool{
	ClassNotFound: true,
	"abs":         true,
}

// OrderError reports an invalid precedence rule.
type OrderError struct {
	Rule    string
	Message string
}

func (e *OrderError) Error() string {
	return fmt.Sprintf("invalid precedence order %q: %s", e.Rule, e.Message)
}

// PrecedenceOrder is a total order over orthology class tokens, best first.
//
// Ranks: listed tokens rank by position; tokens not in the list share rank
// len(tokens); absence ranks len(tokens)+1, so a gene that is missing from an
// assembly never outranks real data, even an unrecognized class.
type PrecedenceOrder struct {
	tokens []string
	rank   map[string]int
}

// NewOrder builds an order from tokens listed best to worst.
func NewOrder(tokens []string) (PrecedenceOrder, error) {
	rule := strings.Join(tokens, ">")
	o := PrecedenceOrder{rank: make(map[string]int, len(tokens))}
	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		if absentAliases[tok] {
			continue
		}
		if _, dup := o.rank[tok]; dup {
			return PrecedenceOrder{}, &OrderError{Rule: rule, Message: fmt.Sprintf("duplicate token %q", tok)}
		}
		o.rank[tok] = len(o.tokens)
		o.tokens = append(o.tokens, tok)
	}
	if len(o.tokens) == 0 {
		return PrecedenceOrder{}, &OrderError{Rule: rule, Message: "no class tokens"}
	}
	return o, nil
}

// ParseOrder parses a rule such as "I>PI>UL>L>M>PM>PG>abs". Commas are
// accepted as separators as well.
func ParseOrder(rule string) (PrecedenceOrder, error) {
	fields := strings.FieldsFunc(rule, func(r rune) bool {
		return r == '>' || r == ','
	})
	o, err := NewOrder(fields)
	if err != nil {
		if oe, ok := err.(*OrderError); ok {
			oe.Rule = rule
		}
		return PrecedenceOrder{}, err
	}
	return o, nil
}

// DefaultOrder returns the order described by DefaultRule.
func DefaultOrder() PrecedenceOrder {
	o, err := ParseOrder(DefaultRule)
	if err != nil {
		panic(err)
	}
	return o
}

// Rank returns the position of token in the order. Lower is better.
func (o PrecedenceOrder) Rank(token string) int {
	if absentAliases[token] {
		return o.AbsentRank()
	}
	if r, ok := o.rank[token]; ok {
		return r
	}
	return len(o.tokens)
}

// AbsentRank is the rank of a gene missing from an assembly.
func (o PrecedenceOrder) AbsentRank() int {
	return len(o.tokens) + 1
}

// Better reports whether class a ranks strictly better than class b.
func (o PrecedenceOrder) Better(a, b string) bool {
	return o.Rank(a) < o.Rank(b)
}

// Tokens returns the listed tokens, best first.
func (o PrecedenceOrder) Tokens() []string {
	out := make([]string, len(o.tokens))
	copy(out, o.tokens)
	return out
}

// String renders the order as a rule.
func (o PrecedenceOrder) String() string {
	return strings.Join(o.tokens, ">")
}
