// Package query assembles parameterized SELECT statements from a fixed base
// and an ordered list of optional predicates. User input only ever travels
// as bound arguments; predicates are written with '?' markers and renumbered
// into the target engine's placeholder style at Build time.
package query

import (
	"fmt"
	"strings"
)

// Placeholders renders the bind marker of the n-th (1-based) argument.
// database.Dialect satisfies it.
type Placeholders interface {
	Placeholder(n int) string
}

// Builder accumulates the clauses of one statement. The zero value is not
// usable; start from New.
type Builder struct {
	ph      Placeholders
	base    string
	where   []string
	args    []interface{}
	groupBy []string
	orderBy []string
	err     error
}

// New starts a statement from base, the SELECT ... FROM ... JOIN part.
func New(ph Placeholders, base string) *Builder {
	return &Builder{ph: ph, base: strings.TrimSpace(base)}
}

// Where appends a predicate joined to the previous ones with AND. The clause
// must contain exactly one '?' per argument.
func (b *Builder) Where(clause string, args ...interface{}) *Builder {
	if n := strings.Count(clause, "?"); n != len(args) && b.err == nil {
		b.err = fmt.Errorf("query: clause %q has %d markers but %d arguments", clause, n, len(args))
	}
	b.where = append(b.where, clause)
	b.args = append(b.args, args...)
	return b
}

// WhereIf appends the predicate only when cond holds.
func (b *Builder) WhereIf(cond bool, clause string, args ...interface{}) *Builder {
	if !cond {
		return b
	}
	return b.Where(clause, args...)
}

// GroupBy sets the grouping expressions.
func (b *Builder) GroupBy(exprs ...string) *Builder {
	b.groupBy = append(b.groupBy, exprs...)
	return b
}

// OrderBy sets the ordering terms, e.g. "c.Date DESC".
func (b *Builder) OrderBy(terms ...string) *Builder {
	b.orderBy = append(b.orderBy, terms...)
	return b
}

// Build returns the statement text and its arguments in bind order.
func (b *Builder) Build() (string, []interface{}, error) {
	if b.err != nil {
		return "", nil, b.err
	}

	var sb strings.Builder
	sb.WriteString(b.base)

	if len(b.where) > 0 {
		sb.WriteString("\nWHERE ")
		sb.WriteString(b.renumber(strings.Join(b.where, " AND ")))
	}
	if len(b.groupBy) > 0 {
		sb.WriteString("\nGROUP BY ")
		sb.WriteString(strings.Join(b.groupBy, ", "))
	}
	if len(b.orderBy) > 0 {
		sb.WriteString("\nORDER BY ")
		sb.WriteString(strings.Join(b.orderBy, ", "))
	}

	args := make([]interface{}, len(b.args))
	copy(args, b.args)

	return sb.String(), args, nil
}

// renumber replaces each '?' with the dialect's marker for its position.
func (b *Builder) renumber(s string) string {
	var out strings.Builder
	n := 0
	for _, r := range s {
		if r == '?' {
			n++
			out.WriteString(b.ph.Placeholder(n))
			continue
		}
		out.WriteRune(r)
	}
	return out.String()
}
