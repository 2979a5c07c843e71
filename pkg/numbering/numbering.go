// Package numbering issues human-readable, time-ordered document numbers.
package numbering

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
)

const (
	OrderPrefix   = "ORD"
	InvoicePrefix = "INV"
)

// Generator mints prefixed snowflake identifiers. Numbers from one node are
// unique and increase with creation time.
type Generator struct {
	node *snowflake.Node
}

// NewGenerator binds a generator to a snowflake node id (0-1023).
func NewGenerator(nodeID int64) (*Generator, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("snowflake node %d: %w", nodeID, err)
	}
	return &Generator{node: node}, nil
}

// OrderNumber returns ORD-<id>.
func (g *Generator) OrderNumber() string {
	return g.next(OrderPrefix)
}

// InvoiceNumber returns INV-<id>.
func (g *Generator) InvoiceNumber() string {
	return g.next(InvoicePrefix)
}

func (g *Generator) next(prefix string) string {
	return prefix + "-" + g.node.Generate().String()
}

// Parse splits a number into its prefix and snowflake id.
func Parse(number string) (string, snowflake.ID, error) {
	prefix, raw, ok := strings.Cut(number, "-")
	if !ok || prefix == "" {
		return "", 0, fmt.Errorf("malformed number %q", number)
	}
	id, err := snowflake.ParseString(raw)
	if err != nil {
		return "", 0, fmt.Errorf("malformed number %q: %w", number, err)
	}
	return prefix, id, nil
}
