package utils

import (
	"fmt"
	"strconv"

	"github.com/bwmarrin/snowflake"
)

// IDGenerator produces globally-unique, time-sortable identifiers for new
// report, request and infraction records.
type IDGenerator struct {
	node *snowflake.Node
}

// NewIDGenerator creates a generator for the given node number. Node numbers
// must be unique across concurrently running processes.
func NewIDGenerator(nodeID int64) (*IDGenerator, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to create snowflake node: %w", err)
	}
	return &IDGenerator{node: node}, nil
}

// Next returns a new identifier as a decimal string.
func (g *IDGenerator) Next() string {
	return g.node.Generate().String()
}

// ParseID validates that s looks like a generated identifier.
func ParseID(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}
