// Package id issues analysis IDs: 63-bit snowflakes, time-ordered and unique per node.
package id

import (
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/bwmarrin/snowflake"
)

var node atomic.Pointer[snowflake.Node]

// Init sets up the generator for this replica. Later calls are no-ops.
func Init(nodeID int64) error {
	if node.Load() != nil {
		return nil
	}
	n, err := snowflake.NewNode(nodeID)
	if err != nil {
		return fmt.Errorf("snowflake node %d: %w", nodeID, err)
	}
	node.CompareAndSwap(nil, n)
	return nil
}

// New panics when Init has not been called.
func New() int64 {
	n := node.Load()
	if n == nil {
		panic("id: Init must be called before New")
	}
	return n.Generate().Int64()
}

func String(v int64) string {
	return strconv.FormatInt(v, 10)
}
