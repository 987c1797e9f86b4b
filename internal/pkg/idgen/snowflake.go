package idgen

import (
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	node *snowflake.Node
	once sync.Once
)

// Initialize sets up the Snowflake ID generator with a node ID
func Initialize(nodeID int64) error {
	var err error
	once.Do(func() {
		node, err = snowflake.NewNode(nodeID)
	})
	return err
}

// NextID generates a new Snowflake ID. IDs from one node increase
// monotonically, so ordering by ID follows creation order.
func NextID() int64 {
	_ = Initialize(1)
	return node.Generate().Int64()
}
