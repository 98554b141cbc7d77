package utils

import (
	"log"
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	nodeOnce sync.Once
	node     *snowflake.Node
)

// NewID returns a time-ordered record id as a decimal string.
func NewID() string {
	nodeOnce.Do(func() {
		var err error
		node, err = snowflake.NewNode(1)
		if err != nil {
			log.Fatal("Failed to start id generator:", err)
		}
	})
	return node.Generate().String()
}
