package config

import (
	"log"
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	node     *snowflake.Node
	nodeOnce sync.Once
)

// NextId returns a time ordered unique id. NODE_ID (0-1023) must differ per running instance.
func NextId() snowflake.ID {
	nodeOnce.Do(func() {
		n, err := snowflake.NewNode(int64(intFromEnv("NODE_ID", 1)))
		if err != nil {
			log.Printf("invalid NODE_ID, falling back to node 1: %v", err)
			n, _ = snowflake.NewNode(1)
		}
		node = n
	})
	return node.Generate()
}
