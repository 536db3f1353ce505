package confirmation

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	lru "github.com/hashicorp/golang-lru/v2"
)

// headerCache keeps the parent links resolved by previous ancestor walks. Headers are
// immutable so a link never goes stale, it can only stop being canonical.
type headerCache struct {
	links *lru.Cache[common.Hash, headerLink]
}

func newHeaderCache(size int) (*headerCache, error) {
	links, err := lru.New[common.Hash, headerLink](size)
	if err != nil {
		return nil, fmt.Errorf("error creating header cache: %w", err)
	}
	return &headerCache{links: links}, nil
}

func (c *headerCache) get(hash common.Hash) (headerLink, bool) {
	return c.links.Get(hash)
}

func (c *headerCache) add(link headerLink) {
	c.links.Add(link.Hash, link)
}

func (c *headerCache) len() int {
	return c.links.Len()
}

// PruneBelow removes the links of headers under height
func (c *headerCache) PruneBelow(height uint64) int {
	removed := 0
	for _, hash := range c.links.Keys() {
		link, ok := c.links.Peek(hash)
		if ok && link.Number < height {
			c.links.Remove(hash)
			removed++
		}
	}
	return removed
}
