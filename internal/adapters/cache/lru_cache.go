package cache

import (
	"sync"

	domain "github.com/metkashop/metka-miniapp/internal/domain/delivery"
)

type lruNode struct {
	key   int
	value []domain.PickupPoint
	prev  *lruNode
	next  *lruNode
}

// LRUCache — потокобезопасный LRU по коду города.
type LRUCache struct {
	mu       sync.Mutex
	cache    map[int]*lruNode
	head     *lruNode // наименее актуальная (LRA)
	tail     *lruNode // наиболее актуальная (MRU)
	capacity int
}

func NewLRUCache(capacity int) *LRUCache {
	if capacity <= 0 {
		capacity = 1
	}
	return &LRUCache{
		cache:    make(map[int]*lruNode, capacity),
		capacity: capacity,
	}
}

// Set: вставить/обновить и пометить как MRU.
func (c *LRUCache) Set(cityCode int, points []domain.PickupPoint) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if nd, ok := c.cache[cityCode]; ok {
		nd.value = points
		c.moveToTail(nd)
		return nil
	}

	if len(c.cache) >= c.capacity {
		c.evictHead()
	}

	nd := &lruNode{key: cityCode, value: points}
	c.appendToTail(nd)
	c.cache[cityCode] = nd
	return nil
}

// Get: получить и пометить как MRU. На промах — ErrMiss.
func (c *LRUCache) Get(cityCode int) ([]domain.PickupPoint, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	nd, ok := c.cache[cityCode]
	if !ok {
		return nil, ErrMiss
	}
	c.moveToTail(nd)
	return nd.value, nil
}

func (c *LRUCache) Delete(cityCode int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	nd, ok := c.cache[cityCode]
	if !ok {
		return ErrMiss
	}
	c.unlink(nd)
	delete(c.cache, cityCode)
	return nil
}

func (c *LRUCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache = make(map[int]*lruNode, c.capacity)
	c.head = nil
	c.tail = nil
}

func (c *LRUCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.cache)
}
func (c *LRUCache) Cap() int { return c.capacity }

// ===== внутренняя работа со списком =====

func (c *LRUCache) appendToTail(nd *lruNode) {
	if c.tail == nil {
		c.head = nd
		c.tail = nd
		return
	}
	nd.prev = c.tail
	c.tail.next = nd
	c.tail = nd
}

func (c *LRUCache) moveToTail(nd *lruNode) {
	if nd == c.tail {
		return
	}
	c.unlink(nd)
	c.appendToTail(nd)
}

func (c *LRUCache) evictHead() {
	if c.head == nil {
		return
	}
	evicted := c.head
	c.unlink(evicted)
	delete(c.cache, evicted.key)
}

func (c *LRUCache) unlink(nd *lruNode) {
	if nd == nil {
		return
	}

	if nd.prev != nil {
		nd.prev.next = nd.next
	} else {
		c.head = nd.next
	}
	if nd.next != nil {
		nd.next.prev = nd.prev
	} else {
		c.tail = nd.prev
	}

	nd.prev = nil
	nd.next = nil
}
