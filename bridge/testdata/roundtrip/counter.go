package counter

type Counter struct {
	n uint64
}

func NewCounter() *Counter {
	return &Counter{}
}

func (c *Counter) Add(n uint64) uint64 {
	c.n += n
	return c.n
}

func (c *Counter) Finish() uint64 {
	return c.n
}
