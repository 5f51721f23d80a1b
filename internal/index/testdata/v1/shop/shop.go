package shop

import "fmt"

const MaxItems = 64

var registry = map[string]*Product{}

// Product is something on sale.
type Product struct {
	Name  string
	Price int
	Tags  []string
}

// Cart collects products for one customer.
type Cart struct {
	items []*Product
	owner string
}

// Pricer computes cart totals.
type Pricer interface {
	Total(c *Cart) int
}

func NewCart(owner string) *Cart {
	return &Cart{owner: owner}
}

func (c *Cart) Add(p *Product) error {
	if len(c.items) >= MaxItems {
		return fmt.Errorf("cart of %s is full", c.owner)
	}
	c.items = append(c.items, p)
	return nil
}

func (c *Cart) Total() int {
	sum := 0
	for _, p := range c.items {
		sum += p.Price
	}
	return sum
}

func Lookup(name string) *Product {
	return registry[name]
}
