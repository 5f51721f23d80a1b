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

// Basket collects products for one customer.
type Basket struct {
	entries []*Product
	owner   string
}

// Pricer computes basket totals.
type Pricer interface {
	Total(b *Basket) int
}

func NewBasket(owner string) *Basket {
	return &Basket{owner: owner}
}

func (b *Basket) Put(p *Product) error {
	if len(b.entries) >= MaxItems {
		return fmt.Errorf("cart of %s is full", b.owner)
	}
	b.entries = append(b.entries, p)
	return nil
}

func (b *Basket) Total() int {
	sum := 0
	for _, p := range b.entries {
		sum += p.Price
	}
	return sum
}

func Lookup(name string) *Product {
	return registry[name]
}
