package catalog

import "gestor/internal"

// Index keys a product slice by code for reconciliation. Codes match
// exactly, case-sensitive: "abc123" and "ABC123" are different products.
type Index struct {
	products []internal.Product
	byCode   map[string]int
}

func BuildIndex(products []internal.Product) *Index {
	idx := &Index{
		products: make([]internal.Product, len(products)),
		byCode:   make(map[string]int, len(products)),
	}
	copy(idx.products, products)
	for i, p := range idx.products {
		if _, dup := idx.byCode[p.Code]; !dup {
			idx.byCode[p.Code] = i
		}
	}
	return idx
}

func (idx *Index) Lookup(code string) (internal.Product, bool) {
	i, ok := idx.byCode[code]
	if !ok {
		return internal.Product{}, false
	}
	return idx.products[i], true
}

func (idx *Index) Put(p internal.Product) {
	if i, ok := idx.byCode[p.Code]; ok {
		idx.products[i] = p
		return
	}
	idx.products = append(idx.products, p)
	idx.byCode[p.Code] = len(idx.products) - 1
}

// Products returns the catalog in stable order: existing entries first,
// then inserts in arrival order.
func (idx *Index) Products() []internal.Product {
	out := make([]internal.Product, len(idx.products))
	copy(out, idx.products)
	return out
}
