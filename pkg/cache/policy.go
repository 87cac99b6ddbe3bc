package cache

import "time"

// Policy names a namespace and the TTL applied to everything stored in it.
type Policy struct {
	Namespace string
	TTL       time.Duration
}

// Single-entity namespaces are evicted per key; collection namespaces
// (by-user, by-order, all) are flushed whole whenever a member changes.
var (
	BasketItem   = Policy{Namespace: "basket-item", TTL: 120 * time.Second}
	BasketByUser = Policy{Namespace: "basket-by-user", TTL: 120 * time.Second}

	Order        = Policy{Namespace: "order", TTL: 600 * time.Second}
	OrdersByUser = Policy{Namespace: "orders-by-user", TTL: 300 * time.Second}
	OrdersAll    = Policy{Namespace: "orders-all", TTL: 300 * time.Second}

	Invoice         = Policy{Namespace: "invoice", TTL: 1800 * time.Second}
	InvoicesByUser  = Policy{Namespace: "invoices-by-user", TTL: 600 * time.Second}
	InvoicesByOrder = Policy{Namespace: "invoices-by-order", TTL: 1800 * time.Second}
	InvoicesAll     = Policy{Namespace: "invoices-all", TTL: 600 * time.Second}

	Product     = Policy{Namespace: "product", TTL: 600 * time.Second}
	ProductsAll = Policy{Namespace: "products-all", TTL: 300 * time.Second}

	WishlistByUser = Policy{Namespace: "wishlist-by-user", TTL: 300 * time.Second}

	User     = Policy{Namespace: "user", TTL: 600 * time.Second}
	UsersAll = Policy{Namespace: "users-all", TTL: 300 * time.Second}
)

// AllKey is the single key used by "all" collection namespaces.
const AllKey = "all"
