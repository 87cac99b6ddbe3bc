package services_test

import (
	"context"
	"sort"
	"sync"

	"github.com/doguaydn/microservices-e-commerce/pkg/cache"
	"github.com/doguaydn/microservices-e-commerce/services/basket-service/clients"
	"github.com/doguaydn/microservices-e-commerce/services/basket-service/models"
	"github.com/doguaydn/microservices-e-commerce/services/basket-service/services"
	apperrors "github.com/doguaydn/microservices-e-commerce/services/common/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ---- basket repository ----

type fakeBasketRepo struct {
	mu        sync.Mutex
	items     map[uint]models.BasketItem
	nextID    uint
	finds     int
	deleteErr error
}

func newFakeBasketRepo(items ...models.BasketItem) *fakeBasketRepo {
	r := &fakeBasketRepo{items: map[uint]models.BasketItem{}}
	for _, it := range items {
		r.items[it.ID] = it
		if it.ID > r.nextID {
			r.nextID = it.ID
		}
	}
	return r
}

func (r *fakeBasketRepo) Create(_ context.Context, item *models.BasketItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	item.ID = r.nextID
	r.items[item.ID] = *item
	return nil
}

func (r *fakeBasketRepo) FindByID(_ context.Context, id uint) (*models.BasketItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finds++
	it, ok := r.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &it, nil
}

func (r *fakeBasketRepo) sorted(keep func(models.BasketItem) bool) []models.BasketItem {
	out := []models.BasketItem{}
	for _, it := range r.items {
		if keep(it) {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *fakeBasketRepo) FindAll(_ context.Context) ([]models.BasketItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sorted(func(models.BasketItem) bool { return true }), nil
}

func (r *fakeBasketRepo) FindByUserID(_ context.Context, userID uint) ([]models.BasketItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finds++
	return r.sorted(func(it models.BasketItem) bool { return it.UserID == userID }), nil
}

func (r *fakeBasketRepo) Update(_ context.Context, item *models.BasketItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[item.ID] = *item
	return nil
}

func (r *fakeBasketRepo) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
	return nil
}

func (r *fakeBasketRepo) DeleteByIDs(ctx context.Context, ids []uint) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteErr != nil {
		return r.deleteErr
	}
	for _, id := range ids {
		delete(r.items, id)
	}
	return nil
}

func (r *fakeBasketRepo) count(userID uint) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sorted(func(it models.BasketItem) bool { return it.UserID == userID }))
}

// ---- order repository ----

type fakeOrderRepo struct {
	mu        sync.Mutex
	orders    map[string]models.Order
	nextID    uint
	finds     int
	createErr error
}

func newFakeOrderRepo(orders ...models.Order) *fakeOrderRepo {
	r := &fakeOrderRepo{orders: map[string]models.Order{}}
	for _, o := range orders {
		r.nextID++
		o.ID = r.nextID
		r.orders[o.OrderID] = o
	}
	return r
}

func (r *fakeOrderRepo) Create(_ context.Context, o *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	if _, dup := r.orders[o.OrderID]; dup {
		return gorm.ErrDuplicatedKey
	}
	r.nextID++
	o.ID = r.nextID
	r.orders[o.OrderID] = *o
	return nil
}

func (r *fakeOrderRepo) FindByOrderID(_ context.Context, orderID string) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finds++
	o, ok := r.orders[orderID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &o, nil
}

func (r *fakeOrderRepo) filter(keep func(models.Order) bool) []models.Order {
	out := []models.Order{}
	for _, o := range r.orders {
		if keep(o) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *fakeOrderRepo) FindByUserID(_ context.Context, userID uint) ([]models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finds++
	return r.filter(func(o models.Order) bool { return o.UserID == userID }), nil
}

func (r *fakeOrderRepo) FindAll(_ context.Context) ([]models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finds++
	return r.filter(func(models.Order) bool { return true }), nil
}

func (r *fakeOrderRepo) FindByStatus(_ context.Context, st models.OrderStatus) ([]models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.filter(func(o models.Order) bool { return o.Status == st }), nil
}

func (r *fakeOrderRepo) CountByStatus(ctx context.Context, st models.OrderStatus) (int64, error) {
	orders, _ := r.FindByStatus(ctx, st)
	return int64(len(orders)), nil
}

func (r *fakeOrderRepo) Totals(_ context.Context) (int64, decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sum := decimal.Zero
	for _, o := range r.orders {
		sum = sum.Add(o.TotalAmount)
	}
	return int64(len(r.orders)), sum, nil
}

func (r *fakeOrderRepo) UpdateStatus(_ context.Context, orderID string, from, to models.OrderStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[orderID]
	if !ok || o.Status != from {
		return false, nil
	}
	o.Status = to
	r.orders[orderID] = o
	return true, nil
}

func (r *fakeOrderRepo) all() []models.Order {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.filter(func(models.Order) bool { return true })
}

// ---- wishlist repository ----

type fakeWishlistRepo struct {
	mu     sync.Mutex
	items  map[uint]models.WishlistItem
	nextID uint
	finds  int
}

func newFakeWishlistRepo() *fakeWishlistRepo {
	return &fakeWishlistRepo{items: map[uint]models.WishlistItem{}}
}

func (r *fakeWishlistRepo) Create(_ context.Context, item *models.WishlistItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	item.ID = r.nextID
	r.items[item.ID] = *item
	return nil
}

func (r *fakeWishlistRepo) FindByID(_ context.Context, id uint) (*models.WishlistItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	it, ok := r.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &it, nil
}

func (r *fakeWishlistRepo) FindByUserAndProduct(_ context.Context, userID, productID uint) (*models.WishlistItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, it := range r.items {
		if it.UserID == userID && it.ProductID == productID {
			return &it, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeWishlistRepo) FindByUserID(_ context.Context, userID uint) ([]models.WishlistItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finds++
	out := []models.WishlistItem{}
	for id := uint(1); id <= r.nextID; id++ {
		if it, ok := r.items[id]; ok && it.UserID == userID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (r *fakeWishlistRepo) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
	return nil
}

// ---- stock client ----

type fakeStock struct {
	mu          sync.Mutex
	products    map[uint]clients.Product
	unavailable bool
	// failReduce makes ReduceStock fail for the given product.
	failReduce map[uint]error
	reduced    map[uint]int
	reduceCall int
	// afterReduce runs after every successful decrement.
	afterReduce func()
}

func newFakeStock(products ...clients.Product) *fakeStock {
	s := &fakeStock{
		products:   map[uint]clients.Product{},
		failReduce: map[uint]error{},
		reduced:    map[uint]int{},
	}
	for _, p := range products {
		s.products[p.ID] = p
	}
	return s
}

func (s *fakeStock) Exists(ctx context.Context, id uint) (bool, error) {
	_, err := s.GetProduct(ctx, id)
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *fakeStock) GetProduct(_ context.Context, id uint) (*clients.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.unavailable {
		return nil, apperrors.Unavailable("stock-service is not available", nil)
	}
	p, ok := s.products[id]
	if !ok {
		return nil, apperrors.NotFound("Product not found with id: %d", id)
	}
	return &p, nil
}

func (s *fakeStock) ReduceStock(ctx context.Context, id uint, qty int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reduceCall++
	if err := s.failReduce[id]; err != nil {
		return err
	}
	p, ok := s.products[id]
	if !ok {
		return apperrors.NotFound("Product not found with id: %d", id)
	}
	if p.Quantity < qty {
		return apperrors.Conflict("Insufficient stock for product %d", id)
	}
	p.Quantity -= qty
	s.products[id] = p
	s.reduced[id] += qty
	if s.afterReduce != nil {
		s.afterReduce()
	}
	return nil
}

func (s *fakeStock) quantity(id uint) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products[id].Quantity
}

// ---- identity client ----

type fakeIdentity struct {
	users       map[uint]clients.User
	unavailable bool
	calls       int
}

func newFakeIdentity(users ...clients.User) *fakeIdentity {
	f := &fakeIdentity{users: map[uint]clients.User{}}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeIdentity) Exists(ctx context.Context, id uint) (bool, error) {
	_, err := f.GetUser(ctx, id)
	if apperrors.KindOf(err) == apperrors.KindNotFound {
		return false, nil
	}
	return err == nil, err
}

func (f *fakeIdentity) GetUser(_ context.Context, id uint) (*clients.User, error) {
	f.calls++
	if f.unavailable {
		return nil, apperrors.Unavailable("user-service is not available", nil)
	}
	u, ok := f.users[id]
	if !ok {
		return nil, apperrors.NotFound("User not found with id: %d", id)
	}
	return &u, nil
}

// ---- helpers ----

func newCaches() (services.Caches, *cache.MemoryStore) {
	store := cache.NewMemoryStore()
	return services.NewCaches(store), store
}

func price(s string) decimal.Decimal { return decimal.RequireFromString(s) }
