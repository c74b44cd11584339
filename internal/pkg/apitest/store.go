package apitest

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"storefront/internal/pkg/model"
)

// Store is the in-memory data behind the fake API.
type Store struct {
	mu        sync.RWMutex
	orders    []model.Order
	products  []model.Product
	inventory []model.InventoryItem
	// users maps mobile number to bcrypt hash.
	users map[string][]byte
	names map[string]string
	seq   int
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{users: map[string][]byte{}, names: map[string]string{}}
}

// Seeded returns a store with a small catalogue, order history and stock
// list.
func Seeded() *Store {
	s := NewStore()
	colors := []string{"red", "blue", "green", "black"}
	sizes := []string{"S", "M", "L", "XL"}
	categories := []string{"Saree", "Kurta", "Lehenga"}
	for i := 1; i <= 24; i++ {
		status := "active"
		if i%6 == 0 {
			status = "inactive"
		}
		name := fmt.Sprintf("%s %02d", categories[i%len(categories)], i)
		s.products = append(s.products, model.Product{
			ID:       fmt.Sprintf("p%03d", i),
			Name:     name,
			Slug:     slugify(name),
			Category: strings.ToLower(categories[i%len(categories)]),
			Price:    float64(500 + i*125),
			Stock:    (i * 7) % 23,
			Status:   status,
			Colors:   []string{colors[i%len(colors)]},
			Sizes:    []string{sizes[i%len(sizes)]},
		})
	}
	statuses := []struct{ status, fulfillment string }{
		{"Delivered", "Delivered"},
		{"in process", "inprocess"},
		{"Cancelled", "canceled"},
		{"Processing", "shipped"},
	}
	for i := 1; i <= 23; i++ {
		p := s.products[(i*5)%len(s.products)]
		st := statuses[i%len(statuses)]
		qty := 1 + i%3
		s.orders = append(s.orders, model.Order{
			ID: fmt.Sprintf("o%03d", i),
			Items: []model.OrderItem{{
				ProductID:   p.ID,
				ProductName: p.Name,
				Size:        p.Sizes[0],
				Quantity:    qty,
				Price:       p.Price,
			}},
			Status:      st.status,
			Fulfillment: st.fulfillment,
			Total:       p.Price * float64(qty),
			CreatedAt:   fmt.Sprintf("2025-03-%02dT10:00:00Z", i),
		})
	}
	s.rebuildInventory()
	return s
}

// AddUser registers a customer with a bcrypt hashed password.
func (s *Store) AddUser(name, mobile, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[mobile]; ok {
		return errUserExists
	}
	s.users[mobile] = hash
	s.names[mobile] = name
	return nil
}

// CheckPassword reports whether password matches the stored hash.
func (s *Store) CheckPassword(mobile, password string) bool {
	s.mu.RLock()
	hash, ok := s.users[mobile]
	s.mu.RUnlock()
	return ok && bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil
}

func (s *Store) hasUser(mobile string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.users[mobile]
	return ok
}

func (s *Store) setPassword(mobile, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[mobile]; !ok {
		return errNoUser
	}
	s.users[mobile] = hash
	return nil
}

// Orders returns a copy of the order history.
func (s *Store) Orders() []model.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Order(nil), s.orders...)
}

func (s *Store) Products() []model.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Product(nil), s.products...)
}

func (s *Store) Inventory() []model.InventoryItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.InventoryItem(nil), s.inventory...)
}

func (s *Store) product(match func(model.Product) bool) (model.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.products {
		if match(p) {
			return p, true
		}
	}
	return model.Product{}, false
}

func (s *Store) order(id string) (model.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.orders {
		if o.ID == id {
			return o, true
		}
	}
	return model.Order{}, false
}

func (s *Store) addProduct(p model.Product) model.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		s.seq++
		p.ID = fmt.Sprintf("p%03d", 100+s.seq)
	}
	if p.Slug == "" {
		p.Slug = slugify(p.Name)
	}
	if p.Status == "" {
		p.Status = "draft"
	}
	s.products = append(s.products, p)
	s.rebuildInventoryLocked()
	return p
}

// updateProduct applies fn to product id under the write lock.
func (s *Store) updateProduct(id string, fn func(*model.Product)) (model.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.products {
		if s.products[i].ID == id {
			fn(&s.products[i])
			s.products[i].ID = id
			s.rebuildInventoryLocked()
			return s.products[i], true
		}
	}
	return model.Product{}, false
}

func (s *Store) deleteProduct(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.products {
		if s.products[i].ID == id {
			s.products = append(s.products[:i], s.products[i+1:]...)
			s.rebuildInventoryLocked()
			return true
		}
	}
	return false
}

func (s *Store) userCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

func (s *Store) rebuildInventory() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rebuildInventoryLocked()
}

// 库存行由商品派生，每个商品一行，取第一个尺码和颜色
func (s *Store) rebuildInventoryLocked() {
	s.inventory = s.inventory[:0]
	for _, p := range s.products {
		size, color := first(p.Sizes), first(p.Colors)
		s.inventory = append(s.inventory, model.InventoryItem{
			ProductID: p.ID,
			Name:      p.Name,
			SKU:       strings.ToUpper(strings.Join(nonEmpty(p.ID, size, color), "-")),
			Size:      size,
			Color:     color,
			Stock:     p.Stock,
			Threshold: 5,
		})
	}
	sort.SliceStable(s.inventory, func(i, j int) bool { return s.inventory[i].Stock < s.inventory[j].Stock })
}

func first(v []string) string {
	if len(v) == 0 {
		return ""
	}
	return v[0]
}

func nonEmpty(parts ...string) []string {
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func slugify(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "-")
}
