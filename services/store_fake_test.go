package services

import (
	"bytes"
	"context"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"gorm.io/gorm"

	"github.com/haileamlak-bekele/merchdelivery-api/models"
	"github.com/haileamlak-bekele/merchdelivery-api/repository"
)

// fakeStore is an in-memory repository.Store. Atomically serializes on a
// mutex and restores a deep snapshot on error, mirroring the rollback
// semantics of the real transactional store.
type fakeStore struct {
	mu    *sync.Mutex
	owner *uint64 // goroutine id currently inside Atomically, 0 if none
	data  *fakeData
	inTx  bool
}

// gid returns the current goroutine's id so lock() can tell whether the
// caller already holds the transaction mutex (the real store lets
// non-transactional reads proceed during a transaction).
func gid() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	fields := bytes.Fields(buf[:n])
	id, _ := strconv.ParseUint(string(fields[1]), 10, 64)
	return id
}

type fakeData struct {
	users     map[string]models.User
	merchants map[uint]models.Merchant
	products  map[uint]models.Product
	carts     map[uint]models.Cart
	orders    map[uint]models.Order
	accounts  map[uint]models.PaymentAccount
	txns      []models.PaymentTransaction
	nextID    uint

	failOrderCreate bool // injected persistence failure
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		mu:    &sync.Mutex{},
		owner: new(uint64),
		data: &fakeData{
			users:     map[string]models.User{},
			merchants: map[uint]models.Merchant{},
			products:  map[uint]models.Product{},
			carts:     map[uint]models.Cart{},
			orders:    map[uint]models.Order{},
			accounts:  map[uint]models.PaymentAccount{},
		},
	}
}

func (d *fakeData) clone() *fakeData {
	c := &fakeData{
		users:           make(map[string]models.User, len(d.users)),
		merchants:       make(map[uint]models.Merchant, len(d.merchants)),
		products:        make(map[uint]models.Product, len(d.products)),
		carts:           make(map[uint]models.Cart, len(d.carts)),
		orders:          make(map[uint]models.Order, len(d.orders)),
		accounts:        make(map[uint]models.PaymentAccount, len(d.accounts)),
		txns:            append([]models.PaymentTransaction(nil), d.txns...),
		nextID:          d.nextID,
		failOrderCreate: d.failOrderCreate,
	}
	for k, v := range d.users {
		c.users[k] = v
	}
	for k, v := range d.merchants {
		c.merchants[k] = v
	}
	for k, v := range d.products {
		c.products[k] = v
	}
	for k, v := range d.carts {
		v.Items = append([]models.CartItem(nil), v.Items...)
		c.carts[k] = v
	}
	for k, v := range d.orders {
		c.orders[k] = cloneOrder(v)
	}
	for k, v := range d.accounts {
		c.accounts[k] = v
	}
	return c
}

func cloneOrder(o models.Order) models.Order {
	o.Items = append([]models.OrderItem(nil), o.Items...)
	if o.DspID != nil {
		id := *o.DspID
		o.DspID = &id
	}
	return o
}

func (s *fakeStore) lock() func() {
	if s.inTx || atomic.LoadUint64(s.owner) == gid() {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *fakeStore) id() uint {
	s.data.nextID++
	return s.data.nextID
}

func (s *fakeStore) Atomically(_ context.Context, fn func(repository.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	s.mu.Lock()
	atomic.StoreUint64(s.owner, gid())
	defer func() {
		atomic.StoreUint64(s.owner, 0)
		s.mu.Unlock()
	}()
	snap := s.data.clone()
	if err := fn(&fakeStore{mu: s.mu, owner: s.owner, data: s.data, inTx: true}); err != nil {
		*s.data = *snap
		return err
	}
	return nil
}

func (s *fakeStore) Users() repository.UserRepository               { return fakeUserRepo{s} }
func (s *fakeStore) Merchants() repository.MerchantRepository       { return fakeMerchantRepo{s} }
func (s *fakeStore) Products() repository.ProductRepository         { return fakeProductRepo{s} }
func (s *fakeStore) Carts() repository.CartRepository               { return fakeCartRepo{s} }
func (s *fakeStore) Orders() repository.OrderRepository             { return fakeOrderRepo{s} }
func (s *fakeStore) Accounts() repository.AccountRepository         { return fakeAccountRepo{s} }
func (s *fakeStore) Transactions() repository.TransactionRepository { return fakeTxnRepo{s} }

// ---- users ----

type fakeUserRepo struct{ s *fakeStore }

func (r fakeUserRepo) Create(_ context.Context, u *models.User) error {
	defer r.s.lock()()
	r.s.data.users[u.ID] = *u
	return nil
}

func (r fakeUserRepo) Save(_ context.Context, u *models.User) error {
	defer r.s.lock()()
	r.s.data.users[u.ID] = *u
	return nil
}

func (r fakeUserRepo) Delete(_ context.Context, id string) error {
	defer r.s.lock()()
	delete(r.s.data.users, id)
	return nil
}

func (r fakeUserRepo) FindByID(_ context.Context, id string) (*models.User, error) {
	defer r.s.lock()()
	u, ok := r.s.data.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

func (r fakeUserRepo) FindPendingApproval(_ context.Context) ([]models.User, error) {
	defer r.s.lock()()
	var out []models.User
	for _, u := range r.s.data.users {
		if !u.Approved && (u.Role == models.RoleMerchant || u.Role == models.RoleDSP) {
			out = append(out, u)
		}
	}
	return out, nil
}

// ---- merchants ----

type fakeMerchantRepo struct{ s *fakeStore }

func (r fakeMerchantRepo) Create(_ context.Context, m *models.Merchant) error {
	defer r.s.lock()()
	if m.ID == 0 {
		m.ID = r.s.id()
	}
	r.s.data.merchants[m.ID] = *m
	return nil
}

func (r fakeMerchantRepo) FindByID(_ context.Context, id uint) (*models.Merchant, error) {
	defer r.s.lock()()
	m, ok := r.s.data.merchants[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &m, nil
}

func (r fakeMerchantRepo) FindByUser(_ context.Context, userID string) (*models.Merchant, error) {
	defer r.s.lock()()
	for _, m := range r.s.data.merchants {
		if m.UserID == userID {
			return &m, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// ---- products ----

type fakeProductRepo struct{ s *fakeStore }

func (r fakeProductRepo) Create(_ context.Context, p *models.Product) error {
	defer r.s.lock()()
	if p.ID == 0 {
		p.ID = r.s.id()
	}
	r.s.data.products[p.ID] = *p
	return nil
}

func (r fakeProductRepo) Save(_ context.Context, p *models.Product) error {
	defer r.s.lock()()
	r.s.data.products[p.ID] = *p
	return nil
}

func (r fakeProductRepo) FindByID(_ context.Context, id uint) (*models.Product, error) {
	defer r.s.lock()()
	p, ok := r.s.data.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func (r fakeProductRepo) FindByIDForUpdate(ctx context.Context, id uint) (*models.Product, error) {
	return r.FindByID(ctx, id)
}

func (r fakeProductRepo) FindByMerchant(_ context.Context, merchantID uint) ([]models.Product, error) {
	defer r.s.lock()()
	var out []models.Product
	for _, p := range r.s.data.products {
		if p.MerchantID == merchantID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r fakeProductRepo) DecrementStock(_ context.Context, id uint, qty int) (bool, error) {
	defer r.s.lock()()
	p, ok := r.s.data.products[id]
	if !ok || p.Stock < qty {
		return false, nil
	}
	p.Stock -= qty
	r.s.data.products[id] = p
	return true, nil
}

// ---- carts ----

type fakeCartRepo struct{ s *fakeStore }

func (r fakeCartRepo) FindByCustomer(_ context.Context, customerID string) (*models.Cart, error) {
	defer r.s.lock()()
	for _, c := range r.s.data.carts {
		if c.CustomerID == customerID {
			c.Items = append([]models.CartItem(nil), c.Items...)
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r fakeCartRepo) FindOrCreateByCustomer(ctx context.Context, customerID string) (*models.Cart, error) {
	if cart, err := r.FindByCustomer(ctx, customerID); err == nil {
		return cart, nil
	}
	defer r.s.lock()()
	cart := models.Cart{CartID: r.s.id(), CustomerID: customerID}
	r.s.data.carts[cart.CartID] = cart
	return &cart, nil
}

func (r fakeCartRepo) AddItem(_ context.Context, cartID, productID uint, qty int) (*models.CartItem, error) {
	defer r.s.lock()()
	cart, ok := r.s.data.carts[cartID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			cart.Items[i].Quantity += qty
			cart.Items[i].AddedAt = time.Now()
			r.s.data.carts[cartID] = cart
			item := cart.Items[i]
			return &item, nil
		}
	}
	item := models.CartItem{ID: r.s.id(), CartID: cartID, ProductID: productID, Quantity: qty, AddedAt: time.Now()}
	cart.Items = append(cart.Items, item)
	r.s.data.carts[cartID] = cart
	return &item, nil
}

func (r fakeCartRepo) RemoveItem(_ context.Context, cartID, productID uint) error {
	defer r.s.lock()()
	cart, ok := r.s.data.carts[cartID]
	if !ok {
		return nil
	}
	items := cart.Items[:0]
	for _, it := range cart.Items {
		if it.ProductID != productID {
			items = append(items, it)
		}
	}
	cart.Items = items
	r.s.data.carts[cartID] = cart
	return nil
}

func (r fakeCartRepo) ClearItems(_ context.Context, cartID uint) error {
	defer r.s.lock()()
	cart, ok := r.s.data.carts[cartID]
	if !ok {
		return nil
	}
	cart.Items = nil
	r.s.data.carts[cartID] = cart
	return nil
}

// ---- orders ----

type fakeOrderRepo struct{ s *fakeStore }

func (r fakeOrderRepo) Create(_ context.Context, o *models.Order) error {
	defer r.s.lock()()
	if r.s.data.failOrderCreate {
		return gorm.ErrInvalidTransaction
	}
	if o.ID == 0 {
		o.ID = r.s.id()
	}
	for i := range o.Items {
		o.Items[i].OrderID = o.ID
	}
	o.CreatedAt = time.Now()
	r.s.data.orders[o.ID] = cloneOrder(*o)
	return nil
}

func (r fakeOrderRepo) Save(_ context.Context, o *models.Order) error {
	defer r.s.lock()()
	if _, ok := r.s.data.orders[o.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.s.data.orders[o.ID] = cloneOrder(*o)
	return nil
}

func (r fakeOrderRepo) FindByID(_ context.Context, id uint) (*models.Order, error) {
	defer r.s.lock()()
	o, ok := r.s.data.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	o = cloneOrder(o)
	return &o, nil
}

func (r fakeOrderRepo) FindByIDForUpdate(ctx context.Context, id uint) (*models.Order, error) {
	return r.FindByID(ctx, id)
}

func (r fakeOrderRepo) FindByCustomer(_ context.Context, customerID string) ([]models.Order, error) {
	defer r.s.lock()()
	var out []models.Order
	for _, o := range r.s.data.orders {
		if o.CustomerID == customerID {
			out = append(out, cloneOrder(o))
		}
	}
	return out, nil
}

func (r fakeOrderRepo) FindByDsp(_ context.Context, dspID string) ([]models.Order, error) {
	defer r.s.lock()()
	var out []models.Order
	for _, o := range r.s.data.orders {
		if o.DspID != nil && *o.DspID == dspID {
			out = append(out, cloneOrder(o))
		}
	}
	return out, nil
}

func (r fakeOrderRepo) FindAll(_ context.Context) ([]models.Order, error) {
	defer r.s.lock()()
	var out []models.Order
	for _, o := range r.s.data.orders {
		out = append(out, cloneOrder(o))
	}
	return out, nil
}

// ---- accounts ----

type fakeAccountRepo struct{ s *fakeStore }

func (r fakeAccountRepo) Create(_ context.Context, a *models.PaymentAccount) error {
	defer r.s.lock()()
	if a.ID == 0 {
		a.ID = r.s.id()
	}
	a.CreatedAt = time.Now()
	r.s.data.accounts[a.ID] = *a
	return nil
}

func (r fakeAccountRepo) Save(_ context.Context, a *models.PaymentAccount) error {
	defer r.s.lock()()
	r.s.data.accounts[a.ID] = *a
	return nil
}

func (r fakeAccountRepo) FindByID(_ context.Context, id uint) (*models.PaymentAccount, error) {
	defer r.s.lock()()
	a, ok := r.s.data.accounts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &a, nil
}

func (r fakeAccountRepo) FindByIDForUpdate(ctx context.Context, id uint) (*models.PaymentAccount, error) {
	return r.FindByID(ctx, id)
}

func (r fakeAccountRepo) FindByOwner(_ context.Context, userID string, accountType models.AccountType) (*models.PaymentAccount, error) {
	defer r.s.lock()()
	for _, a := range r.s.data.accounts {
		if a.UserID == userID && a.Type == accountType {
			return &a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r fakeAccountRepo) FindFirstByUser(_ context.Context, userID string) (*models.PaymentAccount, error) {
	defer r.s.lock()()
	var found *models.PaymentAccount
	for _, a := range r.s.data.accounts {
		a := a
		if a.UserID == userID && (found == nil || a.ID < found.ID) {
			found = &a
		}
	}
	if found == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return found, nil
}

// ---- transactions ----

type fakeTxnRepo struct{ s *fakeStore }

func (r fakeTxnRepo) Append(_ context.Context, txn *models.PaymentTransaction) error {
	defer r.s.lock()()
	txn.ID = r.s.id()
	txn.CreatedAt = time.Now()
	r.s.data.txns = append(r.s.data.txns, *txn)
	return nil
}

func (r fakeTxnRepo) FindByAccount(_ context.Context, accountID uint) ([]models.PaymentTransaction, error) {
	defer r.s.lock()()
	var out []models.PaymentTransaction
	for i := len(r.s.data.txns) - 1; i >= 0; i-- { // most recent first
		if r.s.data.txns[i].AccountID == accountID {
			out = append(out, r.s.data.txns[i])
		}
	}
	return out, nil
}
