package service

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mmeshcher/storefront-system/internal/lock"
	"github.com/mmeshcher/storefront-system/internal/model"
	"github.com/mmeshcher/storefront-system/internal/payment"
	"github.com/mmeshcher/storefront-system/internal/repository"
)

var errStorage = errors.New("storage unavailable")

// faultyRepo позволяет включать отказы отдельных операций хранилища.
type faultyRepo struct {
	*repository.MemoryRepository

	mu          sync.Mutex
	failProfile bool
	failCart    bool
	failAddress bool
	createCalls int
}

func (r *faultyRepo) set(fn func(r *faultyRepo)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(r)
}

func (r *faultyRepo) UpdateProfile(ctx context.Context, userID string, now time.Time, fn func(*model.UserProfile) error) (*model.UserProfile, error) {
	r.mu.Lock()
	fail := r.failProfile
	r.mu.Unlock()
	if fail {
		return nil, errStorage
	}
	return r.MemoryRepository.UpdateProfile(ctx, userID, now, fn)
}

func (r *faultyRepo) UpdateCart(ctx context.Context, userID string, now time.Time, fn func(*model.Cart) error) (*model.Cart, error) {
	r.mu.Lock()
	fail := r.failCart
	r.mu.Unlock()
	if fail {
		return nil, errStorage
	}
	return r.MemoryRepository.UpdateCart(ctx, userID, now, fn)
}

func (r *faultyRepo) GetAddress(ctx context.Context, id string) (*model.Address, error) {
	r.mu.Lock()
	fail := r.failAddress
	r.mu.Unlock()
	if fail {
		return nil, errStorage
	}
	return r.MemoryRepository.GetAddress(ctx, id)
}

func (r *faultyRepo) CreateOrder(ctx context.Context, o *model.Order) error {
	r.mu.Lock()
	r.createCalls++
	r.mu.Unlock()
	return r.MemoryRepository.CreateOrder(ctx, o)
}

func newTestService(t *testing.T) (*Service, *faultyRepo) {
	t.Helper()

	repo := &faultyRepo{
		MemoryRepository: repository.NewMemoryRepository([]model.Product{
			{ID: "A", Name: "Product A", Price: decimal.NewFromInt(10), Stock: 5},
			{ID: "B", Name: "Product B", Price: decimal.NewFromInt(5), Stock: 5},
		}),
	}
	svc := NewService(repo, nil, lock.NewKeyedMutex(), payment.NewProcessor(), zap.NewNop())
	return svc, repo
}

func fillCart(t *testing.T, svc *Service, userID string) {
	t.Helper()
	ctx := context.Background()

	_, err := svc.AddToCart(ctx, userID, "A", 2)
	require.NoError(t, err)
	_, err = svc.AddToCart(ctx, userID, "B", 1)
	require.NoError(t, err)
}

func validAddress(userID string) model.Address {
	return model.Address{
		UserID: userID, FullName: "Ann Lee", PhoneNumber: "+4712345678", StreetAddress: "Main 1",
		City: "Oslo", State: "Oslo", ZipCode: "0150", Country: "NO",
	}
}

func TestAddToCart_Validation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddToCart(ctx, "u1", "A", 0)
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = svc.AddToCart(ctx, "", "A", 1)
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = svc.AddToCart(ctx, "u1", "missing", 1)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestCartOperations(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	fillCart(t, svc, "u1")

	cart, err := svc.SaveForLater(ctx, "u1", "A")
	require.NoError(t, err)
	assert.True(t, cart.TotalPrice.Equal(decimal.NewFromInt(5)))
	require.Len(t, cart.SaveForLater, 1)

	_, err = svc.SaveForLater(ctx, "u1", "missing")
	assert.ErrorIs(t, err, model.ErrNotFound)

	cart, err = svc.MoveToCart(ctx, "u1", "A")
	require.NoError(t, err)
	assert.True(t, cart.TotalPrice.Equal(decimal.NewFromInt(25)))

	cart, err = svc.UpdateCartItem(ctx, "u1", "B", 0)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 1)

	cart, err = svc.ClearCart(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
}

func TestCartOperations_RequireProductID(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	ops := map[string]func(userID string) (*model.Cart, error){
		"remove": func(userID string) (*model.Cart, error) { return svc.RemoveFromCart(ctx, userID, "") },
		"update": func(userID string) (*model.Cart, error) { return svc.UpdateCartItem(ctx, userID, "", 3) },
		"save":   func(userID string) (*model.Cart, error) { return svc.SaveForLater(ctx, userID, "") },
		"move":   func(userID string) (*model.Cart, error) { return svc.MoveToCart(ctx, userID, "") },
		"unsave": func(userID string) (*model.Cart, error) { return svc.RemoveFromSaved(ctx, userID, "") },
		"add":    func(userID string) (*model.Cart, error) { return svc.AddToCart(ctx, userID, "", 1) },
	}

	fillCart(t, svc, "u1")
	before, err := repo.GetCart(ctx, "u1")
	require.NoError(t, err)

	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			_, err := op("u1")
			assert.ErrorIs(t, err, model.ErrValidation)

			after, err := repo.GetCart(ctx, "u1")
			require.NoError(t, err)
			assert.Equal(t, before.Version, after.Version)
			assert.Equal(t, before.UpdatedAt, after.UpdatedAt)
			assert.Len(t, after.Items, 2)

			_, err = op("fresh-user")
			assert.ErrorIs(t, err, model.ErrValidation)
			_, err = repo.GetCart(ctx, "fresh-user")
			assert.ErrorIs(t, err, model.ErrNotFound, "cart must not be created")
		})
	}
}

// cartBackends возвращает хранилища для проверки сериализации изменений корзины.
// Postgres подключается, только если задан TEST_DATABASE_URI.
func cartBackends(t *testing.T) map[string]Repository {
	t.Helper()

	res := map[string]Repository{
		"memory": repository.NewMemoryRepository(repository.DefaultProducts()),
	}

	if dsn := os.Getenv("TEST_DATABASE_URI"); dsn != "" {
		pg, err := repository.NewPostgresRepository(dsn)
		require.NoError(t, err)
		t.Cleanup(func() { _ = pg.Close() })
		res["postgres"] = pg
	}
	return res
}

func TestAddToCart_ConcurrentNoLostUpdates(t *testing.T) {
	const workers = 20
	product := repository.DefaultProducts()[2]

	for name, repo := range cartBackends(t) {
		t.Run(name, func(t *testing.T) {
			svc := NewService(repo, nil, lock.NewKeyedMutex(), payment.NewProcessor(), zap.NewNop())
			ctx := context.Background()
			user := "user-" + uuid.NewString()

			var wg sync.WaitGroup
			for i := 0; i < workers; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, err := svc.AddToCart(ctx, user, product.ID, 1)
					assert.NoError(t, err)
				}()
			}
			wg.Wait()

			cart, err := svc.GetCart(ctx, user)
			require.NoError(t, err)
			require.Len(t, cart.Items, 1)
			assert.Equal(t, workers, cart.Items[0].Quantity)
			assert.True(t, cart.TotalPrice.Equal(product.Price.Mul(decimal.NewFromInt(workers))),
				"total %s", cart.TotalPrice)
		})
	}
}

func TestCheckout_EmptyCart(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	_, err := svc.Checkout(ctx, CheckoutRequest{UserID: "u1"})
	assert.ErrorIs(t, err, model.ErrEmptyCart)

	_, err = svc.GetCart(ctx, "u1")
	require.NoError(t, err)
	_, err = svc.Checkout(ctx, CheckoutRequest{UserID: "u1", IdempotencyKey: "k"})
	assert.ErrorIs(t, err, model.ErrEmptyCart)

	orders, err := svc.GetOrders(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, orders)
	assert.Zero(t, repo.createCalls)
}

func TestCheckout_CreatesOrder(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	fillCart(t, svc, "u1")

	addr, err := svc.CreateAddress(ctx, validAddress("u1"))
	require.NoError(t, err)

	order, err := svc.Checkout(ctx, CheckoutRequest{UserID: "u1", AddressID: addr.ID, MethodType: model.MethodDebitCard})
	require.NoError(t, err)

	assert.True(t, order.TotalPrice.Equal(decimal.NewFromInt(25)))
	assert.Len(t, order.Items, 2)
	assert.Equal(t, model.OrderStatusCompleted, order.Status)
	assert.Equal(t, "debit_card", order.PaymentMethodLabel)
	assert.Equal(t, "Ann Lee", order.CustomerInfo.FullName)

	cart, err := svc.GetCart(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
	assert.True(t, cart.TotalPrice.IsZero())

	profile, err := svc.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, profile.TotalOrders)
	assert.True(t, profile.TotalSpent.Equal(decimal.NewFromInt(25)))
	assert.NotNil(t, profile.LastLogin)

	got, err := svc.GetOrder(ctx, "u1", order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)

	_, err = svc.GetOrder(ctx, "u2", order.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestCheckout_OrderIsIndependentOfCart(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	fillCart(t, svc, "u1")

	order, err := svc.Checkout(ctx, CheckoutRequest{UserID: "u1"})
	require.NoError(t, err)

	fillCart(t, svc, "u1")
	_, err = svc.UpdateCartItem(ctx, "u1", "A", 9)
	require.NoError(t, err)

	stored, err := svc.GetOrder(ctx, "u1", order.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Items[0].Quantity)
	assert.True(t, stored.TotalPrice.Equal(decimal.NewFromInt(25)))
}

func TestCheckout_SavedItemsSurvive(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	fillCart(t, svc, "u1")
	_, err := svc.SaveForLater(ctx, "u1", "B")
	require.NoError(t, err)

	order, err := svc.Checkout(ctx, CheckoutRequest{UserID: "u1"})
	require.NoError(t, err)
	assert.True(t, order.TotalPrice.Equal(decimal.NewFromInt(20)))

	cart, err := svc.GetCart(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	require.Len(t, cart.SaveForLater, 1)
	assert.Equal(t, "B", cart.SaveForLater[0].ProductID)
}

func TestCheckout_IdempotentReplay(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	fillCart(t, svc, "u1")

	req := CheckoutRequest{UserID: "u1", IdempotencyKey: "key-1"}
	first, err := svc.Checkout(ctx, req)
	require.NoError(t, err)

	second, err := svc.Checkout(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	orders, err := svc.GetOrders(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, orders, 1)

	profile, err := svc.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, profile.TotalOrders)
}

func TestCheckout_ReplayDoesNotClearNewItems(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	fillCart(t, svc, "u1")

	req := CheckoutRequest{UserID: "u1", IdempotencyKey: "key-1"}
	_, err := svc.Checkout(ctx, req)
	require.NoError(t, err)

	_, err = svc.AddToCart(ctx, "u1", "A", 1)
	require.NoError(t, err)

	_, err = svc.Checkout(ctx, req)
	require.NoError(t, err)

	cart, err := svc.GetCart(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 1, cart.Items[0].Quantity)
}

func TestCheckout_ConcurrentSameKey(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	fillCart(t, svc, "u1")

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		ids = map[string]bool{}
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			order, err := svc.Checkout(ctx, CheckoutRequest{UserID: "u1", IdempotencyKey: "same"})
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			ids[order.ID] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, ids, 1)
	orders, err := svc.GetOrders(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}

func TestCheckout_CartResetFailureIsTolerated(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	fillCart(t, svc, "u1")

	repo.set(func(r *faultyRepo) { r.failCart = true })
	first, err := svc.Checkout(ctx, CheckoutRequest{UserID: "u1"})
	require.NoError(t, err)

	cart, err := svc.GetCart(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, cart.IsEmpty())

	// повтор без ключа выводит тот же ключ из неизменённой корзины
	repo.set(func(r *faultyRepo) { r.failCart = false })
	second, err := svc.Checkout(ctx, CheckoutRequest{UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	cart, err = svc.GetCart(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())

	profile, err := svc.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, profile.TotalOrders)
}

func TestCheckout_ProfileFailureIsTolerated(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	fillCart(t, svc, "u1")

	repo.set(func(r *faultyRepo) { r.failProfile = true })
	order, err := svc.Checkout(ctx, CheckoutRequest{UserID: "u1"})
	require.NoError(t, err)
	require.NotNil(t, order)

	repo.set(func(r *faultyRepo) { r.failProfile = false })
	profile, err := svc.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, profile.TotalOrders)
	assert.True(t, profile.TotalSpent.Equal(decimal.NewFromInt(25)))
}

func TestCheckout_AddressResolutionDegrades(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	foreign, err := svc.CreateAddress(ctx, validAddress("u2"))
	require.NoError(t, err)

	tests := []struct {
		name      string
		addressID string
		failRepo  bool
	}{
		{name: "missing address", addressID: "missing"},
		{name: "address of another user", addressID: foreign.ID},
		{name: "storage failure", addressID: foreign.ID, failRepo: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fillCart(t, svc, "u1")
			repo.set(func(r *faultyRepo) { r.failAddress = tt.failRepo })
			defer repo.set(func(r *faultyRepo) { r.failAddress = false })

			order, err := svc.Checkout(ctx, CheckoutRequest{UserID: "u1", AddressID: tt.addressID})
			require.NoError(t, err)
			assert.Equal(t, model.CustomerInfo{}, order.CustomerInfo)
		})
	}
}

func TestCheckout_PaymentLabel(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	stored, err := svc.CreatePaymentMethod(ctx, model.PaymentMethod{
		UserID: "u1", MethodType: model.MethodCreditCard,
		Details: &model.CardDetails{CardholderName: "Ann", CardNumber: "4111111111111111", ExpiryMonth: "12", ExpiryYear: "2030"},
	})
	require.NoError(t, err)

	tests := []struct {
		name string
		req  CheckoutRequest
		want string
	}{
		{name: "stored method", req: CheckoutRequest{PaymentMethodID: stored.ID, MethodType: model.MethodBankTransfer}, want: "credit_card"},
		{name: "request method type", req: CheckoutRequest{PaymentMethodID: "missing", MethodType: model.MethodDigitalWallet}, want: "digital_wallet"},
		{name: "invalid method type", req: CheckoutRequest{MethodType: "cash"}, want: model.UnknownPaymentLabel},
		{name: "nothing", req: CheckoutRequest{}, want: model.UnknownPaymentLabel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fillCart(t, svc, "u1")
			tt.req.UserID = "u1"

			order, err := svc.Checkout(ctx, tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, order.PaymentMethodLabel)
		})
	}
}

func TestGetProfile_Idempotent(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	fillCart(t, svc, "u1")
	_, err := svc.Checkout(ctx, CheckoutRequest{UserID: "u1"})
	require.NoError(t, err)

	// устаревший кеш статистики
	_, err = repo.MemoryRepository.UpdateProfile(ctx, "u1", time.Now(), func(p *model.UserProfile) error {
		p.TotalOrders = 42
		return nil
	})
	require.NoError(t, err)

	first, err := svc.GetProfile(ctx, "u1")
	require.NoError(t, err)
	second, err := svc.GetProfile(ctx, "u1")
	require.NoError(t, err)

	assert.Equal(t, 1, first.TotalOrders)
	assert.Equal(t, first.TotalOrders, second.TotalOrders)
	assert.True(t, first.TotalSpent.Equal(second.TotalSpent))
}

func TestGetProfile_CreatesMissingProfile(t *testing.T) {
	svc, _ := newTestService(t)

	profile, err := svc.GetProfile(context.Background(), "fresh")
	require.NoError(t, err)
	assert.Equal(t, 0, profile.TotalOrders)
	assert.True(t, profile.TotalSpent.IsZero())
	assert.True(t, profile.Preferences.Newsletter)
}

func TestUpdateProfile_KeepsStatistics(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	fillCart(t, svc, "u1")
	_, err := svc.Checkout(ctx, CheckoutRequest{UserID: "u1"})
	require.NoError(t, err)

	profile, err := svc.UpdateProfile(ctx, "u1", model.ProfilePatch{FirstName: "Ann"})
	require.NoError(t, err)
	assert.Equal(t, "Ann", profile.FirstName)
	assert.Equal(t, 1, profile.TotalOrders)

	profile, err = svc.TouchLastLogin(ctx, "u1")
	require.NoError(t, err)
	assert.NotNil(t, profile.LastLogin)
}

func TestSetDefaultAddress(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	a1, err := svc.CreateAddress(ctx, validAddress("u1"))
	require.NoError(t, err)
	a2, err := svc.CreateAddress(ctx, validAddress("u1"))
	require.NoError(t, err)

	_, err = svc.SetDefaultAddress(ctx, "u1", a1.ID)
	require.NoError(t, err)
	got, err := svc.SetDefaultAddress(ctx, "u1", a2.ID)
	require.NoError(t, err)
	assert.True(t, got.IsDefault)

	list, err := svc.GetAddresses(ctx, "u1")
	require.NoError(t, err)
	for _, a := range list {
		assert.Equal(t, a.ID == a2.ID, a.IsDefault, "address %s", a.ID)
	}

	_, err = svc.SetDefaultAddress(ctx, "u2", a1.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = svc.SetDefaultAddress(ctx, "", a1.ID)
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestCreateAddress_DefaultGoesThroughExclusiveRule(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first := validAddress("u1")
	first.IsDefault = true
	a1, err := svc.CreateAddress(ctx, first)
	require.NoError(t, err)
	assert.True(t, a1.IsDefault)
	assert.Equal(t, "home", a1.AddressType)

	a2, err := svc.CreateAddress(ctx, first)
	require.NoError(t, err)
	assert.True(t, a2.IsDefault)

	stored, err := svc.GetAddress(ctx, a1.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsDefault)

	_, err = svc.CreateAddress(ctx, model.Address{UserID: "u1"})
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestUpdateAddress(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	a, err := svc.CreateAddress(ctx, validAddress("u1"))
	require.NoError(t, err)

	yes := true
	updated, err := svc.UpdateAddress(ctx, a.ID, model.AddressPatch{City: "Bergen", IsDefault: &yes})
	require.NoError(t, err)
	assert.Equal(t, "Bergen", updated.City)
	assert.True(t, updated.IsDefault)

	no := false
	updated, err = svc.UpdateAddress(ctx, a.ID, model.AddressPatch{IsDefault: &no})
	require.NoError(t, err)
	assert.False(t, updated.IsDefault)

	_, err = svc.UpdateAddress(ctx, "missing", model.AddressPatch{City: "x"})
	assert.ErrorIs(t, err, model.ErrNotFound)

	require.NoError(t, svc.DeleteAddress(ctx, a.ID))
	assert.ErrorIs(t, svc.DeleteAddress(ctx, a.ID), model.ErrNotFound)
}

func TestSetDefaultPaymentMethod_Concurrent(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 4; i++ {
		m, err := svc.CreatePaymentMethod(ctx, model.PaymentMethod{
			UserID: "u1", MethodType: model.MethodDigitalWallet,
			Details: &model.WalletDetails{WalletProvider: "PayPal"},
		})
		require.NoError(t, err)
		ids = append(ids, m.ID)
	}

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := svc.SetDefaultPaymentMethod(ctx, "u1", id)
			assert.NoError(t, err)
		}(ids[i%len(ids)])
	}
	wg.Wait()

	list, err := svc.GetPaymentMethods(ctx, "u1")
	require.NoError(t, err)
	defaults := 0
	for _, m := range list {
		if m.IsDefault {
			defaults++
		}
	}
	assert.Equal(t, 1, defaults)
}

func TestCreatePaymentMethod_Card(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreatePaymentMethod(ctx, model.PaymentMethod{
		UserID: "u1", MethodType: model.MethodCreditCard,
		Details: &model.CardDetails{CardholderName: "Ann", CardNumber: "4111111111111112", ExpiryMonth: "12", ExpiryYear: "2030"},
	})
	assert.ErrorIs(t, err, model.ErrValidation)

	m, err := svc.CreatePaymentMethod(ctx, model.PaymentMethod{
		UserID: "u1", MethodType: model.MethodCreditCard, IsDefault: true,
		Details: &model.CardDetails{CardholderName: "Ann", CardNumber: "4111 1111 1111 1111", ExpiryMonth: "12", ExpiryYear: "2030"},
	})
	require.NoError(t, err)
	assert.True(t, m.IsDefault)

	card, ok := m.Details.(*model.CardDetails)
	require.True(t, ok)
	assert.Equal(t, "1111", card.CardNumber)

	updated, err := svc.UpdatePaymentMethod(ctx, m.ID, model.PaymentMethodPatch{
		CardDetails: model.CardDetails{ExpiryYear: "2031"},
	})
	require.NoError(t, err)
	card, ok = updated.Details.(*model.CardDetails)
	require.True(t, ok)
	assert.Equal(t, "2031", card.ExpiryYear)
	assert.Equal(t, "1111", card.CardNumber)
	assert.True(t, updated.IsDefault)

	_, err = svc.UpdatePaymentMethod(ctx, m.ID, model.PaymentMethodPatch{
		CardDetails: model.CardDetails{CardNumber: "1234567890123"},
	})
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestCreatePaymentMethod_BankMasksAccount(t *testing.T) {
	svc, _ := newTestService(t)

	m, err := svc.CreatePaymentMethod(context.Background(), model.PaymentMethod{
		UserID: "u1", MethodType: model.MethodBankTransfer,
		Details: &model.BankDetails{BankName: "DNB", AccountHolderName: "Ann", AccountNumber: "12345678901"},
	})
	require.NoError(t, err)

	bank, ok := m.Details.(*model.BankDetails)
	require.True(t, ok)
	assert.Equal(t, "8901", bank.AccountNumber)
}

func TestProducts(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	products, err := svc.GetProducts(ctx, "")
	require.NoError(t, err)
	assert.Len(t, products, 2)

	_, err = svc.GetProduct(ctx, "missing")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestReviews(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	summary, err := svc.GetRating(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, model.RatingSummary{}, summary)

	_, err = svc.CreateReview(ctx, model.Review{ProductID: "A", UserID: "u1", Rating: 5})
	assert.ErrorIs(t, err, model.ErrValidation)

	var created []*model.Review
	for _, rating := range []int{5, 4, 4} {
		rv, err := svc.CreateReview(ctx, model.Review{
			ProductID: "A", UserID: "u1", UserName: "Ann", Rating: rating, Title: "t", Comment: "c", Helpful: 7,
		})
		require.NoError(t, err)
		assert.NotEmpty(t, rv.ID)
		assert.Zero(t, rv.Helpful)
		created = append(created, rv)
	}

	reviews, err := svc.GetReviews(ctx, "A")
	require.NoError(t, err)
	require.Len(t, reviews, 3)
	assert.Equal(t, created[2].ID, reviews[0].ID)

	summary, err = svc.GetRating(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, model.RatingSummary{AverageRating: 4.3, TotalReviews: 3}, summary)

	rv, err := svc.MarkReviewHelpful(ctx, created[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 1, rv.Helpful)

	_, err = svc.MarkReviewHelpful(ctx, "missing")
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = svc.GetReviews(ctx, "")
	assert.ErrorIs(t, err, model.ErrValidation)
}
