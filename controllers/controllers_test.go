package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"sauvage-server/middleware"
	"sauvage-server/models"
	"sauvage-server/store"
	"sauvage-server/store/memstore"
	"sauvage-server/utils"
)

var errStore = errors.New("server selection timeout")

func newRequest(t *testing.T, method, target string, body interface{}, email string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, target, &buf)
	if email != "" {
		req = req.WithContext(middleware.WithIdentity(req.Context(), &utils.Identity{Email: email}))
	}
	return req
}

func assertError(t *testing.T, w *httptest.ResponseRecorder, status int, message string) {
	t.Helper()
	assert.Equal(t, status, w.Code)
	var body utils.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.True(t, body.Error)
	assert.Equal(t, message, body.Message)
}

type failingUsers struct{}

func (failingUsers) List(context.Context) ([]models.User, error) { return nil, errStore }
func (failingUsers) FindByEmail(context.Context, string) (*models.User, error) {
	return nil, errStore
}
func (failingUsers) Register(context.Context, models.User) (*store.InsertResult, error) {
	return nil, errStore
}
func (failingUsers) Promote(context.Context, primitive.ObjectID) (*store.UpdateResult, error) {
	return nil, errStore
}

func TestCreateUser(t *testing.T) {
	t.Run("invalid body", func(t *testing.T) {
		uc := NewUserController(memstore.New().Users, time.Second)
		w := httptest.NewRecorder()
		uc.CreateUser(w, newRequest(t, http.MethodPost, "/users", "{", ""))
		assertError(t, w, http.StatusBadRequest, "invalid input")
	})

	t.Run("missing email", func(t *testing.T) {
		uc := NewUserController(memstore.New().Users, time.Second)
		w := httptest.NewRecorder()
		uc.CreateUser(w, newRequest(t, http.MethodPost, "/users", map[string]string{"name": "x"}, ""))
		assertError(t, w, http.StatusBadRequest, "email is required")
	})

	t.Run("self-assigned role is dropped", func(t *testing.T) {
		db := memstore.New()
		uc := NewUserController(db.Users, time.Second)
		w := httptest.NewRecorder()
		uc.CreateUser(w, newRequest(t, http.MethodPost, "/users", map[string]string{"email": "sneaky@sauvage.com", "role": "admin"}, ""))
		require.Equal(t, http.StatusOK, w.Code)

		user, err := db.Users.FindByEmail(context.Background(), "sneaky@sauvage.com")
		require.NoError(t, err)
		assert.False(t, user.IsAdmin())
	})

	t.Run("store failure", func(t *testing.T) {
		uc := NewUserController(failingUsers{}, time.Second)
		w := httptest.NewRecorder()
		uc.CreateUser(w, newRequest(t, http.MethodPost, "/users", map[string]string{"email": "a@b.c"}, ""))
		assertError(t, w, http.StatusInternalServerError, "internal server error")
	})
}

func TestPromoteUser_InvalidID(t *testing.T) {
	uc := NewUserController(memstore.New().Users, time.Second)
	req := mux.SetURLVars(newRequest(t, http.MethodPatch, "/users/admin/nope", nil, "chef@sauvage.com"), map[string]string{"id": "nope"})
	w := httptest.NewRecorder()

	uc.PromoteUser(w, req)

	assertError(t, w, http.StatusBadRequest, "invalid id")
}

func TestDeleteMenuItem(t *testing.T) {
	ctx := context.Background()
	db := memstore.New()
	mc := NewMenuController(db.Menu, db.Reviews, time.Second)

	created, err := db.Menu.Insert(ctx, models.MenuItem{Name: "Soup"})
	require.NoError(t, err)
	id := created.InsertedID.(primitive.ObjectID).Hex()

	req := mux.SetURLVars(newRequest(t, http.MethodDelete, "/menu/"+id, nil, ""), map[string]string{"id": id})
	w := httptest.NewRecorder()
	mc.DeleteMenuItem(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"acknowledged":true,"deletedCount":1}`, w.Body.String())

	req = mux.SetURLVars(newRequest(t, http.MethodDelete, "/menu/xyz", nil, ""), map[string]string{"id": "xyz"})
	w = httptest.NewRecorder()
	mc.DeleteMenuItem(w, req)
	assertError(t, w, http.StatusBadRequest, "invalid id")
}

func TestCartController(t *testing.T) {
	ctx := context.Background()

	t.Run("missing email lists nothing", func(t *testing.T) {
		cc := NewCartController(memstore.New().Carts, time.Second)
		w := httptest.NewRecorder()
		cc.GetCart(w, newRequest(t, http.MethodGet, "/carts", nil, "diner@sauvage.com"))
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, "[]", w.Body.String())
	})

	t.Run("owner defaults to caller", func(t *testing.T) {
		db := memstore.New()
		cc := NewCartController(db.Carts, time.Second)
		w := httptest.NewRecorder()
		cc.AddToCart(w, newRequest(t, http.MethodPost, "/carts", map[string]interface{}{"name": "Tart", "price": 6.5}, "diner@sauvage.com"))
		require.Equal(t, http.StatusOK, w.Code)

		items, err := db.Carts.ListByEmail(ctx, "diner@sauvage.com")
		require.NoError(t, err)
		assert.Len(t, items, 1)
	})

	t.Run("cannot fill someone else's cart", func(t *testing.T) {
		cc := NewCartController(memstore.New().Carts, time.Second)
		w := httptest.NewRecorder()
		cc.AddToCart(w, newRequest(t, http.MethodPost, "/carts", map[string]interface{}{"email": "other@sauvage.com"}, "diner@sauvage.com"))
		assertError(t, w, http.StatusForbidden, "Forbidden access")
	})

	t.Run("cannot delete someone else's item", func(t *testing.T) {
		db := memstore.New()
		cc := NewCartController(db.Carts, time.Second)
		theirs, err := db.Carts.Insert(ctx, models.CartItem{Email: "other@sauvage.com"})
		require.NoError(t, err)
		id := theirs.InsertedID.(primitive.ObjectID).Hex()

		req := mux.SetURLVars(newRequest(t, http.MethodDelete, "/carts/"+id, nil, "diner@sauvage.com"), map[string]string{"id": id})
		w := httptest.NewRecorder()
		cc.RemoveFromCart(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"acknowledged":true,"deletedCount":0}`, w.Body.String())
	})

	t.Run("open insert keeps the sent email", func(t *testing.T) {
		db := memstore.New()
		cc := NewCartController(db.Carts, time.Second)
		w := httptest.NewRecorder()
		cc.AddToCart(w, newRequest(t, http.MethodPost, "/carts", map[string]interface{}{"name": "Soup", "email": "guest@sauvage.com"}, ""))
		require.Equal(t, http.StatusOK, w.Code)

		items, err := db.Carts.ListByEmail(ctx, "guest@sauvage.com")
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "Soup", items[0].Name)
	})

	t.Run("open delete matches any owner", func(t *testing.T) {
		db := memstore.New()
		cc := NewCartController(db.Carts, time.Second)
		theirs, err := db.Carts.Insert(ctx, models.CartItem{Email: "other@sauvage.com"})
		require.NoError(t, err)
		id := theirs.InsertedID.(primitive.ObjectID).Hex()

		req := mux.SetURLVars(newRequest(t, http.MethodDelete, "/carts/"+id, nil, ""), map[string]string{"id": id})
		w := httptest.NewRecorder()
		cc.RemoveFromCart(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"acknowledged":true,"deletedCount":1}`, w.Body.String())
	})
}

type stubGateway struct {
	amount int64
	err    error
}

func (g *stubGateway) CreatePaymentIntent(_ context.Context, amount int64, _ string) (string, error) {
	g.amount = amount
	if g.err != nil {
		return "", g.err
	}
	return "secret", nil
}

type receiptRecorder chan models.Payment

func (r receiptRecorder) SendPaymentReceipt(payment models.Payment) error {
	r <- payment
	return nil
}

type blockingReceipts chan struct{}

func (b blockingReceipts) SendPaymentReceipt(models.Payment) error {
	<-b
	return nil
}

type brokenSweep struct{}

func (brokenSweep) Record(context.Context, models.Payment) (*store.CheckoutResult, error) {
	return &store.CheckoutResult{InsertResult: &store.InsertResult{Acknowledged: true, InsertedID: primitive.NewObjectID()}}, errStore
}
func (brokenSweep) ListByEmail(context.Context, string) ([]models.Payment, error) { return nil, errStore }

func TestCreatePaymentIntent(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		gatewayErr error
		wantStatus int
		wantAmount int64
	}{
		{name: "converts to cents", body: `{"price": 0.29}`, wantStatus: http.StatusOK, wantAmount: 29},
		{name: "truncates fractions of a cent", body: `{"price": 10.999}`, wantStatus: http.StatusOK, wantAmount: 1099},
		{name: "zero price", body: `{"price": 0}`, wantStatus: http.StatusBadRequest},
		{name: "missing price", body: `{}`, wantStatus: http.StatusBadRequest},
		{name: "not json", body: `price=3`, wantStatus: http.StatusBadRequest},
		{name: "provider failure", body: `{"price": 5}`, gatewayErr: errors.New("card_declined"), wantStatus: http.StatusInternalServerError, wantAmount: 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gateway := &stubGateway{err: tt.gatewayErr}
			pc := NewPaymentController(gateway, memstore.New().Payments, nil, "usd", time.Second)
			w := httptest.NewRecorder()

			pc.CreatePaymentIntent(w, newRequest(t, http.MethodPost, "/create-payment-intent", tt.body, "diner@sauvage.com"))

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantAmount, gateway.amount)
		})
	}
}

func TestRecordPayment(t *testing.T) {
	t.Run("sends a receipt", func(t *testing.T) {
		receipts := make(receiptRecorder, 1)
		pc := NewPaymentController(&stubGateway{}, memstore.New().Payments, receipts, "usd", time.Second)
		w := httptest.NewRecorder()

		pc.RecordPayment(w, newRequest(t, http.MethodPost, "/payments", map[string]interface{}{"price": 12, "transactionId": "pi_1"}, "diner@sauvage.com"))
		require.Equal(t, http.StatusOK, w.Code)

		select {
		case payment := <-receipts:
			assert.Equal(t, "diner@sauvage.com", payment.Email)
			assert.Equal(t, "pi_1", payment.TransactionID)
			assert.Equal(t, models.PaymentStatusPending, payment.Status)
			assert.False(t, payment.Date.IsZero())
			assert.NotNil(t, payment.CartItems)
		case <-time.After(time.Second):
			t.Fatal("receipt was not sent")
		}

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		assert.NoError(t, pc.WaitForReceipts(ctx))
	})

	t.Run("shutdown waits for receipts in flight", func(t *testing.T) {
		release := make(chan struct{})
		pc := NewPaymentController(&stubGateway{}, memstore.New().Payments, blockingReceipts(release), "usd", time.Second)
		w := httptest.NewRecorder()
		pc.RecordPayment(w, newRequest(t, http.MethodPost, "/payments", map[string]interface{}{"price": 4}, "diner@sauvage.com"))
		require.Equal(t, http.StatusOK, w.Code)

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		assert.ErrorIs(t, pc.WaitForReceipts(ctx), context.DeadlineExceeded)

		close(release)
		ctx, cancel = context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		assert.NoError(t, pc.WaitForReceipts(ctx))
	})

	t.Run("cannot pay as someone else", func(t *testing.T) {
		pc := NewPaymentController(&stubGateway{}, memstore.New().Payments, nil, "usd", time.Second)
		w := httptest.NewRecorder()
		pc.RecordPayment(w, newRequest(t, http.MethodPost, "/payments", map[string]interface{}{"email": "other@sauvage.com"}, "diner@sauvage.com"))
		assertError(t, w, http.StatusForbidden, "Forbidden access")
	})

	t.Run("malformed cart id", func(t *testing.T) {
		pc := NewPaymentController(&stubGateway{}, memstore.New().Payments, nil, "usd", time.Second)
		w := httptest.NewRecorder()
		pc.RecordPayment(w, newRequest(t, http.MethodPost, "/payments", map[string]interface{}{"cartItems": []string{"nope"}}, "diner@sauvage.com"))
		assertError(t, w, http.StatusBadRequest, "invalid input")
	})

	t.Run("failed sweep is a server error", func(t *testing.T) {
		pc := NewPaymentController(&stubGateway{}, brokenSweep{}, nil, "usd", time.Second)
		w := httptest.NewRecorder()
		pc.RecordPayment(w, newRequest(t, http.MethodPost, "/payments", map[string]interface{}{"price": 3}, "diner@sauvage.com"))
		assertError(t, w, http.StatusInternalServerError, "internal server error")
	})
}

type downStore struct{}

func (downStore) Ping(context.Context) error { return errStore }

func TestHealth(t *testing.T) {
	w := httptest.NewRecorder()
	NewHealthController(downStore{}).Health(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body HealthResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "degraded", body.Status)
	assert.Equal(t, "down", body.Store)

	w = httptest.NewRecorder()
	NewHealthController(memstore.New()).Health(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "ok", body.Status)
}

func TestIssueToken(t *testing.T) {
	signer := utils.NewTokenSigner("secret", time.Hour)
	ac := NewAuthController(signer)
	w := httptest.NewRecorder()

	ac.IssueToken(w, newRequest(t, http.MethodPost, "/jwt", map[string]string{"email": "diner@sauvage.com"}, ""))
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	identity, err := signer.Verify(body["token"])
	require.NoError(t, err)
	assert.Equal(t, "diner@sauvage.com", identity.Email)
}
