package controllers

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"sauvage-server/middleware"
	"sauvage-server/models"
	"sauvage-server/store"
	"sauvage-server/utils"
)

// PaymentGateway authorizes card payments with the provider
type PaymentGateway interface {
	CreatePaymentIntent(ctx context.Context, amount int64, currency string) (string, error)
}

type PaymentStore interface {
	Record(ctx context.Context, payment models.Payment) (*store.CheckoutResult, error)
	ListByEmail(ctx context.Context, email string) ([]models.Payment, error)
}

// ReceiptSender mails payment receipts. Nil disables receipts.
type ReceiptSender interface {
	SendPaymentReceipt(payment models.Payment) error
}

// PaymentController handles checkout requests. All routes run behind AuthMiddleware.
type PaymentController struct {
	Gateway  PaymentGateway
	Payments PaymentStore
	Receipts ReceiptSender
	Currency string
	Timeout  time.Duration

	receipts sync.WaitGroup
}

func NewPaymentController(gateway PaymentGateway, payments PaymentStore, receipts ReceiptSender, currency string, timeout time.Duration) *PaymentController {
	return &PaymentController{
		Gateway:  gateway,
		Payments: payments,
		Receipts: receipts,
		Currency: currency,
		Timeout:  timeout,
	}
}

type paymentIntentRequest struct {
	Price decimal.Decimal `json:"price"`
}

// CreatePaymentIntent forwards the price, in minor units, to the payment provider
func (pc *PaymentController) CreatePaymentIntent(w http.ResponseWriter, r *http.Request) {
	var req paymentIntentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	amount := utils.ToMinorUnits(req.Price)
	if amount <= 0 {
		utils.WriteError(w, http.StatusBadRequest, "price must be positive")
		return
	}

	ctx, cancel := requestContext(r, pc.Timeout)
	defer cancel()

	clientSecret, err := pc.Gateway.CreatePaymentIntent(ctx, amount, pc.Currency)
	if err != nil {
		serverError(w, r, "create payment intent", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"clientSecret": clientSecret})
}

// RecordPayment stores a completed payment and clears the paid cart items
func (pc *PaymentController) RecordPayment(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized access")
		return
	}

	var payment models.Payment
	if !decodeBody(w, r, &payment) {
		return
	}
	if payment.Email == "" {
		payment.Email = identity.Email
	}
	if payment.Email != identity.Email {
		utils.WriteError(w, http.StatusForbidden, "Forbidden access")
		return
	}
	payment.ID = primitive.NilObjectID
	store.NormalizePayment(&payment)

	ctx, cancel := requestContext(r, pc.Timeout)
	defer cancel()

	result, err := pc.Payments.Record(ctx, payment)
	if err != nil {
		if result != nil && result.InsertResult != nil {
			slog.Warn("payment recorded but paid cart items remain",
				"payment_id", result.InsertResult.InsertedID,
				"email", payment.Email,
				"cart_items", payment.CartItems,
			)
		}
		serverError(w, r, "record payment", err)
		return
	}

	if pc.Receipts != nil {
		pc.receipts.Add(1)
		go func(p models.Payment) {
			defer pc.receipts.Done()
			if err := pc.Receipts.SendPaymentReceipt(p); err != nil {
				slog.Error("failed to send payment receipt", "email", p.Email, "error", err)
			}
		}(payment)
	}

	utils.WriteJSON(w, http.StatusOK, result)
}

// WaitForReceipts blocks until every receipt in flight has been handed to
// the mailer or ctx is done.
func (pc *PaymentController) WaitForReceipts(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		pc.receipts.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ListPayments returns the payment history of ?email=, which must be the caller's own email
func (pc *PaymentController) ListPayments(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.IdentityFromContext(r.Context())
	email := r.URL.Query().Get("email")
	if email == "" {
		utils.WriteJSON(w, http.StatusOK, []models.Payment{})
		return
	}
	if identity == nil || identity.Email != email {
		utils.WriteError(w, http.StatusForbidden, "Forbidden access")
		return
	}

	ctx, cancel := requestContext(r, pc.Timeout)
	defer cancel()

	payments, err := pc.Payments.ListByEmail(ctx, email)
	if err != nil {
		serverError(w, r, "list payments", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, payments)
}
