package httppresentation

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/HacAtac/Ecom-Order-Microservice/internal/application"
	appOrder "github.com/HacAtac/Ecom-Order-Microservice/internal/application/order"
	domainOrder "github.com/HacAtac/Ecom-Order-Microservice/internal/domain/order"
	domainPayment "github.com/HacAtac/Ecom-Order-Microservice/internal/domain/payment"
	"github.com/HacAtac/Ecom-Order-Microservice/internal/observability"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const (
	componentHTTPHandler = "http_server"
	headerRequestID      = "X-Request-ID"
	maxBodyBytes         = 1 << 20
)

type (
	PlaceOrderUseCase   = application.UseCase[appOrder.PlaceOrderInput, *appOrder.PlaceOrderResult]
	OrderDetailsUseCase = application.UseCase[int64, *appOrder.OrderView]
)

type Handler struct {
	placeOrder   PlaceOrderUseCase
	orderDetails OrderDetailsUseCase
	metrics      http.Handler
	log          observability.Logger
	tel          observability.Observability
}

// NewHandler wires the order endpoints. metrics is mounted at /metrics when
// non-nil.
func NewHandler(placeOrder PlaceOrderUseCase, orderDetails OrderDetailsUseCase, metrics http.Handler,
	tel observability.Observability,
) *Handler {
	if tel == nil {
		tel = observability.Nop()
	}
	return &Handler{
		placeOrder:   placeOrder,
		orderDetails: orderDetails,
		metrics:      metrics,
		log:          tel.Logger().With(observability.F("component", componentHTTPHandler)),
		tel:          tel,
	}
}

// Router builds the chi router. Every request passes
// Trace → request logger + HTTP metrics → access log → panic recovery → handler.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(
		h.withTrace,
		ObservabilityMiddleware(h.log, func(r *http.Request) string { return r.Header.Get(headerRequestID) }, h.tel),
		h.withAccessLog,
		middleware.Recoverer,
	)

	r.Route("/order", func(r chi.Router) {
		r.Post("/placeOrder", h.handlePlaceOrder)
		r.Get("/{orderId}", h.handleGetOrder)
	})
	r.Get("/health", h.handleHealth)
	if h.metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.metrics)
	}
	return r
}

type placeOrderRequest struct {
	ProductID   int64              `json:"productId"`
	TotalAmount int64              `json:"totalAmount"`
	Quantity    int64              `json:"quantity"`
	PaymentMode domainPayment.Mode `json:"paymentMode"`
}

func (h *Handler) handlePlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, errorCodeInvalidRequest, err.Error())
		return
	}

	result, err := h.placeOrder.Execute(r.Context(), appOrder.PlaceOrderInput{
		ProductID:   req.ProductID,
		TotalAmount: req.TotalAmount,
		Quantity:    req.Quantity,
		PaymentMode: req.PaymentMode,
	})
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result.OrderID)
}

type productDetailsResponse struct {
	ProductID   int64  `json:"productId"`
	ProductName string `json:"productName"`
	Price       int64  `json:"price"`
	Quantity    int64  `json:"quantity"`
}

type orderResponse struct {
	OrderID        int64                  `json:"orderId"`
	OrderStatus    domainOrder.Status     `json:"orderStatus"`
	Amount         int64                  `json:"amount"`
	OrderDate      time.Time              `json:"orderDate"`
	ProductDetails productDetailsResponse `json:"productDetails"`
}

func toOrderResponse(v *appOrder.OrderView) orderResponse {
	return orderResponse{
		OrderID:     v.OrderID,
		OrderStatus: v.Status,
		Amount:      v.Amount,
		OrderDate:   v.OrderDate,
		ProductDetails: productDetailsResponse{
			ProductID:   v.Product.ProductID,
			ProductName: v.Product.Name,
			Price:       v.Product.Price,
			Quantity:    v.Product.Quantity,
		},
	}
}

func (h *Handler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "orderId")
	orderID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, errorCodeInvalidRequest, fmt.Sprintf("invalid order id %q", raw))
		return
	}

	view, err := h.orderDetails.Execute(r.Context(), orderID)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponse(view))
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return err
	}
	if decoder.More() {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
