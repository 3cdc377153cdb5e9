package controller

import (
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/tundeakins/billspay/internal/domain/transaction"
	"github.com/tundeakins/billspay/internal/infrastructure/config"
	"github.com/tundeakins/billspay/internal/infrastructure/observability"
	customMW "github.com/tundeakins/billspay/internal/middleware"
	"github.com/tundeakins/billspay/internal/processor"
	"github.com/tundeakins/billspay/internal/service"
)

type RouterDeps struct {
	Pool            *pgxpool.Pool
	RedisClient     *redis.Client
	TransactionRepo transaction.Repository
	Airtime         *processor.Airtime
	DSTV            *processor.DSTV
	Bluecode        *processor.Bluecode
	Billers         *service.BillersService
	Metrics         *observability.Metrics
	CORSConfig      config.CORSConfig
	CallbackSecret  string
	Logger          zerolog.Logger
}

func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(customMW.Tracing())
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.CORSConfig.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: deps.CORSConfig.AllowCredentials,
		MaxAge:           300,
	}))
	r.Use(customMW.Metrics(deps.Metrics))

	healthH := NewHealthController(deps.Pool, deps.RedisClient)
	airtimeH := NewAirtimeController(deps.Airtime, deps.Logger)
	dstvH := NewDSTVController(deps.DSTV, deps.Bluecode, deps.TransactionRepo, deps.Metrics, deps.Logger)
	bluecodeH := NewBluecodeController(deps.TransactionRepo, deps.CallbackSecret, deps.Logger)
	billersH := NewBillersController(deps.Billers, deps.Logger)
	transactionH := NewTransactionController(deps.TransactionRepo, deps.Metrics, deps.Logger)

	r.Get("/health", healthH.Check)
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/airtime/purchase", airtimeH.Purchase)

	r.Route("/dstv", func(r chi.Router) {
		r.Post("/lookup", dstvH.Lookup)
		r.Post("/confirm-payment", dstvH.ConfirmPayment)
		r.Post("/initiate-payment", dstvH.InitiatePayment)
		r.Get("/requery/{merchant_tx_id}", dstvH.Requery)
	})

	r.Post("/bluecode/callback", bluecodeH.Callback)

	r.Route("/billers", func(r chi.Router) {
		r.Get("/", billersH.All)
		r.Get("/categories", billersH.Categories)
		r.Get("/categories/{category_id}", billersH.ByCategory)
		r.Get("/{service_id}/payment-items", billersH.PaymentItems)
	})

	r.Post("/transactions", transactionH.Create)
	r.Get("/transactions", transactionH.List)

	return r
}
