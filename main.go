package main

import (
	"booking-service/cache"
	"booking-service/clock"
	"booking-service/config"
	"booking-service/events"
	"booking-service/handlers"
	"booking-service/repository"
	"booking-service/routes"
	"booking-service/services"
	"booking-service/utils"
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	bookingCreateWindow = 15 * time.Minute
	bookingCreateMax    = 5

	checkoutSessionWindow = 15 * time.Minute
	checkoutSessionMax    = 10
)

var (
	server      *gin.Engine
	ctx         context.Context
	mongoclient *mongo.Client
	logger      *logrus.Logger
	cfg         *config.Config
	publisher   *events.Publisher

	bookingService services.BookingService
	paymentService services.PaymentService

	BookingRouteHandler routes.BookingRouteHandler
	PaymentRouteHandler routes.PaymentRouteHandler
)

func init() {
	ctx = context.TODO()
	cfg = config.LoadConfig()

	logger = logrus.New()
	logger.SetLevel(logrus.InfoLevel)
	logger.SetOutput(&lumberjack.Logger{
		Filename:  cfg.LogFile,
		MaxSize:   1,
		LocalTime: true,
	})

	mongoconn := options.Client().ApplyURI(cfg.MongoURI)
	var err error
	mongoclient, err = mongo.Connect(ctx, mongoconn)
	if err != nil {
		panic(err)
	}

	if err := mongoclient.Ping(ctx, readpref.Primary()); err != nil {
		panic(err)
	}

	logger.WithFields(logrus.Fields{"path": "main"}).Info("MongoDB successfully connected...")

	tracerProvider, err := NewTracerProvider(cfg.ServiceName, cfg.JaegerAddress)
	if err != nil {
		logger.Fatalf("JaegerTraceProvider failed to Initialize. Error :%s", err)
	}
	tracer := tracerProvider.Tracer(cfg.ServiceName)

	clk := clock.NewReal()

	// Collections
	database := mongoclient.Database(cfg.MongoDatabase)
	bookingCollection := database.Collection("bookings")
	propertyCollection := database.Collection("properties")

	bookingRepo := repository.NewBookingRepo(mongoclient, bookingCollection, logger)
	if err := bookingRepo.EnsureIndexes(ctx); err != nil {
		logger.WithFields(logrus.Fields{"path": "main"}).Error("Error ensuring booking indexes: ", err)
	}
	propertyRepo := repository.NewPropertyRepo(propertyCollection, logger)
	propertyCache := cache.New(cfg.RedisAddress, propertyRepo, logger, tracer)
	propertyCache.Ping()

	if cfg.AMQPURI != "" {
		publisher, err = events.NewPublisher(cfg.AMQPURI, cfg.AMQPExchange, logger)
		if err != nil {
			logger.WithFields(logrus.Fields{"path": "main"}).Error("Error connecting to message broker: ", err)
		}
	}

	availabilityService := services.NewAvailabilityServiceImpl(bookingRepo, tracer)
	notificationService := services.NewNotificationServiceImpl(cfg, logger)
	paymentProvider := services.NewHTTPPaymentProvider(cfg.ProviderAPIURL, cfg.ProviderAPIKey, cfg.WebhookSecret, logger, clk)

	bookingService = services.NewBookingServiceImpl(propertyCache, bookingRepo, availabilityService,
		notificationService, publisher, logger, clk, tracer)
	paymentService = services.NewPaymentServiceImpl(paymentProvider, propertyCache, bookingRepo,
		availabilityService, notificationService, publisher,
		cfg.IntentSecret, cfg.CheckoutSuccessURL, cfg.CheckoutCancelURL, logger, clk, tracer)

	bookingCreateLimiter := utils.NewRateLimiter("booking-create", bookingCreateWindow, bookingCreateMax, clk)
	checkoutSessionLimiter := utils.NewRateLimiter("checkout-session", checkoutSessionWindow, checkoutSessionMax, clk)

	bookingsHandler := handlers.NewBookingsHandler(bookingService, logger, tracer)
	availabilityHandler := handlers.NewAvailabilityHandler(propertyCache, availabilityService, logger, tracer)
	checkoutHandler := handlers.NewCheckoutHandler(paymentService, logger, tracer)
	webhookHandler := handlers.NewWebhookHandler(paymentService, logger, tracer)

	BookingRouteHandler = routes.NewBookingRouteHandler(bookingsHandler, availabilityHandler, bookingCreateLimiter)
	PaymentRouteHandler = routes.NewPaymentRouteHandler(checkoutHandler, webhookHandler, checkoutSessionLimiter)

	server = gin.Default()
}

func main() {
	defer mongoclient.Disconnect(ctx)
	defer publisher.Close()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.AllowedOrigin}
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")

	server.Use(cors.New(corsConfig))

	router := server.Group("/api")
	router.GET("/healthchecker", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "success", "message": "Booking service is running"})
	})

	BookingRouteHandler.BookingRoute(router)
	PaymentRouteHandler.PaymentRoute(router)

	err := server.Run(":" + cfg.Port)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func NewTracerProvider(serviceName, collectorEndpoint string) (*sdktrace.TracerProvider, error) {
	exporter, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(collectorEndpoint)))
	if err != nil {
		return nil, fmt.Errorf("unable to initialize exporter due: %w", err)
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(serviceName),
			semconv.DeploymentEnvironmentKey.String("development"),
		)),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	return tp, nil
}
