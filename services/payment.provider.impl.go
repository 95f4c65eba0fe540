package services

import (
	"booking-service/clock"
	"booking-service/domain"
	"booking-service/utils"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

const (
	providerRequestTimeout = 10 * time.Second

	// webhookTolerance bounds how old a signed webhook timestamp may be;
	// anything older is treated as a replay and rejected.
	webhookTolerance = 5 * time.Minute
)

type HTTPPaymentProvider struct {
	apiURL         string
	apiKey         string
	webhookSecret  string
	client         *http.Client
	logger         *logrus.Logger
	clock          clock.Clock
	CircuitBreaker *gobreaker.CircuitBreaker
}

func NewHTTPPaymentProvider(apiURL, apiKey, webhookSecret string, logger *logrus.Logger, clk clock.Clock) *HTTPPaymentProvider {
	circuitBreaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name: "PaymentProviderRequest",
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{"path": "services/payment.provider"}).
				Warnf("Circuit Breaker state changed from %s to %s", from, to)
		},
	})

	return &HTTPPaymentProvider{
		apiURL:         apiURL,
		apiKey:         apiKey,
		webhookSecret:  webhookSecret,
		client:         &http.Client{Timeout: providerRequestTimeout},
		logger:         logger,
		clock:          clk,
		CircuitBreaker: circuitBreaker,
	}
}

func (p *HTTPPaymentProvider) CreateCheckoutSession(ctx context.Context, params domain.CheckoutSessionParams) (*domain.CheckoutSession, error) {
	body, err := json.Marshal(params)
	if err != nil {
		return nil, &domain.DependencyError{Op: "checkout session encode", Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, providerRequestTimeout)
	defer cancel()

	result, err := p.CircuitBreaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL+"/v1/checkout/sessions", bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+p.apiKey)

		resp, err := p.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
			return nil, fmt.Errorf("payment provider returned status %d", resp.StatusCode)
		}

		var session struct {
			ID  string `json:"id"`
			URL string `json:"url"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
			return nil, err
		}
		return &domain.CheckoutSession{ID: session.ID, RedirectURL: session.URL}, nil
	})
	if err != nil {
		p.logger.WithFields(logrus.Fields{"path": "services/payment.provider"}).Error("Error creating checkout session: ", err)
		return nil, &domain.DependencyError{Op: "create checkout session", Err: err}
	}

	return result.(*domain.CheckoutSession), nil
}

// VerifyAndParseEvent checks the signature header before anything in the
// payload is trusted. Header format: "t=<unix seconds>,v1=<hex hmac>", where
// the signed message is "<t>.<raw body>".
func (p *HTTPPaymentProvider) VerifyAndParseEvent(rawBody []byte, signatureHeader string) (*domain.PaymentEvent, error) {
	timestamp, signature, err := parseSignatureHeader(signatureHeader)
	if err != nil {
		return nil, &domain.AuthenticationError{Message: "malformed webhook signature header"}
	}

	age := p.clock.Now().Sub(time.Unix(timestamp, 0))
	if age > webhookTolerance || age < -webhookTolerance {
		return nil, &domain.AuthenticationError{Message: "webhook timestamp outside tolerance"}
	}

	signed := strconv.FormatInt(timestamp, 10) + "." + string(rawBody)
	if !utils.VerifyMessage(p.webhookSecret, []byte(signed), signature) {
		return nil, &domain.AuthenticationError{Message: "webhook signature verification failed"}
	}

	var event domain.PaymentEvent
	if err := json.Unmarshal(rawBody, &event); err != nil {
		return nil, &domain.AuthenticationError{Message: "webhook payload is not valid JSON"}
	}
	return &event, nil
}

func parseSignatureHeader(header string) (int64, string, error) {
	var timestamp int64
	var signature string
	for _, part := range strings.Split(header, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch key {
		case "t":
			parsed, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return 0, "", err
			}
			timestamp = parsed
		case "v1":
			signature = value
		}
	}
	if timestamp == 0 || signature == "" {
		return 0, "", fmt.Errorf("missing timestamp or signature")
	}
	return timestamp, signature, nil
}
