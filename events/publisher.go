package events

import (
	"booking-service/domain"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"
)

const (
	RoutingKeyBookingConfirmed = "booking.confirmed"
	RoutingKeyBookingCancelled = "booking.cancelled"
)

type BookingEvent struct {
	BookingID        string    `json:"booking_id"`
	PropertyID       string    `json:"property_id"`
	ConfirmationCode string    `json:"confirmation_code"`
	CheckIn          time.Time `json:"check_in"`
	CheckOut         time.Time `json:"check_out"`
	TotalAmount      float64   `json:"total_amount"`
	Currency         string    `json:"currency"`
	OccurredAt       time.Time `json:"occurred_at"`
}

// Publisher pushes booking lifecycle events to a RabbitMQ topic exchange.
// Publishing is best-effort: a nil Publisher or a broker failure never fails
// the surrounding booking operation.
type Publisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	logger   *logrus.Logger
}

func NewPublisher(uri, exchange string, logger *logrus.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(uri)
	if err != nil {
		return nil, err
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	if err := channel.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		channel.Close()
		conn.Close()
		return nil, err
	}
	return &Publisher{conn: conn, channel: channel, exchange: exchange, logger: logger}, nil
}

func (p *Publisher) PublishBookingConfirmed(booking *domain.Booking) {
	p.publish(RoutingKeyBookingConfirmed, booking)
}

func (p *Publisher) PublishBookingCancelled(booking *domain.Booking) {
	p.publish(RoutingKeyBookingCancelled, booking)
}

func (p *Publisher) publish(routingKey string, booking *domain.Booking) {
	if p == nil || p.channel == nil {
		return
	}
	event := BookingEvent{
		BookingID:        booking.ID.Hex(),
		PropertyID:       booking.PropertyID.Hex(),
		ConfirmationCode: booking.ConfirmationCode,
		CheckIn:          booking.Dates.CheckIn,
		CheckOut:         booking.Dates.CheckOut,
		TotalAmount:      booking.Pricing.TotalAmount,
		Currency:         booking.Pricing.Currency,
		OccurredAt:       time.Now(),
	}
	body, err := json.Marshal(event)
	if err != nil {
		p.logger.WithFields(logrus.Fields{"path": "events/publisher"}).Error("Error encoding event: ", err)
		return
	}
	err = p.channel.Publish(p.exchange, routingKey, false, false, amqp.Publishing{
		ContentType: "application/json",
		Timestamp:   time.Now(),
		Body:        body,
	})
	if err != nil {
		p.logger.WithFields(logrus.Fields{"path": "events/publisher"}).Error("Error publishing event: ", err)
	}
}

func (p *Publisher) Close() {
	if p == nil {
		return
	}
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}
