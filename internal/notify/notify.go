// Package notify forwards committed order changes to a RabbitMQ fanout exchange
// so other shop systems can react without polling.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"go-optics-pos/internal/events"

	amqp "github.com/rabbitmq/amqp091-go"
)

const Exchange = "orders_fanout"

// Publisher sends one message body to the exchange.
type Publisher interface {
	Publish(ctx context.Context, body []byte) error
	Close() error
}

type AMQPPublisher struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

// Dial connects and declares the durable fanout exchange.
func Dial(url string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}
	err = ch.ExchangeDeclare(
		Exchange, // name
		"fanout", // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", Exchange, err)
	}
	return &AMQPPublisher{conn: conn, ch: ch}, nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, body []byte) error {
	return p.ch.PublishWithContext(ctx,
		Exchange, // exchange
		"",       // routing key
		false,    // mandatory
		false,    // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Body:         body,
			Timestamp:    time.Now(),
		})
}

func (p *AMQPPublisher) Close() error {
	if err := p.ch.Close(); err != nil {
		p.conn.Close()
		return err
	}
	return p.conn.Close()
}

// Notifier queues order changes and publishes them from its own goroutine, so a
// slow or unavailable broker never holds up an order save.
type Notifier struct {
	pub   Publisher
	queue chan events.OrdersChanged
	wg    sync.WaitGroup
	once  sync.Once

	mu     sync.Mutex
	closed bool
}

func New(pub Publisher, buffer int) *Notifier {
	n := &Notifier{pub: pub, queue: make(chan events.OrdersChanged, buffer)}
	n.wg.Add(1)
	go n.run()
	return n
}

func (n *Notifier) run() {
	defer n.wg.Done()
	for e := range n.queue {
		body, err := json.Marshal(e)
		if err != nil {
			log.Printf("notify: encode order change #%d: %v", e.Seq, err)
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = n.pub.Publish(ctx, body)
		cancel()
		if err != nil {
			log.Printf("notify: publish order change #%d: %v", e.Seq, err)
		}
	}
}

// Enqueue hands e to the publishing goroutine. It reports false when the queue
// is full or the notifier is closed; the change is then dropped.
func (n *Notifier) Enqueue(e events.OrdersChanged) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return false
	}
	select {
	case n.queue <- e:
		return true
	default:
		log.Printf("notify: queue full, dropping order change #%d", e.Seq)
		return false
	}
}

// Subscribe forwards every future order change. Earlier changes are not replayed.
func (n *Notifier) Subscribe(bus *events.Bus) (cancel func()) {
	return bus.Orders.Subscribe(func(e events.OrdersChanged) { n.Enqueue(e) }, false)
}

// Close drains the queue and closes the publisher.
func (n *Notifier) Close() error {
	var err error
	n.once.Do(func() {
		n.mu.Lock()
		n.closed = true
		close(n.queue)
		n.mu.Unlock()
		n.wg.Wait()
		err = n.pub.Close()
	})
	return err
}
