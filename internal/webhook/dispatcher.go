package webhook

import (
	"bytes"
	"context"
	"log"
	"net/http"
	"sync"
	"time"
)

const (
	deliveryTimeout = 10 * time.Second
	maxErrorLen     = 500
)

// Delivery is one fully prepared POST: body already serialized and
// signed, headers final. It can cross a queue boundary as-is.
type Delivery struct {
	WebhookID string            `json:"webhook_id"`
	URL       string            `json:"url"`
	Body      []byte            `json:"body"`
	Headers   map[string]string `json:"headers"`
}

// Sender hands a delivery off for background execution. Implementations
// must return quickly; the chat turn never waits on delivery.
type Sender interface {
	Send(ctx context.Context, d Delivery) error
}

// Deliverer executes deliveries: POST with a bounded timeout, then
// record the outcome on the subscription row no matter what happened.
type Deliverer struct {
	repo   *Repo
	client *http.Client
}

func NewDeliverer(repo *Repo) *Deliverer {
	return &Deliverer{
		repo:   repo,
		client: &http.Client{Timeout: deliveryTimeout},
	}
}

func (d *Deliverer) Deliver(ctx context.Context, task Delivery) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, task.URL, bytes.NewReader(task.Body))
	if err != nil {
		d.record(ctx, task.WebhookID, 0, err.Error())
		return
	}
	for key, value := range task.Headers {
		req.Header.Set(key, value)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		d.record(ctx, task.WebhookID, 0, err.Error())
		log.Printf("webhook_delivery id=%s url=%s err=%v", task.WebhookID, task.URL, err)
		return
	}
	defer resp.Body.Close()

	var errMsg string
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errMsg = resp.Status
	}
	d.record(ctx, task.WebhookID, resp.StatusCode, errMsg)
	log.Printf("webhook_delivery id=%s url=%s status=%d", task.WebhookID, task.URL, resp.StatusCode)
}

func (d *Deliverer) record(ctx context.Context, id string, status int, errMsg string) {
	var errPtr *string
	if errMsg != "" {
		if len(errMsg) > maxErrorLen {
			errMsg = errMsg[:maxErrorLen]
		}
		errPtr = &errMsg
	}
	if err := d.repo.RecordDelivery(ctx, id, status, errPtr); err != nil {
		log.Printf("webhook_stats id=%s err=%v", id, err)
	}
}

// Pool is the in-process Sender: a supervised worker pool detached from
// request handling. Deliveries accepted before Close are executed even
// if the originating request's context is gone.
type Pool struct {
	tasks     chan Delivery
	deliverer *Deliverer
	wg        sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

func NewPool(deliverer *Deliverer, workers, buffer int) *Pool {
	if workers <= 0 {
		workers = 4
	}
	if buffer <= 0 {
		buffer = 256
	}
	p := &Pool{
		tasks:     make(chan Delivery, buffer),
		deliverer: deliverer,
	}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer p.wg.Done()
			for task := range p.tasks {
				// Deliveries outlive the request that produced them.
				p.deliverer.Deliver(context.Background(), task)
			}
		}()
	}
	return p
}

// Send enqueues without blocking the caller. A full buffer falls back
// to a dedicated supervised goroutine rather than dropping the task.
func (p *Pool) Send(_ context.Context, d Delivery) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	select {
	case p.tasks <- d:
		p.mu.Unlock()
		return nil
	default:
	}
	p.wg.Add(1)
	p.mu.Unlock()
	go func() {
		defer p.wg.Done()
		p.deliverer.Deliver(context.Background(), d)
	}()
	return nil
}

// Close stops intake and waits for in-flight deliveries.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.tasks)
	p.mu.Unlock()
	p.wg.Wait()
}
