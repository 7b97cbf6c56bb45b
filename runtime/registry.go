package runtime

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
	"wa-bridge/contract"
	"wa-bridge/domain"
	"wa-bridge/errors"

	"github.com/go-playground/validator/v10"
)

var _ contract.IRegistry = (*Registry)(nil)

var validate = validator.New()

// Registry owns the set of webhook subscribers for the lifetime of the process.
// Writes are rare and serialized, reads hand out copies so that a dispatch in
// progress never observes a register or unregister half done.
type Registry struct {
	mu          sync.RWMutex
	log         *slog.Logger
	subscribers map[string]domain.Subscriber
	order       []string
	now         func() time.Time
}

func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{
		log:         log,
		subscribers: make(map[string]domain.Subscriber),
		now:         time.Now,
	}
}

// Register adds url with its filter.
// A url already present is left untouched and the call still succeeds:
// the first registration wins.
func (r *Registry) Register(url string, filter domain.Filter) error {
	if err := ValidateCallbackURL(url); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.subscribers[url]; ok {
		r.log.Info("Webhook already registered, keeping existing filter", "url", url)
		return nil
	}
	normalized := filter.Normalize()
	r.subscribers[url] = domain.Subscriber{URL: url, Filter: normalized, CreatedAt: r.now()}
	r.order = append(r.order, url)

	r.log.Info("Webhook registered", "url", url,
		"chat_id", deref(normalized.ChatID), "group_name", deref(normalized.GroupName))
	return nil
}

// Unregister removes url, ErrNotFound if it was never registered.
func (r *Registry) Unregister(url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.subscribers[url]; !ok {
		return fmt.Errorf("%w: webhook %q", errors.ErrNotFound, url)
	}
	delete(r.subscribers, url)
	for i, u := range r.order {
		if u == url {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	r.log.Info("Webhook unregistered", "url", url)
	return nil
}

// Snapshot returns the subscribers in insertion order.
// The slice is a copy and can be iterated without holding any lock.
func (r *Registry) Snapshot() []domain.Subscriber {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res := make([]domain.Subscriber, 0, len(r.order))
	for _, url := range r.order {
		res = append(res, r.subscribers[url])
	}
	return res
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// ValidateCallbackURL accepts absolute http and https URLs only.
func ValidateCallbackURL(url string) error {
	if err := validate.Var(url, "required,http_url"); err != nil {
		return fmt.Errorf("%w: callback url %q is not a valid http url", errors.ErrInvalidInput, url)
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
