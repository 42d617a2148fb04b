package ai

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"chatbox/pkg/config"
)

// ProviderType names an LLM backend as written in config.llm_provider.
type ProviderType string

const (
	ProviderOpenAI ProviderType = "openai"
	ProviderGoogle ProviderType = "google"

	// DefaultProvider is used when config.llm_provider is empty.
	DefaultProvider = ProviderOpenAI
)

var (
	// ErrUnknownProvider is returned for a provider type nobody registered.
	ErrUnknownProvider = errors.New("unknown LLM provider")
	// ErrMissingAPIKey is returned when a provider needs a key that is not configured.
	ErrMissingAPIKey = errors.New("missing API key")
)

// ProviderConfig is what a factory receives.
type ProviderConfig struct {
	Type   ProviderType
	Config config.Config
}

// ProviderFactory builds a Provider from config.
type ProviderFactory func(cfg ProviderConfig) (Provider, error)

// ProviderInfo describes a registered provider.
type ProviderInfo struct {
	Type        ProviderType
	Name        string
	Description string
	// KeyEnv is the environment variable carrying the API key. Empty means no key is needed.
	KeyEnv string
}

// RequiresKey reports whether the provider refuses to start without an API key.
func (i ProviderInfo) RequiresKey() bool {
	return i.KeyEnv != ""
}

type registration struct {
	info    ProviderInfo
	factory ProviderFactory
}

// Registry maps provider types to their factories.
type Registry struct {
	mu      sync.RWMutex
	entries map[ProviderType]registration
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[ProviderType]registration)}
}

// Register adds or replaces a provider.
func (r *Registry) Register(info ProviderInfo, factory ProviderFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[info.Type] = registration{info: info, factory: factory}
}

// Info returns the description of providerType.
func (r *Registry) Info(providerType ProviderType) (ProviderInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[providerType]
	return e.info, ok
}

// List returns every registered provider ordered by type.
func (r *Registry) List() []ProviderInfo {
	r.mu.RLock()
	out := make([]ProviderInfo, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.info)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}

// Resolve picks the provider named by cfg.LLMProvider and checks that its
// API key is configured.
func (r *Registry) Resolve(cfg config.Config) (ProviderInfo, error) {
	providerType := ProviderType(strings.TrimSpace(cfg.LLMProvider))
	if providerType == "" {
		providerType = DefaultProvider
	}

	info, ok := r.Info(providerType)
	if !ok {
		return ProviderInfo{}, fmt.Errorf("%w %q (registered: %s)", ErrUnknownProvider, providerType, r.typeList())
	}
	if info.RequiresKey() && strings.TrimSpace(cfg.APIKey(string(providerType))) == "" {
		return info, fmt.Errorf("%w for %s: set %s or providers.%s.api_key", ErrMissingAPIKey, info.Name, info.KeyEnv, providerType)
	}
	return info, nil
}

// FromConfig resolves and builds the configured provider.
func (r *Registry) FromConfig(cfg config.Config) (Provider, ProviderInfo, error) {
	info, err := r.Resolve(cfg)
	if err != nil {
		return nil, info, err
	}

	r.mu.RLock()
	factory := r.entries[info.Type].factory
	r.mu.RUnlock()

	p, err := factory(ProviderConfig{Type: info.Type, Config: cfg})
	if err != nil {
		return nil, info, err
	}
	return p, info, nil
}

func (r *Registry) typeList() string {
	infos := r.List()
	names := make([]string, len(infos))
	for i, info := range infos {
		names[i] = string(info.Type)
	}
	return strings.Join(names, ", ")
}

// DefaultRegistry holds the providers compiled into the binary.
var DefaultRegistry = NewRegistry()

// RegisterProvider registers a provider with the default registry.
func RegisterProvider(info ProviderInfo, factory ProviderFactory) {
	DefaultRegistry.Register(info, factory)
}

// ListProviders returns the providers of the default registry.
func ListProviders() []ProviderInfo {
	return DefaultRegistry.List()
}

// GetProviderFromConfig builds the provider selected by cfg from the default registry.
func GetProviderFromConfig(cfg config.Config) (Provider, ProviderInfo, error) {
	return DefaultRegistry.FromConfig(cfg)
}
