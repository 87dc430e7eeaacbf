package issuance

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-issuance/core"
)

// ValidatorPack names a proof validator so hosts can select one from config.
type ValidatorPack struct {
	Name      string
	Validator core.ProofValidator
}

type CommandQueryBundleFactory func(service CommandQueryService) (any, error)

type ExtensionHooks struct {
	mu sync.RWMutex

	validators map[string]ValidatorPack
	bundles    map[string]CommandQueryBundleFactory
}

func NewExtensionHooks() *ExtensionHooks {
	return &ExtensionHooks{
		validators: map[string]ValidatorPack{},
		bundles:    map[string]CommandQueryBundleFactory{},
	}
}

func (h *ExtensionHooks) RegisterValidatorPack(pack ValidatorPack) error {
	if h == nil {
		return fmt.Errorf("issuance: extension hooks are nil")
	}
	name := strings.TrimSpace(strings.ToLower(pack.Name))
	if name == "" {
		return fmt.Errorf("issuance: validator pack name is required")
	}
	if pack.Validator == nil {
		return fmt.Errorf("issuance: validator pack %q has no validator", name)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, exists := h.validators[name]; exists {
		return fmt.Errorf("issuance: validator pack %q already registered", name)
	}
	h.validators[name] = ValidatorPack{Name: name, Validator: pack.Validator}
	return nil
}

// ValidatorOption returns a service option that installs the named validator.
func (h *ExtensionHooks) ValidatorOption(name string) (Option, error) {
	if h == nil {
		return nil, fmt.Errorf("issuance: extension hooks are nil")
	}
	name = strings.TrimSpace(strings.ToLower(name))
	h.mu.RLock()
	pack, ok := h.validators[name]
	h.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("issuance: validator pack %q is not registered", name)
	}
	return core.WithProofValidator(pack.Validator), nil
}

func (h *ExtensionHooks) ValidatorNames() []string {
	if h == nil {
		return nil
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return sortedKeys(h.validators)
}

func (h *ExtensionHooks) RegisterCommandQueryBundle(
	name string,
	factory CommandQueryBundleFactory,
) error {
	if h == nil {
		return fmt.Errorf("issuance: extension hooks are nil")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("issuance: command/query bundle name is required")
	}
	if factory == nil {
		return fmt.Errorf("issuance: command/query bundle %q factory is required", name)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, exists := h.bundles[name]; exists {
		return fmt.Errorf("issuance: command/query bundle %q already registered", name)
	}
	h.bundles[name] = factory
	return nil
}

func (h *ExtensionHooks) BuildCommandQueryBundles(
	service CommandQueryService,
) (map[string]any, error) {
	if h == nil {
		return map[string]any{}, nil
	}
	if service == nil {
		return nil, fmt.Errorf("issuance: command/query service is required")
	}

	h.mu.RLock()
	names := sortedKeys(h.bundles)
	factories := make(map[string]CommandQueryBundleFactory, len(h.bundles))
	for name, factory := range h.bundles {
		factories[name] = factory
	}
	h.mu.RUnlock()

	result := make(map[string]any, len(names))
	for _, name := range names {
		bundle, err := factories[name](service)
		if err != nil {
			return nil, err
		}
		result[name] = bundle
	}
	return result, nil
}

func (h *ExtensionHooks) BundleNames() []string {
	if h == nil {
		return nil
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return sortedKeys(h.bundles)
}

func sortedKeys[V any](in map[string]V) []string {
	names := make([]string, 0, len(in))
	for name := range in {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
