// Package chains holds the static table of supported networks and the
// stablecoins deployed on them.
package chains

import (
	"fmt"
	"strings"
	"sync"

	"github.com/vitwit/stablepay/types"
)

// Registry is an immutable lookup table of chains and tokens. Build one
// with NewRegistry or Extend; nothing mutates it afterwards.
type Registry struct {
	order   []string
	chains  map[string]types.ChainConfig
	tokens  map[string]map[string]types.TokenConfig
	symbols map[string][]string // per-chain listing order
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the process-wide registry of built-in chains and tokens
func Default() *Registry {
	defaultOnce.Do(func() {
		r, err := NewRegistry(defaultChains, defaultTokens)
		if err != nil {
			panic(fmt.Sprintf("chains: invalid built-in registry: %v", err))
		}
		defaultRegistry = r
	})
	return defaultRegistry
}

// NewRegistry builds a registry from chain and token definitions. Tokens
// are keyed by chain key.
func NewRegistry(chains []types.ChainConfig, tokens map[string][]types.TokenConfig) (*Registry, error) {
	r := &Registry{
		chains:  make(map[string]types.ChainConfig, len(chains)),
		tokens:  make(map[string]map[string]types.TokenConfig, len(chains)),
		symbols: make(map[string][]string, len(chains)),
	}

	if err := r.addChains(chains); err != nil {
		return nil, err
	}
	if err := r.addTokens(tokens); err != nil {
		return nil, err
	}
	return r, nil
}

// Extend returns a new registry holding r's entries plus the given ones.
// An extra chain or token with an existing key replaces the built-in one.
func (r *Registry) Extend(chains []types.ChainConfig, tokens map[string][]types.TokenConfig) (*Registry, error) {
	out := &Registry{
		order:   append([]string(nil), r.order...),
		chains:  make(map[string]types.ChainConfig, len(r.chains)+len(chains)),
		tokens:  make(map[string]map[string]types.TokenConfig, len(r.tokens)),
		symbols: make(map[string][]string, len(r.symbols)),
	}
	for k, c := range r.chains {
		out.chains[k] = c
	}
	for k, byChain := range r.tokens {
		m := make(map[string]types.TokenConfig, len(byChain))
		for s, t := range byChain {
			m[s] = t
		}
		out.tokens[k] = m
		out.symbols[k] = append([]string(nil), r.symbols[k]...)
	}

	if err := out.addChains(chains); err != nil {
		return nil, err
	}
	if err := out.addTokens(tokens); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Registry) addChains(chains []types.ChainConfig) error {
	for _, c := range chains {
		key := normalizeChain(c.Key)
		if key == "" {
			return fmt.Errorf("chain %q has an empty key", c.Name)
		}
		if c.BlockTime <= 0 {
			return fmt.Errorf("chain %s: block time must be positive, got %v", key, c.BlockTime)
		}
		c.Key = key
		if _, exists := r.chains[key]; !exists {
			r.order = append(r.order, key)
		}
		r.chains[key] = c
	}
	return nil
}

func (r *Registry) addTokens(tokens map[string][]types.TokenConfig) error {
	byKey := make(map[string][]types.TokenConfig, len(tokens))
	for chain, list := range tokens {
		key := normalizeChain(chain)
		if _, ok := r.chains[key]; !ok {
			return fmt.Errorf("tokens configured for unknown chain %q", chain)
		}
		byKey[key] = append(byKey[key], list...)
	}

	// walk chains in registration order so listings stay deterministic
	for _, chain := range r.order {
		if err := r.addChainTokens(chain, byKey[chain]); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) addChainTokens(chain string, tokens []types.TokenConfig) error {
	if len(tokens) == 0 {
		return nil
	}
	byChain, ok := r.tokens[chain]
	if !ok {
		byChain = make(map[string]types.TokenConfig)
		r.tokens[chain] = byChain
	}
	for _, t := range tokens {
		sym := normalizeSymbol(t.Symbol)
		if sym == "" {
			return fmt.Errorf("chain %s: token with empty symbol", chain)
		}
		if t.Decimals < 0 {
			return fmt.Errorf("chain %s: token %s has negative decimals", chain, sym)
		}
		t.Symbol = sym
		if _, exists := byChain[sym]; !exists {
			r.symbols[chain] = append(r.symbols[chain], sym)
		}
		byChain[sym] = t
	}
	return nil
}

// Chain looks up a chain by name, case-insensitively
func (r *Registry) Chain(name string) (types.ChainConfig, bool) {
	c, ok := r.chains[normalizeChain(name)]
	return c, ok
}

// Token looks up a token by chain and symbol, case-insensitively
func (r *Registry) Token(chain, symbol string) (types.TokenConfig, bool) {
	byChain, ok := r.tokens[normalizeChain(chain)]
	if !ok {
		return types.TokenConfig{}, false
	}
	t, ok := byChain[normalizeSymbol(symbol)]
	return t, ok
}

// Chains returns the supported chain keys in registration order
func (r *Registry) Chains() []string {
	return append([]string(nil), r.order...)
}

// Tokens returns the token symbols supported on a chain
func (r *Registry) Tokens(chain string) []string {
	return append([]string(nil), r.symbols[normalizeChain(chain)]...)
}

func normalizeChain(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func normalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
