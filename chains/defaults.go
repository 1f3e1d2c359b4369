package chains

import "github.com/vitwit/stablepay/types"

// EVM networks
const (
	Polygon  = "polygon"
	Ethereum = "ethereum"
	Arbitrum = "arbitrum"
	Base     = "base"
	Optimism = "optimism"
)

var defaultChains = []types.ChainConfig{
	{
		Key:         Polygon,
		Name:        "Polygon",
		ChainID:     137,
		DefaultRPC:  "https://polygon-rpc.com",
		BlockTime:   2.0,
		ExplorerURL: "https://polygonscan.com",
	},
	{
		Key:         Ethereum,
		Name:        "Ethereum",
		ChainID:     1,
		DefaultRPC:  "https://eth.llamarpc.com",
		BlockTime:   12.0,
		ExplorerURL: "https://etherscan.io",
	},
	{
		Key:         Arbitrum,
		Name:        "Arbitrum One",
		ChainID:     42161,
		DefaultRPC:  "https://arb1.arbitrum.io/rpc",
		BlockTime:   0.25,
		ExplorerURL: "https://arbiscan.io",
	},
	{
		Key:         Base,
		Name:        "Base",
		ChainID:     8453,
		DefaultRPC:  "https://mainnet.base.org",
		BlockTime:   2.0,
		ExplorerURL: "https://basescan.org",
	},
	{
		Key:         Optimism,
		Name:        "Optimism",
		ChainID:     10,
		DefaultRPC:  "https://mainnet.optimism.io",
		BlockTime:   2.0,
		ExplorerURL: "https://optimistic.etherscan.io",
	},
}

func usdc(address string) types.TokenConfig {
	return types.TokenConfig{Symbol: "USDC", Name: "USD Coin", Address: address, Decimals: 6}
}

func usdt(address string) types.TokenConfig {
	return types.TokenConfig{Symbol: "USDT", Name: "Tether USD", Address: address, Decimals: 6}
}

func dai(address string) types.TokenConfig {
	return types.TokenConfig{Symbol: "DAI", Name: "Dai Stablecoin", Address: address, Decimals: 18}
}

var defaultTokens = map[string][]types.TokenConfig{
	Polygon: {
		usdc("0x3c499c542cEF5E3811e1192ce70d8cC03d5c3359"),
		usdt("0xc2132D05D31c914a87C6611C10748AEb04B58e8F"),
		dai("0x8f3Cf7ad23Cd3CaDbD9735AFf958023239c6A063"),
	},
	Ethereum: {
		usdc("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"),
		usdt("0xdAC17F958D2ee523a2206206994597C13D831ec7"),
		dai("0x6B175474E89094C44Da98b954EedeAC495271d0F"),
	},
	Arbitrum: {
		usdc("0xaf88d065e77c8cC2239327C5EDb3A432268e5831"),
		usdt("0xFd086bC7CD5C481DCC9C85ebE478A1C0b69FCbb9"),
	},
	Base: {
		usdc("0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913"),
	},
	Optimism: {
		usdc("0x0b2C639c533813f4Aa9D7837CAf62653d097Ff85"),
		usdt("0x94b008aA00579c1307B0EF2c499aD98a8ce58e58"),
	},
}
