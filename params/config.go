package params

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Auction struct {
	// Duration sets the bidding window; the deadline is creation time
	// plus Duration and is immutable afterwards.
	Duration time.Duration

	// MinRaiseBps is the minimum raise over the leading bid, in basis
	// points. 500 = the 5% ascending rule.
	MinRaiseBps int64

	// FeeBps is the fee retained from every refund, in basis points.
	// 200 = 2%, truncation favors the fee.
	FeeBps int64
}

type Node struct {
	DBPath  string
	LogFile string
	APIAddr string
}

type Config struct {
	Auction Auction
	Node    Node
}

func Default() Config {
	return Config{
		Auction: Auction{
			Duration:    1 * time.Hour,
			MinRaiseBps: 500,
			FeeBps:      200,
		},
		Node: Node{
			DBPath:  "data/auction.db",
			LogFile: "data/auctiond.log",
			APIAddr: ":8080",
		},
	}
}

// LoadFromEnv loads configuration from a .env file (if present) and
// environment variables. Priority: ENV > .env file > defaults.
func LoadFromEnv(envPath string) Config {
	cfg := Default()

	if envPath != "" {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load() // .env in current directory, optional
	}

	if v := os.Getenv("AUCTION_DURATION_S"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			cfg.Auction.Duration = time.Duration(secs) * time.Second
		}
	}
	if v := os.Getenv("AUCTION_MIN_RAISE_BPS"); v != "" {
		if bps, err := strconv.ParseInt(v, 10, 64); err == nil && bps >= 0 {
			cfg.Auction.MinRaiseBps = bps
		}
	}
	if v := os.Getenv("AUCTION_FEE_BPS"); v != "" {
		if bps, err := strconv.ParseInt(v, 10, 64); err == nil && bps >= 0 && bps <= 10000 {
			cfg.Auction.FeeBps = bps
		}
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		cfg.Node.DBPath = v
	}
	if v := os.Getenv("LOG_FILE"); v != "" {
		cfg.Node.LogFile = v
	}
	if v := os.Getenv("API_ADDR"); v != "" {
		cfg.Node.APIAddr = v
	}

	return cfg
}
