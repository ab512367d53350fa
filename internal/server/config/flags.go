package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/yamdb/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-g string   gRPC health bind address (e.g., ":50051")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-t int      access token validity, minutes
//	-l int      confirmation code length
//	-e int      confirmation code ttl, minutes
//	-b string   code cache backend (memory, postgres, leveldb)
//	-p string   code cache path (leveldb)
//
// Notes:
//   - args are filtered with flagx.FilterArgs first so that -c/-config and
//     other components' flags do not break parsing.
//   - Duration flags are accepted as integers in minutes.
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-g", "-d", "-s", "-t", "-l", "-e", "-b", "-p"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to serve the API on")
	fs.StringVar(&config.EndpointAddrGRPC, "g", config.EndpointAddrGRPC, "address and port to serve gRPC health on")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")

	fs.IntVar(&config.ConfirmationCodeLength, "l", config.ConfirmationCodeLength, "confirmation code length")
	codeTTL := fs.Int("e", int(config.ConfirmationCodeTTL.Minutes()), "confirmation code ttl (in minutes)")

	fs.StringVar(&config.CodeCacheBackend, "b", config.CodeCacheBackend, "code cache backend")
	fs.StringVar(&config.CodeCachePath, "p", config.CodeCachePath, "code cache path")

	if err := fs.Parse(args); err != nil {
		return err
	}

	// Only explicit flags overwrite durations; minute rounding would lose
	// sub-minute values coming from JSON or the environment.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
		case "e":
			config.ConfirmationCodeTTL = time.Duration(*codeTTL) * time.Minute
		}
	})
	return nil
}
