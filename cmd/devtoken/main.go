// Command devtoken prints an access token the watch-party service accepts.
// For local development against a self-issued key pair.
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/cwrk-planet/watch-party/internal/domain"
	"github.com/cwrk-planet/watch-party/internal/security"
)

func main() {
	var (
		keyPath  = flag.String("key", "./keys/jwt_private.pem", "RSA private key (PEM)")
		issuer   = flag.String("iss", "cwrk-auth", "token issuer")
		audience = flag.String("aud", "watch-party", "token audience")
		userID   = flag.Int64("user", 1, "user id (sub)")
		email    = flag.String("email", "dev@example.com", "email claim")
		ttl      = flag.Duration("ttl", time.Hour, "token lifetime")
	)
	flag.Parse()

	key, err := security.LoadRSAPrivateKeyFromPEM(*keyPath)
	if err != nil {
		log.Fatalf("load key: %v", err)
	}

	signer := security.NewSigner(key, *issuer, *audience, *ttl, 30*time.Second)
	tok, err := signer.Sign(domain.Principal{UserID: domain.UserID(*userID), Email: *email}, time.Now())
	if err != nil {
		log.Fatalf("sign: %v", err)
	}
	fmt.Println(tok)
}
