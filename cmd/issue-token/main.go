package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"characterhub/internal/auth"
	"characterhub/pkg/utils"
)

// issue-token prints a bearer token for the write routes, signed with
// CHARACTERHUB_JWT_SECRET.
func main() {
	subject := flag.String("sub", "operator", "token subject")
	ttl := flag.Duration("ttl", 0, "token lifetime (default CHARACTERHUB_JWT_TTL)")
	flag.Parse()

	cfg := utils.LoadConfig()
	if cfg.Auth.JWTSecret == "" {
		log.Fatal("CHARACTERHUB_JWT_SECRET is not set")
	}

	duration := cfg.Auth.JWTDuration
	if *ttl > 0 {
		duration = *ttl
	}

	tokens := auth.TokenService{
		Secret:   []byte(cfg.Auth.JWTSecret),
		Issuer:   cfg.Auth.JWTIssuer,
		Duration: duration,
	}
	tok, exp, err := tokens.Sign(*subject, auth.ScopeWrite)
	if err != nil {
		log.Fatalf("sign: %v", err)
	}

	fmt.Println(tok)
	log.Printf("expires %s", exp.UTC().Format(time.RFC3339))
}
