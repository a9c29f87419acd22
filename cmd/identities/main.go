// Command identities hashes the secrets of an identities file for the hashed registry mode.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"postboard/internal/auth"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	in := flag.String("in", "", "Identities YAML with plaintext secrets (defaults to the built-in registry)")
	out := flag.String("out", "", "Write the hashed registry here instead of stdout")
	cost := flag.Int("cost", bcrypt.DefaultCost, "bcrypt cost")
	flag.Parse()

	identities := auth.DefaultIdentities()
	if *in != "" {
		loaded, err := auth.LoadIdentitiesFile(*in)
		if err != nil {
			return fmt.Errorf("load identities: %w", err)
		}
		identities = loaded
	}

	hashed, err := auth.HashSecrets(identities, *cost)
	if err != nil {
		return fmt.Errorf("hash secrets: %w", err)
	}
	raw, err := auth.MarshalIdentities(hashed)
	if err != nil {
		return fmt.Errorf("marshal identities: %w", err)
	}

	if *out == "" {
		_, err = os.Stdout.Write(raw)
		return err
	}
	return os.WriteFile(*out, raw, 0o600)
}
