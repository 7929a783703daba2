// cmd/bootstrap/main.go
//
// Operator CLI: configuration check and first-admin creation.
//
// Usage
// -----
//
//	bootstrap --check-env     # report recommended-but-missing settings
//	bootstrap                 # interactively create an admin account
//
// The account flow asks for an email-shaped username and a password
// (read without echo, confirmed once), hashes it, and inserts the
// account.  A duplicate username aborts with a clear message instead of
// overwriting the existing account.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"regexp"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/najeorg/naje-backend/internal/admin"
	"github.com/najeorg/naje-backend/internal/auth"
	"github.com/najeorg/naje-backend/internal/config"
	"github.com/najeorg/naje-backend/internal/database"
	"github.com/najeorg/naje-backend/internal/logger"
)

var usernamePattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func main() {
	checkEnv := flag.Bool("check-env", false, "report missing recommended configuration and exit")
	flag.Parse()

	wd, _ := os.Getwd()
	if _, err := logger.New(wd, false); err != nil {
		log.Fatalf("start logger: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	if *checkEnv {
		missing := cfg.MissingRecommended()
		if len(missing) == 0 {
			fmt.Println("configuration complete")
			return
		}
		fmt.Println("missing recommended configuration:")
		for _, m := range missing {
			fmt.Println("  -", m)
		}
		os.Exit(1)
	}

	db, err := database.OpenWithOptions(cfg.Database.DSN, 2, 1)
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}
	defer db.Close()

	username, err := readUsername()
	if err != nil {
		log.Fatalf("read username: %v", err)
	}
	password, err := readPassword()
	if err != nil {
		log.Fatalf("read password: %v", err)
	}

	encoded, err := auth.HashPassword(password)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := admin.Create(ctx, db, username, encoded); err != nil {
		if errors.Is(err, admin.ErrExists) {
			log.Fatalf("account %q already exists", username)
		}
		log.Fatalf("create account: %v", err)
	}

	fmt.Printf("admin account %q created\n", username)
}

func readUsername() (string, error) {
	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("admin email: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return "", err
		}
		username := strings.TrimSpace(line)
		if usernamePattern.MatchString(username) {
			return username, nil
		}
		fmt.Println("please enter a valid email address")
	}
}

func readPassword() (string, error) {
	for {
		fmt.Print("password: ")
		first, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return "", err
		}
		if msg, ok := checkStrength(string(first)); !ok {
			fmt.Println(msg)
			continue
		}

		fmt.Print("repeat password: ")
		second, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return "", err
		}
		if string(first) != string(second) {
			fmt.Println("passwords do not match, try again")
			continue
		}
		return string(first), nil
	}
}

// checkStrength enforces the minimum password policy: at least eight
// characters with upper, lower, digit, and special classes present.
func checkStrength(pw string) (string, bool) {
	if len(pw) < 8 {
		return "password must be at least 8 characters", false
	}
	var upper, lower, digit, special bool
	for _, r := range pw {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		default:
			special = true
		}
	}
	if !upper || !lower || !digit || !special {
		return "password needs upper case, lower case, a digit, and a special character", false
	}
	return "", true
}
