// Command createadmin seeds the administrator account. Running it again is a no-op.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/Skotchmaster/blog/internal/repo"
	"github.com/Skotchmaster/blog/internal/service"
	pkgconfig "github.com/Skotchmaster/blog/pkg/config"
	pkgdb "github.com/Skotchmaster/blog/pkg/db"
)

func main() {
	_ = godotenv.Load(".env")

	username := flag.String("username", "Admin", "administrator username")
	password := flag.String("password", os.Getenv("ADMIN_PASSWORD"), "administrator password (default $ADMIN_PASSWORD)")
	flag.Parse()

	if err := pkgconfig.NonEmpty(*password, "ADMIN_PASSWORD"); err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := pkgdb.Open(ctx, pkgconfig.EnvDefault("DATABASE_DRIVER", pkgdb.DriverPostgres), os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	store := repo.New(db)
	if err := store.Migrate(ctx); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	svc := &service.UserService{Repo: store, EmailDomain: pkgconfig.EnvDefault("EMAIL_DOMAIN", service.DefaultDomain)}
	u, created, err := svc.EnsureAdmin(ctx, *username, *password)
	if err != nil {
		log.Fatalf("create admin: %v", err)
	}
	if !created {
		fmt.Printf("admin %q already exists\n", u.Username)
		return
	}
	fmt.Printf("admin created: %s / %s\n", u.Username, u.Email)
}
