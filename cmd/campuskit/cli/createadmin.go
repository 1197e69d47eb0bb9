// Package cli hosts operator commands that run against the database directly.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/campuskit/campuskit/internal/app"
	"github.com/campuskit/campuskit/internal/directory"
	"github.com/campuskit/campuskit/internal/platform/db"
	"github.com/campuskit/campuskit/internal/shared"
)

// CreateAdmin promotes the account for a provider user id to ADMIN, creating
// the record first when the identity has not been seen yet. This is the
// bootstrap path: the very first administrator cannot be promoted through the
// gated API because nobody passes the gate yet.
func CreateAdmin(args []string) error {
	fs := flag.NewFlagSet("create-admin", flag.ContinueOnError)
	externalID := fs.String("external-id", "", "identity provider user id (required)")
	email := fs.String("email", "", "email, used only when the record does not exist yet")
	firstName := fs.String("first-name", "", "first name, used only on create")
	lastName := fs.String("last-name", "", "last name, used only on create")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *externalID == "" {
		return errors.New("create-admin: -external-id is required")
	}

	cfg, err := app.LoadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		return err
	}
	defer pool.Close()

	store := directory.NewPGStore(pool)

	existing, err := store.GetByExternalID(ctx, *externalID)
	if err == nil {
		role := directory.RoleAdmin
		updated, err := store.Update(ctx, existing.ID, directory.Patch{Role: &role})
		if err != nil {
			return err
		}
		fmt.Printf("promoted %s (%s) to ADMIN\n", updated.Email, updated.ID)
		return nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return err
	}

	if *email == "" {
		return errors.New("create-admin: -email is required when the record does not exist")
	}
	created, err := store.Create(ctx, directory.UserRecord{
		ExternalID: *externalID,
		Email:      *email,
		FirstName:  *firstName,
		LastName:   *lastName,
		Role:       directory.RoleAdmin,
	})
	if err != nil {
		return err
	}
	fmt.Printf("created admin %s (%s)\n", created.Email, created.ID)
	return nil
}
