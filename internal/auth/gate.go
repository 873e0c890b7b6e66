// Package auth verifies the single configured administrator and issues the
// credentials that mutating requests must carry.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/Oxyrus/parish/internal/storage"
)

// ErrAuthFailed is the only failure Authenticate reports, whatever the cause.
var ErrAuthFailed = errors.New("auth: invalid credentials")

// Principal is the authenticated administrator attached to a request.
type Principal struct {
	AdminID int64  `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
}

// Identity is the administrator as configured in the environment.
type Identity struct {
	Email        string
	PasswordHash string
	Name         string
}

type Gate struct {
	logger   *slog.Logger
	identity Identity
	hash     []byte
	dummy    []byte
	adminID  int64
}

// NewGate prepares a gate for identity. An empty email or a hash bcrypt cannot
// read leaves the gate unconfigured and every attempt fails.
func NewGate(logger *slog.Logger, identity Identity) *Gate {
	g := &Gate{
		logger: logger,
		identity: Identity{
			Email:        normalizeEmail(identity.Email),
			PasswordHash: identity.PasswordHash,
			Name:         strings.TrimSpace(identity.Name),
		},
	}

	cost := bcrypt.DefaultCost
	if g.identity.Email != "" && g.identity.PasswordHash != "" {
		if c, err := bcrypt.Cost([]byte(g.identity.PasswordHash)); err == nil {
			g.hash = []byte(g.identity.PasswordHash)
			cost = c
		} else {
			logger.Warn("admin password hash is not a bcrypt hash; logins disabled", "error", err)
		}
	}

	// Compared against when the email is wrong so both failures cost one bcrypt run.
	dummy, err := bcrypt.GenerateFromPassword([]byte("parish-dummy-password"), cost)
	if err != nil {
		logger.Error("failed to prepare dummy hash", "error", err)
	}
	g.dummy = dummy

	return g
}

// Configured reports whether logins can succeed at all.
func (g *Gate) Configured() bool {
	return g.hash != nil
}

// Sync mirrors the configured administrator into the admins table and records
// the row id as the principal identifier. The environment wins over any row
// already stored.
func (g *Gate) Sync(ctx context.Context, admins storage.Admins) error {
	if !g.Configured() {
		g.logger.Warn("no admin configured; admin routes will reject every request")
		return nil
	}

	name := g.identity.Name
	if name == "" {
		name = "Administrator"
	}

	admin, err := admins.Upsert(ctx, storage.AdminUpsert{
		Email:        g.identity.Email,
		PasswordHash: g.identity.PasswordHash,
		Name:         name,
	})
	if err != nil {
		return fmt.Errorf("auth: sync admin: %w", err)
	}

	g.adminID = admin.ID
	g.identity.Name = admin.Name
	g.logger.Info("admin identity synced", "adminID", admin.ID)
	return nil
}

// Authenticate checks email and password against the configured identity.
// Every call performs one bcrypt comparison so a wrong email and a wrong
// password take the same time and yield the same error.
func (g *Gate) Authenticate(_ context.Context, email, password string) (Principal, error) {
	emailOK := subtle.ConstantTimeCompare([]byte(normalizeEmail(email)), []byte(g.identity.Email)) == 1

	hash := g.dummy
	if g.Configured() && emailOK {
		hash = g.hash
	}

	var pwErr error
	if hash == nil {
		pwErr = ErrAuthFailed
	} else {
		pwErr = bcrypt.CompareHashAndPassword(hash, []byte(password))
	}

	if !g.Configured() || !emailOK || pwErr != nil {
		return Principal{}, ErrAuthFailed
	}

	return Principal{
		AdminID: g.adminID,
		Email:   g.identity.Email,
		Name:    g.identity.Name,
	}, nil
}

// Lookup resolves a principal id carried by a session or token.
func (g *Gate) Lookup(id int64) (Principal, bool) {
	if !g.Configured() || id != g.adminID {
		return Principal{}, false
	}
	return Principal{
		AdminID: g.adminID,
		Email:   g.identity.Email,
		Name:    g.identity.Name,
	}, true
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
