/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package directory

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"trustio-wallet-go/internal/models"
	"trustio-wallet-go/internal/storage"

	"go.uber.org/zap"
)

// Sentinel errors for directory operations
var (
	ErrAccountNotFound    = errors.New("account not found")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrDuplicateUsername  = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Directory is the in-memory roster of accounts plus the active session,
// kept consistent with the document store after every mutation. All access
// goes through a single mutex: one writer at a time, made explicit rather
// than relying on the caller being single-threaded.
type Directory struct {
	mu       sync.Mutex
	store    storage.DocumentStore
	accounts []*models.Account
	session  *models.Account
	theme    models.Theme

	// sessionCleared is set when reconciliation drops a stale session,
	// so Load removes the persisted document as well.
	sessionCleared bool
}

// Load reads the roster, session and theme documents, runs the
// reconciliation steps, and persists the reconciled state.
func Load(ctx context.Context, store storage.DocumentStore) (*Directory, error) {
	d := &Directory{store: store, theme: models.ThemeSystem}

	raw, err := store.Load(ctx, storage.KeyRoster)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		// first run, roster seeded by reconciliation below
	case err != nil:
		return nil, fmt.Errorf("failed to load roster: %w", err)
	default:
		var roster []models.Account
		if err := json.Unmarshal(raw, &roster); err != nil {
			return nil, fmt.Errorf("failed to decode roster: %w", err)
		}
		for i := range roster {
			d.accounts = append(d.accounts, &roster[i])
		}
	}

	raw, err = store.Load(ctx, storage.KeySession)
	switch {
	case errors.Is(err, storage.ErrNotFound):
	case err != nil:
		return nil, fmt.Errorf("failed to load session: %w", err)
	default:
		var session models.Account
		if err := json.Unmarshal(raw, &session); err != nil {
			return nil, fmt.Errorf("failed to decode session: %w", err)
		}
		d.session = &session
	}

	raw, err = store.Load(ctx, storage.KeyTheme)
	switch {
	case errors.Is(err, storage.ErrNotFound):
	case err != nil:
		return nil, fmt.Errorf("failed to load theme: %w", err)
	default:
		if t := models.Theme(raw); models.ValidTheme(t) {
			d.theme = t
		}
	}

	d.reconcile()

	if d.sessionCleared {
		if err := store.Delete(ctx, storage.KeySession); err != nil {
			return nil, fmt.Errorf("failed to clear stale session: %w", err)
		}
	}
	if err := d.flushLocked(ctx); err != nil {
		return nil, fmt.Errorf("failed to persist reconciled roster: %w", err)
	}

	zap.L().Info("Account directory loaded",
		zap.Int("accounts", len(d.accounts)),
		zap.Bool("session_active", d.session != nil))
	return d, nil
}

// findLocked resolves an identifier to a roster entry: case-sensitive
// exact match on email, or case-insensitive exact match on username.
func (d *Directory) findLocked(identifier string) *models.Account {
	for _, a := range d.accounts {
		if a.Email == identifier || strings.EqualFold(a.Username, identifier) {
			return a
		}
	}
	return nil
}

// Find returns a copy of the matching account, or nil. Callers stage
// mutations on the copy and apply them through Commit.
func (d *Directory) Find(identifier string) *models.Account {
	d.mu.Lock()
	defer d.mu.Unlock()
	if a := d.findLocked(identifier); a != nil {
		return a.Clone()
	}
	return nil
}

// Accounts returns a snapshot of the roster in storage order.
func (d *Directory) Accounts() []models.Account {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]models.Account, 0, len(d.accounts))
	for _, a := range d.accounts {
		out = append(out, *a.Clone())
	}
	return out
}

// Session returns a copy of the authenticated account, or nil.
func (d *Directory) Session() *models.Account {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.session == nil {
		return nil
	}
	return d.session.Clone()
}

// Register inserts a brand-new account after enforcing email and username
// uniqueness, then flushes the roster.
func (d *Directory) Register(ctx context.Context, account *models.Account) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, a := range d.accounts {
		if a.Email == account.Email {
			return fmt.Errorf("%w: %s", ErrDuplicateEmail, account.Email)
		}
		if strings.EqualFold(a.Username, account.Username) {
			return fmt.Errorf("%w: %s", ErrDuplicateUsername, account.Username)
		}
	}

	d.accounts = append(d.accounts, account.Clone())
	if err := d.flushLocked(ctx); err != nil {
		return err
	}

	zap.L().Info("Account registered",
		zap.String("username", account.Username),
		zap.String("email", account.Email))
	return nil
}

// Login authenticates by email or username and establishes the session.
func (d *Directory) Login(ctx context.Context, identifier, password string) (*models.Account, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	account := d.findLocked(identifier)
	if account == nil {
		return nil, ErrInvalidCredentials
	}
	if subtle.ConstantTimeCompare([]byte(account.Password), []byte(password)) != 1 {
		return nil, ErrInvalidCredentials
	}

	d.session = account.Clone()
	if err := d.flushLocked(ctx); err != nil {
		return nil, err
	}

	zap.L().Info("Session established", zap.String("username", account.Username))
	return account.Clone(), nil
}

// Logout clears the session.
func (d *Directory) Logout(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.session = nil
	if err := d.store.Delete(ctx, storage.KeySession); err != nil {
		return err
	}
	zap.L().Info("Session cleared")
	return nil
}

// UpdateAccount replaces the roster entry whose email matches and syncs
// the session, flushing both in one write.
func (d *Directory) UpdateAccount(ctx context.Context, account *models.Account) error {
	return d.Commit(ctx, account)
}

// Commit applies one or more staged account updates and flushes the
// roster (and session, when the acting account is the session) in a
// single store write. Every entry must already exist: the engine never
// creates accounts through a mutation call.
func (d *Directory) Commit(ctx context.Context, accounts ...*models.Account) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, updated := range accounts {
		replaced := false
		for i, a := range d.accounts {
			if a.Email == updated.Email {
				d.accounts[i] = updated.Clone()
				replaced = true
				break
			}
		}
		if !replaced {
			return fmt.Errorf("%w: %s", ErrAccountNotFound, updated.Email)
		}
		if d.session != nil && d.session.Email == updated.Email {
			d.session = updated.Clone()
		}
	}

	return d.flushLocked(ctx)
}

// Theme returns the stored display preference.
func (d *Directory) Theme() models.Theme {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.theme
}

// SetTheme persists the display preference.
func (d *Directory) SetTheme(ctx context.Context, theme models.Theme) error {
	if !models.ValidTheme(theme) {
		return fmt.Errorf("unsupported theme %q", theme)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.theme = theme
	return d.store.Save(ctx, storage.KeyTheme, []byte(theme))
}

// flushLocked serializes the roster and session into one transactional
// store write so neither can be observed ahead of the other.
func (d *Directory) flushLocked(ctx context.Context) error {
	roster := make([]models.Account, 0, len(d.accounts))
	for _, a := range d.accounts {
		roster = append(roster, *a)
	}
	rosterDoc, err := json.Marshal(roster)
	if err != nil {
		return fmt.Errorf("failed to encode roster: %w", err)
	}

	docs := map[string][]byte{storage.KeyRoster: rosterDoc}
	if d.session != nil {
		sessionDoc, err := json.Marshal(d.session)
		if err != nil {
			return fmt.Errorf("failed to encode session: %w", err)
		}
		docs[storage.KeySession] = sessionDoc
	}

	return d.store.SaveAll(ctx, docs)
}
