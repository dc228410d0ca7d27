package user

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"fleetbooking/internal/store"
)

const KeyPrefix = "user:"

var (
	ErrNotFound = errors.New("user not found")
	ErrExists   = errors.New("user already exists")
)

func Key(id string) string {
	return KeyPrefix + strings.TrimPrefix(id, KeyPrefix)
}

type Repository struct {
	store store.Store
	now   func() time.Time
}

func NewRepository(st store.Store) *Repository {
	return &Repository{store: st, now: time.Now}
}

func (r *Repository) Get(ctx context.Context, id string) (*User, error) {
	rec, err := r.store.Get(ctx, Key(id))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return decode(rec)
}

// FindByEmail scans profiles for a case-insensitive email match. Used for accounts whose profile key
// predates keying by auth id.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	email = strings.ToLower(strings.TrimSpace(email))
	for i := range all {
		if strings.ToLower(all[i].Email) == email {
			return &all[i], nil
		}
	}
	return nil, ErrNotFound
}

// List returns all profiles sorted by name.
func (r *Repository) List(ctx context.Context) ([]User, error) {
	recs, err := r.store.GetByPrefix(ctx, KeyPrefix)
	if err != nil {
		return nil, err
	}
	out := make([]User, 0, len(recs))
	for i := range recs {
		u, err := decode(&recs[i])
		if err != nil {
			continue
		}
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Create stores a new profile. When u.ID is empty the profile is keyed by AuthID, or by a timestamp.
// It fails with ErrExists instead of replacing a profile already stored under that id.
func (r *Repository) Create(ctx context.Context, u *User) error {
	now := r.now()
	if u.ID == "" {
		u.ID = u.AuthID
	}
	if u.ID == "" {
		u.ID = strconv.FormatInt(now.UnixNano(), 10)
	}
	u.ID = strings.TrimPrefix(u.ID, KeyPrefix)
	u.CreatedAt = now
	u.UpdatedAt = now

	raw, err := json.Marshal(u)
	if err != nil {
		return err
	}
	if _, err := r.store.SetIfVersion(ctx, Key(u.ID), raw, 0); err != nil {
		if errors.Is(err, store.ErrVersionMismatch) {
			return ErrExists
		}
		return err
	}
	return nil
}

type Patch struct {
	Name       *string
	Email      *string
	Phone      *string
	Department *string
	Role       *Role
}

func (r *Repository) Update(ctx context.Context, id string, p Patch) (*User, error) {
	u, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	if p.Department != nil {
		u.Department = *p.Department
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	u.UpdatedAt = r.now()
	if err := r.put(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Upsert writes the profile as-is. Seeding uses it to make re-runs idempotent.
func (r *Repository) Upsert(ctx context.Context, u *User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = r.now()
	}
	u.UpdatedAt = r.now()
	return r.put(ctx, u)
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	if _, err := r.Get(ctx, id); err != nil {
		return err
	}
	return r.store.Del(ctx, Key(id))
}

func (r *Repository) put(ctx context.Context, u *User) error {
	raw, err := json.Marshal(u)
	if err != nil {
		return err
	}
	_, err = r.store.Set(ctx, Key(u.ID), raw)
	return err
}

func decode(rec *store.Record) (*User, error) {
	var u User
	if err := json.Unmarshal(rec.Value, &u); err != nil {
		return nil, fmt.Errorf("decode %s: %w", rec.Key, err)
	}
	u.ID = strings.TrimPrefix(u.ID, KeyPrefix)
	if u.ID == "" {
		u.ID = strings.TrimPrefix(rec.Key, KeyPrefix)
	}
	if _, err := ParseRole(string(u.Role)); err != nil {
		return nil, fmt.Errorf("decode %s: %w", rec.Key, err)
	}
	return &u, nil
}
