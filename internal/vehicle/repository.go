package vehicle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"fleetbooking/internal/booking"
	"fleetbooking/internal/store"
)

const KeyPrefix = "vehicle:"

var (
	ErrNotFound = errors.New("vehicle not found")
	ErrExists   = errors.New("vehicle already exists")
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

func (r *Repository) Get(ctx context.Context, id string) (*Vehicle, error) {
	rec, err := r.store.Get(ctx, Key(id))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return decode(rec)
}

// List returns the fleet ordered by type capacity, then name.
func (r *Repository) List(ctx context.Context) ([]Vehicle, error) {
	recs, err := r.store.GetByPrefix(ctx, KeyPrefix)
	if err != nil {
		return nil, err
	}
	out := make([]Vehicle, 0, len(recs))
	for i := range recs {
		v, err := decode(&recs[i])
		if err != nil {
			continue
		}
		out = append(out, *v)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Capacity != out[j].Capacity {
			return out[i].Capacity < out[j].Capacity
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// Create fills defaults (status available, capacity of the type) and stores the vehicle. An id that is
// already taken fails with ErrExists.
func (r *Repository) Create(ctx context.Context, v *Vehicle) error {
	now := r.now()
	if v.ID == "" {
		v.ID = strconv.FormatInt(now.UnixNano(), 10)
	}
	v.ID = strings.TrimPrefix(v.ID, KeyPrefix)
	if v.Status == "" {
		v.Status = StatusAvailable
	}
	if v.Capacity == 0 {
		v.Capacity, _ = booking.Capacity(v.Type)
	}
	v.CreatedAt = now
	v.UpdatedAt = now

	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := r.store.SetIfVersion(ctx, Key(v.ID), raw, 0); err != nil {
		if errors.Is(err, store.ErrVersionMismatch) {
			return ErrExists
		}
		return err
	}
	return nil
}

type Patch struct {
	Name        *string
	Type        *booking.VehicleType
	Capacity    *int
	PlateNumber *string
	Status      *Status
}

func (r *Repository) Update(ctx context.Context, id string, p Patch) (*Vehicle, error) {
	v, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Name != nil {
		v.Name = *p.Name
	}
	if p.Type != nil {
		v.Type = *p.Type
	}
	if p.Capacity != nil {
		v.Capacity = *p.Capacity
	}
	if p.PlateNumber != nil {
		v.PlateNumber = *p.PlateNumber
	}
	if p.Status != nil {
		v.Status = *p.Status
	}
	v.UpdatedAt = r.now()
	if err := r.put(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	if _, err := r.Get(ctx, id); err != nil {
		return err
	}
	return r.store.Del(ctx, Key(id))
}

func (r *Repository) put(ctx context.Context, v *Vehicle) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = r.store.Set(ctx, Key(v.ID), raw)
	return err
}

func decode(rec *store.Record) (*Vehicle, error) {
	var v Vehicle
	if err := json.Unmarshal(rec.Value, &v); err != nil {
		return nil, fmt.Errorf("decode %s: %w", rec.Key, err)
	}
	v.ID = strings.TrimPrefix(v.ID, KeyPrefix)
	if v.ID == "" {
		v.ID = strings.TrimPrefix(rec.Key, KeyPrefix)
	}
	if _, err := booking.ParseVehicleType(string(v.Type)); err != nil {
		return nil, fmt.Errorf("decode %s: %w", rec.Key, err)
	}
	if _, err := ParseStatus(string(v.Status)); err != nil {
		return nil, fmt.Errorf("decode %s: %w", rec.Key, err)
	}
	return &v, nil
}
