package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"fleetbooking/internal/store"
)

const KeyPrefix = "booking:"

func Key(id string) string {
	return KeyPrefix + NormalizeID(id)
}

// NormalizeID accepts both the bare id and the prefixed store key.
func NormalizeID(id string) string {
	return strings.TrimPrefix(strings.TrimSpace(id), KeyPrefix)
}

// Repository maps bookings onto the record store. Records are decoded and checked on the way out.
type Repository struct {
	store store.Store
	log   *zap.Logger
}

func NewRepository(st store.Store, log *zap.Logger) *Repository {
	if log == nil {
		log = zap.NewNop()
	}
	return &Repository{store: st, log: log}
}

func (r *Repository) Get(ctx context.Context, id string) (*Booking, error) {
	rec, err := r.store.Get(ctx, Key(id))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return decode(rec)
}

// List returns every decodable booking. Corrupt records are logged and skipped.
func (r *Repository) List(ctx context.Context) ([]Booking, error) {
	recs, err := r.store.GetByPrefix(ctx, KeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	out := make([]Booking, 0, len(recs))
	for i := range recs {
		b, err := decode(&recs[i])
		if err != nil {
			r.log.Warn("skipping booking record", zap.String("key", recs[i].Key), zap.Error(err))
			continue
		}
		out = append(out, *b)
	}
	return out, nil
}

// Insert stores a new booking; it fails with ErrConflict when the id is already taken.
func (r *Repository) Insert(ctx context.Context, b *Booking) error {
	return r.write(ctx, b, 0)
}

// Update writes b only if nobody else wrote the record since b was read.
func (r *Repository) Update(ctx context.Context, b *Booking) error {
	return r.write(ctx, b, b.Version)
}

func (r *Repository) write(ctx context.Context, b *Booking, expected int64) error {
	raw, err := json.Marshal(b)
	if err != nil {
		return err
	}
	v, err := r.store.SetIfVersion(ctx, Key(b.ID), raw, expected)
	if err != nil {
		if errors.Is(err, store.ErrVersionMismatch) {
			return ErrConflict
		}
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	b.Version = v
	return nil
}

func decode(rec *store.Record) (*Booking, error) {
	var b Booking
	if err := json.Unmarshal(rec.Value, &b); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptRecord, rec.Key, err)
	}
	b.ID = NormalizeID(b.ID)
	if b.ID == "" {
		b.ID = NormalizeID(rec.Key)
	}
	if _, err := ParseStatus(string(b.Status)); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptRecord, rec.Key, err)
	}
	if _, err := ParseTripStatus(string(b.TripStatus)); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptRecord, rec.Key, err)
	}
	if _, err := ParseVehicleType(string(b.VehicleType)); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptRecord, rec.Key, err)
	}
	b.Version = rec.Version
	return &b, nil
}
