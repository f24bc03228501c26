package coupon

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/go-faster/errors"
)

// Store provides lookup over the static coupon list.
type Store interface {
	List() []Coupon
	FindByCode(code string) (*Coupon, error)
}

// FileStore is a read-only Store loaded once from a JSON file. Codes match
// case-insensitively.
type FileStore struct {
	coupons []Coupon
	byCode  map[string]*Coupon
}

var _ Store = (*FileStore)(nil)

// LoadFile reads the coupon definitions from the given JSON file.
func LoadFile(path string) (*FileStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read coupons file")
	}
	return parse(data)
}

func parse(data []byte) (*FileStore, error) {
	var coupons []Coupon
	if err := json.Unmarshal(data, &coupons); err != nil {
		return nil, errors.Wrap(err, "parse coupons file")
	}

	byCode := make(map[string]*Coupon, len(coupons))
	for i := range coupons {
		byCode[strings.ToUpper(coupons[i].Code)] = &coupons[i]
	}
	return &FileStore{coupons: coupons, byCode: byCode}, nil
}

// List returns every defined coupon in file order.
func (s *FileStore) List() []Coupon {
	out := make([]Coupon, len(s.coupons))
	copy(out, s.coupons)
	return out
}

// FindByCode looks up a coupon by its code, ignoring case.
// Returns ErrNotFound when the code is empty or unknown.
func (s *FileStore) FindByCode(code string) (*Coupon, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrNotFound
	}
	c, ok := s.byCode[strings.ToUpper(code)]
	if !ok {
		return nil, ErrNotFound
	}
	return c, nil
}
