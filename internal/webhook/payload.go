package webhook

import (
	"fmt"

	"github.com/go-faster/jx"
)

// MalformedPayloadError indicates the webhook body matched neither accepted
// payload shape.
type MalformedPayloadError struct {
	Reason string
}

func (e *MalformedPayloadError) Error() string {
	return fmt.Sprintf("malformed webhook payload: %s", e.Reason)
}

// PaymentEntity is the canonical payment object resolved from a webhook
// payload. Both accepted shapes (the entity at the top level, or nested
// under payload.payment.entity) normalize to this one struct at ingestion.
type PaymentEntity struct {
	ID       string
	Amount   int64 // minor units
	Currency string
	Email    string
	Contact  string
	Notes    map[string]string
}

// ExtractPayment resolves the payment entity from raw webhook bytes.
// It tries the nested event shape first, then falls back to treating the
// body as a bare entity. A body yielding no payment ID is malformed.
func ExtractPayment(body []byte) (*PaymentEntity, error) {
	if len(body) == 0 {
		return nil, &MalformedPayloadError{Reason: "empty body"}
	}

	if raw, ok := nestedEntity(body); ok {
		e, err := parseEntity(raw)
		if err != nil {
			return nil, err
		}
		return e, nil
	}

	e, err := parseEntity(body)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// nestedEntity digs out the raw payload.payment.entity object when present.
func nestedEntity(body []byte) (jx.Raw, bool) {
	var (
		raw   jx.Raw
		found bool
	)
	d := jx.DecodeBytes(body)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		if key != "payload" {
			return d.Skip()
		}
		return d.Obj(func(d *jx.Decoder, key string) error {
			if key != "payment" {
				return d.Skip()
			}
			return d.Obj(func(d *jx.Decoder, key string) error {
				if key != "entity" {
					return d.Skip()
				}
				r, err := d.Raw()
				if err != nil {
					return err
				}
				raw = r
				found = true
				return nil
			})
		})
	})
	if err != nil || !found {
		return nil, false
	}
	return raw, true
}

// parseEntity decodes a payment entity object. Unknown keys are skipped;
// note values that are not plain strings are kept as their raw JSON text so
// later reconstruction can still attempt to parse them.
func parseEntity(body []byte) (*PaymentEntity, error) {
	e := &PaymentEntity{Notes: map[string]string{}}

	d := jx.DecodeBytes(body)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "id":
			s, err := d.Str()
			if err != nil {
				return err
			}
			e.ID = s
		case "amount":
			n, err := d.Num()
			if err != nil {
				return err
			}
			v, err := n.Int64()
			if err != nil {
				f, ferr := n.Float64()
				if ferr != nil {
					return err
				}
				v = int64(f)
			}
			e.Amount = v
		case "currency":
			s, err := d.Str()
			if err != nil {
				return err
			}
			e.Currency = s
		case "email":
			s, err := d.Str()
			if err != nil {
				return err
			}
			e.Email = s
		case "contact":
			s, err := d.Str()
			if err != nil {
				return err
			}
			e.Contact = s
		case "notes":
			return decodeNotes(d, e.Notes)
		default:
			return d.Skip()
		}
		return nil
	})
	if err != nil {
		return nil, &MalformedPayloadError{Reason: err.Error()}
	}
	if e.ID == "" {
		return nil, &MalformedPayloadError{Reason: "no payment entity found"}
	}
	return e, nil
}

func decodeNotes(d *jx.Decoder, notes map[string]string) error {
	switch d.Next() {
	case jx.Null:
		return d.Null()
	case jx.Object:
		return d.Obj(func(d *jx.Decoder, key string) error {
			if d.Next() == jx.String {
				s, err := d.Str()
				if err != nil {
					return err
				}
				notes[key] = s
				return nil
			}
			raw, err := d.Raw()
			if err != nil {
				return err
			}
			notes[key] = raw.String()
			return nil
		})
	default:
		// Gateways occasionally send notes as an empty array; tolerate any
		// non-object by ignoring it.
		return d.Skip()
	}
}
