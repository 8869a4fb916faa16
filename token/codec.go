package token

import (
	"encoding/base64"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const (
	idLength     = 16
	secretLength = 16
	bearerLength = idLength + secretLength
)

// ErrMalformedCredential reports a bearer string that is structurally
// invalid: not URL-safe base64, or not exactly 32 decoded bytes.
var ErrMalformedCredential = errors.New("malformed bearer credential")

// EncodeBearer builds the wire form of a credential: URL-safe base64 of the
// token id bytes concatenated with the secret bytes.
func EncodeBearer(id uuid.UUID, secret []byte) string {
	raw := make([]byte, 0, bearerLength)
	raw = append(raw, id[:]...)
	raw = append(raw, secret...)
	return base64.URLEncoding.EncodeToString(raw)
}

// DecodeBearer parses the wire form back into id and secret. It is pure and
// fails closed: anything that is not strict URL-safe base64 of exactly 32
// bytes is rejected with ErrMalformedCredential.
func DecodeBearer(bearer string) (uuid.UUID, []byte, error) {
	raw, err := base64.URLEncoding.Strict().DecodeString(bearer)
	if err != nil {
		return uuid.Nil, nil, errors.Wrap(ErrMalformedCredential, "[DecodeBearer] base64")
	}
	if len(raw) != bearerLength {
		return uuid.Nil, nil, errors.Wrapf(ErrMalformedCredential, "[DecodeBearer] decoded length %d", len(raw))
	}
	id, err := uuid.FromBytes(raw[:idLength])
	if err != nil {
		return uuid.Nil, nil, errors.Wrap(ErrMalformedCredential, "[DecodeBearer] token id")
	}
	return id, raw[idLength:], nil
}
