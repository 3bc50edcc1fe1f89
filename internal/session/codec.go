package session

import (
	"encoding/json"
	"fmt"

	"github.com/harentsoaR/mediflow-portal/internal/models"
	"github.com/harentsoaR/mediflow-portal/internal/utils"
)

// CurrentVersion is the envelope version written by the codecs.
const CurrentVersion = 1

// Codec turns an identity into the persisted blob and back. Decode failures
// wrap ErrMalformedSession.
type Codec interface {
	Encode(id models.Identity) ([]byte, error)
	Decode(blob []byte) (models.Identity, error)
}

type envelope struct {
	Version  int             `json:"version"`
	Identity json.RawMessage `json:"identity,omitempty"`
}

// JSONCodec stores a versioned JSON envelope.
type JSONCodec struct{}

func (JSONCodec) Encode(id models.Identity) ([]byte, error) {
	raw, err := json.Marshal(id)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope{Version: CurrentVersion, Identity: raw})
}

func (JSONCodec) Decode(blob []byte) (models.Identity, error) {
	var env envelope
	if err := json.Unmarshal(blob, &env); err != nil {
		return models.Identity{}, fmt.Errorf("%w: %v", ErrMalformedSession, err)
	}

	raw := env.Identity
	switch {
	case env.Version == 0 && len(raw) == 0:
		// v0: a bare identity object written before envelopes existed
		raw = blob
	case env.Version != CurrentVersion:
		return models.Identity{}, fmt.Errorf("%w: unsupported version %d", ErrMalformedSession, env.Version)
	}

	var id models.Identity
	if err := json.Unmarshal(raw, &id); err != nil {
		return models.Identity{}, fmt.Errorf("%w: %v", ErrMalformedSession, err)
	}
	if err := id.Validate(); err != nil {
		return models.Identity{}, fmt.Errorf("%w: %v", ErrMalformedSession, err)
	}
	return id, nil
}

// SignedCodec wraps the JSON envelope in an HS256 token.
type SignedCodec struct {
	Secret []byte
}

func (c SignedCodec) Encode(id models.Identity) ([]byte, error) {
	payload, err := JSONCodec{}.Encode(id)
	if err != nil {
		return nil, err
	}
	tok, err := utils.SignSession(c.Secret, payload)
	if err != nil {
		return nil, err
	}
	return []byte(tok), nil
}

func (c SignedCodec) Decode(blob []byte) (models.Identity, error) {
	payload, err := utils.VerifySession(c.Secret, string(blob))
	if err != nil {
		return models.Identity{}, fmt.Errorf("%w: %v", ErrMalformedSession, err)
	}
	return JSONCodec{}.Decode(payload)
}
