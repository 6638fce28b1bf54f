// Package integrity computes document digests and checks them against the
// hashes recorded in the ledger. Outcomes are advisory.
package integrity

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/joseph-ayodele/audity/internal/common"
	"github.com/joseph-ayodele/audity/internal/ledger"
)

// DefaultChunkSize is used when a non-positive chunk size is given.
const DefaultChunkSize = 4096

type Outcome string

const (
	Matched            Outcome = "matched"
	Mismatched         Outcome = "mismatched"
	NoStoredHash       Outcome = "no_stored_hash"
	IdentifierNotFound Outcome = "identifier_not_found"
)

// Err maps an outcome onto the error taxonomy; Matched maps to nil.
func (o Outcome) Err() error {
	switch o {
	case Mismatched:
		return common.ErrHashMismatch
	case NoStoredHash:
		return common.ErrNoStoredHash
	case IdentifierNotFound:
		return common.ErrIdentifierNotFound
	default:
		return nil
	}
}

// Result is the outcome of one verification. Stored is empty unless the
// ledger had a hash for the identifier.
type Result struct {
	Outcome  Outcome
	Computed string
	Stored   string
}

// Digest returns the hex SHA-256 of r, read chunkSize bytes at a time.
func Digest(r io.Reader, chunkSize int) (string, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	h := sha256.New()
	buf := make([]byte, chunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("read document: %w", err)
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

type Verifier struct {
	chunkSize int
}

func NewVerifier(chunkSize int) *Verifier {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Verifier{chunkSize: chunkSize}
}

// Verify hashes r and compares it with the ledger hash stored for id.
func (v *Verifier) Verify(r io.Reader, id string, l *ledger.Ledger) (Result, error) {
	computed, err := Digest(r, v.chunkSize)
	if err != nil {
		return Result{}, err
	}
	res := Result{Computed: computed}

	row, ok := l.Lookup(id)
	if id == "" || !ok {
		res.Outcome = IdentifierNotFound
		return res, nil
	}
	res.Stored = row.DocumentHash
	if strings.TrimSpace(row.DocumentHash) == "" {
		res.Outcome = NoStoredHash
		return res, nil
	}
	if equalDigests(computed, row.DocumentHash) {
		res.Outcome = Matched
	} else {
		res.Outcome = Mismatched
	}
	return res, nil
}

// equalDigests compares decoded bytes so hex case does not matter. An
// undecodable stored value never matches.
func equalDigests(computed, stored string) bool {
	a, err := hex.DecodeString(computed)
	if err != nil {
		return false
	}
	b, err := hex.DecodeString(strings.TrimSpace(stored))
	if err != nil {
		return false
	}
	return bytes.Equal(a, b)
}
