// Package gcm provides AES-256-GCM authenticated encryption from raw 32-byte
// keys, built on Tink AEAD primitives. Output is IV || ciphertext || tag with
// no key-id prefix, so the sealed bytes can be embedded in fixed wire layouts.
package gcm

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/tink-crypto/tink-go/v2/aead"
	"github.com/tink-crypto/tink-go/v2/insecurecleartextkeyset"
	"github.com/tink-crypto/tink-go/v2/keyset"
	aes_gcmpb "github.com/tink-crypto/tink-go/v2/proto/aes_gcm_go_proto"
	tinkpb "github.com/tink-crypto/tink-go/v2/proto/tink_go_proto"
	"github.com/tink-crypto/tink-go/v2/tink"

	"google.golang.org/protobuf/proto"
)

const (
	// KeySize is the required key size in bytes.
	KeySize = 32
	// IVSize is the nonce length prepended to every sealed payload.
	IVSize = 12
	// TagSize is the authentication tag length appended to every sealed payload.
	TagSize = 16
)

// Cipher seals and opens payloads under caller-supplied raw keys. The zero
// value is ready to use; Cipher holds no key material.
type Cipher struct{}

// New returns a Cipher.
func New() *Cipher {
	return &Cipher{}
}

// Seal encrypts plaintext under key, authenticating aad alongside it.
// The result is IV || ciphertext || tag.
func (*Cipher) Seal(key, plaintext, aad []byte) ([]byte, error) {
	primitive, err := newAEAD(key)
	if err != nil {
		return nil, err
	}

	sealed, err := primitive.Encrypt(plaintext, aad)
	if err != nil {
		return nil, fmt.Errorf("sealing payload: %w", err)
	}

	return sealed, nil
}

// Open decrypts sealed (IV || ciphertext || tag) under key, failing on any
// tamper of sealed or aad.
func (*Cipher) Open(key, sealed, aad []byte) ([]byte, error) {
	primitive, err := newAEAD(key)
	if err != nil {
		return nil, err
	}

	plaintext, err := primitive.Decrypt(sealed, aad)
	if err != nil {
		return nil, fmt.Errorf("opening payload: %w", err)
	}

	return plaintext, nil
}

// IVSize returns the fixed nonce length.
func (*Cipher) IVSize() int {
	return IVSize
}

// Overhead returns the fixed authentication tag length.
func (*Cipher) Overhead() int {
	return TagSize
}

// newAEAD builds a Tink AEAD primitive for AES-256-GCM from raw key bytes.
// The key is wrapped in a single-key RAW-prefix keyset so the primitive's
// output carries no Tink key-id prefix.
func newAEAD(key []byte) (tink.AEAD, error) {
	if len(key) != KeySize {
		return nil, errors.New("key must be 32 bytes")
	}

	aesGcmKey := &aes_gcmpb.AesGcmKey{
		Version:  0,
		KeyValue: key,
	}

	serializedKey, err := proto.Marshal(aesGcmKey)
	if err != nil {
		return nil, fmt.Errorf("serializing AesGcmKey: %w", err)
	}

	keyData := &tinkpb.KeyData{
		TypeUrl:         "type.googleapis.com/google.crypto.tink.AesGcmKey",
		Value:           serializedKey,
		KeyMaterialType: tinkpb.KeyData_SYMMETRIC,
	}

	keySet := &tinkpb.Keyset{
		PrimaryKeyId: 1,
		Key: []*tinkpb.Keyset_Key{
			{
				KeyData:          keyData,
				Status:           tinkpb.KeyStatusType_ENABLED,
				KeyId:            1,
				OutputPrefixType: tinkpb.OutputPrefixType_RAW,
			},
		},
	}

	serializedKeyset, err := proto.Marshal(keySet)
	if err != nil {
		return nil, fmt.Errorf("serializing keyset: %w", err)
	}

	keySetHandle, err := insecurecleartextkeyset.Read(
		keyset.NewBinaryReader(bytes.NewReader(serializedKeyset)))
	if err != nil {
		return nil, fmt.Errorf("creating keyset handle: %w", err)
	}

	primitive, err := aead.New(keySetHandle)
	if err != nil {
		return nil, fmt.Errorf("creating AEAD: %w", err)
	}

	return primitive, nil
}
