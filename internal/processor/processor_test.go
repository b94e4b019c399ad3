package processor

import (
	"bytes"
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/idelchi/gonv/internal/config"
	"github.com/idelchi/gonv/pkg/keywrap"
)

// keyPair is a recipient or sender key pair in the hex form the CLI takes.
type keyPair struct {
	priv string
	pub  string
}

func newKeyPair(t *testing.T) keyPair {
	t.Helper()

	priv, pub, err := keywrap.New().GenerateEphemeral()
	if err != nil {
		t.Fatalf("generating key pair: %v", err)
	}

	return keyPair{priv: hex.EncodeToString(priv), pub: hex.EncodeToString(pub)}
}

func baseConfig() *config.Config {
	return &config.Config{
		Parallel:  2,
		IDSize:    16,
		ChunkSize: 1024,
		Quiet:     true,
		Suffixes: config.Suffixes{
			Encrypt: ".enc",
		},
	}
}

func newEncryptor(t *testing.T, cfg *config.Config, recipients ...keyPair) *Processor {
	t.Helper()

	for _, kp := range recipients {
		cfg.Recipients = append(cfg.Recipients, kp.pub)
	}

	processor, err := New(cfg)
	if err != nil {
		t.Fatalf("creating encryptor: %v", err)
	}

	return processor
}

func newDecryptor(t *testing.T, cfg *config.Config, kp keyPair) *Processor {
	t.Helper()

	cfg.Decrypt = true
	cfg.Key.String = kp.priv

	processor, err := New(cfg)
	if err != nil {
		t.Fatalf("creating decryptor: %v", err)
	}

	return processor
}

// countFrames walks the length-prefixed envelopes in an encrypted stream.
func countFrames(t *testing.T, data []byte) int {
	t.Helper()

	frames := 0

	for offset := 0; offset < len(data); {
		frameLen := int(binary.BigEndian.Uint32(data[offset:]))
		offset += 4 + frameLen
		frames++
	}

	return frames
}

func TestStreamRoundTripMultiChunk(t *testing.T) {
	recipient := newKeyPair(t)

	plaintext := make([]byte, 3000)
	if _, err := rand.Read(plaintext); err != nil {
		t.Fatalf("generating plaintext: %v", err)
	}

	encryptor := newEncryptor(t, baseConfig(), recipient)

	var encrypted bytes.Buffer
	if err := encryptor.encryptStream(bytes.NewReader(plaintext), &encrypted); err != nil {
		t.Fatalf("encryptStream: %v", err)
	}

	// 3000 bytes at a 1024-byte chunk size: two full chunks and a short one.
	if got := countFrames(t, encrypted.Bytes()); got != 3 {
		t.Fatalf("frame count: got %d, want 3", got)
	}

	decryptor := newDecryptor(t, baseConfig(), recipient)

	var decrypted bytes.Buffer
	if err := decryptor.decryptStream(bytes.NewReader(encrypted.Bytes()), &decrypted); err != nil {
		t.Fatalf("decryptStream: %v", err)
	}

	if !bytes.Equal(decrypted.Bytes(), plaintext) {
		t.Fatal("round trip mismatch")
	}
}

func TestStreamRoundTripExactMultiple(t *testing.T) {
	recipient := newKeyPair(t)

	plaintext := bytes.Repeat([]byte{0x42}, 2048)

	encryptor := newEncryptor(t, baseConfig(), recipient)

	var encrypted bytes.Buffer
	if err := encryptor.encryptStream(bytes.NewReader(plaintext), &encrypted); err != nil {
		t.Fatalf("encryptStream: %v", err)
	}

	// An exact multiple of the chunk size must not produce a trailing empty
	// chunk; the second chunk carries the last flag itself.
	if got := countFrames(t, encrypted.Bytes()); got != 2 {
		t.Fatalf("frame count: got %d, want 2", got)
	}

	decryptor := newDecryptor(t, baseConfig(), recipient)

	var decrypted bytes.Buffer
	if err := decryptor.decryptStream(bytes.NewReader(encrypted.Bytes()), &decrypted); err != nil {
		t.Fatalf("decryptStream: %v", err)
	}

	if !bytes.Equal(decrypted.Bytes(), plaintext) {
		t.Fatal("round trip mismatch")
	}
}

func TestStreamRoundTripEmptyInput(t *testing.T) {
	recipient := newKeyPair(t)

	encryptor := newEncryptor(t, baseConfig(), recipient)

	var encrypted bytes.Buffer
	if err := encryptor.encryptStream(bytes.NewReader(nil), &encrypted); err != nil {
		t.Fatalf("encryptStream: %v", err)
	}

	// Empty input still yields one empty last chunk, so the decryptor can
	// tell a complete empty file from a truncated one.
	if got := countFrames(t, encrypted.Bytes()); got != 1 {
		t.Fatalf("frame count: got %d, want 1", got)
	}

	decryptor := newDecryptor(t, baseConfig(), recipient)

	var decrypted bytes.Buffer
	if err := decryptor.decryptStream(bytes.NewReader(encrypted.Bytes()), &decrypted); err != nil {
		t.Fatalf("decryptStream: %v", err)
	}

	if decrypted.Len() != 0 {
		t.Fatalf("got %d bytes, want empty", decrypted.Len())
	}
}

func TestStreamMultipleRecipients(t *testing.T) {
	first := newKeyPair(t)
	second := newKeyPair(t)

	plaintext := []byte("shared between two recipients")

	encryptor := newEncryptor(t, baseConfig(), first, second)

	var encrypted bytes.Buffer
	if err := encryptor.encryptStream(bytes.NewReader(plaintext), &encrypted); err != nil {
		t.Fatalf("encryptStream: %v", err)
	}

	for i, kp := range []keyPair{first, second} {
		decryptor := newDecryptor(t, baseConfig(), kp)

		var decrypted bytes.Buffer
		if err := decryptor.decryptStream(bytes.NewReader(encrypted.Bytes()), &decrypted); err != nil {
			t.Fatalf("decryptStream for recipient %d: %v", i, err)
		}

		if !bytes.Equal(decrypted.Bytes(), plaintext) {
			t.Fatalf("recipient %d: round trip mismatch", i)
		}
	}

	stranger := newKeyPair(t)
	decryptor := newDecryptor(t, baseConfig(), stranger)

	if err := decryptor.decryptStream(bytes.NewReader(encrypted.Bytes()), &bytes.Buffer{}); err == nil {
		t.Fatal("non-recipient decrypted the stream")
	}
}

func TestStreamSignedRoundTrip(t *testing.T) {
	recipient := newKeyPair(t)
	sender := newKeyPair(t)
	impostor := newKeyPair(t)

	plaintext := []byte("signed stream content")

	encryptCfg := baseConfig()
	encryptCfg.SignKey = sender.priv

	encryptor := newEncryptor(t, encryptCfg, recipient)

	var encrypted bytes.Buffer
	if err := encryptor.encryptStream(bytes.NewReader(plaintext), &encrypted); err != nil {
		t.Fatalf("encryptStream: %v", err)
	}

	verifyCfg := baseConfig()
	verifyCfg.VerifyKey = sender.pub

	decryptor := newDecryptor(t, verifyCfg, recipient)

	var decrypted bytes.Buffer
	if err := decryptor.decryptStream(bytes.NewReader(encrypted.Bytes()), &decrypted); err != nil {
		t.Fatalf("decryptStream: %v", err)
	}

	if !bytes.Equal(decrypted.Bytes(), plaintext) {
		t.Fatal("round trip mismatch")
	}

	wrongCfg := baseConfig()
	wrongCfg.VerifyKey = impostor.pub

	wrongVerifier := newDecryptor(t, wrongCfg, recipient)

	if err := wrongVerifier.decryptStream(bytes.NewReader(encrypted.Bytes()), &bytes.Buffer{}); err == nil {
		t.Fatal("stream verified under the wrong sender key")
	}
}

func TestStreamRejectsCorruption(t *testing.T) {
	recipient := newKeyPair(t)

	encryptor := newEncryptor(t, baseConfig(), recipient)

	var encrypted bytes.Buffer
	if err := encryptor.encryptStream(bytes.NewReader([]byte("content")), &encrypted); err != nil {
		t.Fatalf("encryptStream: %v", err)
	}

	stream := encrypted.Bytes()
	decryptor := newDecryptor(t, baseConfig(), recipient)

	t.Run("flipped ciphertext byte", func(t *testing.T) {
		tampered := bytes.Clone(stream)
		tampered[len(tampered)-1] ^= 0x01

		if err := decryptor.decryptStream(bytes.NewReader(tampered), &bytes.Buffer{}); err == nil {
			t.Fatal("tampered stream decrypted")
		}
	})

	t.Run("truncated stream", func(t *testing.T) {
		if err := decryptor.decryptStream(bytes.NewReader(stream[:len(stream)-10]), &bytes.Buffer{}); err == nil {
			t.Fatal("truncated stream decrypted")
		}
	})

	t.Run("missing last chunk", func(t *testing.T) {
		// An empty stream has no last chunk at all.
		err := decryptor.decryptStream(bytes.NewReader(nil), &bytes.Buffer{})
		if err == nil || !strings.Contains(err.Error(), "missing last chunk") {
			t.Fatalf("got %v, want missing last chunk", err)
		}
	})

	t.Run("data after last chunk", func(t *testing.T) {
		doubled := append(bytes.Clone(stream), stream...)

		err := decryptor.decryptStream(bytes.NewReader(doubled), &bytes.Buffer{})
		if err == nil || !strings.Contains(err.Error(), "after last chunk") {
			t.Fatalf("got %v, want data after last chunk", err)
		}
	})

	t.Run("implausible frame size", func(t *testing.T) {
		bogus := bytes.Clone(stream)
		binary.BigEndian.PutUint32(bogus, 10) // below the header size

		if err := decryptor.decryptStream(bytes.NewReader(bogus), &bytes.Buffer{}); err == nil {
			t.Fatal("implausible frame size accepted")
		}
	})
}

func TestProcessFiles(t *testing.T) {
	recipient := newKeyPair(t)

	dir := t.TempDir()
	input := filepath.Join(dir, "document.txt")

	content := bytes.Repeat([]byte("file content under test\n"), 200)
	if err := os.WriteFile(input, content, 0o600); err != nil {
		t.Fatalf("writing input: %v", err)
	}

	encryptCfg := baseConfig()
	encryptCfg.Files = []string{input}

	encryptor := newEncryptor(t, encryptCfg, recipient)

	processed, errored, totalSize, err := encryptor.ProcessFiles()
	if err != nil {
		t.Fatalf("ProcessFiles encrypt: %v", err)
	}

	if processed != 1 || errored != 0 {
		t.Fatalf("encrypt: processed %d, errored %d", processed, errored)
	}

	encryptedPath := input + ".enc"

	if info, err := os.Stat(encryptedPath); err != nil {
		t.Fatalf("encrypted output: %v", err)
	} else if info.Size() != totalSize {
		t.Fatalf("reported size %d, file size %d", totalSize, info.Size())
	}

	decryptCfg := baseConfig()
	decryptCfg.Files = []string{encryptedPath}
	decryptCfg.Suffixes.Decrypt = ".out"

	decryptor := newDecryptor(t, decryptCfg, recipient)

	processed, errored, _, err = decryptor.ProcessFiles()
	if err != nil {
		t.Fatalf("ProcessFiles decrypt: %v", err)
	}

	if processed != 1 || errored != 0 {
		t.Fatalf("decrypt: processed %d, errored %d", processed, errored)
	}

	got, err := os.ReadFile(input + ".out")
	if err != nil {
		t.Fatalf("reading decrypted output: %v", err)
	}

	if !bytes.Equal(got, content) {
		t.Fatal("decrypted content mismatch")
	}
}

func TestProcessFilesReportsErrors(t *testing.T) {
	recipient := newKeyPair(t)

	cfg := baseConfig()
	cfg.Files = []string{filepath.Join(t.TempDir(), "does-not-exist")}

	encryptor := newEncryptor(t, cfg, recipient)

	processed, errored, _, err := encryptor.ProcessFiles()
	if err == nil {
		t.Fatal("expected an error for a missing input file")
	}

	if processed != 0 || errored != 1 {
		t.Fatalf("processed %d, errored %d", processed, errored)
	}
}

func TestOutputPath(t *testing.T) {
	cfg := baseConfig()
	cfg.Suffixes.Decrypt = ".out"

	p := &Processor{cfg: cfg}

	if got := p.outputPath("dir/file.txt"); got != "dir/file.txt.enc" {
		t.Errorf("encrypt path: got %q", got)
	}

	cfg.Decrypt = true

	if got := p.outputPath("dir/file.txt.enc"); got != "dir/file.txt.out" {
		t.Errorf("decrypt path: got %q", got)
	}

	// A file without the encrypted suffix keeps its name plus the decrypt
	// suffix.
	if got := p.outputPath("dir/file.bin"); got != "dir/file.bin.out" {
		t.Errorf("decrypt path without suffix: got %q", got)
	}
}
