// Package envelope implements a multi-recipient encryption envelope.
//
// One Seal call encrypts a single plaintext chunk so that any one of several
// recipients can independently decrypt it. The expensive asymmetric work is
// done once per envelope: a single ephemeral key pair is shared across all
// recipients, and only a cheap symmetric key-wrap step repeats per recipient.
//
// The envelope is a self-contained binary blob: a fixed 64-byte header, one
// variable-length record per recipient, and an AEAD-protected payload whose
// authentication tag also covers the header and all recipient records. Any
// tamper anywhere in the envelope fails decryption for every recipient.
//
// The asymmetric key-wrap primitive and the payload AEAD are supplied by the
// caller through the KeyWrapper and PayloadCipher interfaces.
package envelope
