// Package medcrypt is the field-level encryption layer of the medical
// records service. It protects personally identifying information at rest
// while keeping one identifier (the email) searchable by exact match.
//
// Three persisted artifacts exist per account, built together by the secrets
// builder and stored atomically by the caller:
//
//   - an unsalted SHA-256 hash of the normalized email, used as the unique
//     login-lookup key;
//   - an AES-256-GCM envelope over the plaintext email;
//   - an AES-256-GCM envelope over the canonical JSON profile.
//
// The hydrator reverses the flow. It reconstructs plaintext views from
// stored rows and tolerates every encoding the profile blob has gone through
// historically: plain JSON, a proper envelope, or a doubly-encrypted
// envelope. Hydration never fails; corrupt rows degrade to empty fields.
//
// Record payloads and file attachments use the same engine directly through
// EncryptJSON/DecryptJSON and EncryptBuffer/DecryptBuffer.
//
// Basic usage:
//
//	cfg, err := medcrypt.LoadConfigFromEnvironment()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	cipher, err := medcrypt.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	secrets, err := cipher.BuildUserSecrets(medcrypt.UserFields{
//	    FirstName: "Alice",
//	    LastName:  "Doe",
//	    Email:     "Alice@Example.com",
//	})
//	// persist secrets.EmailHash, secrets.EmailEncrypted, secrets.ProfileEncrypted
//
//	view := cipher.HydrateUser(row) // row loaded by the store
package medcrypt
