package benchmark

import (
	"crypto/rand"
	"fmt"
	"testing"

	"github.com/quillsafe/quillsafe/internal/crypto"
	"github.com/quillsafe/quillsafe/internal/vault"
	"github.com/quillsafe/quillsafe/test/testutil"
)

func BenchmarkDeriveKey(b *testing.B) {
	provider := crypto.NewProvider()
	salt := make([]byte, crypto.SaltSize)
	rand.Read(salt)

	iterations := []int{100000, 300000, 600000}

	for _, iter := range iterations {
		b.Run(fmt.Sprintf("iter_%d", iter), func(b *testing.B) {
			b.ReportAllocs()

			for i := 0; i < b.N; i++ {
				_ = provider.DeriveKey([]byte("password123"), salt, iter, crypto.KeySize)
			}
		})
	}
}

func BenchmarkEncryptData(b *testing.B) {
	provider := crypto.NewProvider()
	key := make([]byte, crypto.KeySize)
	rand.Read(key)

	sizes := []int{
		256,     // short entry
		2048,    // typical entry
		65536,   // long entry
		1048576, // pasted document
	}

	for _, size := range sizes {
		b.Run(fmt.Sprintf("%dB", size), func(b *testing.B) {
			plaintext := make([]byte, size)
			rand.Read(plaintext)

			b.ResetTimer()
			b.ReportAllocs()
			b.SetBytes(int64(size))

			for i := 0; i < b.N; i++ {
				if _, err := provider.EncryptData(plaintext, key); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkDecryptData(b *testing.B) {
	provider := crypto.NewProvider()
	key := make([]byte, crypto.KeySize)
	rand.Read(key)

	sizes := []int{256, 2048, 65536, 1048576}

	for _, size := range sizes {
		b.Run(fmt.Sprintf("%dB", size), func(b *testing.B) {
			plaintext := make([]byte, size)
			rand.Read(plaintext)

			ciphertext, err := provider.EncryptData(plaintext, key)
			if err != nil {
				b.Fatal(err)
			}

			b.ResetTimer()
			b.ReportAllocs()
			b.SetBytes(int64(size))

			for i := 0; i < b.N; i++ {
				if _, err := provider.DecryptData(ciphertext, key); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkUnlockWithPassword(b *testing.B) {
	logger := testutil.NewTestLogger()
	mgr := vault.NewManagerWithIterations(crypto.NewProvider(), logger, testutil.TestIterations)

	result, err := mgr.InitializeVault("bench", testutil.TestPassword, testutil.TestPairs())
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		dk, err := mgr.UnlockWithPassword(result.Vault, testutil.TestPassword)
		if err != nil {
			b.Fatal(err)
		}
		crypto.Zero(dk)
	}
}

func BenchmarkConcurrentDecryption(b *testing.B) {
	provider := crypto.NewProvider()
	key := make([]byte, crypto.KeySize)
	rand.Read(key)

	plaintext := make([]byte, 10240)
	rand.Read(plaintext)

	ciphertext, err := provider.EncryptData(plaintext, key)
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.SetBytes(int64(len(plaintext)))

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, err := provider.DecryptData(ciphertext, key); err != nil {
				b.Fatal(err)
			}
		}
	})
}
