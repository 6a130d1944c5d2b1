package config

import "testing"

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()

	if c == nil {
		t.Fatal("DefaultConfig() returned nil")
	}
	if c.ExeQueryCount != DefaultExeQueryCount {
		t.Errorf("ExeQueryCount: expected %d, got %d", DefaultExeQueryCount, c.ExeQueryCount)
	}
	if c.FRIQueryCount != DefaultFRIQueryCount {
		t.Errorf("FRIQueryCount: expected %d, got %d", DefaultFRIQueryCount, c.FRIQueryCount)
	}
	if c.HashAlgorithm != "sha256" {
		t.Errorf("HashAlgorithm: expected sha256, got %s", c.HashAlgorithm)
	}
	if err := c.Validate(2); err != nil {
		t.Errorf("DefaultConfig() should be valid: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		config    *Config
		minExt    int
		expectErr bool
	}{
		{
			name:      "valid default config",
			config:    DefaultConfig(),
			minExt:    2,
			expectErr: false,
		},
		{
			name: "zero extension factor means not yet derived",
			config: &Config{
				ExeQueryCount: 80,
				FRIQueryCount: 40,
				HashAlgorithm: "sha256",
			},
			minExt:    2,
			expectErr: false,
		},
		{
			name: "extension factor not a power of two",
			config: &Config{
				ExtensionFactor: 6,
				ExeQueryCount:   80,
				FRIQueryCount:   40,
				HashAlgorithm:   "sha256",
			},
			minExt:    2,
			expectErr: true,
		},
		{
			name: "extension factor below minimum",
			config: &Config{
				ExtensionFactor: 2,
				ExeQueryCount:   80,
				FRIQueryCount:   40,
				HashAlgorithm:   "sha256",
			},
			minExt:    8,
			expectErr: true,
		},
		{
			name: "extension factor above 32",
			config: &Config{
				ExtensionFactor: 64,
				ExeQueryCount:   80,
				FRIQueryCount:   40,
				HashAlgorithm:   "sha256",
			},
			minExt:    2,
			expectErr: true,
		},
		{
			name: "exe query count zero",
			config: &Config{
				ExeQueryCount: 0,
				FRIQueryCount: 40,
				HashAlgorithm: "sha256",
			},
			minExt:    2,
			expectErr: true,
		},
		{
			name: "exe query count above max",
			config: &Config{
				ExeQueryCount: MaxExeQueryCount + 1,
				FRIQueryCount: 40,
				HashAlgorithm: "sha256",
			},
			minExt:    2,
			expectErr: true,
		},
		{
			name: "fri query count zero",
			config: &Config{
				ExeQueryCount: 80,
				FRIQueryCount: 0,
				HashAlgorithm: "sha256",
			},
			minExt:    2,
			expectErr: true,
		},
		{
			name: "fri query count above max",
			config: &Config{
				ExeQueryCount: 80,
				FRIQueryCount: MaxFRIQueryCount + 1,
				HashAlgorithm: "sha256",
			},
			minExt:    2,
			expectErr: true,
		},
		{
			name: "unsupported hash algorithm",
			config: &Config{
				ExeQueryCount: 80,
				FRIQueryCount: 40,
				HashAlgorithm: "keccak256",
			},
			minExt:    2,
			expectErr: true,
		},
		{
			name: "valid blake2s256",
			config: &Config{
				ExeQueryCount: 80,
				FRIQueryCount: 40,
				HashAlgorithm: "blake2s256",
			},
			minExt:    2,
			expectErr: false,
		},
		{
			name: "negative memory hint",
			config: &Config{
				ExeQueryCount: 80,
				FRIQueryCount: 40,
				HashAlgorithm: "sha256",
				InitialMemory: -1,
			},
			minExt:    2,
			expectErr: true,
		},
		{
			name: "initial memory exceeds maximum",
			config: &Config{
				ExeQueryCount: 80,
				FRIQueryCount: 40,
				HashAlgorithm: "sha256",
				InitialMemory: 1024,
				MaximumMemory: 512,
			},
			minExt:    2,
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate(tt.minExt)
			if (err != nil) != tt.expectErr {
				t.Errorf("Validate() error = %v, expectErr = %v", err, tt.expectErr)
			}
		})
	}
}

func TestConfigWithMethods(t *testing.T) {
	c := DefaultConfig()

	c.WithExtensionFactor(16)
	if c.ExtensionFactor != 16 {
		t.Errorf("WithExtensionFactor() failed: expected 16, got %d", c.ExtensionFactor)
	}

	c.WithExeQueryCount(96)
	if c.ExeQueryCount != 96 {
		t.Errorf("WithExeQueryCount() failed: expected 96, got %d", c.ExeQueryCount)
	}

	c.WithFRIQueryCount(48)
	if c.FRIQueryCount != 48 {
		t.Errorf("WithFRIQueryCount() failed: expected 48, got %d", c.FRIQueryCount)
	}

	c.WithHashAlgorithm("blake2s256")
	if c.HashAlgorithm != "blake2s256" {
		t.Errorf("WithHashAlgorithm() failed: expected blake2s256, got %s", c.HashAlgorithm)
	}

	c.WithMemoryHints(128, 4096)
	if c.InitialMemory != 128 || c.MaximumMemory != 4096 {
		t.Errorf("WithMemoryHints() failed: expected (128,4096), got (%d,%d)", c.InitialMemory, c.MaximumMemory)
	}
}

func TestConfigWithMethodsChaining(t *testing.T) {
	c := DefaultConfig().
		WithExtensionFactor(8).
		WithExeQueryCount(100).
		WithFRIQueryCount(50).
		WithHashAlgorithm("blake2s256").
		WithMemoryHints(64, 2048)

	if c.ExtensionFactor != 8 {
		t.Errorf("ExtensionFactor: expected 8, got %d", c.ExtensionFactor)
	}
	if c.ExeQueryCount != 100 {
		t.Errorf("ExeQueryCount: expected 100, got %d", c.ExeQueryCount)
	}
	if c.FRIQueryCount != 50 {
		t.Errorf("FRIQueryCount: expected 50, got %d", c.FRIQueryCount)
	}
	if c.HashAlgorithm != "blake2s256" {
		t.Errorf("HashAlgorithm: expected blake2s256, got %s", c.HashAlgorithm)
	}
	if c.InitialMemory != 64 || c.MaximumMemory != 2048 {
		t.Errorf("memory hints: expected (64,2048), got (%d,%d)", c.InitialMemory, c.MaximumMemory)
	}
}

func TestConfigClone(t *testing.T) {
	original := DefaultConfig()
	original.ExtensionFactor = 16
	original.HashAlgorithm = "blake2s256"

	cloned := original.Clone()

	if cloned.ExtensionFactor != original.ExtensionFactor {
		t.Error("Cloned ExtensionFactor doesn't match")
	}
	if cloned.ExeQueryCount != original.ExeQueryCount {
		t.Error("Cloned ExeQueryCount doesn't match")
	}
	if cloned.FRIQueryCount != original.FRIQueryCount {
		t.Error("Cloned FRIQueryCount doesn't match")
	}
	if cloned.HashAlgorithm != original.HashAlgorithm {
		t.Error("Cloned HashAlgorithm doesn't match")
	}

	cloned.ExtensionFactor = 32
	if original.ExtensionFactor == 32 {
		t.Error("Modifying clone affected original")
	}
}

func TestConfigValidationEdgeCases(t *testing.T) {
	c := &Config{
		ExtensionFactor: 8,
		ExeQueryCount:   80,
		FRIQueryCount:   40,
		HashAlgorithm:   "sha256",
	}
	if err := c.Validate(8); err != nil {
		t.Errorf("extension factor exactly at the minimum should be valid: %v", err)
	}

	c.ExtensionFactor = 32
	if err := c.Validate(8); err != nil {
		t.Errorf("extension factor exactly at the maximum (32) should be valid: %v", err)
	}

	c2 := &Config{
		ExeQueryCount:   MaxExeQueryCount,
		FRIQueryCount:   MaxFRIQueryCount,
		HashAlgorithm:   "sha256",
	}
	if err := c2.Validate(2); err != nil {
		t.Errorf("query counts exactly at their maximums should be valid: %v", err)
	}
}

func TestConfigImmutabilityOfDefault(t *testing.T) {
	c1 := DefaultConfig()
	c2 := DefaultConfig()

	c1.ExeQueryCount = 1

	if c2.ExeQueryCount == 1 {
		t.Error("DefaultConfig() returns shared instances (should return independent instances)")
	}
}

func BenchmarkDefaultConfig(b *testing.B) {
	for i := 0; i < b.N; i++ {
		DefaultConfig()
	}
}

func BenchmarkConfigValidate(b *testing.B) {
	c := DefaultConfig()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Validate(2)
	}
}

func BenchmarkConfigClone(b *testing.B) {
	c := DefaultConfig()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Clone()
	}
}
