package engine

// FNV-1a 32-bit parameters used for member-name hashing.
const (
	HashOffset uint32 = 0x811C9DC5
	HashPrime  uint32 = 0x01000193
)

// HashByte folds one byte into a running FNV-1a hash.
func HashByte(h uint32, c byte) uint32 { return (h ^ uint32(c)) * HashPrime }

// Hash returns the FNV-1a hash of s.
func Hash(s string) uint32 {
	h := HashOffset
	for i := 0; i < len(s); i++ {
		h = HashByte(h, s[i])
	}
	return h
}

// HashBytes returns the FNV-1a hash of b.
func HashBytes(b []byte) uint32 {
	h := HashOffset
	for _, c := range b {
		h = HashByte(h, c)
	}
	return h
}
