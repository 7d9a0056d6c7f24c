package types

import "strconv"

// PairKey builds the storage key of a record owned by the pair
// (first, second). The length of first is written ahead of it so
// identities containing the separator cannot alias another pair.
func PairKey(prefix, first, second string) []byte {
	b := make([]byte, 0, len(prefix)+len(first)+len(second)+8)
	b = append(b, prefix...)
	b = append(b, '/')
	b = strconv.AppendInt(b, int64(len(first)), 10)
	b = append(b, ':')
	b = append(b, first...)
	b = append(b, '/')
	b = append(b, second...)
	return b
}
