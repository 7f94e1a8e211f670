package trie

import "github.com/pkg/errors"

// Sentinel errors returned by Trie's public API. Invariant violations that
// the public API itself prevents (see dp's panics in node.go) are not
// represented here; these are the errors a caller can actually trigger.
var (
	// ErrInvalidColor is returned by Mark when color is 0 or greater than K.
	ErrInvalidColor = errors.New("trie: invalid color")

	// ErrInvalidPrefixLength is returned by Mark when prefixLen is negative
	// or exceeds the address width the trie was created with.
	ErrInvalidPrefixLength = errors.New("trie: invalid prefix length")

	// ErrUseAfterFreeze is returned by Mark once Generate has already run.
	ErrUseAfterFreeze = errors.New("trie: mark called after generate")

	// ErrOverlappingPrefix is returned by Mark when the requested prefix
	// would land on an interior node of an already-marked longer prefix.
	ErrOverlappingPrefix = errors.New("trie: overlapping prefix")
)
