package ir

// MallocName is the callee name recognized as a heap allocator by
// CollectRootPointers.
const MallocName = "malloc"

// stlIndexedAccess holds the mangled C++ symbols for STL container
// operator[] overloads recognized as index-producing "root" calls. The only
// one the original analysis recognized was std::vector<int>::operator[].
var stlIndexedAccess = map[string]bool{
	"_ZNSt6vectorIiSaIiEEixEm": true,
}

// IsSTLIndexedAccess reports whether name is a recognized STL indexed-access
// accessor whose first argument is the container pointer.
func IsSTLIndexedAccess(name string) bool {
	return stlIndexedAccess[name]
}
