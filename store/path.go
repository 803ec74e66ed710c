package store

import "path"

// Subkeys name the datasets stored under a logical key.
const (
	SubkeyIndex   = "index"
	SubkeyColumns = "columns"
	SubkeyData    = "data"
	SubkeyDType   = "dtype"
)

// PathFor returns the container path of subkey under key. Keys are joined
// like file paths and are otherwise taken as given, so two keys that clean
// to the same path address the same datasets.
func PathFor(key, subkey string) string {
	return path.Join("/", key, subkey)
}
