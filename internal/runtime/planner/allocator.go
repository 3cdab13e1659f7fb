package planner

import (
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// nameSeparator joins the prefix and the random token of a renamed file.
const nameSeparator = "__"

// newToken returns a random 32 hex digit token.
var newToken = func() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// AllocateFileNames returns n distinct names, none of which is in existing.
// Each slot starts from prefix and appends a random token until the
// candidate is unused.
func AllocateFileNames(prefix string, existing []string, n int) []string {
	if n <= 0 {
		return []string{}
	}

	used := lo.Keyify(existing)
	names := make([]string, 0, n)
	for range n {
		candidate := prefix
		for {
			if _, taken := used[candidate]; !taken {
				break
			}
			candidate = prefix + nameSeparator + newToken()
		}
		used[candidate] = struct{}{}
		names = append(names, candidate)
	}
	return names
}
