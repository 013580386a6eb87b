package engine

import (
	"fmt"
	"path"
	"strings"

	"github.com/yubzen/fileops/internal/workspace"
)

// collisionPath finds an unused variant of p by inserting _1, _2, ...
// before the extension. The result is deterministic for a given
// workspace state.
func collisionPath(ws *workspace.Workspace, p string) string {
	ext := path.Ext(p)
	stem := strings.TrimSuffix(p, ext)
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s_%d%s", stem, i, ext)
		if !ws.Exists(candidate) {
			return candidate
		}
	}
}
