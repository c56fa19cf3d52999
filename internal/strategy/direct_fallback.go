//go:build !linux

package strategy

import "context"

// copyDirect on platforms without O_DIRECT support degrades to
// buffered, per the strategy layer's contract.
func copyDirect(src, dst string) (int64, error) {
	return copyBuffered(context.Background(), src, dst, nil)
}
