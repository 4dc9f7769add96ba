package builder

import "fmt"

// TileError is the failure of a single tile build.
type TileError struct {
	Tx, Ty int
	Err    error
}

func (e *TileError) Error() string {
	return fmt.Sprintf("tile (%d, %d): %v", e.Tx, e.Ty, e.Err)
}

func (e *TileError) Unwrap() error { return e.Err }
