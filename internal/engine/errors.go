package engine

import "fmt"

// CycleError reports an attempt to move a block under itself or one of
// its own descendants. The tree is left unchanged.
type CycleError struct {
	BlockID  string
	TargetID string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("move would create a cycle: %s is (or descends from) moved block %s", e.TargetID, e.BlockID)
}

// InvalidContainerError reports a drop onto a block whose type is not
// in the container type set.
type InvalidContainerError struct {
	TargetID   string
	TargetType string
}

func (e *InvalidContainerError) Error() string {
	return fmt.Sprintf("block %s (type %s) cannot hold children", e.TargetID, e.TargetType)
}

// InvalidIndexError reports an insertion index that is still
// inconsistent after clamping. Should be unreachable; checked at the
// boundary anyway.
type InvalidIndexError struct {
	Index int
	Count int
}

func (e *InvalidIndexError) Error() string {
	return fmt.Sprintf("insertion index %d out of range [0,%d]", e.Index, e.Count)
}
