package main

import "fmt"

// LabelDivisor splits a panoptic id into its semantic label and instance index
const LabelDivisor = 256

// Label is a semantic class of the segmentation output
type Label int

// Semantic labels produced by the floor-plan segmentation model.
// Railing and Window are folded into Wall by the dataset scripts.
const (
	LabelBackground Label = 0
	LabelRoom       Label = 1
	LabelWall       Label = 2
	LabelDoor       Label = 3
)

func (l Label) String() string {
	switch l {
	case LabelBackground:
		return "Background"
	case LabelRoom:
		return "Room"
	case LabelWall:
		return "Wall"
	case LabelDoor:
		return "Door"
	default:
		return fmt.Sprintf("Label(%d)", int(l))
	}
}

// IsRoutable reports whether regions of this label become graph nodes.
// Everything else is a barrier.
func (l Label) IsRoutable() bool {
	return l == LabelRoom || l == LabelDoor
}

// PanopticID combines a semantic label and an instance index: label*256 + instance
type PanopticID int

// NewPanopticID builds the panoptic id for a label and instance index
func NewPanopticID(label Label, instance int) PanopticID {
	return PanopticID(int(label)*LabelDivisor + instance)
}

// Label returns the semantic label part of the id
func (id PanopticID) Label() Label {
	return Label(int(id) / LabelDivisor)
}

// Instance returns the instance index part of the id
func (id PanopticID) Instance() int {
	return int(id) % LabelDivisor
}

func (id PanopticID) String() string {
	return fmt.Sprintf("%s#%d", id.Label(), id.Instance())
}
