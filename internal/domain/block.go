package domain

import "time"

type BlockType string

const (
	BlockTypeText    BlockType = "text"
	BlockTypeHeading BlockType = "heading"
	BlockTypeTodo    BlockType = "todo"
	BlockTypeList    BlockType = "list"
	BlockTypeToggle  BlockType = "toggle"
	BlockTypePage    BlockType = "page"
	BlockTypeColumn  BlockType = "column"
	BlockTypeCallout BlockType = "callout"
	BlockTypeQuote   BlockType = "quote"
	BlockTypeDivider BlockType = "divider"
)

// Block is one node in the ordered content forest.
// ParentID is empty for root-level blocks. Order is the position among
// siblings sharing the same ParentID; the engine keeps orders dense
// (0..n-1) per sibling group after every move.
type Block struct {
	ID        string    `json:"id"`
	ParentID  string    `json:"parentId"`
	Order     int       `json:"order"`
	Type      BlockType `json:"type"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ContainerTypes is the set of block types allowed to hold children.
// The root (empty ParentID) is always a valid container regardless of
// this set.
type ContainerTypes map[BlockType]bool

// DefaultContainerTypes matches the block kinds that render nested
// children in the default frontend.
func DefaultContainerTypes() ContainerTypes {
	return ContainerTypes{
		BlockTypePage:    true,
		BlockTypeToggle:  true,
		BlockTypeList:    true,
		BlockTypeTodo:    true,
		BlockTypeColumn:  true,
		BlockTypeCallout: true,
	}
}

type BlockStore interface {
	CreateBlock(b *Block) error
	GetBlock(id string) (*Block, error)
	ListBlocks() ([]Block, error)
	UpdateBlock(b *Block) error
	DeleteBlock(id string) error

	// ReplaceBlocks atomically swaps the full block list for a snapshot.
	// Used by drag commits and undo/redo restore.
	ReplaceBlocks(blocks []Block) error
}
