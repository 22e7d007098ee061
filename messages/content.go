package messages

import (
	"encoding/json"

	"github.com/zc277584121/langchain/internal/merge"
)

// ContentBlock is one typed block of structured message content, e.g.
// {"type": "text", "text": "hi"} or a provider-specific image block.
type ContentBlock = map[string]any

// Content is the message payload: either plain text or an ordered sequence
// of content blocks, never both. The zero value is empty text.
type Content struct {
	text     string
	blocks   []ContentBlock
	isBlocks bool
}

// Text builds plain-text content.
func Text(s string) Content {
	return Content{text: s}
}

// Blocks builds block-sequence content.
func Blocks(blocks ...ContentBlock) Content {
	return Content{blocks: blocks, isBlocks: true}
}

// IsBlocks reports whether the content is a block sequence.
func (c Content) IsBlocks() bool { return c.isBlocks }

// Text returns the plain-text payload. Empty for block content.
func (c Content) Text() string { return c.text }

// Blocks returns the block sequence. Nil for text content.
func (c Content) Blocks() []ContentBlock { return c.blocks }

// Empty reports whether the content carries nothing.
func (c Content) Empty() bool {
	if c.isBlocks {
		return len(c.blocks) == 0
	}
	return c.text == ""
}

// String renders the content for logging and buffer strings. Block content
// renders as compact JSON.
func (c Content) String() string {
	if !c.isBlocks {
		return c.text
	}
	data, err := json.Marshal(c.blocks)
	if err != nil {
		return ""
	}
	return string(data)
}

// MarshalJSON emits a JSON string for text content and a JSON array for
// block content, matching the wire format.
func (c Content) MarshalJSON() ([]byte, error) {
	if c.isBlocks {
		return json.Marshal(c.blocks)
	}
	return json.Marshal(c.text)
}

// UnmarshalJSON accepts either form.
func (c *Content) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*c = Text(s)
		return nil
	}
	var blocks []ContentBlock
	if err := json.Unmarshal(data, &blocks); err != nil {
		return err
	}
	*c = Blocks(blocks...)
	return nil
}

// mergeContent concatenates streamed content. Two text payloads concatenate;
// two block sequences append element-wise, pairing right-side blocks that
// carry an "index" key with the left-side block of the same index. A
// non-empty text side meeting a block side is promoted to a text block so
// the homogeneity invariant holds on the result.
func mergeContent(left, right Content) (Content, error) {
	if !left.isBlocks && !right.isBlocks {
		return Text(left.text + right.text), nil
	}
	lb, rb := left.asBlocks(), right.asBlocks()
	anyLeft := make([]any, len(lb))
	for i, b := range lb {
		anyLeft[i] = any(b)
	}
	anyRight := make([]any, len(rb))
	for i, b := range rb {
		anyRight[i] = any(b)
	}
	mergedAny, err := merge.Lists(anyLeft, anyRight)
	if err != nil {
		return Content{}, err
	}
	mergedBlocks := make([]ContentBlock, len(mergedAny))
	for i, b := range mergedAny {
		block, ok := b.(map[string]any)
		if !ok {
			return Content{}, invalidMessagef("content block %d is %T, expected a mapping", i, b)
		}
		mergedBlocks[i] = block
	}
	return Blocks(mergedBlocks...), nil
}

func (c Content) asBlocks() []ContentBlock {
	if c.isBlocks {
		return c.blocks
	}
	if c.text == "" {
		return nil
	}
	return []ContentBlock{{"type": "text", "text": c.text}}
}

// contentValue converts content to its plain wire value (string or []any).
func (c Content) contentValue() any {
	if !c.isBlocks {
		return c.text
	}
	out := make([]any, len(c.blocks))
	for i, b := range c.blocks {
		out[i] = b
	}
	return out
}

// contentFromValue builds Content from a wire value.
func contentFromValue(v any) (Content, error) {
	switch cv := v.(type) {
	case nil:
		return Text(""), nil
	case string:
		return Text(cv), nil
	case []any:
		blocks := make([]ContentBlock, len(cv))
		for i, b := range cv {
			block, ok := b.(map[string]any)
			if !ok {
				return Content{}, invalidMessagef("content block %d is %T, expected a mapping", i, b)
			}
			blocks[i] = block
		}
		return Blocks(blocks...), nil
	case []ContentBlock:
		return Blocks(cv...), nil
	default:
		return Content{}, invalidMessagef("unsupported content type %T", v)
	}
}
