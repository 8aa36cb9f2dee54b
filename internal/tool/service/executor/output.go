package executor

import (
	"strings"

	"github.com/Cyclone1070/anu/internal/tool/helper/content"
)

const binaryPlaceholder = "[Binary Content]"

// capture keeps the head of a stream up to limit bytes. A stream whose
// first chunk looks binary is replaced by a placeholder.
type capture struct {
	sb      strings.Builder
	limit   int
	seen    bool
	binary  bool
	dropped bool
}

func newCapture(limit int) *capture {
	return &capture{limit: limit}
}

// Write never fails so the child process is not blocked on a full pipe.
func (c *capture) Write(p []byte) (int, error) {
	if !c.seen {
		c.seen = true
		if content.IsBinaryContent(p) {
			c.binary = true
		}
	}
	if c.binary {
		c.dropped = true
		return len(p), nil
	}

	room := c.limit - c.sb.Len()
	switch {
	case room <= 0:
		c.dropped = true
	case len(p) > room:
		c.sb.Write(p[:room])
		c.dropped = true
	default:
		c.sb.Write(p)
	}
	return len(p), nil
}

func (c *capture) String() string {
	if c.binary {
		return binaryPlaceholder
	}
	return c.sb.String()
}

func (c *capture) Truncated() bool {
	return c.dropped
}
