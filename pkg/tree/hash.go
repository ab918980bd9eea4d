package tree

import (
	"encoding/hex"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/zeebo/blake3"

	"github.com/vanderheijden86/arbor/pkg/model"
)

// Hash returns a content digest of the collection, order included. Equal
// hashes mean an identical snapshot, so hosts can skip recomputation when a
// reload delivers the same data.
func Hash(nodes []model.Node) string {
	h := blake3.New()
	var buf []byte
	for _, n := range nodes {
		buf = buf[:0]
		buf = strconv.AppendQuote(buf, string(n.ID))
		buf = strconv.AppendQuote(buf, string(n.Parent))
		buf = strconv.AppendQuote(buf, n.Text)
		buf = strconv.AppendBool(buf, n.Droppable)
		if len(n.Data) > 0 {
			// Map keys are sorted by the encoder, so equal data hashes equal.
			if data, err := json.Marshal(n.Data); err == nil {
				buf = append(buf, data...)
			}
		}
		buf = append(buf, '\n')
		_, _ = h.Write(buf)
	}
	return hex.EncodeToString(h.Sum(nil))
}
