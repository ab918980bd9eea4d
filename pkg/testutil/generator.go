// Package testutil provides test fixture generators for node collections.
// All generators produce deterministic output for reproducible tests.
package testutil

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/vanderheijden86/arbor/pkg/model"
)

// GeneratorConfig controls node generation.
type GeneratorConfig struct {
	Seed          int64    // Random seed for determinism (0 = use current time)
	IDPrefix      string   // Prefix for node IDs (default: "n")
	RootID        model.ID // Implicit root (default: model.DefaultRootID)
	ContainerRate float64  // Share of random nodes that are droppable (default: 0.4)
}

// DefaultConfig returns a config suitable for most tests.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Seed:          42, // Deterministic
		IDPrefix:      "n",
		RootID:        model.DefaultRootID,
		ContainerRate: 0.4,
	}
}

// Generator creates node collections with various shapes.
type Generator struct {
	cfg GeneratorConfig
	rng *rand.Rand
}

// New creates a Generator with the given config.
func New(cfg GeneratorConfig) *Generator {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if cfg.IDPrefix == "" {
		cfg.IDPrefix = "n"
	}
	if cfg.RootID == "" {
		cfg.RootID = model.DefaultRootID
	}
	if cfg.ContainerRate <= 0 {
		cfg.ContainerRate = 0.4
	}
	return &Generator{
		cfg: cfg,
		rng: rand.New(rand.NewSource(seed)),
	}
}

// NewDefault creates a Generator with default config.
func NewDefault() *Generator {
	return New(DefaultConfig())
}

func (g *Generator) id(i int) model.ID {
	return model.ID(fmt.Sprintf("%s%d", g.cfg.IDPrefix, i))
}

// ============================================================================
// Shapes
// ============================================================================

// Chain creates a single path: n0 under the root, n1 under n0, and so on.
// Every node but the last is a container.
func (g *Generator) Chain(size int) []model.Node {
	nodes := make([]model.Node, 0, size)
	parent := g.cfg.RootID
	for i := 0; i < size; i++ {
		id := g.id(i)
		nodes = append(nodes, model.Node{
			ID:        id,
			Parent:    parent,
			Text:      fmt.Sprintf("Node %d", i),
			Droppable: i < size-1,
		})
		parent = id
	}
	return nodes
}

// Flat creates size leaves directly under the root.
func (g *Generator) Flat(size int) []model.Node {
	nodes := make([]model.Node, size)
	for i := range nodes {
		nodes[i] = model.Node{
			ID:     g.id(i),
			Parent: g.cfg.RootID,
			Text:   fmt.Sprintf("Item %03d", i),
		}
	}
	return nodes
}

// Tree creates a complete tree with the given depth and branching factor.
// Nodes above the last level are containers; the last level holds leaves.
// Output is in breadth-first order.
func (g *Generator) Tree(depth, breadth int) []model.Node {
	if depth < 1 {
		depth = 1
	}
	if breadth < 1 {
		breadth = 1
	}

	var nodes []model.Node
	next := 0
	level := []model.ID{g.cfg.RootID}
	for d := 0; d < depth; d++ {
		var nextLevel []model.ID
		for _, parent := range level {
			for b := 0; b < breadth; b++ {
				id := g.id(next)
				nodes = append(nodes, model.Node{
					ID:        id,
					Parent:    parent,
					Text:      fmt.Sprintf("Node %d.%d", d, next),
					Droppable: d < depth-1,
				})
				nextLevel = append(nextLevel, id)
				next++
			}
		}
		level = nextLevel
	}
	return nodes
}

// Random creates a valid collection of size nodes. Each node's parent is the
// root or an earlier container, so the result is acyclic and every parent
// resolves. The collection is shuffled so parents need not precede children.
func (g *Generator) Random(size int) []model.Node {
	nodes := make([]model.Node, 0, size)
	containers := []model.ID{g.cfg.RootID}
	for i := 0; i < size; i++ {
		id := g.id(i)
		droppable := g.rng.Float64() < g.cfg.ContainerRate
		nodes = append(nodes, model.Node{
			ID:        id,
			Parent:    containers[g.rng.Intn(len(containers))],
			Text:      randomWord(g.rng),
			Droppable: droppable,
		})
		if droppable {
			containers = append(containers, id)
		}
	}
	g.rng.Shuffle(len(nodes), func(i, j int) { nodes[i], nodes[j] = nodes[j], nodes[i] })
	return nodes
}

// Cycle creates size nodes whose parent links form a loop with no path to
// the root. Only useful for fault handling tests.
func (g *Generator) Cycle(size int) []model.Node {
	nodes := make([]model.Node, size)
	for i := range nodes {
		nodes[i] = model.Node{
			ID:        g.id(i),
			Parent:    g.id((i + 1) % size),
			Text:      fmt.Sprintf("Loop %d", i),
			Droppable: true,
		}
	}
	return nodes
}

// FileTree creates a file-browser style collection: an "All Files" folder
// with Documents, Images, Videos (split into four subfolders), Code and
// Projects, and count files spread across them. Files carry an extension
// matching their category, except projects.
func (g *Generator) FileTree(count int) []model.Node {
	categories := []string{"Documents", "Images", "Videos", "Code", "Projects"}
	videoFolders := []string{"Tutorials", "Meetings", "Events", "Recordings"}

	nodes := []model.Node{{ID: "root", Parent: g.cfg.RootID, Text: "All Files", Droppable: true}}
	for i, c := range categories {
		cid := model.ID(fmt.Sprintf("category-%d", i))
		nodes = append(nodes, model.Node{ID: cid, Parent: "root", Text: c, Droppable: true})
		if c == "Videos" {
			for j, f := range videoFolders {
				nodes = append(nodes, model.Node{
					ID:        model.ID(fmt.Sprintf("videos-folder-%d", j)),
					Parent:    cid,
					Text:      f,
					Droppable: true,
				})
			}
		}
	}

	for i := 1; i <= count; i++ {
		ci := i % len(categories)
		parent := model.ID(fmt.Sprintf("category-%d", ci))
		var name string
		switch categories[ci] {
		case "Documents":
			name = fmt.Sprintf("report_%d_%d.docx", i/5, i%5)
		case "Images":
			name = fmt.Sprintf("photo_%d_%d.jpg", i/5, i%5)
		case "Videos":
			name = fmt.Sprintf("video_%d_%d.mp4", i/5, i%5)
			parent = model.ID(fmt.Sprintf("videos-folder-%d", g.rng.Intn(len(videoFolders))))
		case "Code":
			name = fmt.Sprintf("script_%d_%d.ts", i/5, i%5)
		default:
			name = fmt.Sprintf("project_%d_%d", i/5, i%5)
		}
		nodes = append(nodes, model.Node{ID: model.ID(fmt.Sprintf("node-%d", i)), Parent: parent, Text: name})
	}
	return nodes
}

var words = []string{
	"alpha", "bravo", "charlie", "delta", "echo", "foxtrot", "golf",
	"hotel", "india", "juliet", "kilo", "lima", "mike", "november",
}

func randomWord(rng *rand.Rand) string {
	return words[rng.Intn(len(words))]
}
