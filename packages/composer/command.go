package composer

import (
	mgl "github.com/go-gl/mathgl/mgl32"

	"github.com/leonkasovan/go-composer/packages/gfx"
	"github.com/leonkasovan/go-composer/packages/stream"
)

// CommandType identifies a recorded command.
type CommandType uint8

const (
	CmdBatch       CommandType = iota // Draw a closed batch
	CmdState                          // Apply a render state
	CmdMatrix                         // Replace the model matrix
	CmdTarget                         // Bind a render target
	CmdClear                          // Clear the bound target
	CmdCallback                       // Run arbitrary device code
	CmdSubComposer                    // Replay a sub-composer
)

var commandTypeNames = [...]string{
	CmdBatch:       "Batch",
	CmdState:       "State",
	CmdMatrix:      "Matrix",
	CmdTarget:      "Target",
	CmdClear:       "Clear",
	CmdCallback:    "Callback",
	CmdSubComposer: "SubComposer",
}

func (c CommandType) String() string {
	if int(c) < len(commandTypeNames) {
		return commandTypeNames[c]
	}
	return "Unknown"
}

// Command is one recorded operation. Every command carries everything it
// needs to execute; none reads composer state at execution time.
type Command interface {
	Type() CommandType
	process(p *processor)
	execute(e *executor) error
}

// BatchCommand draws the vertices of one closed batch.
type BatchCommand struct {
	Topology Topology
	Page     *stream.Page
	Textures []gfx.Texture

	mode    gfx.PrimitiveMode
	count   int
	indexed bool
}

func (*BatchCommand) Type() CommandType { return CmdBatch }

func (cmd *BatchCommand) process(*processor) {
	n := cmd.Page.Len()
	switch cmd.Topology {
	case Quads:
		cmd.mode, cmd.count, cmd.indexed = gfx.Triangles, n/4*6, true
	case SequentialTriangles:
		cmd.mode, cmd.count = gfx.Triangles, n
	case TriangleFan:
		cmd.mode, cmd.count = gfx.TriangleFan, n
	}
}

func (cmd *BatchCommand) execute(e *executor) error {
	if err := e.pool.Submit(cmd.Page); err != nil {
		return err
	}
	var ib gfx.Buffer
	if cmd.indexed {
		ib = cmd.Page.IndexBuffer()
	}
	e.dev.BindVertexBuffers(cmd.Page.VertexBuffer(), ib)
	for i, t := range cmd.Textures {
		e.bindTexture(i, t)
	}
	if cmd.indexed {
		e.dev.DrawIndexed(cmd.mode, 0, cmd.count)
	} else {
		e.dev.DrawArrays(cmd.mode, 0, cmd.count)
	}
	e.stats.DrawCalls++
	return nil
}

// StateCommand applies State, a full snapshot of the recorded state.
type StateCommand struct {
	State RenderState
	Force bool
}

func (*StateCommand) Type() CommandType { return CmdState }

func (cmd *StateCommand) process(p *processor) { cmd.State = p.resolve(cmd.State) }

func (cmd *StateCommand) execute(e *executor) error {
	e.applied = e.sync.Apply(cmd.State, e.applied, cmd.Force)
	e.stats.StateChanges++
	return nil
}

// MatrixCommand sets the model matrix to the stack top after a push or pop.
type MatrixCommand struct {
	Matrix mgl.Mat4
	Push   bool
}

func (*MatrixCommand) Type() CommandType { return CmdMatrix }
func (*MatrixCommand) process(*processor) {}

func (cmd *MatrixCommand) execute(e *executor) error {
	e.setModel(cmd.Matrix)
	return nil
}

// TargetCommand binds Target and sets the viewport to cover it. The
// projection is re-derived from the new target size.
type TargetCommand struct {
	Target  gfx.Framebuffer
	Primary bool
	Clear   bool
	Color   gfx.Color
}

func (*TargetCommand) Type() CommandType { return CmdTarget }
func (*TargetCommand) process(*processor) {}

func (cmd *TargetCommand) execute(e *executor) error {
	e.bindTarget(cmd.Target, cmd.Primary)
	if cmd.Clear {
		e.dev.Clear(gfx.ClearAll, cmd.Color)
	}
	return nil
}

// ClearCommand clears the bound target.
type ClearCommand struct {
	Mask  gfx.ClearMask
	Color gfx.Color
}

func (*ClearCommand) Type() CommandType { return CmdClear }
func (*ClearCommand) process(*processor) {}

func (cmd *ClearCommand) execute(e *executor) error {
	e.dev.Clear(cmd.Mask, cmd.Color)
	return nil
}

// CallbackCommand runs Fn on the graphics thread. Device state is forcibly
// re-synchronized afterwards.
type CallbackCommand struct {
	Fn func(dev gfx.Device)
}

func (*CallbackCommand) Type() CommandType { return CmdCallback }
func (*CallbackCommand) process(*processor) {}

func (cmd *CallbackCommand) execute(e *executor) error {
	cmd.Fn(e.dev)
	e.resync()
	return nil
}

// snapshot is the state, model matrix and target at one point of a frame.
type snapshot struct {
	state   RenderState
	model   mgl.Mat4
	target  gfx.Framebuffer
	primary bool
}

// SubComposerCommand replays the commands of a sub-composer. The device is
// first brought to the state the sub-composer started recording from, and
// afterwards back to the state of the parent at the point of recording.
type SubComposerCommand struct {
	Commands []Command

	entry, restore snapshot
}

func (*SubComposerCommand) Type() CommandType { return CmdSubComposer }

func (cmd *SubComposerCommand) process(p *processor) {
	cmd.entry.state = p.resolve(cmd.entry.state)
	for _, c := range cmd.Commands {
		c.process(p)
	}
	cmd.restore.state = p.resolve(cmd.restore.state)
}

func (cmd *SubComposerCommand) execute(e *executor) error {
	e.restore(cmd.entry)
	if err := e.run(cmd.Commands); err != nil {
		return err
	}
	e.restore(cmd.restore)
	return nil
}

// releasePages hands back the pages of batches that never executed.
func releasePages(pool *stream.Pool, cmds []Command) {
	for _, c := range cmds {
		switch c := c.(type) {
		case *BatchCommand:
			if c.Page.State() == stream.PageWriting {
				_ = pool.Release(c.Page)
			}
		case *SubComposerCommand:
			releasePages(pool, c.Commands)
		}
	}
}
