// ta_parser.go - tile-accelerator input parser: consumes 32-byte control
// and vertex records, drives the display-list builder's state machine.
//
// Grounded on a PCW-indexed dispatch shape (a PCW-style opcode
// field selects a handler, the way a CPU decoder dispatches on an opcode
// field) generalized to Holly's five-way parameter type rather than an
// instruction set.

package hollycore

import "math"

// ParamType is the PCW's bits 31:29 parameter-type field. Values match the
// real chip's encoding (field 3 and 5/6 are reserved/unused).
type ParamType int

const (
	ParamEndOfList     ParamType = 0
	ParamUserTileClip  ParamType = 1
	ParamObjectListSet ParamType = 2
	ParamPolygon       ParamType = 4
	ParamVertex        ParamType = 7
)

// record is one 32-byte TA input record: eight little-endian words.
type record [8]uint32

func (r record) pcw() uint32 { return r[0] }

func pcwParamType(pcw uint32) ParamType { return ParamType(bitField(pcw, 31, 29)) }
func pcwEndOfStrip(pcw uint32) bool     { return checkBit(pcw, 0) }
func pcwListType(pcw uint32) PolygonKind {
	return PolygonKind(bitField(pcw, 27, 24))
}
func pcwTextureSet(pcw uint32) bool { return checkBit(pcw, 3) }

// TAParser consumes the 32-byte record stream Ch2 DMA (or a direct CPU
// write) feeds it and assembles textured display lists.
type TAParser struct {
	sched *Scheduler
	video *VideoSubsystem
	sb    *SystemBlock

	builder *displayListBuilder

	current  *PolygonItem
	previous *PolygonItem
	prevEnd  bool // previous polygon's last vertex carried end-of-strip

	fifoWords []uint32 // partial record accumulated via CPU-driven FIFO writes
}

// NewTAParser wires the parser to the scheduler (for end-of-list interrupt
// delay), video subsystem (texture address resolution) and system block
// (normal-IRQ bit raising).
func NewTAParser(sched *Scheduler, video *VideoSubsystem, sb *SystemBlock) *TAParser {
	return &TAParser{
		sched:   sched,
		video:   video,
		sb:      sb,
		builder: newDisplayListBuilder(),
	}
}

func (p *TAParser) Reset() {
	p.builder.reset()
	p.current = nil
	p.previous = nil
	p.prevEnd = false
	p.fifoWords = p.fifoWords[:0]
}

// WriteFIFO32 accumulates one 32-bit CPU-driven write into the in-flight
// record; a direct-write client is expected to address the TA FIFO
// sequentially, so this ignores the literal byte offset and simply appends
// words, ingesting a record every eight words (a documented simplification:
// the FIFO window itself carries no addressable state on real hardware
// beyond "accepts sequential 32-bit writes").
func (p *TAParser) WriteFIFO32(pc, offset, val uint32) error {
	p.fifoWords = append(p.fifoWords, val)
	if len(p.fifoWords) == 8 {
		var rec record
		copy(rec[:], p.fifoWords)
		p.fifoWords = p.fifoWords[:0]
		return p.IngestRecord(pc, rec)
	}
	return nil
}

// IngestRecord is Ch2 DMA's (and WriteFIFO32's) entry point: one 8-word
// burst, already known to land in the TA FIFO window. pc is the CPU
// instruction that triggered the write when one exists (zero for a DMA
// burst, which has no single instruction to blame) and is carried through
// purely for *FatalError's backtrace.
func (p *TAParser) IngestRecord(pc uint32, words [8]uint32) error {
	rec := record(words)
	switch pcwParamType(rec.pcw()) {
	case ParamPolygon:
		p.handlePolygonParam(rec)
	case ParamVertex:
		return p.handleVertexParam(pc, rec)
	case ParamEndOfList:
		p.handleEndOfList(rec)
	case ParamUserTileClip, ParamObjectListSet:
		// consumed for side effects on real hardware (tile clip rect,
		// per-list head pointers); the rasterizer behind this core reads
		// display-list items directly rather than a per-tile object list,
		// so these records carry no state to track here.
	}
	return nil
}

// handlePolygonParam closes any in-flight polygon, decodes the TSP/TCW
// texture description if present, and opens a new in-flight polygon.
func (p *TAParser) handlePolygonParam(rec record) {
	p.closeCurrent()

	pcw := rec.pcw()
	tsp := rec[2]
	tcw := rec[3]

	item := PolygonItem{
		StartVertex: len(p.builder.vertices),
		Kind:        pcwListType(pcw),
		VertexKind:  vertexKindFor(pcw, tsp),
		TSP:         tsp,
		Palette:     bitField(tcw, 26, 21),
	}

	if pcwTextureSet(pcw) {
		u := bitField(tsp, 5, 3)
		v := bitField(tsp, 2, 0)
		width := 8 << u
		height := 8 << v
		format := tcwPixelFormat(tcw)
		addr := textureAddrFromTCW(tcw)
		ref := p.builder.registerTexture(TextureRef{
			Addr:   addr,
			Width:  int(width),
			Height: int(height),
			Format: format,
		})
		item.Texture = ref
	}

	item.FaceColor = faceColorFromFloats(
		float32Bits(rec[4]), float32Bits(rec[5]), float32Bits(rec[6]), float32Bits(rec[7]),
	)

	p.current = &item
}

// vertexKindFor derives the nine-way vertex layout from the polygon
// header's own PCW/TSP bits: sprite lists always use the two sprite
// layouts, modifier-volume lists use ModVol, and ordinary lists select one
// of Type0..Type8 by whether texture, offset color and UV-16 are present.
// The exact bit positions are an assumption (the nine typed
// layouts unenumerated); documented as an open-question decision.
func vertexKindFor(pcw, tsp uint32) VertexKind {
	listType := pcwListType(pcw)
	switch {
	case checkBit(pcw, 1): // modifier-volume marker
		return VKModVol
	case checkBit(pcw, 2): // sprite marker
		if checkBit(tsp, 0) {
			return VKSpriteType1
		}
		return VKSpriteType0
	}
	textured := pcwTextureSet(pcw)
	offset := checkBit(pcw, 2)
	switch {
	case !textured && !offset:
		return VKType0
	case !textured && offset:
		return VKType1
	case textured && !offset && checkBit(tsp, 6):
		return VKType2
	case textured && !offset:
		return VKType3
	case textured && offset && checkBit(tsp, 6):
		return VKType4
	case textured && offset:
		return VKType5
	case listType == ListPunchThrough:
		return VKType6
	case listType == ListOpaqueMod || listType == ListTransMod:
		return VKType7
	default:
		return VKType8
	}
}

// handleVertexParam decodes one vertex per the in-flight polygon's vertex
// kind, applying the strip-inheritance quirk if no polygon is in flight. A
// vertex that arrives with no current polygon and no end-of-strip previous
// polygon to inherit from has nowhere to attach its vertex kind or face
// color and is architecturally unrecoverable.
func (p *TAParser) handleVertexParam(pc uint32, rec record) error {
	if p.current == nil {
		if p.previous != nil && p.prevEnd {
			inherited := *p.previous
			inherited.StartVertex = len(p.builder.vertices)
			p.current = &inherited
		} else {
			return newFatal(pc, nil, "TA vertex parameter with no prior polygon parameter and no strip-inheritable predecessor")
		}
	}

	v := decodeVertex(rec, p.current.VertexKind, p.current.FaceColor)
	p.builder.addVertex(v)

	if pcwEndOfStrip(rec.pcw()) {
		p.closeCurrent()
	}
	return nil
}

// decodeVertex converts one record into a normalized Vertex per vertex
// kind. Packed-color kinds read a 32-bit ARGB word directly; floating and
// intensity-shaded kinds apply the face color transform the polygon header
// established.
func decodeVertex(rec record, kind VertexKind, face FaceColor) Vertex {
	x := float32Bits(rec[1])
	y := float32Bits(rec[2])
	z := float32Bits(rec[3])

	v := Vertex{X: x, Y: y, Z: z}

	switch kind {
	case VKSpriteType0, VKSpriteType1, VKModVol:
		v.Color = face
		return v
	case VKType0, VKType6, VKType7, VKType8:
		v.Color = packedColorToFaceColor(rec[6])
		return v
	case VKType1:
		v.Color = faceColorFromFloats(float32Bits(rec[4]), float32Bits(rec[5]), float32Bits(rec[6]), float32Bits(rec[7]))
		return v
	case VKType2, VKType4:
		v.U = float32Bits(rec[4])
		v.V = float32Bits(rec[5])
		v.Color = packedColorToFaceColor(rec[6])
		return v
	case VKType3, VKType5:
		v.U = float32Bits(rec[4])
		v.V = float32Bits(rec[5])
		intensity := ftou8(float32Bits(rec[6]))
		v.Color = scaleByIntensity(face, intensity)
		return v
	default:
		v.Color = face
		return v
	}
}

// closeCurrent commits the in-flight polygon (if any) to the builder and
// remembers it for the strip-inheritance quirk.
func (p *TAParser) closeCurrent() {
	if p.current == nil {
		return
	}
	before := len(p.builder.items)
	p.builder.commit(*p.current)
	if len(p.builder.items) > before {
		committed := p.builder.items[len(p.builder.items)-1]
		p.previous = &committed
	}
	p.prevEnd = true
	p.current = nil
}

// handleEndOfList closes any in-flight polygon and schedules the
// list-type-specific normal-IRQ bit after the fixed post-list delay.
func (p *TAParser) handleEndOfList(rec record) {
	p.closeCurrent()

	var mask uint32
	switch pcwListType(rec.pcw()) {
	case ListOpaque:
		mask = 1 << NormalBitOpaqueDone
	case ListOpaqueMod:
		mask = 1 << NormalBitOpaqueModDone
	case ListTrans:
		mask = 1 << NormalBitTransDone
	case ListTransMod:
		mask = 1 << NormalBitTransModDone
	case ListPunchThrough:
		mask = 1 << NormalBitPunchThroughDone
	}

	p.sched.Schedule(EventRaiseIRLNormal, taEndOfListDelay, mask)
}

// TakeFrame hands off the accumulated frame content to the display
// consumer and resets the builder for the next frame.
func (p *TAParser) TakeFrame() DisplayList {
	return p.builder.take()
}

const taEndOfListDelay = 200

// float32Bits reinterprets a raw 32-bit word as an IEEE-754 float without
// going through the FPU's rounding path; TA records carry plain binary32
// values.
func float32Bits(bits uint32) float32 {
	return math.Float32frombits(bits)
}
