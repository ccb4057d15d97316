package engine

import (
	"unicode/utf8"

	"golang.org/x/text/transform"
)

// Transformer adapts a Machine to golang.org/x/text/transform.Transformer,
// so substitution can be spliced into io pipelines with transform.NewReader,
// transform.NewWriter, or transform.String.
//
// The transformer owns the chunking concerns the Machine does not: it holds
// back an incomplete trailing UTF-8 sequence until more bytes arrive, and it
// carries produced-but-unwritten output across calls when dst is too small.
// At the end of the stream it flushes the machine's buffered candidate.
//
// Like the Machine it wraps, a Transformer must not be used concurrently.
type Transformer struct {
	m *Machine

	// carry is output already produced by the machine that did not fit in
	// dst on a previous call. It must drain before any new input is consumed.
	carry []byte
}

// NewTransformer wraps m. The machine's rule set must be fully registered
// before the transformer is used.
func NewTransformer(m *Machine) *Transformer {
	return &Transformer{m: m}
}

// Transform implements transform.Transformer.
func (t *Transformer) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	if len(t.carry) > 0 {
		n := copy(dst, t.carry)
		t.carry = t.carry[n:]
		nDst = n
		if len(t.carry) > 0 {
			return nDst, 0, transform.ErrShortDst
		}
		t.carry = nil
	}

	// Hold back a trailing partial rune; the machine expects whole
	// codepoints. At EOF there is nothing more to wait for, so whatever
	// remains goes through (the machine copies stray bytes literally).
	n := len(src)
	if !atEOF {
		n -= incompleteRuneSuffix(src)
	}

	out := t.m.Process(string(src[:n]))
	nSrc = n
	if atEOF {
		out += t.m.Flush()
	}

	w := copy(dst[nDst:], out)
	nDst += w
	if w < len(out) {
		t.carry = append(t.carry, out[w:]...)
		return nDst, nSrc, transform.ErrShortDst
	}
	if !atEOF && nSrc < len(src) {
		return nDst, nSrc, transform.ErrShortSrc
	}
	return nDst, nSrc, nil
}

// Reset implements transform.Transformer. It drops carried output and the
// machine's buffered candidate, keeping the rules.
func (t *Transformer) Reset() {
	t.carry = nil
	t.m.Reset()
}

// incompleteRuneSuffix returns the number of trailing bytes of src that
// start a UTF-8 sequence whose continuation bytes have not arrived yet.
// Returns 0 when src ends on a rune boundary or on bytes that can never
// become a rune (those pass through the machine as literals).
func incompleteRuneSuffix(src []byte) int {
	for back := 1; back <= utf8.UTFMax && back <= len(src); back++ {
		b := src[len(src)-back]
		if !utf8.RuneStart(b) {
			continue
		}
		if tail := src[len(src)-back:]; !utf8.FullRune(tail) {
			return back
		}
		return 0
	}
	return 0
}
